package image

import "errors"

// Kind classifies an image failure.
type Kind int

const (
	KindEmptyFile Kind = iota + 1
	KindFileTooSmall
	KindUnsupportedExtension
	KindUploadFailed
	KindDeleteFailed
)

// String returns the machine-readable code sent to API clients.
func (k Kind) String() string {
	switch k {
	case KindEmptyFile:
		return "EMPTY_FILE"
	case KindFileTooSmall:
		return "FILE_TOO_SMALL"
	case KindUnsupportedExtension:
		return "UNSUPPORTED_EXTENSION"
	case KindUploadFailed:
		return "UPLOAD_FAILED"
	case KindDeleteFailed:
		return "DELETE_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Error is a tagged image failure. Err, when set, is the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

var messages = map[Kind]string{
	KindEmptyFile:            "file is empty",
	KindFileTooSmall:         "file is too small",
	KindUnsupportedExtension: "file extension is not supported",
	KindUploadFailed:         "file upload failed",
	KindDeleteFailed:         "file delete failed",
}

func (e *Error) Error() string {
	msg, ok := messages[e.Kind]
	if !ok {
		msg = "image error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEmptyFile            = &Error{Kind: KindEmptyFile}
	ErrFileTooSmall         = &Error{Kind: KindFileTooSmall}
	ErrUnsupportedExtension = &Error{Kind: KindUnsupportedExtension}
	ErrUploadFailed         = &Error{Kind: KindUploadFailed}
	ErrDeleteFailed         = &Error{Kind: KindDeleteFailed}
)

// IsValidation reports whether err was caused by the uploaded file itself
// rather than the object store.
func IsValidation(err error) bool {
	e, ok := asError(err)
	if !ok {
		return false
	}
	switch e.Kind {
	case KindEmptyFile, KindFileTooSmall, KindUnsupportedExtension:
		return true
	}
	return false
}

// KindOf returns the Kind carried by err, or 0 when err is not an image error.
func KindOf(err error) Kind {
	if e, ok := asError(err); ok {
		return e.Kind
	}
	return 0
}

func asError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
