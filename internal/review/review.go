// Package review implements trip reviews: creation, lookup, listing,
// owner-only modification and deletion, and hit counting.
package review

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Limits enforced on review input.
const (
	MaxTitleLength   = 100
	MaxContentLength = 5000
	MaxPlaceLength   = 100
	MaxImages        = 10
	MinRating        = 1
	MaxRating        = 5

	DefaultPageSize = 10
	MaxPageSize     = 50

	// MaxPage keeps (page-1)*size inside a 32-bit OFFSET.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Sort orders accepted by GetReviews.
const (
	SortLatest = "latest"
	SortHits   = "hits"
	SortRating = "rating"
)

var (
	// ErrNotFound is returned when a review does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrForbidden is returned when a member touches a review they do not own.
	ErrForbidden = errors.New("review belongs to another member")
	// ErrConflict is returned when a review changed between read and write.
	ErrConflict = errors.New("review was modified concurrently")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Review is a member's evaluation of a trip.
type Review struct {
	ID        int       `json:"id"`
	MemberID  string    `json:"memberId"`
	Writer    string    `json:"writer"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Place     string    `json:"place"`
	Rating    int       `json:"rating"`
	ImageURLs []string  `json:"imageUrls"`
	Hits      int       `json:"hits"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateRequest is the body of a review creation.
type CreateRequest struct {
	Title     string   `json:"title"     example:"Three days in Jeju"`
	Content   string   `json:"content"   example:"Rented a car and drove the coastal road."`
	Place     string   `json:"place"     example:"Jeju"`
	Rating    int      `json:"rating"    example:"5"`
	ImageURLs []string `json:"imageUrls"`
}

// CreateResponse carries the ID of a new review.
type CreateResponse struct {
	ID int `json:"id" example:"42"`
}

// GetResponse is a single review as seen by the caller.
type GetResponse struct {
	Review
	Mine bool `json:"mine"`
}

// ListRequest selects a page of reviews.
type ListRequest struct {
	Page     int
	Size     int
	Keyword  string
	MemberID string
	Sort     string
}

// ListResponse is one page of reviews.
type ListResponse struct {
	Reviews []Review `json:"reviews"`
	Page    int      `json:"page"`
	Size    int      `json:"size"`
	Total   int      `json:"total"`
	HasNext bool     `json:"hasNext"`
}

// ModifyRequest updates the fields that are set.
type ModifyRequest struct {
	Title     *string   `json:"title,omitempty"`
	Content   *string   `json:"content,omitempty"`
	Place     *string   `json:"place,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
	ImageURLs *[]string `json:"imageUrls,omitempty"`
}

// ModifyResponse is the review after modification.
type ModifyResponse struct {
	Review
}

// normalize applies paging defaults and rejects unknown sort orders.
func (q ListRequest) normalize() (ListRequest, error) {
	switch {
	case q.Page < 1:
		q.Page = 1
	case q.Page > MaxPage:
		return q, &ValidationError{Field: "page", Message: fmt.Sprintf("must be at most %d", MaxPage)}
	}
	switch {
	case q.Size == 0:
		q.Size = DefaultPageSize
	case q.Size < 0 || q.Size > MaxPageSize:
		return q, &ValidationError{Field: "size", Message: fmt.Sprintf("must be between 1 and %d", MaxPageSize)}
	}
	switch q.Sort {
	case "":
		q.Sort = SortLatest
	case SortLatest, SortHits, SortRating:
	default:
		return q, &ValidationError{Field: "sort", Message: "must be one of latest, hits, rating"}
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
	return q, nil
}

// validate checks the editable fields of r.
func validate(r *Review) error {
	switch n := utf8.RuneCountInString(strings.TrimSpace(r.Title)); {
	case n == 0:
		return &ValidationError{Field: "title", Message: "is required"}
	case n > MaxTitleLength:
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(r.Content)); {
	case n == 0:
		return &ValidationError{Field: "content", Message: "is required"}
	case n > MaxContentLength:
		return &ValidationError{Field: "content", Message: fmt.Sprintf("must be at most %d characters", MaxContentLength)}
	}
	if utf8.RuneCountInString(r.Place) > MaxPlaceLength {
		return &ValidationError{Field: "place", Message: fmt.Sprintf("must be at most %d characters", MaxPlaceLength)}
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return &ValidationError{Field: "rating", Message: fmt.Sprintf("must be between %d and %d", MinRating, MaxRating)}
	}
	if len(r.ImageURLs) > MaxImages {
		return &ValidationError{Field: "imageUrls", Message: fmt.Sprintf("at most %d images", MaxImages)}
	}
	for _, u := range r.ImageURLs {
		if strings.TrimSpace(u) == "" {
			return &ValidationError{Field: "imageUrls", Message: "must not contain empty urls"}
		}
	}
	return nil
}

// removedImages returns the URLs in before that are absent from after.
func removedImages(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[u] = struct{}{}
	}
	var removed []string
	for _, u := range before {
		if _, ok := keep[u]; !ok {
			removed = append(removed, u)
		}
	}
	return removed
}
