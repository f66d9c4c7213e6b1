package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Store is the persistence the review Service depends on.
type Store interface {
	Create(ctx context.Context, rv *Review) (int, error)
	GetByID(ctx context.Context, id int) (*Review, error)
	List(ctx context.Context, q ListRequest) ([]Review, int, error)
	Update(ctx context.Context, rv *Review) (*Review, error)
	Delete(ctx context.Context, id int) error
	IncrementHits(ctx context.Context, id int) error
	ImageReferenced(ctx context.Context, url string, excludeID int) (bool, error)
}

// ImageRemover deletes uploaded images that reviews no longer reference.
type ImageRemover interface {
	DeleteByURL(ctx context.Context, url string) error
}

// Service contains business logic for reviews.
type Service struct {
	repo   Store
	images ImageRemover
	log    *zap.Logger
}

// NewService creates a new review Service.
func NewService(repo Store, images ImageRemover, log *zap.Logger) *Service {
	return &Service{repo: repo, images: images, log: log}
}

// CreateReview validates req and stores it as a review written by memberID.
func (s *Service) CreateReview(ctx context.Context, req CreateRequest, memberID string) (*CreateResponse, error) {
	rv := &Review{
		MemberID:  memberID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Place:     strings.TrimSpace(req.Place),
		Rating:    req.Rating,
		ImageURLs: nonNil(req.ImageURLs),
	}
	if err := validate(rv); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, rv)
	if err != nil {
		return nil, err
	}
	s.log.Info("review created", zap.Int("review_id", id), zap.String("member_id", memberID))
	return &CreateResponse{ID: id}, nil
}

// GetReview returns a review. memberID may be empty for anonymous callers.
func (s *Service) GetReview(ctx context.Context, reviewID int, memberID string) (*GetResponse, error) {
	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return &GetResponse{Review: *rv, Mine: memberID != "" && rv.MemberID == memberID}, nil
}

// GetReviews returns one page of reviews.
func (s *Service) GetReviews(ctx context.Context, req ListRequest) (*ListResponse, error) {
	q, err := req.normalize()
	if err != nil {
		return nil, err
	}

	reviews, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ListResponse{
		Reviews: reviews,
		Page:    q.Page,
		Size:    q.Size,
		Total:   total,
		HasNext: q.Page*q.Size < total,
	}, nil
}

// ModifyReview applies req to a review owned by memberID. It returns
// ErrConflict when the review changed after it was read.
func (s *Service) ModifyReview(ctx context.Context, reviewID int, req ModifyRequest, memberID string) (*ModifyResponse, error) {
	rv, err := s.owned(ctx, reviewID, memberID)
	if err != nil {
		return nil, err
	}

	before := rv.ImageURLs
	if req.Title != nil {
		rv.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		rv.Content = *req.Content
	}
	if req.Place != nil {
		rv.Place = strings.TrimSpace(*req.Place)
	}
	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if req.ImageURLs != nil {
		rv.ImageURLs = nonNil(*req.ImageURLs)
	}
	if err := validate(rv); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, rv)
	if err != nil {
		return nil, err
	}
	s.removeImages(ctx, reviewID, removedImages(before, updated.ImageURLs))
	return &ModifyResponse{Review: *updated}, nil
}

// DeleteReview removes a review owned by memberID and then its images.
// Image cleanup failures are logged only.
func (s *Service) DeleteReview(ctx context.Context, reviewID int, memberID string) error {
	rv, err := s.owned(ctx, reviewID, memberID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return err
	}
	s.log.Info("review deleted", zap.Int("review_id", reviewID), zap.String("member_id", memberID))
	s.removeImages(ctx, reviewID, rv.ImageURLs)
	return nil
}

// UpdateHits records one view of the review.
func (s *Service) UpdateHits(ctx context.Context, reviewID int) error {
	return s.repo.IncrementHits(ctx, reviewID)
}

// IsNotFound returns true when the error indicates a review was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (s *Service) owned(ctx context.Context, reviewID int, memberID string) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if memberID == "" || rv.MemberID != memberID {
		return nil, fmt.Errorf("review %d: %w", reviewID, ErrForbidden)
	}
	return rv, nil
}

// removeImages deletes urls from storage unless another review still lists them.
func (s *Service) removeImages(ctx context.Context, reviewID int, urls []string) {
	if s.images == nil {
		return
	}
	for _, u := range urls {
		log := s.log.With(zap.Int("review_id", reviewID), zap.String("url", u))
		shared, err := s.repo.ImageReferenced(ctx, u, reviewID)
		if err != nil {
			log.Warn("review image reference check failed", zap.Error(err))
			continue
		}
		if shared {
			log.Debug("review image kept, referenced elsewhere")
			continue
		}
		if err := s.images.DeleteByURL(ctx, u); err != nil {
			log.Warn("review image cleanup failed", zap.Error(err))
		}
	}
}

func nonNil(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}
