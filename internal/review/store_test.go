package review

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// memStore is an in-memory Store with the same semantics as Repository.
type memStore struct {
	mu      sync.Mutex
	nextID  int
	reviews map[int]Review
	failAll error
	// beforeUpdate runs at the start of Update, simulating a concurrent writer.
	beforeUpdate func()
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, reviews: map[int]Review{}}
}

func clone(rv Review) Review {
	rv.ImageURLs = append([]string{}, rv.ImageURLs...)
	return rv
}

func (s *memStore) Create(_ context.Context, rv *Review) (int, error) {
	if s.failAll != nil {
		return 0, s.failAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := clone(*rv)
	stored.ID = s.nextID
	stored.Writer = "writer-" + rv.MemberID
	stored.CreatedAt = time.Now().Add(time.Duration(s.nextID) * time.Second)
	stored.UpdatedAt = stored.CreatedAt
	s.reviews[stored.ID] = stored
	s.nextID++
	return stored.ID, nil
}

func (s *memStore) GetByID(_ context.Context, id int) (*Review, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(rv)
	return &out, nil
}

func (s *memStore) List(_ context.Context, q ListRequest) ([]Review, int, error) {
	if s.failAll != nil {
		return nil, 0, s.failAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Review
	kw := strings.ToLower(q.Keyword)
	for _, rv := range s.reviews {
		if kw != "" && !strings.Contains(strings.ToLower(rv.Title), kw) &&
			!strings.Contains(strings.ToLower(rv.Content), kw) {
			continue
		}
		if q.MemberID != "" && rv.MemberID != q.MemberID {
			continue
		}
		matched = append(matched, clone(rv))
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch q.Sort {
		case SortHits:
			if a.Hits != b.Hits {
				return a.Hits > b.Hits
			}
		case SortRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		return a.ID > b.ID
	})

	total := len(matched)
	start := (q.Page - 1) * q.Size
	if start > total {
		start = total
	}
	end := start + q.Size
	if end > total {
		end = total
	}
	return append([]Review{}, matched[start:end]...), total, nil
}

func (s *memStore) Update(_ context.Context, rv *Review) (*Review, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	if s.beforeUpdate != nil {
		s.beforeUpdate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reviews[rv.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if !stored.UpdatedAt.Equal(rv.UpdatedAt) {
		return nil, ErrConflict
	}
	stored.Title, stored.Content, stored.Place = rv.Title, rv.Content, rv.Place
	stored.Rating = rv.Rating
	stored.ImageURLs = append([]string{}, rv.ImageURLs...)
	stored.UpdatedAt = time.Now()
	s.reviews[rv.ID] = stored
	out := clone(stored)
	return &out, nil
}

func (s *memStore) Delete(_ context.Context, id int) error {
	if s.failAll != nil {
		return s.failAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *memStore) IncrementHits(_ context.Context, id int) error {
	if s.failAll != nil {
		return s.failAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reviews[id]
	if !ok {
		return ErrNotFound
	}
	rv.Hits++
	s.reviews[id] = rv
	return nil
}

func (s *memStore) ImageReferenced(_ context.Context, url string, excludeID int) (bool, error) {
	if s.failAll != nil {
		return false, s.failAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rv := range s.reviews {
		if id == excludeID {
			continue
		}
		for _, u := range rv.ImageURLs {
			if u == url {
				return true, nil
			}
		}
	}
	return false, nil
}

// touch bumps the stored updated_at of id as another writer would.
func (s *memStore) touch(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv := s.reviews[id]
	rv.UpdatedAt = rv.UpdatedAt.Add(time.Millisecond)
	s.reviews[id] = rv
}

// recordingRemover records DeleteByURL calls and fails for URLs in fail.
type recordingRemover struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]bool
}

func (r *recordingRemover) DeleteByURL(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[url] {
		return errors.New("delete failed")
	}
	r.deleted = append(r.deleted, url)
	return nil
}
