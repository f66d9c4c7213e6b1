package member

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/djtrip/backend/internal/middleware"
	"github.com/djtrip/backend/internal/response"
)

type memStore struct {
	members map[string]*Member
	err     error
	ensures int
}

func (s *memStore) Ensure(_ context.Context, id, nickname string) (*Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.ensures++
	m, ok := s.members[id]
	if !ok {
		m = &Member{ID: id, CreatedAt: time.Now()}
		s.members[id] = m
	}
	if nickname != "" {
		m.Nickname = nickname
	}
	return m, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	if m, ok := s.members[id]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

func TestServiceEnsure(t *testing.T) {
	svc := NewService(&memStore{members: map[string]*Member{}})
	ctx := context.Background()

	if _, err := svc.Ensure(ctx, "", "x"); err == nil {
		t.Fatal("empty id accepted")
	}
	if _, err := svc.Ensure(ctx, "m1", "seoul"); err != nil {
		t.Fatal(err)
	}
	m, err := svc.Ensure(ctx, "m1", "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Nickname != "seoul" {
		t.Fatalf("nickname overwritten with empty value: %q", m.Nickname)
	}
	if _, err := svc.GetByID(ctx, "nobody"); !svc.IsNotFound(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestGetMe(t *testing.T) {
	store := &memStore{members: map[string]*Member{}}
	core, logs := observer.New(zap.ErrorLevel)
	h := NewHandler(NewService(store), zap.New(core))

	w := httptest.NewRecorder()
	h.GetMe(w, httptest.NewRequest(http.MethodGet, "/members/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/members/me", nil)
	ctx := context.WithValue(r.Context(), middleware.MemberIDKey, "m1")
	ctx = context.WithValue(ctx, middleware.MemberNicknameKey, "busan")
	w = httptest.NewRecorder()
	h.GetMe(w, r.WithContext(ctx))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var env struct {
		response.Envelope
		Data Member `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Data.ID != "m1" || env.Data.Nickname != "busan" {
		t.Fatalf("unexpected member %+v", env.Data)
	}

	w = httptest.NewRecorder()
	h.GetMe(w, r.WithContext(ctx))
	if w.Code != http.StatusOK || store.ensures != 1 {
		t.Fatalf("status = %d, ensures = %d: existing member should be read, not upserted", w.Code, store.ensures)
	}

	store.err = errors.New("db down")
	w = httptest.NewRecorder()
	h.GetMe(w, r.WithContext(ctx))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if entries := logs.FilterMessage("get member failed").All(); len(entries) != 1 {
		t.Fatalf("logged %d entries", len(entries))
	}
}
