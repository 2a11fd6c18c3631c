package pipeline_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type contentRow struct {
	Data    json.RawMessage
	Status  models.Status
	Message string
}

type contentKey struct {
	videoID     uuid.UUID
	contentType models.ContentType
}

type fakeContentStore struct {
	mu      sync.Mutex
	rows    map[contentKey]contentRow
	history []models.Status
	failOn  models.Status
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{rows: map[contentKey]contentRow{}}
}

func (s *fakeContentStore) UpsertContent(ctx context.Context, videoID uuid.UUID, contentType models.ContentType, data any, status models.Status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && status == s.failOn {
		return apperror.New(apperror.KindInternal, "Database write failed", nil)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.rows[contentKey{videoID, contentType}] = contentRow{Data: raw, Status: status, Message: errMsg}
	s.history = append(s.history, status)
	return nil
}

func (s *fakeContentStore) row(videoID uuid.UUID, contentType models.ContentType) (contentRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[contentKey{videoID, contentType}]
	return row, ok
}

// fakeLedger mirrors the conditional UPDATE: it never goes below zero.
type fakeLedger struct {
	mu      sync.Mutex
	balance map[uuid.UUID]int
}

func newFakeLedger(userID uuid.UUID, balance int) *fakeLedger {
	return &fakeLedger{balance: map[uuid.UUID]int{userID: balance}}
}

func (l *fakeLedger) GetCredits(ctx context.Context, userID uuid.UUID) (int, error) {
	return l.get(userID), nil
}

func (l *fakeLedger) set(userID uuid.UUID, balance int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance[userID] = balance
}

func (l *fakeLedger) DeductCredit(ctx context.Context, userID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance[userID] < 1 {
		return 0, apperror.InsufficientCredits()
	}
	l.balance[userID]--
	return l.balance[userID], nil
}

func (l *fakeLedger) get(userID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance[userID]
}
