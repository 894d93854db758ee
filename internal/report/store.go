package report

import (
	"context"
	"crypto/rand"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Store persists exam reports.
type Store interface {
	CreateReport(ctx context.Context, r ExamReport) (ExamReport, error)
	GetReport(ctx context.Context, id string) (ExamReport, error)
	// ListReports returns a student's reports for one subject display name, oldest first.
	ListReports(ctx context.Context, studentID, subject string) ([]ExamReport, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	reports []ExamReport
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateReport(_ context.Context, r ExamReport) (ExamReport, error) {
	if err := r.Validate(); err != nil {
		return ExamReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = generateID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.SelectedPath = slices.Clone(r.SelectedPath)
	s.reports = append(s.reports, r)
	return r, nil
}

func (s *MemoryStore) GetReport(_ context.Context, id string) (ExamReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return ExamReport{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *MemoryStore) ListReports(_ context.Context, studentID, subject string) ([]ExamReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []ExamReport{}
	for _, r := range s.reports {
		if r.StudentID == studentID && r.Subject == subject {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b ExamReport) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
