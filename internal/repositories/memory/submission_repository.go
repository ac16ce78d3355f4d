// Package memory holds process local repositories used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
)

// maxRecordsPerMember bounds the journal so a long running process does not grow without limit.
const maxRecordsPerMember = 200

// SubmissionStore is a thread-safe in-memory submission journal.
type SubmissionStore struct {
	mu       sync.RWMutex
	byMember map[string][]domain.SubmissionRecord
}

var _ portsrepo.SubmissionRepositoryFacade = (*SubmissionStore)(nil)

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		byMember: make(map[string][]domain.SubmissionRecord),
	}
}

func (s *SubmissionStore) SaveSubmission(_ context.Context, record domain.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append(s.byMember[record.MemberID], record)
	if len(records) > maxRecordsPerMember {
		records = records[len(records)-maxRecordsPerMember:]
	}
	s.byMember[record.MemberID] = records
	return nil
}

func (s *SubmissionStore) ListSubmissions(_ context.Context, memberID string, limit int) ([]domain.SubmissionRecord, error) {
	s.mu.RLock()
	out := make([]domain.SubmissionRecord, len(s.byMember[memberID]))
	copy(out, s.byMember[memberID])
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
