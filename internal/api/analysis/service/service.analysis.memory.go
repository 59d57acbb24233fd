package analysissvc

import (
	"context"
	"sync"

	"github.com/scottcame/piet/internal/api/analysis/models"
	basesvc "github.com/scottcame/piet/internal/api/base/service"
	"github.com/scottcame/piet/internal/common"
)

// AnalysisMemoryStore keeps analyses in process memory. Entities are copied in and out.
type AnalysisMemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.Analysis
	order []string // insertion order, returned by FindAll
}

var (
	_ AnalysisStore          = (*AnalysisMemoryStore)(nil)
	_ ReadCounterIncrementer = (*AnalysisMemoryStore)(nil)
)

// NewAnalysisMemoryStore returns an empty store
func NewAnalysisMemoryStore() *AnalysisMemoryStore {
	return &AnalysisMemoryStore{
		items: make(map[string]*models.Analysis),
	}
}

func (s *AnalysisMemoryStore) Save(ctx context.Context, a *models.Analysis) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(common.ErrStoreUnavailable, err)
	}

	doc := a.Clone()
	if doc.ID == "" {
		doc.ID = basesvc.NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.items[doc.ID] = doc
	return doc.Clone(), nil
}

func (s *AnalysisMemoryStore) FindById(ctx context.Context, id string) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(common.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *AnalysisMemoryStore) FindAll(ctx context.Context) ([]models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(common.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.Analysis, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, *s.items[id].Clone())
	}
	return result, nil
}

func (s *AnalysisMemoryStore) DeleteById(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return common.Wrap(common.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *AnalysisMemoryStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.Wrap(common.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *AnalysisMemoryStore) IncrementReadCounter(ctx context.Context, id string) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(common.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	doc.ReadCounter++
	return doc.Clone(), nil
}
