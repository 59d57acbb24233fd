package analysissvc

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scottcame/piet/internal/api/analysis/models"
	"github.com/scottcame/piet/internal/common"
	"github.com/scottcame/piet/internal/logger"
	"github.com/scottcame/piet/internal/metrics"
)

// AnalysisService applies the audit-field rules around the store.
//
//   - Save sets createDateTime once, updateDateTime on every call and never changes readCounter.
//   - Get adds 1 to readCounter and leaves both timestamps alone.
//   - Delete is idempotent.
//
// Errors from the store are returned unchanged; nothing is retried here.
type AnalysisService struct {
	store       AnalysisStore
	now         func() time.Time
	atomicReads bool
	log         *logrus.Entry
}

// Option configures an AnalysisService
type Option func(*AnalysisService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *AnalysisService) { s.now = now }
}

// WithAtomicReadCounter makes Get increment readCounter with a single store call when the
// store implements ReadCounterIncrementer. Otherwise Get reads and writes back the entity,
// which can lose increments under concurrent reads of the same id.
func WithAtomicReadCounter(enabled bool) Option {
	return func(s *AnalysisService) { s.atomicReads = enabled }
}

// NewAnalysisService creates the service over store
func NewAnalysisService(store AnalysisStore, opts ...Option) *AnalysisService {
	s := &AnalysisService{
		store: store,
		now:   time.Now,
		log:   logger.WithModule("analysis"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns now at the precision of a BSON date
func (s *AnalysisService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, common.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

// List returns every stored analysis
func (s *AnalysisService) List(ctx context.Context) ([]models.Analysis, error) {
	result, err := s.store.FindAll(ctx)
	metrics.RecordAnalysisOperation("list", outcome(err))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the analysis stored under id after incrementing its readCounter.
// It returns common.ErrNotFound, with no side effect, when id is not stored.
func (s *AnalysisService) Get(ctx context.Context, id string) (*models.Analysis, error) {
	a, err := s.get(ctx, id)
	metrics.RecordAnalysisOperation("get", outcome(err))
	if err != nil {
		return nil, err
	}
	metrics.AnalysisReads.Inc()
	s.log.WithFields(logrus.Fields{"analysis_id": id, "read_counter": a.ReadCounter}).Debug("Analysis read")
	return a, nil
}

func (s *AnalysisService) get(ctx context.Context, id string) (*models.Analysis, error) {
	if inc, ok := s.store.(ReadCounterIncrementer); ok && s.atomicReads {
		return inc.IncrementReadCounter(ctx, id)
	}

	a, err := s.store.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ReadCounter++
	return s.store.Save(ctx, a)
}

// Save stores a and returns the stored entity with its id. Client supplied audit fields are
// ignored: createDateTime and readCounter come from the stored document when there is one.
func (s *AnalysisService) Save(ctx context.Context, a *models.Analysis) (*models.Analysis, error) {
	saved, err := s.save(ctx, a)
	metrics.RecordAnalysisOperation("save", outcome(err))
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"analysis_id": saved.ID, "name": saved.Name}).Debug("Analysis saved")
	return saved, nil
}

func (s *AnalysisService) save(ctx context.Context, a *models.Analysis) (*models.Analysis, error) {
	if a == nil {
		return nil, common.ErrMalformedPayload
	}
	doc := a.Clone()
	now := s.timestamp()

	var existing *models.Analysis
	if doc.ID != "" {
		found, err := s.store.FindById(ctx, doc.ID)
		switch {
		case err == nil:
			existing = found
		case errors.Is(err, common.ErrNotFound):
		default:
			return nil, err
		}
	}

	if existing != nil && existing.CreateDateTime != nil {
		created := *existing.CreateDateTime
		doc.CreateDateTime = &created
	} else {
		created := now
		doc.CreateDateTime = &created
	}
	if existing != nil {
		doc.ReadCounter = existing.ReadCounter
	} else {
		doc.ReadCounter = 0
	}
	doc.UpdateDateTime = &now

	return s.store.Save(ctx, doc)
}

// Delete removes the analysis stored under id. Unknown ids are not an error.
func (s *AnalysisService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteById(ctx, id)
	metrics.RecordAnalysisOperation("delete", outcome(err))
	if err != nil {
		return err
	}
	s.log.WithField("analysis_id", id).Debug("Analysis deleted")
	return nil
}

// Count returns the number of stored analyses
func (s *AnalysisService) Count(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx)
	metrics.RecordAnalysisOperation("count", outcome(err))
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Ping checks the store backend; stores without a remote backend are always reachable
func (s *AnalysisService) Ping(ctx context.Context) error {
	if p, ok := s.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
