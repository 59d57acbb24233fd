package analysissvc

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scottcame/piet/internal/api/analysis/models"
	basesvc "github.com/scottcame/piet/internal/api/base/service"
	"github.com/scottcame/piet/internal/common"
	"github.com/scottcame/piet/internal/database"
	"github.com/scottcame/piet/internal/metrics"
)

// AnalysisMongoStore stores analyses in one MongoDB collection
type AnalysisMongoStore struct {
	*basesvc.BaseServiceMongoImpl[models.Analysis]
}

var (
	_ AnalysisStore          = (*AnalysisMongoStore)(nil)
	_ ReadCounterIncrementer = (*AnalysisMongoStore)(nil)
	_ Pinger                 = (*AnalysisMongoStore)(nil)
)

// NewAnalysisMongoStore creates the store over collection
func NewAnalysisMongoStore(collection *mongo.Collection, opts ...basesvc.BaseOption) *AnalysisMongoStore {
	return &AnalysisMongoStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Analysis](collection, opts...),
	}
}

// EnsureSchema creates the collection and the indexes declared on models.Analysis
func (s *AnalysisMongoStore) EnsureSchema(ctx context.Context) error {
	col := s.Collection()
	if err := database.EnsureCollection(ctx, col.Database(), col.Name()); err != nil {
		return err
	}
	return database.CreateIndexes(ctx, col, models.Analysis{})
}

// Save inserts a when it has no id, otherwise replaces (or creates) the document under a.ID
func (s *AnalysisMongoStore) Save(ctx context.Context, a *models.Analysis) (*models.Analysis, error) {
	defer metrics.ObserveStoreOperation("save", time.Now())

	doc := a.Clone()
	if doc.ID == "" {
		id, err := s.InsertOne(ctx, "", *doc)
		if err != nil {
			return nil, err
		}
		doc.ID = id
		return doc, nil
	}

	if err := s.ReplaceById(ctx, doc.ID, *doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FindById returns the analysis stored under id
func (s *AnalysisMongoStore) FindById(ctx context.Context, id string) (*models.Analysis, error) {
	defer metrics.ObserveStoreOperation("find_by_id", time.Now())

	a, err := s.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAll returns every stored analysis in natural order
func (s *AnalysisMongoStore) FindAll(ctx context.Context) ([]models.Analysis, error) {
	defer metrics.ObserveStoreOperation("find_all", time.Now())
	return s.Find(ctx, nil, nil)
}

// DeleteById removes the analysis stored under id, if any
func (s *AnalysisMongoStore) DeleteById(ctx context.Context, id string) error {
	defer metrics.ObserveStoreOperation("delete_by_id", time.Now())
	_, err := s.BaseServiceMongoImpl.DeleteById(ctx, id)
	return err
}

// Count returns the number of stored analyses
func (s *AnalysisMongoStore) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveStoreOperation("count", time.Now())
	return s.CountDocuments(ctx, nil)
}

// IncrementReadCounter applies $inc on readCounter and returns the document after the update
func (s *AnalysisMongoStore) IncrementReadCounter(ctx context.Context, id string) (*models.Analysis, error) {
	defer metrics.ObserveStoreOperation("increment_read_counter", time.Now())

	update := basesvc.UpdateData{Inc: map[string]interface{}{"readCounter": int64(1)}}
	a, err := s.FindOneAndUpdate(ctx, bson.M{"_id": basesvc.DocID(id)}, update, nil)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Ping checks that the MongoDB deployment answers
func (s *AnalysisMongoStore) Ping(ctx context.Context) error {
	return common.ConvertMongoError(s.Collection().Database().Client().Ping(ctx, nil))
}
