// Package basesvc provides the generic MongoDB access layer the domain stores are built on.
package basesvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scottcame/piet/internal/common"
)

// UpdateData is a typed MongoDB update document
type UpdateData struct {
	Inc map[string]interface{} `bson:"$inc,omitempty"`
}

// BaseServiceMongoImpl is the set of collection operations shared by the stores.
// Ids are strings on this side of the driver; see DocID for how they are stored.
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
	opTimeout  time.Duration
}

// BaseOption configures a BaseServiceMongoImpl
type BaseOption func(*baseOptions)

type baseOptions struct {
	opTimeout time.Duration
}

// WithOperationTimeout bounds every collection call; 0 leaves the caller's context alone
func WithOperationTimeout(d time.Duration) BaseOption {
	return func(o *baseOptions) { o.opTimeout = d }
}

// NewBaseServiceMongo creates the base service for collection
func NewBaseServiceMongo[T any](collection *mongo.Collection, opts ...BaseOption) *BaseServiceMongoImpl[T] {
	o := baseOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return &BaseServiceMongoImpl[T]{
		collection: collection,
		opTimeout:  o.opTimeout,
	}
}

// Collection returns the underlying collection
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

func (s *BaseServiceMongoImpl[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// DocID returns the stored form of id: an ObjectID for 24 hex characters, the string otherwise.
// Documents written by other clients with ObjectID keys stay addressable by their hex form.
func DocID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// NewID returns a fresh id in hex form
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// toDocument marshals data and places the stored form of id first, replacing any _id in data
func toDocument(id string, data interface{}) (bson.D, error) {
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	doc := make(bson.D, 0, len(fields)+1)
	doc = append(doc, bson.E{Key: "_id", Value: DocID(id)})
	for _, f := range fields {
		if f.Key != "_id" {
			doc = append(doc, f)
		}
	}
	return doc, nil
}

func decodeError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrNotFound
	}
	return common.NewError(
		common.ErrCodeValidationFormat,
		"Stored document could not be decoded",
		common.StatusInternalServerError,
		err,
	)
}

// ====================================
// OPERATIONS
// ====================================

// InsertOne inserts data under id (a new id when empty) and returns the id
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, id string, data T) (string, error) {
	if id == "" {
		id = NewID()
	}
	doc, err := toDocument(id, data)
	if err != nil {
		return "", common.Wrap(common.ErrMalformedPayload, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return "", common.ConvertMongoError(err)
	}
	return id, nil
}

// FindOne finds the first document matching filter
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	var result T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOne()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	findResult := s.collection.FindOne(ctx, filter, opts)
	if err := findResult.Err(); err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if err := findResult.Decode(&result); err != nil {
		return zero, decodeError(err)
	}
	return result, nil
}

// Find returns every document matching filter, never nil
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var results []T
	if err = cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	if results == nil {
		results = []T{}
	}
	return results, nil
}

// FindOneById finds the document stored under id
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id string) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": DocID(id)}, nil)
}

// ReplaceById replaces the document stored under id with data, inserting it when absent
func (s *BaseServiceMongoImpl[T]) ReplaceById(ctx context.Context, id string, data T) error {
	doc, err := toDocument(id, data)
	if err != nil {
		return common.Wrap(common.ErrMalformedPayload, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": DocID(id)}, doc, options.Replace().SetUpsert(true))
	return common.ConvertMongoError(err)
}

// FindOneAndUpdate applies update to the first document matching filter and returns it.
// Unless opts says otherwise the document is returned as it is after the update.
func (s *BaseServiceMongoImpl[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	var zero T
	var result T

	if opts == nil {
		opts = options.FindOneAndUpdate().SetReturnDocument(options.After)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := s.collection.FindOneAndUpdate(ctx, filter, update, opts)
	if err := res.Err(); err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if err := res.Decode(&result); err != nil {
		return zero, decodeError(err)
	}
	return result, nil
}

// DeleteById removes the document stored under id and reports whether one existed
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": DocID(id)})
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return res.DeletedCount > 0, nil
}

// CountDocuments counts the documents matching filter
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}
