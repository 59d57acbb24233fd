package database

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scottcame/piet/internal/logger"
)

// EnsureCollection creates the named collection when the database does not have it yet.
// MongoDB creates databases lazily, so this also materialises a new database.
func EnsureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(names) > 0 {
		return nil
	}

	logger.WithModuleAndCollection("database", name).Info("Collection does not exist, creating")
	if err := db.CreateCollection(ctx, name); err != nil {
		// another instance may have created it in between
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == 48 {
			return nil
		}
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// indexSpec is one index derived from `index:"..."` struct tags
type indexSpec struct {
	Name   string
	Keys   bson.D
	Unique bool
	Sparse bool
}

// parseIndexTag splits `single,order:-1;unique,sparse` into one map per ';' group
func parseIndexTag(tag string) []map[string]string {
	parts := strings.Split(tag, ";")
	result := []map[string]string{}

	for _, part := range parts {
		entry := map[string]string{}
		for _, subPart := range strings.Split(part, ",") {
			subPart = strings.TrimSpace(subPart)
			if subPart == "" {
				continue
			}
			kv := strings.SplitN(subPart, ":", 2)
			if len(kv) == 2 {
				entry[kv[0]] = kv[1]
			} else {
				entry[kv[0]] = ""
			}
		}
		if len(entry) > 0 {
			result = append(result, entry)
		}
	}

	return result
}

// bsonName returns the stored field name of a struct field, "" when it is not stored
func bsonName(field reflect.StructField) string {
	tag := field.Tag.Get("bson")
	name := strings.Split(tag, ",")[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(field.Name)
	}
	return name
}

// indexSpecs collects the indexes declared on model. Supported tag options are
// single, unique (with sparse), text and compound:<group> (group names containing _unique are unique).
func indexSpecs(model interface{}) []indexSpec {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var specs []indexSpec
	compound := map[string]*indexSpec{}
	var compoundOrder []string

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		name := bsonName(field)
		if name == "" {
			continue
		}

		for _, cfg := range parseIndexTag(tag) {
			order := 1
			if cfg["order"] == "-1" {
				order = -1
			}
			_, sparse := cfg["sparse"]

			if _, ok := cfg["text"]; ok {
				specs = append(specs, indexSpec{Name: name + "_text", Keys: bson.D{{Key: name, Value: "text"}}})
			}
			if _, ok := cfg["single"]; ok {
				specs = append(specs, indexSpec{Name: name + "_single", Keys: bson.D{{Key: name, Value: order}}})
			}
			if _, ok := cfg["unique"]; ok {
				specs = append(specs, indexSpec{Name: name + "_unique", Keys: bson.D{{Key: name, Value: 1}}, Unique: true, Sparse: sparse})
			}
			if group, ok := cfg["compound"]; ok && group != "" {
				spec, exists := compound[group]
				if !exists {
					spec = &indexSpec{Name: group, Unique: strings.Contains(group, "_unique")}
					compound[group] = spec
					compoundOrder = append(compoundOrder, group)
				}
				spec.Keys = append(spec.Keys, bson.E{Key: name, Value: order})
				spec.Sparse = spec.Sparse || sparse
			}
		}
	}

	for _, group := range compoundOrder {
		specs = append(specs, *compound[group])
	}
	return specs
}

func (s indexSpec) options() *options.IndexOptions {
	opts := options.Index().SetName(s.Name)
	if s.Unique {
		opts.SetUnique(true)
	}
	if s.Sparse {
		opts.SetSparse(true)
	}
	return opts
}

// compareIndex reports whether an index listed by the server matches spec
func compareIndex(existing bson.M, spec indexSpec) bool {
	existingKeys, ok := existing["key"].(bson.M)
	if !ok || len(existingKeys) != len(spec.Keys) {
		return false
	}

	for _, key := range spec.Keys {
		existingValue, exists := existingKeys[key.Key]
		if !exists {
			return false
		}
		if newVal, isInt := key.Value.(int); isInt {
			switch ev := existingValue.(type) {
			case int32:
				if int(ev) != newVal {
					return false
				}
			case int64:
				if int(ev) != newVal {
					return false
				}
			case float64:
				if int(ev) != newVal {
					return false
				}
			default:
				return false
			}
		} else if key.Value == "text" {
			// text indexes are listed as {_fts: "text", _ftsx: 1}
			if _, ok := existingKeys["_fts"]; !ok && existingValue != "text" {
				return false
			}
		} else if existingValue != key.Value {
			return false
		}
	}

	unique, _ := existing["unique"].(bool)
	return unique == spec.Unique
}

// checkAndReplaceIndex creates the index, dropping a same-named index with a different shape first
func checkAndReplaceIndex(ctx context.Context, collection *mongo.Collection, existingIndexes map[string]bson.M, spec indexSpec) error {
	log := logger.WithModuleAndCollection("database", collection.Name()).WithField("index", spec.Name)

	if existing, exists := existingIndexes[spec.Name]; exists {
		if compareIndex(existing, spec) {
			log.Debug("Index exists with the expected definition")
			return nil
		}
		if _, err := collection.Indexes().DropOne(ctx, spec.Name); err != nil {
			return fmt.Errorf("failed to drop index %s: %w", spec.Name, err)
		}
		log.Info("Dropped index with outdated definition")
	}

	if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    spec.Keys,
		Options: spec.options(),
	}); err != nil {
		return fmt.Errorf("failed to create index %s: %w", spec.Name, err)
	}
	log.Info("Created index")
	return nil
}

// CreateIndexes creates the indexes declared by model's `index` struct tags on collection.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	defer cursor.Close(ctx)

	existingIndexes := map[string]bson.M{}
	for cursor.Next(ctx) {
		var indexInfo bson.M
		if err := cursor.Decode(&indexInfo); err != nil {
			return fmt.Errorf("failed to decode index info: %w", err)
		}
		if name, ok := indexInfo["name"].(string); ok {
			existingIndexes[name] = indexInfo
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	for _, spec := range indexSpecs(model) {
		if err := checkAndReplaceIndex(ctx, collection, existingIndexes, spec); err != nil {
			return err
		}
	}
	return nil
}
