package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseIndexTag(t *testing.T) {
	got := parseIndexTag("single,order:-1;unique,sparse")
	assert.Equal(t, []map[string]string{
		{"single": "", "order": "-1"},
		{"unique": "", "sparse": ""},
	}, got)

	assert.Empty(t, parseIndexTag(""))
}

type indexedDoc struct {
	ID      string     `bson:"_id,omitempty"`
	Name    string     `bson:"name,omitempty" index:"single"`
	Updated *time.Time `bson:"updateDateTime,omitempty" index:"single,order:-1"`
	Owner   string     `bson:"owner" index:"compound:owner_name_unique"`
	Title   string     `bson:"title" index:"compound:owner_name_unique;text"`
	Ignored string     `bson:"-" index:"single"`
	Email   string     `index:"unique,sparse"`
}

func TestIndexSpecs(t *testing.T) {
	specs := indexSpecs(&indexedDoc{})

	byName := map[string]indexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	assert.Len(t, specs, 5)
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, byName["name_single"].Keys)
	assert.Equal(t, bson.D{{Key: "updateDateTime", Value: -1}}, byName["updateDateTime_single"].Keys)
	assert.Equal(t, bson.D{{Key: "title", Value: "text"}}, byName["title_text"].Keys)

	email := byName["email_unique"]
	assert.True(t, email.Unique)
	assert.True(t, email.Sparse)

	compound := byName["owner_name_unique"]
	assert.True(t, compound.Unique)
	assert.Equal(t, bson.D{{Key: "owner", Value: 1}, {Key: "title", Value: 1}}, compound.Keys)
}

func TestCompareIndex(t *testing.T) {
	spec := indexSpec{Name: "updateDateTime_single", Keys: bson.D{{Key: "updateDateTime", Value: -1}}}

	assert.True(t, compareIndex(bson.M{"key": bson.M{"updateDateTime": int32(-1)}}, spec))
	assert.False(t, compareIndex(bson.M{"key": bson.M{"updateDateTime": int32(1)}}, spec))
	assert.False(t, compareIndex(bson.M{"key": bson.M{"updateDateTime": int32(-1)}, "unique": true}, spec))
	assert.False(t, compareIndex(bson.M{}, spec))
}
