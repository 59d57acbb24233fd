package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleAnalysis() *Analysis {
	created := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	sum := true
	return &Analysis{
		ID:          "5e5b8f1c2a3b4c5d6e7f8a9b",
		Name:        "Analysis 1",
		Description: "Incidents by month",
		DatasetRef:  &DatasetRef{ID: "DatasetRef1", Cube: "Cube 1"},
		Query: &Query{
			NonEmpty:               true,
			FilterParentAggregates: false,
			Measures: []QueryMeasure{
				{UniqueName: "[Measures].[Count]"},
				{UniqueName: "[Measures].[Rate]"},
			},
			Levels: []QueryLevel{
				{UniqueName: "[Date].[Month]", RowOrientation: true, SumSelected: &sum},
				{UniqueName: "[Agency].[Name]"},
			},
			Filters: []QueryFilter{
				{LevelUniqueName: "[Agency].[Name]", Include: true, LevelMemberNames: []string{"Zeta", "Alpha", "Mu"}},
				{LevelUniqueName: "[Date].[Year]", FilterOnlyHierarchy: true, LevelMemberNames: []string{"2019"}},
			},
		},
		CreateDateTime: &created,
		UpdateDateTime: &updated,
		ReadCounter:    7,
	}
}

func TestAnalysis_JSONWireKeys(t *testing.T) {
	raw, err := json.Marshal(sampleAnalysis())
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Contains(t, m, "_query")
	assert.NotContains(t, m, "query")

	q := m["_query"].(map[string]interface{})
	for _, key := range []string{"nonEmpty", "filterParentAggregates", "_measures", "_levels", "_filters"} {
		assert.Contains(t, q, key)
	}
	level := q["_levels"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[Date].[Month]", level["_uniqueName"])
	assert.Equal(t, true, level["_rowOrientation"])
	assert.Equal(t, true, level["_sumSelected"])
	assert.NotContains(t, level, "_filterSelected")

	filter := q["_filters"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"_levelUniqueName", "_filterOnlyHierarchy", "_include", "levelMemberNames"} {
		assert.Contains(t, filter, key)
	}
}

func TestAnalysis_JSONRoundTrip(t *testing.T) {
	in := sampleAnalysis()
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Analysis
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Query, out.Query)
	assert.Equal(t, []string{"Zeta", "Alpha", "Mu"}, out.Query.Filters[0].LevelMemberNames)
	assert.True(t, in.CreateDateTime.Equal(*out.CreateDateTime))
	assert.Equal(t, in.ReadCounter, out.ReadCounter)
}

func TestAnalysis_JSONUnsetTimestampsAreNull(t *testing.T) {
	raw, err := json.Marshal(&Analysis{Name: "new"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createDateTime":null`)
	assert.Contains(t, string(raw), `"updateDateTime":null`)
	assert.Contains(t, string(raw), `"readCounter":0`)
}

func TestAnalysis_BSONRoundTrip(t *testing.T) {
	in := sampleAnalysis()
	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var stored bson.M
	require.NoError(t, bson.Unmarshal(raw, &stored))
	assert.Contains(t, stored, "_query")
	assert.Contains(t, stored, "_id")

	var out Analysis
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, in.Query, out.Query)
	assert.Equal(t, in.DatasetRef, out.DatasetRef)
	assert.True(t, in.UpdateDateTime.Equal(*out.UpdateDateTime))
}

func TestAnalysis_Clone(t *testing.T) {
	in := sampleAnalysis()
	c := in.Clone()
	require.Equal(t, in, c)

	c.Query.Filters[0].LevelMemberNames[0] = "changed"
	*c.Query.Levels[0].SumSelected = false
	c.DatasetRef.Cube = "other"
	*c.CreateDateTime = c.CreateDateTime.Add(time.Hour)

	assert.Equal(t, "Zeta", in.Query.Filters[0].LevelMemberNames[0])
	assert.True(t, *in.Query.Levels[0].SumSelected)
	assert.Equal(t, "Cube 1", in.DatasetRef.Cube)
	assert.NotEqual(t, in.CreateDateTime, c.CreateDateTime)

	var nilAnalysis *Analysis
	assert.Nil(t, nilAnalysis.Clone())
}
