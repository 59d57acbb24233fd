// Package models contains the entities of the Analysis domain.
//
// Keys prefixed with an underscore are the names the browser query builder uses
// internally; they are kept verbatim on the wire and in stored documents.
package models

import "time"

// Analysis is a saved report definition (collection "analysis").
// CreateDateTime, UpdateDateTime and ReadCounter are owned by the server.
type Analysis struct {
	ID             string      `json:"id" bson:"_id,omitempty"` // hex ObjectID for stored documents; empty before the first save
	Name           string      `json:"name" bson:"name,omitempty" index:"single"`
	Description    string      `json:"description" bson:"description,omitempty"`
	DatasetRef     *DatasetRef `json:"datasetRef" bson:"datasetRef,omitempty"`
	Query          *Query      `json:"_query" bson:"_query,omitempty"`
	CreateDateTime *time.Time  `json:"createDateTime" bson:"createDateTime,omitempty"`
	UpdateDateTime *time.Time  `json:"updateDateTime" bson:"updateDateTime,omitempty" index:"single,order:-1"`
	ReadCounter    int64       `json:"readCounter" bson:"readCounter"`
}

// DatasetRef identifies the cube an Analysis is built against
type DatasetRef struct {
	ID   string `json:"id" bson:"id"`
	Cube string `json:"cube" bson:"cube"`
}

// Query is the OLAP query specification. It is stored and returned as sent.
type Query struct {
	NonEmpty               bool           `json:"nonEmpty" bson:"nonEmpty"`
	FilterParentAggregates bool           `json:"filterParentAggregates" bson:"filterParentAggregates"`
	Measures               []QueryMeasure `json:"_measures" bson:"_measures"`
	Levels                 []QueryLevel   `json:"_levels" bson:"_levels"`
	Filters                []QueryFilter  `json:"_filters" bson:"_filters"`
}

// QueryMeasure references one measure of the cube
type QueryMeasure struct {
	UniqueName string `json:"_uniqueName" bson:"_uniqueName"`
}

// QueryLevel places one level on the rows or the columns
type QueryLevel struct {
	UniqueName     string `json:"_uniqueName" bson:"_uniqueName"`
	RowOrientation bool   `json:"_rowOrientation" bson:"_rowOrientation"`
	SumSelected    *bool  `json:"_sumSelected,omitempty" bson:"_sumSelected,omitempty"`
	FilterSelected *bool  `json:"_filterSelected,omitempty" bson:"_filterSelected,omitempty"`
}

// QueryFilter restricts a level to the named members
type QueryFilter struct {
	LevelUniqueName     string   `json:"_levelUniqueName" bson:"_levelUniqueName"`
	FilterOnlyHierarchy bool     `json:"_filterOnlyHierarchy" bson:"_filterOnlyHierarchy"`
	Include             bool     `json:"_include" bson:"_include"`
	LevelMemberNames    []string `json:"levelMemberNames" bson:"levelMemberNames"`
}

// Clone returns a deep copy of a
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	c := *a
	if a.DatasetRef != nil {
		ref := *a.DatasetRef
		c.DatasetRef = &ref
	}
	if a.CreateDateTime != nil {
		t := *a.CreateDateTime
		c.CreateDateTime = &t
	}
	if a.UpdateDateTime != nil {
		t := *a.UpdateDateTime
		c.UpdateDateTime = &t
	}
	c.Query = a.Query.Clone()
	return &c
}

// Clone returns a deep copy of q
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	c := *q
	if q.Measures != nil {
		c.Measures = append([]QueryMeasure{}, q.Measures...)
	}
	if q.Levels != nil {
		c.Levels = make([]QueryLevel, len(q.Levels))
		for i, l := range q.Levels {
			c.Levels[i] = l
			if l.SumSelected != nil {
				v := *l.SumSelected
				c.Levels[i].SumSelected = &v
			}
			if l.FilterSelected != nil {
				v := *l.FilterSelected
				c.Levels[i].FilterSelected = &v
			}
		}
	}
	if q.Filters != nil {
		c.Filters = make([]QueryFilter, len(q.Filters))
		for i, f := range q.Filters {
			c.Filters[i] = f
			if f.LevelMemberNames != nil {
				c.Filters[i].LevelMemberNames = append([]string{}, f.LevelMemberNames...)
			}
		}
	}
	return &c
}
