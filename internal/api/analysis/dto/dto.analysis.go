// Package analysisdto holds the transport shapes of the analysis endpoints.
package analysisdto

// IdContainer is the response of POST /analysis
type IdContainer struct {
	ID string `json:"id"`
}

// AnalysisGetParams is the query string of GET /analysis
type AnalysisGetParams struct {
	ID string `query:"id" validate:"required"`
}

// AnalysisDeleteParams is the path of DELETE /analysis/:id
type AnalysisDeleteParams struct {
	ID string `uri:"id" validate:"required"`
}
