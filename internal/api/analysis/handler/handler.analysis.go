// Package analysishdl binds the analysis endpoints to the analysis service.
package analysishdl

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	analysisdto "github.com/scottcame/piet/internal/api/analysis/dto"
	"github.com/scottcame/piet/internal/api/analysis/models"
	analysissvc "github.com/scottcame/piet/internal/api/analysis/service"
	basehdl "github.com/scottcame/piet/internal/api/base/handler"
	"github.com/scottcame/piet/internal/common"
	"github.com/scottcame/piet/internal/logger"
)

const resourceType = "analysis"

// AnalysisHandler serves /analyses and /analysis.
// Successful responses are the bare entities the browser client expects, without an envelope.
type AnalysisHandler struct {
	service *analysissvc.AnalysisService
}

// NewAnalysisHandler creates the handler over service
func NewAnalysisHandler(service *analysissvc.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// HandleList returns every stored analysis
// @Router /analyses [get]
func (h *AnalysisHandler) HandleList(c fiber.Ctx) error {
	analyses, err := h.service.List(c.Context())
	if err != nil {
		return basehdl.WriteError(c, err)
	}
	return basehdl.JSONResponse(c, common.StatusOK, analyses)
}

// HandleGet returns the analysis named by ?id= and counts the read.
// An unknown id answers 200 with an empty body.
// @Router /analysis [get]
func (h *AnalysisHandler) HandleGet(c fiber.Ctx) error {
	params := analysisdto.AnalysisGetParams{ID: c.Query("id")}
	if err := basehdl.ValidateInput(&params); err != nil {
		return basehdl.WriteError(c, err)
	}

	analysis, err := h.service.Get(c.Context(), params.ID)
	if errors.Is(err, common.ErrNotFound) {
		logger.WithRequest(c).WithField("analysis_id", params.ID).Debug("Analysis not found")
		return basehdl.EmptyResponse(c, common.StatusOK)
	}
	if err != nil {
		return basehdl.WriteError(c, err)
	}
	return basehdl.JSONResponse(c, common.StatusOK, analysis)
}

// HandleSave creates or updates the analysis in the body and returns {"id": ...}
// @Router /analysis [post]
func (h *AnalysisHandler) HandleSave(c fiber.Ctx) error {
	var input models.Analysis
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.WriteError(c, err)
	}

	operation := "update"
	if input.ID == "" {
		operation = "create"
	}

	saved, err := h.service.Save(c.Context(), &input)
	if err != nil {
		return basehdl.WriteError(c, err)
	}

	logger.LogCRUD(operation, resourceType, saved.ID, c, map[string]interface{}{
		"name": saved.Name,
	})
	return basehdl.JSONResponse(c, common.StatusOK, analysisdto.IdContainer{ID: saved.ID})
}

// HandleDelete removes the analysis named in the path. Unknown ids succeed.
// @Router /analysis/{id} [delete]
func (h *AnalysisHandler) HandleDelete(c fiber.Ctx) error {
	params := analysisdto.AnalysisDeleteParams{ID: c.Params("id")}
	if err := basehdl.ValidateInput(&params); err != nil {
		return basehdl.WriteError(c, err)
	}

	if err := h.service.Delete(c.Context(), params.ID); err != nil {
		return basehdl.WriteError(c, err)
	}

	logger.LogCRUD("delete", resourceType, params.ID, c, nil)
	return basehdl.EmptyResponse(c, common.StatusOK)
}
