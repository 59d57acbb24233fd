package analysishdl

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottcame/piet/config"
	analysisdto "github.com/scottcame/piet/internal/api/analysis/dto"
	"github.com/scottcame/piet/internal/api/analysis/models"
	analysissvc "github.com/scottcame/piet/internal/api/analysis/service"
	basehdl "github.com/scottcame/piet/internal/api/base/handler"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: basehdl.ErrorHandler})

	svc := analysissvc.NewAnalysisService(analysissvc.NewAnalysisMemoryStore(), analysissvc.WithAtomicReadCounter(true))
	analyses := NewAnalysisHandler(svc)
	cfg := NewConfigHandler(config.UIConfiguration{
		ApplicationTitle:  "Piet",
		LogoImageURL:      "img/piet-logo.jpg",
		LogLevel:          "info",
		APIVersion:        "1.0.0",
		MondrianRestURL:   "/mondrian-rest",
		TableFontIncrease: 1,
	})

	app.Get("/config", cfg.HandleConfig)
	app.Get("/analyses", analyses.HandleList)
	app.Get("/analysis", analyses.HandleGet)
	app.Post("/analysis", analyses.HandleSave)
	app.Delete("/analysis/:id", analyses.HandleDelete)
	return app
}

func do(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func saveAnalysis(t *testing.T, app *fiber.App, a *models.Analysis) string {
	t.Helper()
	resp, raw := do(t, app, http.MethodPost, "/analysis", a)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var id analysisdto.IdContainer
	require.NoError(t, json.Unmarshal(raw, &id))
	require.NotEmpty(t, id.ID)
	return id.ID
}

func getAnalysis(t *testing.T, app *fiber.App, id string) *models.Analysis {
	t.Helper()
	resp, raw := do(t, app, http.MethodGet, "/analysis?id="+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	if len(raw) == 0 {
		return nil
	}
	var a models.Analysis
	require.NoError(t, json.Unmarshal(raw, &a))
	return &a
}

func listAnalyses(t *testing.T, app *fiber.App) []models.Analysis {
	t.Helper()
	resp, raw := do(t, app, http.MethodGet, "/analyses", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Analysis
	require.NoError(t, json.Unmarshal(raw, &list))
	return list
}

func TestSaveAnalysis(t *testing.T) {
	app := newTestApp(t)

	id := saveAnalysis(t, app, &models.Analysis{
		Name:        "Analysis 1",
		Description: "Description 1",
		DatasetRef:  &models.DatasetRef{ID: "DatasetRef1", Cube: "Cube 1"},
		Query: &models.Query{
			Measures: []models.QueryMeasure{{UniqueName: "[Measures].[Count]"}},
			Filters:  []models.QueryFilter{{LevelUniqueName: "[Agency].[Name]", Include: true, LevelMemberNames: []string{"B", "A"}}},
		},
	})

	list := listAnalyses(t, app)
	require.Len(t, list, 1)
	saved := list[0]
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, "Analysis 1", saved.Name)
	assert.Equal(t, "Cube 1", saved.DatasetRef.Cube)
	assert.Equal(t, []string{"B", "A"}, saved.Query.Filters[0].LevelMemberNames)
	require.NotNil(t, saved.CreateDateTime)
	assert.True(t, saved.CreateDateTime.Equal(*saved.UpdateDateTime))
	assert.Equal(t, int64(0), saved.ReadCounter)
}

func TestReadCounter(t *testing.T) {
	app := newTestApp(t)
	id := saveAnalysis(t, app, &models.Analysis{Name: "Analysis 1"})

	for i := int64(1); i <= 3; i++ {
		a := getAnalysis(t, app, id)
		require.NotNil(t, a)
		assert.Equal(t, i, a.ReadCounter)
	}
}

func TestUpdateAnalysis(t *testing.T) {
	app := newTestApp(t)
	id := saveAnalysis(t, app, &models.Analysis{Name: "Analysis 1"})

	a := getAnalysis(t, app, id)
	a.Name = "Analysis 1 renamed"
	a.ReadCounter = 99
	assert.Equal(t, id, saveAnalysis(t, app, a))

	list := listAnalyses(t, app)
	require.Len(t, list, 1)
	assert.Equal(t, "Analysis 1 renamed", list[0].Name)
	assert.Equal(t, int64(1), list[0].ReadCounter)
	assert.True(t, a.CreateDateTime.Equal(*list[0].CreateDateTime))
}

func TestDeleteAnalysis(t *testing.T) {
	app := newTestApp(t)
	first := saveAnalysis(t, app, &models.Analysis{Name: "Analysis 1"})
	saveAnalysis(t, app, &models.Analysis{Name: "Analysis 2"})
	require.Len(t, listAnalyses(t, app), 2)

	resp, raw := do(t, app, http.MethodDelete, "/analysis/"+first, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, raw)

	list := listAnalyses(t, app)
	require.Len(t, list, 1)
	assert.Equal(t, "Analysis 2", list[0].Name)

	// idempotent
	resp, _ = do(t, app, http.MethodDelete, "/analysis/"+first, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Nil(t, getAnalysis(t, app, first), "unknown ids answer with an empty body")
}

func TestGetAnalysis_MissingId(t *testing.T) {
	app := newTestApp(t)
	resp, raw := do(t, app, http.MethodGet, "/analysis", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "VAL_001", body["code"])
}

func TestSaveAnalysis_MalformedPayload(t *testing.T) {
	app := newTestApp(t)

	for name, payload := range map[string]string{
		"not json":   "{name: ",
		"wrong type": `{"readCounter": "many"}`,
		"empty":      " ",
		"null":       "null",
		"array":      `[{"name": "a"}]`,
		"trailing":   `{"name": "a"} trailing`,
		"two values": `{"name": "a"}{"name": "b"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, raw := do(t, app, http.MethodPost, "/analysis", payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, "VAL_002", body["code"])
		})
	}
	assert.Empty(t, listAnalyses(t, app))
}

func TestListAnalyses_EmptyIsArray(t *testing.T) {
	app := newTestApp(t)
	_, raw := do(t, app, http.MethodGet, "/analyses", nil)
	assert.JSONEq(t, "[]", string(raw))
}

func TestGetConfiguration(t *testing.T) {
	app := newTestApp(t)
	resp, raw := do(t, app, http.MethodGet, "/config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{
		"applicationTitle": "Piet",
		"logoImageUrl": "img/piet-logo.jpg",
		"logLevel": "info",
		"apiVersion": "1.0.0",
		"mondrianRestUrl": "/mondrian-rest",
		"tableFontIncrease": 1
	}`, string(raw))
}
