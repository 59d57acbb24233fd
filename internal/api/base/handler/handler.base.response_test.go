package basehdl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottcame/piet/internal/common"
	"github.com/scottcame/piet/internal/logger"
)

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c fiber.Ctx) error { return err })
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler_Envelope(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", common.ErrNotFound, 404, "DB_002"},
		{"store unavailable", common.Wrap(common.ErrStoreUnavailable, context.DeadlineExceeded), 503, "DB_001"},
		{"malformed", common.ErrMalformedPayload, 400, "VAL_002"},
		{"fiber error", fiber.ErrTooManyRequests, 429, "BIZ_002"},
		{"plain error", errors.New("boom"), 500, "SYS_001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := errorApp(tc.err).Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, tc.code, body["code"])
			assert.Equal(t, "error", body["status"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestErrorHandler_DetailsFromCause(t *testing.T) {
	resp, err := errorApp(common.Wrap(common.ErrStoreWrite, errors.New("write conflict"))).
		Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "write conflict", decode(t, resp)["details"])
}

func TestErrorHandler_ServerErrorsGoToErrorLogger(t *testing.T) {
	hook := logtest.NewLocal(logger.GetErrorLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logger.RequestIDHeader, "req-42")
	_, err := errorApp(common.Wrap(common.ErrStoreUnavailable, errors.New("no primary"))).Test(req)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "req-42", entry.Data["request_id"])
	assert.Equal(t, "DB_001", entry.Data["code"])

	hook.Reset()
	_, err = errorApp(common.ErrNotFound).Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries(), "client errors are not logged as failures")
}

type bodyInput struct {
	Name string `json:"name" validate:"required"`
}

func TestParseRequestBody(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/", func(c fiber.Ctx) error {
		var in bodyInput
		if err := ParseRequestBody(c, &in); err != nil {
			return err
		}
		return JSONResponse(c, common.StatusOK, in)
	})

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusOK, post(`{"name":"x"}`).StatusCode)
	assert.Equal(t, "VAL_001", decode(t, post(`{}`))["code"])
	assert.Equal(t, "VAL_002", decode(t, post(`{"name":`))["code"])
	assert.Equal(t, "VAL_002", decode(t, post(``))["code"])
	assert.Equal(t, "VAL_002", decode(t, post(`null`))["code"])
	assert.Equal(t, "VAL_002", decode(t, post(`{"name":"x"} {}`))["code"])
	assert.Equal(t, http.StatusOK, post(" {\"name\":\"x\"}\n").StatusCode)
}

type fakeTarget struct {
	pingErr error
	count   int64
}

func (f fakeTarget) Ping(context.Context) error           { return f.pingErr }
func (f fakeTarget) Count(context.Context) (int64, error) { return f.count, nil }

func TestHandleHealth(t *testing.T) {
	for name, tc := range map[string]struct {
		target HealthTarget
		status int
	}{
		"healthy":  {fakeTarget{count: 3}, http.StatusOK},
		"degraded": {fakeTarget{pingErr: common.ErrStoreUnavailable}, http.StatusServiceUnavailable},
	} {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewSystemHandler(tc.target, "memory").HandleHealth)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			data := decode(t, resp)["data"].(map[string]interface{})
			store := data["services"].(map[string]interface{})["store"].(map[string]interface{})
			assert.Equal(t, "memory", store["driver"])
		})
	}
}
