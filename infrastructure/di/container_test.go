package di

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/application/queries"
	"recipebook/infrastructure/config"
	"recipebook/pkg/auth"
	pkgerrors "recipebook/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "test",
		MaxBodyBytes:       1 << 20,
		StorageDriver:      config.StorageSQLite,
		DatabaseDSN:        ":memory:",
		DatabaseMaxConns:   1,
		JWTIssuer:          "recipebook",
		ValidateResponses:  true,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "error",
		EnableMetrics:      true,
		EnableCORS:         true,
	}
}

func newTestAPI(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return container.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) pkgerrors.ErrorResponse {
	t.Helper()
	var resp pkgerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func stewBody() map[string]interface{} {
	return map[string]interface{}{
		"name":     "Lentil Stew",
		"source":   map[string]interface{}{"type": "offline", "title": "The Soup Book", "page": 42},
		"diet":     "vegan",
		"prepTime": "30to60",
		"seasons":  map[string]bool{"fall": true, "winter": true},
		"tags":     []string{"soup", "lentils", "soup"},
		"notes":    "## Method\n\nSimmer slowly.",
	}
}

func TestAPI_RecipeLifecycle(t *testing.T) {
	h := newTestAPI(t, testConfig())

	rec := do(t, h, http.MethodPost, "/api/recipes", stewBody(), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created queries.RecipeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/recipes/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, []string{"soup", "lentils"}, created.Tags)
	assert.Equal(t, 1, created.Version)

	rec = do(t, h, http.MethodGet, "/api/recipes/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fetched queries.RecipeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Lentil Stew", fetched.Name)
	assert.Equal(t, "The Soup Book", fetched.Source.Title)
	assert.True(t, fetched.Seasons.Winter)

	replacement := stewBody()
	replacement["name"] = "Red Lentil Stew"
	replacement["source"] = map[string]interface{}{"type": "online", "url": "https://example.com/stew"}
	replacement["tags"] = []string{"quick"}
	replacement["prepTime"] = "under15"
	rec = do(t, h, http.MethodPut, "/api/recipes/"+created.ID, replacement, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var replaced queries.RecipeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	assert.Equal(t, 2, replaced.Version)
	assert.Equal(t, "online", replaced.Source.Type)
	assert.Equal(t, []string{"quick"}, replaced.Tags)

	rec = do(t, h, http.MethodGet, "/api/recipes?name=RED&diet=vegetarian&prepTime=15to30&tags=quick&seasons=winter&seasons=summer", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list queries.ListRecipesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)
	assert.Equal(t, 1, list.Pagination.Total)

	rec = do(t, h, http.MethodGet, "/api/recipes?tags=soup", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Items)
	assert.NotNil(t, list.Items)

	rec = do(t, h, http.MethodGet, "/api/tags", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tags queries.ListTagsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	assert.Equal(t, []string{"quick"}, tags.Tags)

	rec = do(t, h, http.MethodDelete, "/api/recipes/"+created.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/recipes/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(pkgerrors.ErrorTypeNotFound), decodeError(t, rec).Type)

	rec = do(t, h, http.MethodDelete, "/api/recipes/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListOrderAndPaging(t *testing.T) {
	h := newTestAPI(t, testConfig())

	for _, name := range []string{"Borscht", "apple crumble", "Caesar Salad"} {
		body := stewBody()
		body["name"] = name
		rec := do(t, h, http.MethodPost, "/api/recipes", body, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/api/recipes?sort=-name&page=1&pageSize=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list queries.ListRecipesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Caesar Salad", list.Items[0].Name)
	assert.Equal(t, "Borscht", list.Items[1].Name)
	assert.Equal(t, 3, list.Pagination.Total)
	assert.Equal(t, 2, list.Pagination.TotalPages)
	assert.True(t, list.Pagination.HasNext)

	rec = do(t, h, http.MethodGet, "/api/recipes?sort=-name&page=2&pageSize=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "apple crumble", list.Items[0].Name)
	assert.False(t, list.Pagination.HasNext)
	assert.True(t, list.Pagination.HasPrev)
}

func TestAPI_RequestErrors(t *testing.T) {
	h := newTestAPI(t, testConfig())

	tests := []struct {
		name     string
		method   string
		target   string
		body     interface{}
		status   int
		errType  pkgerrors.ErrorType
		contains string
	}{
		{"unknown api route", http.MethodGet, "/api/ingredients", nil, http.StatusNotFound, pkgerrors.ErrorTypeNotFound, ""},
		{"unknown route", http.MethodGet, "/nowhere", nil, http.StatusNotFound, pkgerrors.ErrorTypeNotFound, ""},
		{"wrong method", http.MethodPatch, "/api/recipes", nil, http.StatusMethodNotAllowed, pkgerrors.ErrorTypeMethodNotAllowed, ""},
		{"bad page parameter", http.MethodGet, "/api/recipes?page=abc", nil, http.StatusBadRequest, pkgerrors.ErrorTypeValidation, ""},
		{"page size above limit", http.MethodGet, "/api/recipes?pageSize=500", nil, http.StatusBadRequest, pkgerrors.ErrorTypeValidation, ""},
		{"unknown diet", http.MethodGet, "/api/recipes?diet=carnivore", nil, http.StatusBadRequest, pkgerrors.ErrorTypeValidation, "diet"},
		{"unknown sort", http.MethodGet, "/api/recipes?sort=rating", nil, http.StatusBadRequest, pkgerrors.ErrorTypeValidation, "sort"},
		{"missing name", http.MethodPost, "/api/recipes", map[string]interface{}{
			"source": map[string]interface{}{"type": "online", "url": "https://example.com"}, "diet": "vegan", "prepTime": "under15",
		}, http.StatusBadRequest, pkgerrors.ErrorTypeValidation, "name"},
		{"source carries both forms", http.MethodPost, "/api/recipes", map[string]interface{}{
			"name":   "Toast",
			"source": map[string]interface{}{"type": "online", "url": "https://example.com", "title": "Book", "page": 3},
			"diet":   "vegan", "prepTime": "under15",
		}, http.StatusBadRequest, pkgerrors.ErrorTypeValidation, "source"},
		{"malformed id", http.MethodGet, "/api/recipes/not-a-uuid", nil, http.StatusBadRequest, pkgerrors.ErrorTypeValidation, ""},
		{"replace missing recipe", http.MethodPut, "/api/recipes/6f1c2a52-3c1e-4c8a-9a51-6cde4e1e9c11", stewBody(), http.StatusNotFound, pkgerrors.ErrorTypeNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := decodeError(t, rec)
			assert.True(t, resp.Error)
			assert.Equal(t, string(tt.errType), resp.Type)
			assert.NotEmpty(t, resp.RequestID)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestAPI_BearerAuth(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "test-secret"
	h := newTestAPI(t, cfg)

	rec := do(t, h, http.MethodPost, "/api/recipes", stewBody(), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	assert.Equal(t, string(pkgerrors.ErrorTypeUnauthorized), decodeError(t, rec).Type)

	rec = do(t, h, http.MethodPost, "/api/recipes", stewBody(), http.Header{"Authorization": {"Bearer not-a-token"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	validator, err := auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
	require.NoError(t, err)
	token, err := validator.IssueToken("chef", time.Hour)
	require.NoError(t, err)

	rec = do(t, h, http.MethodPost, "/api/recipes", stewBody(), http.Header{"Authorization": {"Bearer " + token}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// reads stay open
	rec = do(t, h, http.MethodGet, "/api/recipes", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2
	h := newTestAPI(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, h, http.MethodGet, "/api/tags", nil, nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// operational endpoints are not limited
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil, nil).Code)
}

func TestAPI_QueryCacheInvalidatedByCommands(t *testing.T) {
	cfg := testConfig()
	cfg.QueryCacheTTL = 60
	h := newTestAPI(t, cfg)

	rec := do(t, h, http.MethodGet, "/api/tags", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/recipes", stewBody(), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/tags", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":["lentils","soup"]}`, rec.Body.String())
}

func TestAPI_OperationalEndpoints(t *testing.T) {
	h := newTestAPI(t, testConfig())

	rec := do(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ready")

	do(t, h, http.MethodGet, "/api/tags", nil, nil)
	rec = do(t, h, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="listTags"`)

	rec = do(t, h, http.MethodGet, "/api/openapi.yaml", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "openapi: 3.0.3"))
}

func TestInitializeContainer_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = "mongodb"

	_, _, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}
