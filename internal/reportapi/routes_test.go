package reportapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/trailnet/internal/config"
	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitializeSchema())

	ctx := context.Background()
	require.NoError(t, store.NewVertexStore().Upsert(db, ctx, models.Vertex{ID: 1, X: 1, Y: 2, Degree: 1}))
	require.NoError(t, store.NewVertexStore().Upsert(db, ctx, models.Vertex{ID: 2, X: 2, Y: 3, Degree: 1}))
	e := models.Edge{ID: 1, Source: 1, Target: 2, Geometry: geomops.LineString3D{{X: 0, Y: 0}, {X: 1, Y: 1}}, Provenance: models.Original(uuid.New())}
	e.RecomputeDerived()
	require.NoError(t, store.NewEdgeStore().Upsert(db, ctx, e))

	router := gin.New()
	SetupRoutes(router, db)
	return router
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest("OPTIONS", "/api/v1/vertices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListVertices(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest("GET", "/api/v1/vertices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":1`)
}

func TestGetVertexNotFound(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest("GET", "/api/v1/vertices/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"vertex_count":2`)
}
