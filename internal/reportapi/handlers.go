package reportapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/store"
)

type handlers struct {
	vertices *store.VertexStore
	edges    *store.EdgeStore
	trails   *store.TrailStore
	db       *store.DB
}

func (h *handlers) listVertices(c *gin.Context) {
	vertices, err := h.vertices.GetAll(h.db, c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vertices": vertices})
}

func (h *handlers) getVertex(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vertex id"})
		return
	}
	v, err := h.vertices.GetByID(h.db, c.Request.Context(), models.VertexID(id))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handlers) listEdges(c *gin.Context) {
	edges, err := h.edges.GetAll(h.db, c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"edges": edges})
}

func (h *handlers) getEdge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid edge id"})
		return
	}
	e, err := h.edges.GetByID(h.db, c.Request.Context(), models.EdgeID(id))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *handlers) listTrails(c *gin.Context) {
	trails, err := h.trails.GetAll(h.db, c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trails": trails})
}

func (h *handlers) getTrail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trail id"})
		return
	}
	t, err := h.trails.GetByID(h.db, c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// stats reports the graph's current shape: vertex/edge/trail counts and the
// vertex degree histogram (spec §6 Outbound "vertex degree histogram").
func (h *handlers) stats(c *gin.Context) {
	ctx := c.Request.Context()

	vertexCount, err := h.vertices.Count(h.db, ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	edgeCount, err := h.edges.Count(h.db, ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	trailCount, err := h.trails.Count(h.db, ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	vertices, err := h.vertices.GetAll(h.db, ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	histogram := make(map[int]int)
	for _, v := range vertices {
		histogram[v.Degree]++
	}

	c.JSON(http.StatusOK, gin.H{
		"vertex_count":     vertexCount,
		"edge_count":       edgeCount,
		"trail_count":      trailCount,
		"degree_histogram": histogram,
	})
}

func respondStoreError(c *gin.Context, err error) {
	if store.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
