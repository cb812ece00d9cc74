// Package reportapi exposes the finished routing graph over HTTP: a
// read-only view over whatever the build CLI last checkpointed into the
// store (spec §6 Outbound, supplemented feature: a queryable graph view
// alongside the export sink).
package reportapi

import (
	"github.com/gin-gonic/gin"

	"github.com/ali01/trailnet/internal/store"
)

// SetupRoutes registers every report endpoint on router, reading through db.
func SetupRoutes(router *gin.Engine, db *store.DB) {
	router.Use(CORSMiddleware())

	h := &handlers{
		vertices: store.NewVertexStore(),
		edges:    store.NewEdgeStore(),
		trails:   store.NewTrailStore(),
		db:       db,
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/vertices", h.listVertices)
		v1.GET("/vertices/:id", h.getVertex)
		v1.GET("/edges", h.listEdges)
		v1.GET("/edges/:id", h.getEdge)
		v1.GET("/trails", h.listTrails)
		v1.GET("/trails/:id", h.getTrail)
		v1.GET("/stats", h.stats)
	}
}

// CORSMiddleware allows the report viewer to be served from a different
// origin than the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
