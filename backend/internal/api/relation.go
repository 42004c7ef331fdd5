package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"student-connect/backend/internal/models"
	"student-connect/backend/internal/store"
)

func (h *Handler) listRelations(c *gin.Context) {
	edges, err := h.repo.ListEdges(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.JSON())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createRelation(c *gin.Context) {
	var req models.RelationInput
	if !bind(c, &req) {
		return
	}

	edge, err := h.repo.CreateEdge(c.Request.Context(), store.Edge{
		From: req.From,
		To:   req.To,
		Type: store.EdgeType(req.Type),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+edge.Key)
	c.JSON(http.StatusCreated, edge.JSON())
}

func (h *Handler) getRelation(c *gin.Context) {
	edge, err := h.repo.GetEdge(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, edge.JSON())
}

func (h *Handler) replaceRelation(c *gin.Context) {
	var req models.RelationInput
	if !bind(c, &req) {
		return
	}
	h.rewriteRelation(c, req)
}

func (h *Handler) patchRelation(c *gin.Context) {
	var req struct {
		From string `json:"_from"`
		To   string `json:"_to"`
		Type string `json:"type"`
	}
	if !bind(c, &req) {
		return
	}
	h.rewriteRelation(c, models.RelationInput{From: req.From, To: req.To, Type: req.Type})
}

func (h *Handler) rewriteRelation(c *gin.Context, req models.RelationInput) {
	edge, err := h.repo.ReplaceEdge(c.Request.Context(), c.Param("key"), store.Edge{
		From: req.From,
		To:   req.To,
		Type: store.EdgeType(req.Type),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, edge.JSON())
}

func (h *Handler) deleteRelation(c *gin.Context) {
	if err := h.repo.DeleteEdge(c.Request.Context(), c.Param("key")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
