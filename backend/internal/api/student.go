package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-connect/backend/internal/models"
)

func (h *Handler) changeSchool(c *gin.Context) {
	var req models.ChangeSchoolRequest
	if !bind(c, &req) {
		return
	}

	edge, err := h.repo.ChangeSchool(c.Request.Context(), req.StudentKey, req.SchoolName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": edge.JSON()})
}

func (h *Handler) changeTopics(c *gin.Context) {
	var req models.ChangeTopicsRequest
	if !bind(c, &req) {
		return
	}

	change, err := h.repo.ChangeTopics(c.Request.Context(), req.StudentKey, req.Topics)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"removed": change.Removed,
		"failed":  change.Failed,
		"data":    change.Edges,
	})
}

func (h *Handler) search(c *gin.Context) {
	var req models.SearchRequest
	if !bind(c, &req) {
		return
	}

	results, err := h.repo.Search(c.Request.Context(), req.Username, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		out = append(out, r.JSON())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": out})
}

func (h *Handler) addFriend(c *gin.Context) {
	var req models.FriendRequest
	if !bind(c, &req) {
		return
	}

	edges, err := h.repo.AddFriend(c.Request.Context(), req.Username, req.FriendKey)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.JSON())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": out})
}

func (h *Handler) unfriend(c *gin.Context) {
	var req models.FriendRequest
	if !bind(c, &req) {
		return
	}

	removed, err := h.repo.Unfriend(c.Request.Context(), req.Username, req.FriendKey)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"removed": removed}})
}

func (h *Handler) getProfile(c *gin.Context) {
	var req models.StudentRequest
	if !bind(c, &req) {
		return
	}

	profile, err := h.repo.Profile(c.Request.Context(), req.Username, req.StudentKey)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": profile})
}
