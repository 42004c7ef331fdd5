package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"student-connect/backend/internal/graph"
	"student-connect/backend/internal/models"
	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// createPost links the new post to the author named by "username"
func (h *Handler) createPost(c *gin.Context, key string, body map[string]any, norm graph.Normalizer) (store.Document, error) {
	var req models.NewPost
	if err := models.FromFields(body, &req); err != nil {
		return store.Document{}, apperrors.NewInvalidArgument("body", err.Error())
	}
	delete(body, "username")

	return h.repo.CreatePost(c.Request.Context(), key, body, req.Username, norm)
}

// createComment attaches the new comment to "post_key" and its author
func (h *Handler) createComment(c *gin.Context, key string, body map[string]any, norm graph.Normalizer) (store.Document, error) {
	var req models.NewComment
	if err := models.FromFields(body, &req); err != nil {
		return store.Document{}, apperrors.NewInvalidArgument("body", err.Error())
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return store.Document{}, apperrors.NewInvalidArgument("body", err.Error())
	}
	delete(body, "username")
	delete(body, "post_key")

	return h.repo.CreateComment(c.Request.Context(), key, body, req.PostKey, req.Username, norm)
}

func (h *Handler) likePost(c *gin.Context) {
	var req models.LikePostRequest
	if !bind(c, &req) {
		return
	}
	h.likeUnlike(c, graph.LikeKindPost, req.PostID, req.Username, *req.Like)
}

func (h *Handler) likeComment(c *gin.Context) {
	var req models.LikeCommentRequest
	if !bind(c, &req) {
		return
	}
	h.likeUnlike(c, graph.LikeKindComment, req.CommentID, req.Username, *req.Like)
}

func (h *Handler) likeUnlike(c *gin.Context, kind graph.LikeKind, itemKey, username string, like bool) {
	likers, err := h.repo.LikeUnlike(c.Request.Context(), kind, itemKey, username, like)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]map[string]any, 0, len(likers))
	for _, s := range likers {
		out = append(out, s.JSON())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "likes": out})
}

func (h *Handler) getPostDetail(c *gin.Context) {
	var req models.PostDetailRequest
	if !bind(c, &req) {
		return
	}

	view, err := h.repo.PostDetail(c.Request.Context(), req.PostKey)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": view})
}

func (h *Handler) getFeed(c *gin.Context) {
	var req models.UsernameRequest
	if !bind(c, &req) {
		return
	}

	feed, err := h.repo.Feed(c.Request.Context(), req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": feed})
}
