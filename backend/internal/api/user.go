package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-connect/backend/internal/auth"
	"student-connect/backend/internal/models"
	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// prepareUser hashes a supplied password into authData. Without one the
// stored hash is kept; client-sent authData is never trusted.
func (h *Handler) prepareUser(u *models.User, current map[string]any) error {
	if u.Password != "" {
		data, err := h.sessions.Hasher().Hash(u.Password)
		if err != nil {
			return err
		}
		u.AuthData = &data
		u.Password = ""
		return nil
	}

	u.AuthData = nil
	if raw, ok := current["authData"].(map[string]any); ok {
		var data models.AuthData
		if err := models.FromFields(raw, &data); err != nil {
			return err
		}
		u.AuthData = &data
	}
	if u.AuthData == nil {
		return apperrors.NewInvalidArgument("password", "password is required")
	}
	return nil
}

func (h *Handler) whoami(c *gin.Context) {
	sess := auth.Current(c)
	if !sess.Authenticated() {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	user, err := h.repo.Get(c.Request.Context(), store.Users, sess.UID)
	if apperrors.IsNotFound(err) {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PublicUser(user))
}

func (h *Handler) login(c *gin.Context) {
	var req models.Credentials
	if !bind(c, &req) {
		return
	}

	user, err := h.sessions.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.sessions.Login(c, user.Key); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, store.KeyField: user.Key})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Logout(c); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) signup(c *gin.Context) {
	var req models.Credentials
	if !bind(c, &req) {
		return
	}

	data, err := h.sessions.Hasher().Hash(req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	fields, err := models.ToFields(models.User{Username: req.Username, AuthData: &data})
	if err != nil {
		h.writeError(c, err)
		return
	}

	user, err := h.repo.Create(c.Request.Context(), store.Users, "", fields, nil)
	if apperrors.IsConflict(err) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.sessions.Login(c, user.Key); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, store.KeyField: user.Key})
}

func (h *Handler) getUserProfile(c *gin.Context) {
	var req models.UsernameRequest
	if !bind(c, &req) {
		return
	}

	profile, err := h.repo.UserProfile(c.Request.Context(), req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

func (h *Handler) setUserProfile(c *gin.Context) {
	var req models.StudentRequest
	if !bind(c, &req) {
		return
	}

	edge, err := h.repo.SetUserProfile(c.Request.Context(), req.Username, req.StudentKey)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "meta": edge.JSON()})
}

func (h *Handler) getStudent(c *gin.Context) {
	var req models.UsernameRequest
	if !bind(c, &req) {
		return
	}

	student, err := h.repo.UserStudent(c.Request.Context(), req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var result map[string]any
	if student != nil {
		result = student.JSON()
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
