package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-connect/backend/internal/constants"
	"student-connect/backend/internal/models"
	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
	"student-connect/backend/pkg/logger"
)

// UserFinder resolves login accounts by username
type UserFinder interface {
	FindUser(ctx context.Context, username string) (store.Document, error)
}

// Manager ties sessions to requests and runs the login flow
type Manager struct {
	sessions SessionStore
	users    UserFinder
	hasher   Hasher
	ttl      time.Duration
	secure   bool
	logger   *zap.Logger

	// dummy is verified when a login names no existing user so that
	// unknown usernames cost the same as wrong passwords
	dummy models.AuthData
}

// ManagerConfig holds session cookie settings
type ManagerConfig struct {
	TTL          time.Duration
	CookieSecure bool
}

// NewManager creates a session manager
func NewManager(sessions SessionStore, users UserFinder, hasher Hasher, cfg ManagerConfig) (*Manager, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &Manager{
		sessions: sessions,
		users:    users,
		hasher:   hasher,
		ttl:      cfg.TTL,
		secure:   cfg.CookieSecure,
		logger:   logger.Named("auth"),
		dummy:    dummy,
	}, nil
}

// Hasher returns the hasher used for new credentials
func (m *Manager) Hasher() Hasher {
	return m.hasher
}

// Middleware loads the session named by the sid cookie into the context.
// Requests without a valid session get an anonymous one that is only
// persisted on login.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session
		if id, err := c.Cookie(constants.SessionCookieName); err == nil && id != "" {
			sess, err = m.sessions.Load(c.Request.Context(), id)
			if err != nil {
				m.logger.Warn("Failed to load session", zap.Error(err))
			}
		}
		if sess == nil {
			sess = &Session{}
		}
		c.Set(constants.SessionContextKey, sess)
		c.Next()
	}
}

// Current returns the request's session, anonymous if none was loaded
func Current(c *gin.Context) *Session {
	if v, ok := c.Get(constants.SessionContextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return &Session{}
}

// Authenticate checks credentials and returns the matching user. A missing
// user fails exactly like a wrong password.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (store.Document, error) {
	user, err := m.users.FindUser(ctx, username)
	if err != nil && !apperrors.IsNotFound(err) {
		return store.Document{}, err
	}

	if err != nil {
		Verify(m.dummy, password)
		return store.Document{}, apperrors.NewUnauthorized("invalid username or password")
	}

	var data models.AuthData
	if raw, ok := user.Fields["authData"].(map[string]any); ok {
		if err := models.FromFields(raw, &data); err != nil {
			return store.Document{}, err
		}
	}
	if !Verify(data, password) {
		return store.Document{}, apperrors.NewUnauthorized("invalid username or password")
	}
	return user, nil
}

// Login binds uid to a fresh session and issues its cookie
func (m *Manager) Login(c *gin.Context, uid string) error {
	ctx := c.Request.Context()
	if old := Current(c); old.ID != "" {
		if err := m.sessions.Delete(ctx, old.ID); err != nil {
			m.logger.Warn("Failed to drop previous session", zap.Error(err))
		}
	}

	sess := newSession(m.ttl)
	sess.UID = uid
	if err := m.sessions.Save(ctx, sess); err != nil {
		return err
	}

	c.Set(constants.SessionContextKey, sess)
	m.setCookie(c, sess.ID, int(m.ttl.Seconds()))

	m.logger.Info("User logged in", zap.String("uid", uid))
	return nil
}

// Logout clears the session's uid, leaving the session anonymous
func (m *Manager) Logout(c *gin.Context) error {
	sess := Current(c)
	if !sess.Authenticated() {
		return nil
	}

	uid := sess.UID
	sess.UID = ""
	if err := m.sessions.Save(c.Request.Context(), sess); err != nil {
		return err
	}

	m.logger.Info("User logged out", zap.String("uid", uid))
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.SessionCookieName, value, maxAge, "/", "", m.secure, true)
}
