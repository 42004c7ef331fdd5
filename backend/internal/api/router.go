// Package api exposes the social graph over HTTP with gin.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-connect/backend/internal/auth"
	"student-connect/backend/internal/graph"
	"student-connect/backend/internal/models"
)

// RouterConfig holds HTTP surface settings
type RouterConfig struct {
	BasePath   string
	CORSOrigin string
}

// Handler serves every route. It is stateless beyond its collaborators.
type Handler struct {
	repo     *graph.Repository
	sessions *auth.Manager
	logger   *zap.Logger
}

// NewRouter builds the gin engine with middleware, health check and all
// resource and action routes mounted under cfg.BasePath.
func NewRouter(repo *graph.Repository, sessions *auth.Manager, log *zap.Logger, cfg RouterConfig) *gin.Engine {
	h := &Handler{repo: repo, sessions: sessions, logger: log}

	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors(cfg.CORSOrigin))
	router.Use(sessions.Middleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group(cfg.BasePath)
	{
		student := api.Group("/student")
		student.POST("/changeschool", h.changeSchool)
		student.POST("/changetopics", h.changeTopics)
		student.POST("/search", h.search)
		student.POST("/addfriend", h.addFriend)
		student.POST("/unfriend", h.unfriend)
		student.POST("/getprofile", h.getProfile)
		(&resource[models.Student]{h: h}).register(student)

		school := api.Group("/school")
		(&resource[models.School]{h: h}).register(school)

		topic := api.Group("/topic")
		(&resource[models.Topic]{h: h}).register(topic)

		post := api.Group("/post")
		post.POST("/likeunlike", h.likePost)
		post.POST("/getpostdetail", h.getPostDetail)
		post.POST("/getfeed", h.getFeed)
		(&resource[models.Post]{h: h, create: h.createPost}).register(post)

		comment := api.Group("/comment")
		comment.POST("/likeunlike", h.likeComment)
		(&resource[models.Comment]{h: h, create: h.createComment}).register(comment)

		user := api.Group("/user")
		user.GET("/whoami", h.whoami)
		user.POST("/login", h.login)
		user.POST("/logout", h.logout)
		user.POST("/signup", h.signup)
		user.POST("/get_user_profile", h.getUserProfile)
		user.POST("/set_user_profile", h.setUserProfile)
		user.POST("/getStudent", h.getStudent)
		(&resource[models.User]{h: h, prepare: h.prepareUser, view: models.PublicUser}).register(user)

		relation := api.Group("/relation")
		relation.GET("", h.listRelations)
		relation.POST("", h.createRelation)
		relation.GET("/:key", h.getRelation)
		relation.PUT("/:key", h.replaceRelation)
		relation.PATCH("/:key", h.patchRelation)
		relation.DELETE("/:key", h.deleteRelation)
	}

	return router
}
