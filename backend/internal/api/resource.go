package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"student-connect/backend/internal/graph"
	"student-connect/backend/internal/models"
	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// createFunc inserts a new document from a raw body
type createFunc func(c *gin.Context, key string, body map[string]any, norm graph.Normalizer) (store.Document, error)

// resource serves list/create/get/replace/patch/delete over the collection
// of T. Bodies are decoded into T and validated with its binding tags on
// every write, patches included.
type resource[T models.Entity] struct {
	h *Handler

	// create overrides plain insertion
	create createFunc
	// prepare runs after validation; current is nil on create
	prepare func(entity *T, current map[string]any) error
	// view renders a document, defaulting to Document.JSON
	view func(store.Document) map[string]any
}

func (r *resource[T]) collection() store.Collection {
	var zero T
	return zero.Collection()
}

func (r *resource[T]) register(g *gin.RouterGroup) {
	g.GET("", r.list)
	g.POST("", r.post)
	g.GET("/:key", r.get)
	g.PUT("/:key", r.replace)
	g.PATCH("/:key", r.patch)
	g.DELETE("/:key", r.remove)
}

func (r *resource[T]) render(doc store.Document) map[string]any {
	if r.view != nil {
		return r.view(doc)
	}
	return doc.JSON()
}

func (r *resource[T]) normalizer() graph.Normalizer {
	return func(fields, current map[string]any) (map[string]any, error) {
		var entity T
		if err := models.FromFields(fields, &entity); err != nil {
			return nil, apperrors.NewInvalidArgument("body", err.Error())
		}
		if err := binding.Validator.ValidateStruct(&entity); err != nil {
			return nil, apperrors.NewInvalidArgument("body", err.Error())
		}
		if r.prepare != nil {
			if err := r.prepare(&entity, current); err != nil {
				return nil, err
			}
		}
		return models.ToFields(entity)
	}
}

func (r *resource[T]) list(c *gin.Context) {
	docs, err := r.h.repo.List(c.Request.Context(), r.collection())
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, r.render(d))
	}
	c.JSON(http.StatusOK, out)
}

func (r *resource[T]) post(c *gin.Context) {
	var body map[string]any
	if !bind(c, &body) {
		return
	}
	key, _ := body[store.KeyField].(string)

	var doc store.Document
	var err error
	if r.create != nil {
		doc, err = r.create(c, key, body, r.normalizer())
	} else {
		doc, err = r.h.repo.Create(c.Request.Context(), r.collection(), key, body, r.normalizer())
	}
	if err != nil {
		r.h.writeError(c, err)
		return
	}

	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+doc.Key)
	c.JSON(http.StatusCreated, r.render(doc))
}

func (r *resource[T]) get(c *gin.Context) {
	doc, err := r.h.repo.Get(c.Request.Context(), r.collection(), c.Param("key"))
	if err != nil {
		r.h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.render(doc))
}

func (r *resource[T]) replace(c *gin.Context) {
	var body map[string]any
	if !bind(c, &body) {
		return
	}

	doc, err := r.h.repo.Replace(c.Request.Context(), r.collection(), c.Param("key"), body, expectedRev(c, body), r.normalizer())
	if err != nil {
		r.h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.render(doc))
}

func (r *resource[T]) patch(c *gin.Context) {
	var body map[string]any
	if !bind(c, &body) {
		return
	}

	doc, err := r.h.repo.Patch(c.Request.Context(), r.collection(), c.Param("key"), body, expectedRev(c, body), r.normalizer())
	if err != nil {
		r.h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.render(doc))
}

func (r *resource[T]) remove(c *gin.Context) {
	if err := r.h.repo.Delete(c.Request.Context(), r.collection(), c.Param("key")); err != nil {
		r.h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// expectedRev reads the revision a write is guarded by: the If-Match header,
// else the body's _rev. Empty disables the check.
func expectedRev(c *gin.Context, body map[string]any) string {
	if match := strings.Trim(c.GetHeader("If-Match"), `" `); match != "" && match != "*" {
		return match
	}
	rev, _ := body[store.RevField].(string)
	return rev
}
