package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"student-connect/backend/internal/auth"
	"student-connect/backend/internal/graph"
	"student-connect/backend/internal/store"
)

// testClient drives the router in-process and carries cookies between calls
type testClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	st, err := store.NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, st.EnsureSchema(ctx))
	t.Cleanup(func() { st.Close(ctx) })

	repo := graph.NewRepository(st, false)
	manager, err := auth.NewManager(
		auth.NewDocumentSessionStore(st),
		repo,
		auth.BcryptHasher{Cost: bcrypt.MinCost},
		auth.ManagerConfig{TTL: time.Hour},
	)
	require.NoError(t, err)

	router := NewRouter(repo, manager, zap.NewNop(), RouterConfig{BasePath: "/api", CORSOrigin: "*"})
	return &testClient{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	tc.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	tc.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		tc.cookies[c.Name] = c
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (tc *testClient) create(path string, body map[string]any) map[string]any {
	tc.t.Helper()
	rec := tc.do(http.MethodPost, path, body)
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](tc.t, rec)
}

func TestRouter_Health(t *testing.T) {
	tc := newTestClient(t)

	rec := tc.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_ResourceCRUD(t *testing.T) {
	tc := newTestClient(t)

	rec := tc.do(http.MethodPost, "/api/school", map[string]any{"school_name": "MIT"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	school := decode[map[string]any](t, rec)
	key := school["_key"].(string)
	assert.Equal(t, "/api/school/"+key, rec.Header().Get("Location"))
	assert.Equal(t, "School/"+key, school["_id"])

	rec = tc.do(http.MethodGet, "/api/school/"+key, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MIT", decode[map[string]any](t, rec)["school_name"])

	rec = tc.do(http.MethodGet, "/api/school", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = tc.do(http.MethodPatch, "/api/school/"+key, map[string]any{
		"school_address": map[string]any{"city": "Cambridge"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[map[string]any](t, rec)
	assert.Equal(t, "MIT", patched["school_name"])
	assert.Equal(t, map[string]any{"city": "Cambridge"}, patched["school_address"])
	assert.NotEqual(t, school["_rev"], patched["_rev"])

	rec = tc.do(http.MethodPut, "/api/school/"+key, map[string]any{"school_name": "Caltech"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decode[map[string]any](t, rec)
	assert.Equal(t, "Caltech", replaced["school_name"])
	assert.NotContains(t, replaced, "school_address")

	rec = tc.do(http.MethodDelete, "/api/school/"+key, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = tc.do(http.MethodGet, "/api/school/"+key, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = tc.do(http.MethodDelete, "/api/school/"+key, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Validation(t *testing.T) {
	tc := newTestClient(t)

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{"missing required field", "/api/topic", map[string]any{}},
		{"bad enum", "/api/student", map[string]any{"student_name": "A", "student_sex": "X"}},
		{"bad level", "/api/student", map[string]any{"student_name": "A", "student_level": "PhD"}},
		{"bad date", "/api/student", map[string]any{"student_name": "A", "student_DOB": "yesterday"}},
		{"comment without post", "/api/comment", map[string]any{"comment_text": "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tc.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, decode[map[string]any](t, rec), "error")
		})
	}

	student := tc.create("/api/student", map[string]any{"student_name": "A", "student_DOB": "2001-02-03"})
	assert.Equal(t, "2001-02-03", student["student_DOB"])

	rec := tc.do(http.MethodPatch, "/api/student/"+student["_key"].(string), map[string]any{"student_sex": "Q"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_KeyConflict(t *testing.T) {
	tc := newTestClient(t)

	tc.create("/api/topic", map[string]any{"_key": "go", "topic_text": "Go"})
	rec := tc.do(http.MethodPost, "/api/topic", map[string]any{"_key": "go", "topic_text": "Go"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_RevisionGuard(t *testing.T) {
	tc := newTestClient(t)

	topic := tc.create("/api/topic", map[string]any{"topic_text": "Go"})
	path := "/api/topic/" + topic["_key"].(string)

	rec := tc.do(http.MethodPut, path, map[string]any{"topic_text": "Rust"}, "If-Match", `"stale"`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = tc.do(http.MethodPut, path, map[string]any{"topic_text": "Rust"}, "If-Match", topic["_rev"].(string))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// body _rev is honoured when no header is sent
	rec = tc.do(http.MethodPatch, path, map[string]any{"topic_text": "Zig", "_rev": topic["_rev"]})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_Relations(t *testing.T) {
	tc := newTestClient(t)

	a := tc.create("/api/student", map[string]any{"student_name": "A"})
	b := tc.create("/api/student", map[string]any{"student_name": "B"})
	school := tc.create("/api/school", map[string]any{"school_name": "MIT"})

	rec := tc.do(http.MethodPost, "/api/relation", map[string]any{"_from": a["_id"], "_to": b["_id"], "type": "friend"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	edge := decode[map[string]any](t, rec)
	key := edge["_key"].(string)
	assert.Equal(t, "/api/relation/"+key, rec.Header().Get("Location"))

	// endpoints must match the edge type
	rec = tc.do(http.MethodPost, "/api/relation", map[string]any{"_from": a["_id"], "_to": b["_id"], "type": "studies_in"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = tc.do(http.MethodPost, "/api/relation", map[string]any{"_from": a["_id"], "_to": "Student/nope", "type": "friend"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tc.do(http.MethodPatch, "/api/relation/"+key, map[string]any{"_to": school["_id"], "type": "studies_in"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[map[string]any](t, rec)
	assert.Equal(t, key, patched["_key"])
	assert.Equal(t, a["_id"], patched["_from"])
	assert.Equal(t, school["_id"], patched["_to"])

	rec = tc.do(http.MethodGet, "/api/relation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	// deleting a document takes its edges with it
	rec = tc.do(http.MethodDelete, "/api/school/"+school["_key"].(string), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = tc.do(http.MethodGet, "/api/relation/"+key, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AuthLifecycle(t *testing.T) {
	tc := newTestClient(t)

	rec := tc.do(http.MethodGet, "/api/user/whoami", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false}`, rec.Body.String())

	rec = tc.do(http.MethodPost, "/api/user/signup", map[string]any{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	signup := decode[map[string]any](t, rec)
	assert.Equal(t, true, signup["success"])
	uid := signup["_key"].(string)

	rec = tc.do(http.MethodGet, "/api/user/whoami", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, uid, me["_key"])
	assert.NotContains(t, me, "authData")

	rec = tc.do(http.MethodPost, "/api/user/signup", map[string]any{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = tc.do(http.MethodPost, "/api/user/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = tc.do(http.MethodGet, "/api/user/whoami", nil)
	assert.JSONEq(t, `{"success":false}`, rec.Body.String())

	rec = tc.do(http.MethodPost, "/api/user/login", map[string]any{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = tc.do(http.MethodPost, "/api/user/login", map[string]any{"username": "nobody", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = tc.do(http.MethodPost, "/api/user/login", map[string]any{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uid, decode[map[string]any](t, rec)["_key"])

	rec = tc.do(http.MethodGet, "/api/user/whoami", nil)
	assert.Equal(t, "alice", decode[map[string]any](t, rec)["username"])
}

func TestRouter_UserResourceHidesCredentials(t *testing.T) {
	tc := newTestClient(t)

	user := tc.create("/api/user", map[string]any{"username": "bob", "password": "pw"})
	assert.NotContains(t, user, "authData")
	assert.NotContains(t, user, "password")
	path := "/api/user/" + user["_key"].(string)

	// a rename keeps the stored hash
	rec := tc.do(http.MethodPatch, path, map[string]any{"username": "bobby"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, decode[map[string]any](t, rec), "authData")

	rec = tc.do(http.MethodPost, "/api/user/login", map[string]any{"username": "bobby", "password": "pw"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = tc.do(http.MethodGet, "/api/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, u := range decode[[]map[string]any](t, rec) {
		assert.NotContains(t, u, "authData")
	}

	rec = tc.do(http.MethodPost, "/api/user", map[string]any{"username": "nopw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SocialScenario(t *testing.T) {
	tc := newTestClient(t)

	tc.create("/api/user", map[string]any{"username": "alice", "password": "pw"})
	alice := tc.create("/api/student", map[string]any{"student_name": "Alice"})
	s1 := tc.create("/api/student", map[string]any{"student_name": "S1"})
	s2 := tc.create("/api/student", map[string]any{"student_name": "S2"})

	rec := tc.do(http.MethodPost, "/api/user/set_user_profile", map[string]any{"username": "alice", "student_key": alice["_key"]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	meta := decode[map[string]any](t, rec)["meta"].(map[string]any)
	assert.Equal(t, "points_to", meta["type"])

	rec = tc.do(http.MethodPost, "/api/student/addfriend", map[string]any{"username": "alice", "friend_key": s1["_key"]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = tc.do(http.MethodPost, "/api/student/addfriend", map[string]any{"username": "alice", "friend_key": alice["_key"]})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	tc.do(http.MethodPost, "/api/relation", map[string]any{"_from": s2["_id"], "_to": s1["_id"], "type": "friend"})

	rec = tc.do(http.MethodPost, "/api/student/search", map[string]any{"username": "alice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results := decode[struct {
		Success bool             `json:"success"`
		Result  []map[string]any `json:"result"`
	}](t, rec)
	require.Len(t, results.Result, 2)
	assert.Equal(t, "S2", results.Result[0]["student_name"])
	assert.Equal(t, false, results.Result[0]["isfriend"])
	assert.Len(t, results.Result[0]["mutual"], 1)
	assert.Equal(t, true, results.Result[1]["isfriend"])

	rec = tc.do(http.MethodPost, "/api/student/changeschool", map[string]any{"student_key": alice["_key"], "school_name": "MIT"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	tc.create("/api/school", map[string]any{"school_name": "MIT"})
	rec = tc.do(http.MethodPost, "/api/student/changeschool", map[string]any{"student_key": alice["_key"], "school_name": "MIT"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tc.create("/api/topic", map[string]any{"topic_text": "Go"})
	rec = tc.do(http.MethodPost, "/api/student/changetopics", map[string]any{"student_key": alice["_key"], "topics": []string{"Go"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	post := tc.create("/api/post", map[string]any{"post_text": "hello", "username": "alice"})
	assert.NotContains(t, post, "username")
	comment := tc.create("/api/comment", map[string]any{"comment_text": "hi", "post_key": post["_key"], "username": "alice"})
	assert.NotContains(t, comment, "post_key")

	rec = tc.do(http.MethodPost, "/api/post/likeunlike", map[string]any{"post_id": post["_key"], "username": "alice", "like": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[map[string]any](t, rec)["likes"], 1)
	rec = tc.do(http.MethodPost, "/api/comment/likeunlike", map[string]any{"comment_id": comment["_key"], "username": "alice", "like": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = tc.do(http.MethodPost, "/api/post/getpostdetail", map[string]any{"post_key": post["_key"]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	detail := decode[struct {
		Result graph.PostView `json:"result"`
	}](t, rec)
	assert.Equal(t, "hello", detail.Result.Post["post_text"])
	require.Len(t, detail.Result.Comments, 1)
	assert.Len(t, detail.Result.Comments[0].LikesOnComment, 1)

	rec = tc.do(http.MethodPost, "/api/student/getprofile", map[string]any{"username": "alice", "student_key": alice["_key"]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[struct {
		Result graph.Profile `json:"result"`
	}](t, rec)
	assert.Len(t, profile.Result.Posts, 1)
	assert.Len(t, profile.Result.Topics, 1)
	assert.Len(t, profile.Result.School, 1)

	rec = tc.do(http.MethodPost, "/api/user/get_user_profile", map[string]any{"username": "alice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	userProfile := decode[map[string]any](t, rec)["profile"].(map[string]any)
	assert.Equal(t, "MIT", userProfile["school"].(map[string]any)["school_name"])

	rec = tc.do(http.MethodPost, "/api/user/getStudent", map[string]any{"username": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice["_key"], decode[map[string]any](t, rec)["result"].(map[string]any)["_key"])

	// deleting the post removes its comments
	rec = tc.do(http.MethodDelete, "/api/post/"+post["_key"].(string), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = tc.do(http.MethodGet, "/api/comment/"+comment["_key"].(string), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tc.do(http.MethodPost, "/api/student/unfriend", map[string]any{"username": "alice", "friend_key": s1["_key"]})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"result":{"removed":1}}`, rec.Body.String())

	rec = tc.do(http.MethodPost, "/api/student/search", map[string]any{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	tc := newTestClient(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/school", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	tc.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
