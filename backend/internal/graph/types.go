package graph

import (
	"student-connect/backend/internal/store"
)

// ============================================================================
// Views
// ============================================================================

// CommentView is a comment with its authors and likers
type CommentView struct {
	Comment        map[string]any   `json:"comment"`
	Student        []map[string]any `json:"student"`
	LikesOnComment []map[string]any `json:"likes_on_comment"`
}

// PostView is a post with its likes, comments and author. Student is nil
// for post details, which are not scoped to an author.
type PostView struct {
	Post        map[string]any   `json:"post"`
	LikesOnPost []map[string]any `json:"likes_on_post"`
	Comments    []CommentView    `json:"comments"`
	Student     map[string]any   `json:"student,omitempty"`
}

// SearchResult is a candidate student annotated relative to the searcher
type SearchResult struct {
	Student  store.Document
	Mutual   []map[string]any
	IsFriend bool
}

// JSON flattens the student with its mutual friends and friend flag
func (s SearchResult) JSON() map[string]any {
	out := s.Student.JSON()
	out["mutual"] = s.Mutual
	out["isfriend"] = s.IsFriend
	return out
}

// Profile is a student page as seen by the acting user
type Profile struct {
	Mutual   []map[string]any `json:"mutual"`
	IsFriend bool             `json:"isfriend"`
	School   []map[string]any `json:"school"`
	Posts    []PostView       `json:"posts"`
	Topics   []map[string]any `json:"topics"`
	Student  map[string]any   `json:"student"`
}

// TopicsChange reports the outcome of replacing a student's interests
type TopicsChange struct {
	Removed int              `json:"removed"`
	Failed  int              `json:"failed"`
	Edges   []map[string]any `json:"edges"`
}

// ============================================================================
// Edge kinds
// ============================================================================

// edgeKind fixes the collections an edge type may connect
type edgeKind struct {
	from store.Collection
	to   store.Collection
}

var edgeKinds = map[store.EdgeType]edgeKind{
	store.PointsTo:       {store.Users, store.Students},
	store.Friend:         {store.Students, store.Students},
	store.StudiesIn:      {store.Students, store.Schools},
	store.InterestedIn:   {store.Students, store.Topics},
	store.MakesPost:      {store.Students, store.Posts},
	store.PostHasComment: {store.Posts, store.Comments},
	store.MakesComment:   {store.Students, store.Comments},
	store.LikesPost:      {store.Students, store.Posts},
	store.LikesComment:   {store.Students, store.Comments},
}

// EdgeTypes lists every known edge type
func EdgeTypes() []store.EdgeType {
	return []store.EdgeType{
		store.PointsTo,
		store.Friend,
		store.StudiesIn,
		store.InterestedIn,
		store.MakesPost,
		store.PostHasComment,
		store.MakesComment,
		store.LikesPost,
		store.LikesComment,
	}
}

func docsJSON(docs []store.Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.JSON())
	}
	return out
}
