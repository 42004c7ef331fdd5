package models

// NewPost is the body accepted when creating a post. Username names the
// author whose linked student receives the makes_post edge.
type NewPost struct {
	Post
	Username string `json:"username"`
}

// NewComment is the body accepted when creating a comment on a post
type NewComment struct {
	Comment
	PostKey  string `json:"post_key" binding:"required"`
	Username string `json:"username"`
}

// Credentials is the body of signup and login
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UsernameRequest is the body of actions scoped to one acting user
type UsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// ChangeSchoolRequest moves a student to the school with the given name
type ChangeSchoolRequest struct {
	SchoolName string `json:"school_name" binding:"required"`
	StudentKey string `json:"student_key" binding:"required"`
}

// ChangeTopicsRequest replaces a student's interests. An empty list clears them.
type ChangeTopicsRequest struct {
	Topics     []string `json:"topics" binding:"required"`
	StudentKey string   `json:"student_key" binding:"required"`
}

// SearchRequest lists candidate friends, optionally filtered by name
type SearchRequest struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name"`
}

// FriendRequest adds or removes a friend of the acting user's student
type FriendRequest struct {
	Username  string `json:"username" binding:"required"`
	FriendKey string `json:"friend_key" binding:"required"`
}

// StudentRequest names a target student relative to the acting user
type StudentRequest struct {
	Username   string `json:"username" binding:"required"`
	StudentKey string `json:"student_key" binding:"required"`
}

// LikePostRequest likes or unlikes a post
type LikePostRequest struct {
	PostID   string `json:"post_id" binding:"required"`
	Username string `json:"username" binding:"required"`
	Like     *bool  `json:"like" binding:"required"`
}

// LikeCommentRequest likes or unlikes a comment
type LikeCommentRequest struct {
	CommentID string `json:"comment_id" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Like      *bool  `json:"like" binding:"required"`
}

// PostDetailRequest fetches one post view
type PostDetailRequest struct {
	PostKey string `json:"post_key" binding:"required"`
}

// RelationInput is the body of relation create and replace
type RelationInput struct {
	From string `json:"_from" binding:"required"`
	To   string `json:"_to" binding:"required"`
	Type string `json:"type" binding:"required"`
}
