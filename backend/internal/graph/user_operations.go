package graph

import (
	"context"

	"go.uber.org/zap"

	"student-connect/backend/internal/store"
)

// ============================================================================
// User Operations
// ============================================================================

// FindUser resolves a login account by username
func (r *Repository) FindUser(ctx context.Context, username string) (store.Document, error) {
	return findUser(ctx, r.store, username)
}

// UserStudent returns the student linked to username, or nil when the user
// has no profile yet.
func (r *Repository) UserStudent(ctx context.Context, username string) (*store.Document, error) {
	student, ok, err := linkedStudent(ctx, r.store, username)
	if err != nil || !ok {
		return nil, err
	}
	return &student, nil
}

// UserProfile returns the linked student merged with its school and topics,
// or nil when the user has no profile yet.
func (r *Repository) UserProfile(ctx context.Context, username string) (map[string]any, error) {
	student, ok, err := linkedStudent(ctx, r.store, username)
	if err != nil || !ok {
		return nil, err
	}

	schools, err := outbound(ctx, r.store, student.ID(), store.StudiesIn)
	if err != nil {
		return nil, err
	}
	topics, err := outbound(ctx, r.store, student.ID(), store.InterestedIn)
	if err != nil {
		return nil, err
	}

	profile := student.JSON()
	profile["school"] = nil
	if len(schools) > 0 {
		profile["school"] = schools[0].JSON()
	}
	profile["topics"] = docsJSON(topics)
	return profile, nil
}

// SetUserProfile links username to the student studentKey, replacing any
// previous link.
func (r *Repository) SetUserProfile(ctx context.Context, username, studentKey string) (store.Edge, error) {
	var edge store.Edge
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		user, err := findUser(ctx, tx, username)
		if err != nil {
			return err
		}
		student, err := tx.Get(ctx, store.Students, studentKey)
		if err != nil {
			return err
		}

		old, err := tx.Edges(ctx, store.EdgeQuery{From: user.ID(), Type: store.PointsTo})
		if err != nil {
			return err
		}
		for _, e := range old {
			if err := tx.RemoveEdge(ctx, e.Key); err != nil {
				return err
			}
		}

		edge, err = tx.InsertEdge(ctx, store.Edge{From: user.ID(), To: student.ID(), Type: store.PointsTo})
		return err
	})
	if err != nil {
		return store.Edge{}, err
	}

	r.logger.Info("User profile linked",
		zap.String("username", username),
		zap.String("student", studentKey),
	)
	return edge, nil
}
