package graph

import (
	"context"

	"go.uber.org/zap"

	"student-connect/backend/internal/store"
)

// ============================================================================
// Student Operations
// ============================================================================

// ChangeSchool moves a student to the school named schoolName, leaving
// exactly one studies_in edge. The previous edge's key is reused.
func (r *Repository) ChangeSchool(ctx context.Context, studentKey, schoolName string) (store.Edge, error) {
	var edge store.Edge
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		student, err := tx.Get(ctx, store.Students, studentKey)
		if err != nil {
			return err
		}
		school, err := tx.FindFirst(ctx, store.Schools, "school_name", schoolName)
		if err != nil {
			return err
		}

		old, err := tx.Edges(ctx, store.EdgeQuery{From: student.ID(), Type: store.StudiesIn})
		if err != nil {
			return err
		}
		next := store.Edge{From: student.ID(), To: school.ID(), Type: store.StudiesIn}
		for i, e := range old {
			if err := tx.RemoveEdge(ctx, e.Key); err != nil {
				return err
			}
			if i == 0 {
				next.Key = e.Key
			}
		}

		edge, err = tx.InsertEdge(ctx, next)
		return err
	})
	if err != nil {
		return store.Edge{}, err
	}

	r.logger.Info("School changed",
		zap.String("student", studentKey),
		zap.String("school", edge.To),
	)
	return edge, nil
}

// ChangeTopics replaces a student's interests. Every topic name is resolved
// before anything is removed; old edges are then removed best-effort and one
// edge is inserted per distinct topic.
func (r *Repository) ChangeTopics(ctx context.Context, studentKey string, topics []string) (TopicsChange, error) {
	var change TopicsChange
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		student, err := tx.Get(ctx, store.Students, studentKey)
		if err != nil {
			return err
		}

		resolved := make([]store.Document, 0, len(topics))
		seen := map[string]bool{}
		for _, name := range topics {
			topic, err := tx.FindFirst(ctx, store.Topics, "topic_text", name)
			if err != nil {
				return err
			}
			if seen[topic.Key] {
				continue
			}
			seen[topic.Key] = true
			resolved = append(resolved, topic)
		}

		old, err := tx.Edges(ctx, store.EdgeQuery{From: student.ID(), Type: store.InterestedIn})
		if err != nil {
			return err
		}
		change.Removed, change.Failed = removeEdges(ctx, tx, old)

		change.Edges = make([]map[string]any, 0, len(resolved))
		for _, topic := range resolved {
			edge, err := tx.InsertEdge(ctx, store.Edge{From: student.ID(), To: topic.ID(), Type: store.InterestedIn})
			if err != nil {
				return err
			}
			change.Edges = append(change.Edges, edge.JSON())
		}
		return nil
	})
	if err != nil {
		return TopicsChange{}, err
	}

	if change.Failed > 0 {
		r.logger.Warn("Some topic edges could not be removed",
			zap.String("student", studentKey),
			zap.Int("failed", change.Failed),
		)
	}
	r.logger.Info("Topics changed",
		zap.String("student", studentKey),
		zap.Int("removed", change.Removed),
		zap.Int("added", len(change.Edges)),
	)
	return change, nil
}

// Profile assembles a student's page relative to the acting user. A user
// without a linked student sees no mutual friends.
func (r *Repository) Profile(ctx context.Context, username, studentKey string) (Profile, error) {
	student, err := r.store.Get(ctx, store.Students, studentKey)
	if err != nil {
		return Profile{}, err
	}
	me, linked, err := linkedStudent(ctx, r.store, username)
	if err != nil {
		return Profile{}, err
	}

	profile := Profile{
		Mutual:  []map[string]any{},
		Student: student.JSON(),
	}
	if linked {
		mutual, err := mutualFriends(ctx, r.store, me.ID(), student.ID())
		if err != nil {
			return Profile{}, err
		}
		profile.Mutual = docsJSON(mutual)

		profile.IsFriend, err = hasEdge(ctx, r.store, me.ID(), student.ID(), store.Friend)
		if err != nil {
			return Profile{}, err
		}
	}

	school, err := outbound(ctx, r.store, student.ID(), store.StudiesIn)
	if err != nil {
		return Profile{}, err
	}
	profile.School = docsJSON(school)

	topics, err := outbound(ctx, r.store, student.ID(), store.InterestedIn)
	if err != nil {
		return Profile{}, err
	}
	profile.Topics = docsJSON(topics)

	profile.Posts, err = postsOf(ctx, r.store, student)
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}
