package graph

import (
	"context"
	"sort"
	"strings"

	"student-connect/backend/internal/store"
)

// ============================================================================
// Search Operations
// ============================================================================

// Search lists every student except the acting user's own, optionally
// filtered by a case-insensitive substring of student_name. Each result
// carries the friends it shares with the searcher and whether the searcher
// already befriended it. Non-friends come first, then by mutual count
// descending; ties keep insertion order.
func (r *Repository) Search(ctx context.Context, username, name string) ([]SearchResult, error) {
	me, linked, err := linkedStudent(ctx, r.store, username)
	if err != nil {
		return nil, err
	}

	students, err := r.store.All(ctx, store.Students)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.Document, len(students))
	for _, s := range students {
		byID[s.ID()] = s
	}

	// One scan of the friend edges builds the whole adjacency
	edges, err := r.store.Edges(ctx, store.EdgeQuery{Type: store.Friend})
	if err != nil {
		return nil, err
	}
	friends := map[string]map[string]bool{}
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		if friends[e.From] == nil {
			friends[e.From] = map[string]bool{}
		}
		friends[e.From][e.To] = true
	}

	var myFriends map[string]bool
	if linked {
		myFriends = friends[me.ID()]
	}

	needle := strings.ToLower(name)
	results := []SearchResult{}
	seen := map[string]bool{}
	for _, st := range students {
		id := st.ID()
		if linked && id == me.ID() {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(st.String("student_name")), needle) {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		mutual := []map[string]any{}
		for fid := range friends[id] {
			if !myFriends[fid] {
				continue
			}
			if doc, ok := byID[fid]; ok {
				mutual = append(mutual, doc.JSON())
			}
		}
		sort.Slice(mutual, func(i, j int) bool {
			return mutual[i][store.IDField].(string) < mutual[j][store.IDField].(string)
		})

		results = append(results, SearchResult{
			Student:  st,
			Mutual:   mutual,
			IsFriend: myFriends[id],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].IsFriend != results[j].IsFriend {
			return !results[i].IsFriend
		}
		return len(results[i].Mutual) > len(results[j].Mutual)
	})
	return results, nil
}
