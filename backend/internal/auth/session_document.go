package auth

import (
	"context"
	"fmt"
	"time"

	"student-connect/backend/internal/models"
	"student-connect/backend/internal/store"
	apperrors "student-connect/backend/pkg/errors"
)

// DocumentSessionStore keeps sessions in the Session collection of the
// document store, keyed by session id.
type DocumentSessionStore struct {
	store store.Store
}

// NewDocumentSessionStore creates a session store backed by st
func NewDocumentSessionStore(st store.Store) *DocumentSessionStore {
	return &DocumentSessionStore{store: st}
}

func (d *DocumentSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	doc, err := d.store.Get(ctx, store.Sessions, id)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := models.FromFields(doc.Fields, &s); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	s.ID = doc.Key

	if s.expired(time.Now()) {
		_ = d.Delete(ctx, id)
		return nil, nil
	}
	return &s, nil
}

func (d *DocumentSessionStore) Save(ctx context.Context, s *Session) error {
	fields, err := models.ToFields(s)
	if err != nil {
		return err
	}
	delete(fields, "id")

	doc := store.Document{Collection: store.Sessions, Key: s.ID, Fields: fields}
	_, err = d.store.Replace(ctx, doc, "")
	if apperrors.IsNotFound(err) {
		_, err = d.store.Insert(ctx, doc)
	}
	return err
}

func (d *DocumentSessionStore) Delete(ctx context.Context, id string) error {
	err := d.store.Remove(ctx, store.Sessions, id)
	if apperrors.IsNotFound(err) {
		return nil
	}
	return err
}
