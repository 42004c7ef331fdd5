// Package models defines the typed entities stored as documents and the
// request bodies accepted by the API.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"student-connect/backend/internal/store"
)

// Entity is a typed document body bound to one collection.
type Entity interface {
	Collection() store.Collection
}

// Address is a postal address shared by students and schools
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
}

// Student is a student profile
type Student struct {
	Name    string   `json:"student_name" binding:"required"`
	DOB     *Date    `json:"student_DOB,omitempty"`
	Sex     string   `json:"student_sex,omitempty" binding:"omitempty,oneof=M F"`
	Address *Address `json:"student_address,omitempty"`
	Level   string   `json:"student_level,omitempty" binding:"omitempty,oneof=Undergraduate Graduate"`
}

func (Student) Collection() store.Collection { return store.Students }

// School is an institution students study in
type School struct {
	Name    string   `json:"school_name" binding:"required"`
	Address *Address `json:"school_address,omitempty"`
}

func (School) Collection() store.Collection { return store.Schools }

// Topic is a subject or skill students are interested in
type Topic struct {
	Text string `json:"topic_text" binding:"required"`
}

func (Topic) Collection() store.Collection { return store.Topics }

// Post is a status update authored by a student
type Post struct {
	Text string `json:"post_text" binding:"required"`
}

func (Post) Collection() store.Collection { return store.Posts }

// Comment is a reply to a post
type Comment struct {
	Text string `json:"comment_text" binding:"required"`
}

func (Comment) Collection() store.Collection { return store.Comments }

// AuthData is a stored password hash
type AuthData struct {
	Method string `json:"method"`
	Salt   string `json:"salt,omitempty"`
	Hash   string `json:"hash"`
}

// User is a login account. Password is only ever accepted on input and is
// replaced by AuthData before storage.
type User struct {
	Username string    `json:"username" binding:"required"`
	Password string    `json:"password,omitempty"`
	AuthData *AuthData `json:"authData,omitempty"`
}

func (User) Collection() store.Collection { return store.Users }

// Date is a calendar date. It accepts "2006-01-02" or RFC 3339 input and
// always encodes as "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to its calendar date
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)

	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = NewDate(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = NewDate(t)
	return nil
}

// ToFields converts an entity into a document field map
func ToFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding %T: %w", v, err)
	}
	return fields, nil
}

// FromFields decodes a document field map into dst
func FromFields(fields map[string]any, dst any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %T: %w", dst, err)
	}
	return nil
}

// PublicUser returns the wire form of a user document without its hash
func PublicUser(doc store.Document) map[string]any {
	out := doc.JSON()
	delete(out, "authData")
	delete(out, "password")
	return out
}
