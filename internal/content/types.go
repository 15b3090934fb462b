package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SourceType identifies the origin of a resource.
type SourceType string

const (
	SourcePubMed       SourceType = "pubmed"
	SourceBookshelf    SourceType = "bookshelf"
	SourceUserProvided SourceType = "user_provided"
)

// ContentType identifies the shape of a resource's cached content.
type ContentType string

const (
	TypeArticle  ContentType = "article"
	TypeTextbook ContentType = "textbook"
	TypeChapter  ContentType = "chapter"
	TypeDocument ContentType = "document"
)

// Difficulty is an optional grading of a resource. The empty string means unset.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty validates a difficulty string from an external caller.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case "", DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// ParseContentType validates a content type string from an external caller.
// The empty string is accepted and means "no filter".
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case "", TypeArticle, TypeTextbook, TypeChapter, TypeDocument:
		return ContentType(s), nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// Resource is the canonical content unit tracked by the store. ID is globally
// unique and derived deterministically from the resource's origin (see id.go).
// Content is nil for metadata-only records that have not been detail-fetched.
type Resource struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Source      SourceType  `json:"source_type"`
	Specialty   string      `json:"specialty,omitempty"`
	Difficulty  Difficulty  `json:"difficulty,omitempty"`
	Type        ContentType `json:"content_type"`
	SourceID    string      `json:"source_id,omitempty"`
	Content     Payload     `json:"cached_content,omitempty"`
	LastUpdated time.Time   `json:"last_updated"`
	AccessCount int64       `json:"access_count"`
}

// UnmarshalJSON decodes a resource, resolving the payload variant from the
// content_type field. Payload is an interface, so the default decoder cannot
// fill it; the raw bytes are held back and decoded once the type is known.
func (r *Resource) UnmarshalJSON(data []byte) error {
	type plain Resource
	aux := struct {
		*plain
		Content json.RawMessage `json:"cached_content"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Content) == 0 || bytes.Equal(aux.Content, []byte("null")) {
		r.Content = nil
		return nil
	}
	payload, err := DecodePayload(r.Type, aux.Content)
	if err != nil {
		return err
	}
	r.Content = payload
	return nil
}

// Validate checks the invariants the store enforces on write.
func (r *Resource) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("resource id is required")
	}
	if r.Title == "" {
		return fmt.Errorf("resource %s: title is required", r.ID)
	}
	switch r.Source {
	case SourcePubMed, SourceBookshelf, SourceUserProvided:
	default:
		return fmt.Errorf("resource %s: unknown source type %q", r.ID, r.Source)
	}
	switch r.Type {
	case TypeArticle, TypeTextbook, TypeChapter, TypeDocument:
	default:
		return fmt.Errorf("resource %s: unknown content type %q", r.ID, r.Type)
	}
	if r.Content != nil {
		if r.Content.Kind() != r.Type {
			return fmt.Errorf("resource %s: %s payload on %s resource", r.ID, r.Content.Kind(), r.Type)
		}
		if err := r.Content.Validate(); err != nil {
			return fmt.Errorf("resource %s: %w", r.ID, err)
		}
	}
	return nil
}

// TopicMapping is a directed edge from a topic to its parent topic. The edge
// set may contain cycles; nothing enforces acyclicity.
type TopicMapping struct {
	Topic       string `json:"topic"`
	ParentTopic string `json:"parent_topic"`
	Specialty   string `json:"specialty,omitempty"`
	Description string `json:"description,omitempty"`
}

// UserDocument is an uploaded document. Every document is mirrored into the
// resource store as a document-type Resource with the same id and title.
type UserDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	UploadDate time.Time `json:"upload_date"`
}

// AsResource builds the store mirror of the document.
func (d *UserDocument) AsResource() *Resource {
	return &Resource{
		ID:     d.ID,
		Title:  d.Title,
		Source: SourceUserProvided,
		Type:   TypeDocument,
		Content: &DocumentContent{
			Content:    d.Content,
			UploadDate: d.UploadDate,
		},
	}
}
