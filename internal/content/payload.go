package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the cached content of a resource. Each content type has its own
// variant with declared fields; the store rejects a payload whose kind does
// not match the resource's content type.
type Payload interface {
	Kind() ContentType
	Validate() error
}

// ArticleContent is the payload of a pubmed article.
type ArticleContent struct {
	Abstract  string   `json:"abstract,omitempty"`
	Journal   string   `json:"journal,omitempty"`
	Year      string   `json:"year,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	MeshTerms []string `json:"mesh_terms,omitempty"`
	URL       string   `json:"url,omitempty"`
}

func (*ArticleContent) Kind() ContentType { return TypeArticle }

func (*ArticleContent) Validate() error { return nil }

// ChapterRef is one entry in a textbook's chapter list.
type ChapterRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TextbookContent is the payload of a whole bookshelf book.
type TextbookContent struct {
	Publisher       string       `json:"publisher,omitempty"`
	Authors         []string     `json:"authors,omitempty"`
	PublicationYear string       `json:"publication_year,omitempty"`
	Chapters        []ChapterRef `json:"chapters,omitempty"`
	URL             string       `json:"url,omitempty"`
}

func (*TextbookContent) Kind() ContentType { return TypeTextbook }

func (*TextbookContent) Validate() error { return nil }

// Section is a titled block of chapter text.
type Section struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChapterContent is the payload of a single bookshelf chapter.
type ChapterContent struct {
	BookID    string    `json:"book_id"`
	ChapterID string    `json:"chapter_id"`
	Sections  []Section `json:"sections,omitempty"`
	URL       string    `json:"url,omitempty"`
}

func (*ChapterContent) Kind() ContentType { return TypeChapter }

func (c *ChapterContent) Validate() error {
	if c.BookID == "" || c.ChapterID == "" {
		return fmt.Errorf("chapter payload requires book_id and chapter_id")
	}
	return nil
}

// DocumentContent is the payload of a user-provided document.
type DocumentContent struct {
	Content    string    `json:"content"`
	UploadDate time.Time `json:"upload_date,omitempty"`
}

func (*DocumentContent) Kind() ContentType { return TypeDocument }

func (d *DocumentContent) Validate() error {
	if d.Content == "" {
		return fmt.Errorf("document payload requires content")
	}
	return nil
}

// DecodePayload unmarshals a serialized payload into the variant matching the
// given content type. Empty input yields a nil payload.
func DecodePayload(t ContentType, data []byte) (Payload, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var p Payload
	switch t {
	case TypeArticle:
		p = &ArticleContent{}
	case TypeTextbook:
		p = &TextbookContent{}
	case TypeChapter:
		p = &ChapterContent{}
	case TypeDocument:
		p = &DocumentContent{}
	default:
		return nil, fmt.Errorf("no payload variant for content type %q", t)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", t, err)
	}
	return p, nil
}
