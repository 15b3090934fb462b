package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// BookshelfAdapter searches and fetches textbook content through the NCBI
// E-utilities books database. Detail fetches cover whole books (chapter
// lists) and single chapters (section text), routed by the canonical id.
type BookshelfAdapter struct {
	*eutilsClient
}

// NewBookshelf creates a Bookshelf adapter.
func NewBookshelf(cfg Config) *BookshelfAdapter {
	return &BookshelfAdapter{eutilsClient: newEUtilsClient(cfg)}
}

// Source implements Adapter.
func (a *BookshelfAdapter) Source() content.SourceType { return content.SourceBookshelf }

// Search finds up to max books matching query.
func (a *BookshelfAdapter) Search(ctx context.Context, query string, max int) ([]content.Resource, error) {
	if max <= 0 {
		return nil, nil
	}

	body, err := a.get(ctx, "esearch.fcgi", url.Values{
		"db":      {"books"},
		"term":    {query},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(max)},
	})
	if err != nil {
		return nil, err
	}

	var sr esearchResult
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: decoding esearch response: %v", content.ErrAdapterUnavailable, err)
	}
	ids := sr.ESearchResult.IDList
	if len(ids) == 0 {
		return nil, nil
	}

	books, err := a.fetchBooks(ctx, strings.Join(ids, ","))
	if err != nil {
		return nil, err
	}

	resources := make([]content.Resource, 0, len(books))
	for _, b := range books {
		if b.ID == "" {
			continue
		}
		resources = append(resources, *b.toResource())
	}
	return resources, nil
}

// FetchDetail fetches a whole book or, when ref carries a chapter id, a
// single chapter.
func (a *BookshelfAdapter) FetchDetail(ctx context.Context, ref content.ResourceRef) (*content.Resource, error) {
	if ref.ChapterID != "" {
		return a.fetchChapter(ctx, ref.SourceID, ref.ChapterID)
	}

	books, err := a.fetchBooks(ctx, ref.SourceID)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 || books[0].ID == "" {
		return nil, fmt.Errorf("%w: bookshelf book %s", content.ErrNotFound, ref.SourceID)
	}
	return books[0].toResource(), nil
}

func (a *BookshelfAdapter) fetchBooks(ctx context.Context, ids string) ([]bookshelfBook, error) {
	body, err := a.get(ctx, "efetch.fcgi", url.Values{
		"db":      {"books"},
		"id":      {ids},
		"retmode": {"xml"},
	})
	if err != nil {
		return nil, err
	}

	var set bookshelfBookSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("%w: decoding efetch response: %v", content.ErrAdapterUnavailable, err)
	}
	return set.Books, nil
}

func (a *BookshelfAdapter) fetchChapter(ctx context.Context, bookID, chapterID string) (*content.Resource, error) {
	// Chapter records are addressed as <book>.<chapter> in the books db.
	body, err := a.get(ctx, "efetch.fcgi", url.Values{
		"db":      {"books"},
		"id":      {bookID + "." + chapterID},
		"retmode": {"xml"},
	})
	if err != nil {
		return nil, err
	}

	var set bookshelfChapterSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("%w: decoding efetch response: %v", content.ErrAdapterUnavailable, err)
	}
	if len(set.Chapters) == 0 {
		return nil, fmt.Errorf("%w: bookshelf chapter %s/%s", content.ErrNotFound, bookID, chapterID)
	}
	ch := set.Chapters[0]

	title := ch.Title
	if title == "" {
		title = "Unknown Chapter"
	}
	sections := make([]content.Section, 0, len(ch.Sections))
	for _, sec := range ch.Sections {
		sections = append(sections, content.Section{
			Title:   sec.Title,
			Content: strings.Join(sec.Paragraphs, "\n\n"),
		})
	}

	return &content.Resource{
		ID:       content.BookshelfChapterID(bookID, chapterID),
		Title:    title,
		Source:   content.SourceBookshelf,
		Type:     content.TypeChapter,
		SourceID: bookID,
		Content: &content.ChapterContent{
			BookID:    bookID,
			ChapterID: chapterID,
			Sections:  sections,
			URL:       fmt.Sprintf("https://www.ncbi.nlm.nih.gov/books/%s/%s/", bookID, chapterID),
		},
	}, nil
}

// E-utilities efetch XML shapes for db=books.

type bookshelfBookSet struct {
	XMLName xml.Name        `xml:"BookSet"`
	Books   []bookshelfBook `xml:"Book"`
}

type bookshelfBook struct {
	ID        string             `xml:"BookId"`
	Title     string             `xml:"BookTitle"`
	Publisher string             `xml:"Publisher>PublisherName"`
	Year      string             `xml:"PubDate>Year"`
	Authors   []bookshelfAuthor  `xml:"AuthorList>Author"`
	Chapters  []bookshelfChapRef `xml:"Chapter"`
}

type bookshelfAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type bookshelfChapRef struct {
	ID    string `xml:"ChapterId"`
	Title string `xml:"ChapterTitle"`
}

type bookshelfChapterSet struct {
	XMLName  xml.Name           `xml:"ChapterSet"`
	Chapters []bookshelfChapter `xml:"Chapter"`
}

type bookshelfChapter struct {
	ID       string             `xml:"ChapterId"`
	Title    string             `xml:"ChapterTitle"`
	Sections []bookshelfSection `xml:"Section"`
}

type bookshelfSection struct {
	Title      string   `xml:"SectionTitle"`
	Paragraphs []string `xml:"Para"`
}

func (b *bookshelfBook) toResource() *content.Resource {
	title := b.Title
	if title == "" {
		title = "Unknown Title"
	}
	publisher := b.Publisher
	if publisher == "" {
		publisher = "Unknown Publisher"
	}

	authors := make([]string, 0, len(b.Authors))
	for _, au := range b.Authors {
		if au.LastName == "" {
			continue
		}
		name := au.LastName
		if au.ForeName != "" {
			name = au.ForeName + " " + name
		}
		authors = append(authors, name)
	}

	chapters := make([]content.ChapterRef, 0, len(b.Chapters))
	for _, ch := range b.Chapters {
		if ch.ID == "" {
			continue
		}
		chapters = append(chapters, content.ChapterRef{ID: ch.ID, Title: ch.Title})
	}

	return &content.Resource{
		ID:       content.BookshelfID(b.ID),
		Title:    title,
		Source:   content.SourceBookshelf,
		Type:     content.TypeTextbook,
		SourceID: b.ID,
		Content: &content.TextbookContent{
			Publisher:       publisher,
			Authors:         authors,
			PublicationYear: b.Year,
			Chapters:        chapters,
			URL:             fmt.Sprintf("https://www.ncbi.nlm.nih.gov/books/%s/", b.ID),
		},
	}
}
