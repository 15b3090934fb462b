package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

const bookshelfSearchJSON = `{"esearchresult":{"idlist":["NBK535419"]}}`

const bookshelfBookXML = `<?xml version="1.0"?>
<BookSet>
  <Book>
    <BookId>NBK535419</BookId>
    <BookTitle>Physiology, Cardiac Cycle</BookTitle>
    <Publisher><PublisherName>StatPearls Publishing</PublisherName></Publisher>
    <PubDate><Year>2023</Year></PubDate>
    <AuthorList>
      <Author><LastName>Pollock</LastName><ForeName>Jeremy</ForeName></Author>
    </AuthorList>
    <Chapter><ChapterId>introduction</ChapterId><ChapterTitle>Introduction</ChapterTitle></Chapter>
    <Chapter><ChapterId>mechanism</ChapterId><ChapterTitle>Mechanism</ChapterTitle></Chapter>
  </Book>
</BookSet>`

const bookshelfChapterXML = `<?xml version="1.0"?>
<ChapterSet>
  <Chapter>
    <ChapterId>mechanism</ChapterId>
    <ChapterTitle>Mechanism</ChapterTitle>
    <Section>
      <SectionTitle>Phases of the Cardiac Cycle</SectionTitle>
      <Para>The cardiac cycle consists of systole and diastole.</Para>
      <Para>Ventricular filling occurs during diastole.</Para>
    </Section>
    <Section>
      <SectionTitle>Clinical Significance</SectionTitle>
      <Para>Patients with diastolic dysfunction show impaired filling.</Para>
    </Section>
  </Chapter>
</ChapterSet>`

func newBookshelfServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "books", r.URL.Query().Get("db"))
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			w.Write([]byte(bookshelfSearchJSON))
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			if strings.Contains(r.URL.Query().Get("id"), ".") {
				w.Write([]byte(bookshelfChapterXML))
			} else {
				w.Write([]byte(bookshelfBookXML))
			}
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestBookshelfSearch(t *testing.T) {
	srv := newBookshelfServer(t)
	defer srv.Close()

	a := NewBookshelf(Config{BaseURL: srv.URL})
	results, err := a.Search(context.Background(), "cardiac cycle", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)

	book := results[0]
	assert.Equal(t, "bookshelf-NBK535419", book.ID)
	assert.Equal(t, "Physiology, Cardiac Cycle", book.Title)
	assert.Equal(t, content.SourceBookshelf, book.Source)
	assert.Equal(t, content.TypeTextbook, book.Type)

	tb, ok := book.Content.(*content.TextbookContent)
	require.True(t, ok)
	assert.Equal(t, "StatPearls Publishing", tb.Publisher)
	assert.Equal(t, "2023", tb.PublicationYear)
	assert.Equal(t, []string{"Jeremy Pollock"}, tb.Authors)
	require.Len(t, tb.Chapters, 2)
	assert.Equal(t, content.ChapterRef{ID: "introduction", Title: "Introduction"}, tb.Chapters[0])
}

func TestBookshelfFetchWholeBook(t *testing.T) {
	srv := newBookshelfServer(t)
	defer srv.Close()

	a := NewBookshelf(Config{BaseURL: srv.URL})
	r, err := a.FetchDetail(context.Background(), content.ResourceRef{
		Source: content.SourceBookshelf, SourceID: "NBK535419",
	})
	require.NoError(t, err)
	assert.Equal(t, "bookshelf-NBK535419", r.ID)
	assert.Equal(t, content.TypeTextbook, r.Type)
}

func TestBookshelfFetchChapter(t *testing.T) {
	var requestedID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedID = r.URL.Query().Get("id")
		w.Write([]byte(bookshelfChapterXML))
	}))
	defer srv.Close()

	a := NewBookshelf(Config{BaseURL: srv.URL})
	r, err := a.FetchDetail(context.Background(), content.ResourceRef{
		Source: content.SourceBookshelf, SourceID: "NBK535419", ChapterID: "mechanism",
	})
	require.NoError(t, err)

	assert.Equal(t, "NBK535419.mechanism", requestedID, "chapters are addressed as book.chapter")
	assert.Equal(t, "bookshelf-NBK535419-mechanism", r.ID)
	assert.Equal(t, "Mechanism", r.Title)
	assert.Equal(t, content.TypeChapter, r.Type)

	ch, ok := r.Content.(*content.ChapterContent)
	require.True(t, ok)
	assert.Equal(t, "NBK535419", ch.BookID)
	assert.Equal(t, "mechanism", ch.ChapterID)
	require.Len(t, ch.Sections, 2)
	assert.Equal(t, "Phases of the Cardiac Cycle", ch.Sections[0].Title)
	assert.Equal(t,
		"The cardiac cycle consists of systole and diastole.\n\nVentricular filling occurs during diastole.",
		ch.Sections[0].Content)
}

func TestBookshelfChapterNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><ChapterSet></ChapterSet>`))
	}))
	defer srv.Close()

	a := NewBookshelf(Config{BaseURL: srv.URL})
	_, err := a.FetchDetail(context.Background(), content.ResourceRef{
		Source: content.SourceBookshelf, SourceID: "NBK1", ChapterID: "missing",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, content.ErrNotFound))
}

func TestBookshelfBookNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><BookSet></BookSet>`))
	}))
	defer srv.Close()

	a := NewBookshelf(Config{BaseURL: srv.URL})
	_, err := a.FetchDetail(context.Background(), content.ResourceRef{
		Source: content.SourceBookshelf, SourceID: "NBK0",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, content.ErrNotFound))
}
