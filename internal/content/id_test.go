package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want ResourceRef
	}{
		{
			name: "pubmed article",
			id:   "pubmed-12345678",
			want: ResourceRef{Source: SourcePubMed, SourceID: "12345678"},
		},
		{
			name: "whole book",
			id:   "bookshelf-NBK430685",
			want: ResourceRef{Source: SourceBookshelf, SourceID: "NBK430685"},
		},
		{
			name: "book chapter",
			id:   "bookshelf-NBK430685-ch3",
			want: ResourceRef{Source: SourceBookshelf, SourceID: "NBK430685", ChapterID: "ch3"},
		},
		{
			name: "user document",
			id:   "user-doc-8b7d2f1a-3c4e-4d5f-9a6b-7c8d9e0f1a2b",
			want: ResourceRef{Source: SourceUserProvided, SourceID: "user-doc-8b7d2f1a-3c4e-4d5f-9a6b-7c8d9e0f1a2b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDMalformed(t *testing.T) {
	for _, id := range []string{
		"",
		"pubmed-",
		"bookshelf-",
		"bookshelf--ch3",
		"bookshelf-NBK123-",
		"user-doc-",
		"scopus-99999",
		"12345678",
	} {
		t.Run(id, func(t *testing.T) {
			_, err := ParseID(id)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedID), "want ErrMalformedID, got %v", err)
		})
	}
}

func TestCanonicalIDRoundTrip(t *testing.T) {
	for _, id := range []string{
		"pubmed-31978945",
		"bookshelf-NBK535419",
		"bookshelf-NBK535419-sec2",
		NewUserDocID(),
	} {
		ref, err := ParseID(id)
		require.NoError(t, err)
		assert.Equal(t, id, ref.CanonicalID())
	}
}

func TestNewUserDocID(t *testing.T) {
	a := NewUserDocID()
	b := NewUserDocID()

	assert.True(t, strings.HasPrefix(a, "user-doc-"))
	assert.NotEqual(t, a, b, "generated ids must be unique")

	ref, err := ParseID(a)
	require.NoError(t, err)
	assert.Equal(t, SourceUserProvided, ref.Source)
}

func TestResourceValidate(t *testing.T) {
	valid := Resource{
		ID:     "pubmed-1",
		Title:  "Cardiac Physiology",
		Source: SourcePubMed,
		Type:   TypeArticle,
		Content: &ArticleContent{
			Abstract: "The cardiac cycle describes the sequence of events in one heartbeat.",
		},
	}
	require.NoError(t, valid.Validate())

	mismatched := valid
	mismatched.Content = &DocumentContent{Content: "notes"}
	assert.Error(t, mismatched.Validate(), "payload kind must match content type")

	untitled := valid
	untitled.Title = ""
	assert.Error(t, untitled.Validate())

	badSource := valid
	badSource.Source = "scopus"
	assert.Error(t, badSource.Validate())
}

func TestDecodePayload(t *testing.T) {
	payload, err := DecodePayload(TypeChapter, []byte(`{"book_id":"NBK1","chapter_id":"ch2","sections":[{"title":"Overview","content":"text"}]}`))
	require.NoError(t, err)

	ch, ok := payload.(*ChapterContent)
	require.True(t, ok)
	assert.Equal(t, "NBK1", ch.BookID)
	assert.Equal(t, "ch2", ch.ChapterID)
	require.Len(t, ch.Sections, 1)
	assert.Equal(t, "Overview", ch.Sections[0].Title)

	_, err = DecodePayload("widget", []byte(`{}`))
	assert.Error(t, err)
}
