package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		resource Resource
	}{
		{
			name: "article",
			resource: Resource{
				ID:     "pubmed-31978945",
				Title:  "Cardiac Remodeling",
				Source: SourcePubMed,
				Type:   TypeArticle,
				Content: &ArticleContent{
					Abstract:  "We found reduced ejection fraction.",
					Authors:   []string{"Amara Okafor"},
					MeshTerms: []string{"Ventricular Remodeling"},
				},
				LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				AccessCount: 7,
			},
		},
		{
			name: "chapter",
			resource: Resource{
				ID:     "bookshelf-NBK535419-mechanism",
				Title:  "Cardiac Cycle, Mechanism",
				Source: SourceBookshelf,
				Type:   TypeChapter,
				Content: &ChapterContent{
					BookID:    "NBK535419",
					ChapterID: "mechanism",
					Sections: []Section{
						{Title: "Phases", Content: "Systole and diastole."},
					},
				},
				LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resource)
			require.NoError(t, err)

			var got Resource
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.resource, got)
		})
	}
}

func TestResourceJSONMetadataOnly(t *testing.T) {
	r := Resource{
		ID:     "pubmed-42",
		Title:  "Metadata Only",
		Source: SourcePubMed,
		Type:   TypeArticle,
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got Resource
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Nil(t, got.Content)

	// An explicit null payload decodes the same way.
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pubmed-42","content_type":"article","cached_content":null}`), &got))
	assert.Nil(t, got.Content)
}

func TestResourceJSONUnknownPayloadType(t *testing.T) {
	var got Resource
	err := json.Unmarshal([]byte(`{"id":"x-1","content_type":"poster","cached_content":{"abstract":"y"}}`), &got)
	require.Error(t, err)
}

func TestResourceSliceJSONRoundTrip(t *testing.T) {
	in := []Resource{
		{ID: "pubmed-1", Title: "A", Source: SourcePubMed, Type: TypeArticle,
			Content: &ArticleContent{Abstract: "alpha"}},
		{ID: "bookshelf-NBK1", Title: "B", Source: SourceBookshelf, Type: TypeTextbook,
			Content: &TextbookContent{Publisher: "Test Press"}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var got []Resource
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, in, got)
}
