package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "content.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(ctx) })
	return s
}

func articleResource(id, title, specialty string, difficulty content.Difficulty) *content.Resource {
	return &content.Resource{
		ID:         id,
		Title:      title,
		Source:     content.SourcePubMed,
		Specialty:  specialty,
		Difficulty: difficulty,
		Type:       content.TypeArticle,
		SourceID:   id[len("pubmed-"):],
		Content: &content.ArticleContent{
			Abstract: "An overview of " + title + ".",
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := articleResource("pubmed-100", "Cardiac Cycle Review", "cardiology", content.DifficultyBasic)
	require.NoError(t, s.Put(ctx, r))

	got, err := s.Get(ctx, "pubmed-100")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cardiac Cycle Review", got.Title)
	assert.Equal(t, content.SourcePubMed, got.Source)
	assert.Equal(t, "cardiology", got.Specialty)

	art, ok := got.Content.(*content.ArticleContent)
	require.True(t, ok)
	assert.Equal(t, "An overview of Cardiac Cycle Review.", art.Abstract)
}

func TestGetUnknownReturnsNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get(context.Background(), "pubmed-does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutPreservesAccessCount(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := articleResource("pubmed-200", "Original", "", "")
	require.NoError(t, s.Put(ctx, r))

	// Bump the counter twice.
	for i := 0; i < 2; i++ {
		_, err := s.Get(ctx, "pubmed-200")
		require.NoError(t, err)
	}

	// Re-put with a new title: metadata replaced, counter untouched.
	updated := articleResource("pubmed-200", "Updated", "", "")
	require.NoError(t, s.Put(ctx, updated))

	got, err := s.Get(ctx, "pubmed-200")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Updated", got.Title)
	assert.Equal(t, int64(3), got.AccessCount, "two prior gets plus this one")
}

func TestGetIncrementsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, articleResource("pubmed-300", "Counter", "", "")))

	const gets = 5
	var last *content.Resource
	for i := 0; i < gets; i++ {
		var err error
		last, err = s.Get(ctx, "pubmed-300")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(gets), last.AccessCount)
}

func TestOpenAppliesPragmasToEveryConnection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// Hold several connections open at once so each is a distinct pool member.
	var conns []*sql.Conn
	for i := 0; i < 3; i++ {
		c, err := s.DB().Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, c)
	}
	for _, c := range conns {
		var timeout int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout)
		require.NoError(t, c.Close())
	}
}

func TestGetConcurrentNeverLosesIncrements(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, articleResource("pubmed-301", "Contended Counter", "", "")))

	const workers = 20
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Get(ctx, "pubmed-301")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Get(ctx, "pubmed-301")
	require.NoError(t, err)
	assert.Equal(t, int64(workers+1), got.AccessCount)
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, articleResource("pubmed-1", "Cardiology Basics", "cardiology", content.DifficultyBasic)))
	require.NoError(t, s.Put(ctx, articleResource("pubmed-2", "Advanced Cardiology", "cardiology", content.DifficultyAdvanced)))
	require.NoError(t, s.Put(ctx, articleResource("pubmed-3", "Neurology Basics", "neurology", content.DifficultyBasic)))

	results, err := s.Search(ctx, Query{Specialty: "cardiology", Difficulty: content.DifficultyBasic})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pubmed-1", results[0].ID)

	results, err = s.Search(ctx, Query{Text: "Cardiology"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchOrdersByPopularity(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, articleResource("pubmed-10", "Renal Physiology A", "nephrology", "")))
	require.NoError(t, s.Put(ctx, articleResource("pubmed-11", "Renal Physiology B", "nephrology", "")))

	// Make B more popular.
	for i := 0; i < 3; i++ {
		_, err := s.Get(ctx, "pubmed-11")
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, Query{Text: "Renal"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "pubmed-11", results[0].ID)
	assert.Equal(t, "pubmed-10", results[1].ID)
}

func TestSearchLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, id := range []string{"pubmed-20", "pubmed-21", "pubmed-22"} {
		require.NoError(t, s.Put(ctx, articleResource(id, "Hepatic Function", "", "")))
	}

	results, err := s.Search(ctx, Query{Text: "Hepatic", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestUserDocumentMirror(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	doc := &content.UserDocument{
		ID:         content.NewUserDocID(),
		Title:      "Pharmacology Notes",
		Content:    "Beta blockers reduce heart rate and contractility.",
		UploadDate: time.Now().UTC(),
	}
	require.NoError(t, s.PutUserDocument(ctx, doc))

	got, err := s.GetUserDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Content, got.Content)

	// The mirror is searchable and retrievable like any resource.
	mirror, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, mirror)
	assert.Equal(t, doc.Title, mirror.Title)
	assert.Equal(t, content.SourceUserProvided, mirror.Source)
	assert.Equal(t, content.TypeDocument, mirror.Type)

	results, err := s.Search(ctx, Query{Text: "Beta blockers"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, doc.ID, results[0].ID)
}

func TestGetUserDocumentUnknownReturnsNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetUserDocument(context.Background(), "user-doc-missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutRejectsInvalidResource(t *testing.T) {
	s := openTestStore(t)

	err := s.Put(context.Background(), &content.Resource{ID: "pubmed-x"})
	assert.Error(t, err)
}
