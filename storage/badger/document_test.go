package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

func setupDocumentRepo(t *testing.T) (storage.DocumentRepository, storage.ChunkRepository) {
	t.Helper()
	docRepo, chunkRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docRepo.Close()
		backend.Close()
	})
	return docRepo, chunkRepo
}

func makeDoc(title, subject, grade, docType, content string, createdAt time.Time) *core.Document {
	return &core.Document{
		Title:            title,
		Subject:          subject,
		Grade:            grade,
		DocumentType:     docType,
		ExtractedContent: content,
		UploadedBy:       "mwalimu",
		CreatedAt:        createdAt,
	}
}

func TestDocumentRepository_AddAndGet(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	ctx := context.Background()

	doc := makeDoc("Fractions", "Mathematics", "Grade 5", "notes", "Adding fractions step by step.", time.Time{})

	added, err := repo.AddDocuments(ctx, doc)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotZero(t, added[0].Id)
	assert.False(t, added[0].CreatedAt.IsZero())
	assert.NotZero(t, added[0].ContentHash)

	got, err := repo.GetDocument(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Fractions", got.Title)
	assert.Equal(t, "Mathematics", got.Subject)
}

func TestDocumentRepository_GetMissing(t *testing.T) {
	repo, _ := setupDocumentRepo(t)

	_, err := repo.GetDocument(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_DuplicateContent(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	ctx := context.Background()

	_, err := repo.AddDocuments(ctx, makeDoc("First", "Science", "Grade 4", "notes", "identical body", time.Time{}))
	require.NoError(t, err)

	_, err = repo.AddDocuments(ctx, makeDoc("Second", "Science", "Grade 4", "notes", "identical body", time.Time{}))
	assert.ErrorIs(t, err, storage.ErrDuplicateContent)
}

func TestDocumentRepository_GetByContentHash(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	ctx := context.Background()

	doc := makeDoc("Hashed", "English", "Grade 6", "exam", "unique exam body", time.Time{})
	added, err := repo.AddDocuments(ctx, doc)
	require.NoError(t, err)

	got, err := repo.GetDocumentByContentHash(ctx, added[0].ContentHash)
	require.NoError(t, err)
	assert.Equal(t, added[0].Id, got.Id)

	_, err = repo.GetDocumentByContentHash(ctx, core.IDFromContent("never stored"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_Update(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	ctx := context.Background()

	added, err := repo.AddDocuments(ctx, makeDoc("Draft", "Kiswahili", "Grade 3", "notes", "first draft", time.Time{}))
	require.NoError(t, err)
	doc := added[0]

	doc.Title = "Final"
	doc.ExtractedContent = "second draft"
	updated, err := repo.UpdateDocuments(ctx, doc)
	require.NoError(t, err)
	assert.True(t, updated[0].UpdatedAt.After(updated[0].CreatedAt) || updated[0].UpdatedAt.Equal(updated[0].CreatedAt))

	got, err := repo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, core.IDFromContent("second draft"), got.ContentHash)

	// Hash index follows the content
	byHash, err := repo.GetDocumentByContentHash(ctx, got.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, byHash.Id)
}

func TestDocumentRepository_UpdateMissing(t *testing.T) {
	repo, _ := setupDocumentRepo(t)

	ghost := makeDoc("Ghost", "History", "Grade 7", "notes", "never added", time.Time{})
	ghost.Id = core.ID(999)
	_, err := repo.UpdateDocuments(context.Background(), ghost)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_DeleteRemovesChunks(t *testing.T) {
	repo, chunkRepo := setupDocumentRepo(t)
	ctx := context.Background()

	added, err := repo.AddDocuments(ctx, makeDoc("Doomed", "Science", "Grade 5", "notes", "soon to be deleted", time.Time{}))
	require.NoError(t, err)
	id := added[0].Id

	err = chunkRepo.ReplaceChunks(ctx, id, []*core.DocumentChunk{
		{ChunkIndex: 0, Content: "chunk zero"},
		{ChunkIndex: 1, Content: "chunk one"},
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteDocuments(ctx, id))

	_, err = repo.GetDocument(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := chunkRepo.GetChunks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentRepository_DeleteMissing(t *testing.T) {
	repo, _ := setupDocumentRepo(t)

	err := repo.DeleteDocuments(context.Background(), core.ID(424242))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func seedCorpus(t *testing.T, repo storage.DocumentRepository) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	docs := []*core.Document{
		makeDoc("Algebra Basics", "Mathematics", "Grade 5", "notes", "Variables and expressions introduce algebra.", now.AddDate(0, 0, -2)),
		makeDoc("Fractions Workbook", "Mathematics", "Grade 5", "exam", "Practice adding fractions daily.", now.AddDate(0, 0, -20)),
		makeDoc("Photosynthesis", "Science", "Grade 6", "notes", "Plants make food from sunlight.", now.AddDate(0, -2, 0)),
		makeDoc("Grammar Rules", "English", "Grade 5", "notes", "Nouns and verbs form sentences.", now.AddDate(-2, 0, 0)),
	}
	docs[0].ViewCount = 40
	docs[1].ViewCount = 10
	docs[2].ViewCount = 30
	docs[3].ViewCount = 20

	_, err := repo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
}

func TestDocumentRepository_Count(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	total, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), total)

	maths, err := repo.Count(ctx, &core.DocumentFilter{Subject: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), maths)

	none, err := repo.Count(ctx, &core.DocumentFilter{Subject: "Geography"})
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestDocumentRepository_FindMany(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	t.Run("default is most recent first", func(t *testing.T) {
		docs, err := repo.FindMany(ctx, nil, 0, 10, core.SortByRelevance, core.SortDesc)
		require.NoError(t, err)
		require.Len(t, docs, 4)
		assert.Equal(t, "Algebra Basics", docs[0].Title)
		assert.Equal(t, "Grammar Rules", docs[3].Title)
	})

	t.Run("title ascending", func(t *testing.T) {
		docs, err := repo.FindMany(ctx, nil, 0, 10, core.SortByTitle, core.SortAsc)
		require.NoError(t, err)
		require.Len(t, docs, 4)
		assert.Equal(t, "Algebra Basics", docs[0].Title)
		assert.Equal(t, "Photosynthesis", docs[3].Title)
	})

	t.Run("popularity descending", func(t *testing.T) {
		docs, err := repo.FindMany(ctx, nil, 0, 10, core.SortByPopularity, core.SortDesc)
		require.NoError(t, err)
		require.Len(t, docs, 4)
		assert.Equal(t, "Algebra Basics", docs[0].Title)
		assert.Equal(t, "Fractions Workbook", docs[3].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		page1, err := repo.FindMany(ctx, nil, 0, 2, core.SortByTitle, core.SortAsc)
		require.NoError(t, err)
		page2, err := repo.FindMany(ctx, nil, 2, 2, core.SortByTitle, core.SortAsc)
		require.NoError(t, err)
		require.Len(t, page1, 2)
		require.Len(t, page2, 2)
		assert.NotEqual(t, page1[0].Id, page2[0].Id)
	})

	t.Run("skip past end", func(t *testing.T) {
		docs, err := repo.FindMany(ctx, nil, 100, 10, core.SortByTitle, core.SortAsc)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("filtered", func(t *testing.T) {
		docs, err := repo.FindMany(ctx, &core.DocumentFilter{Grade: "Grade 5"}, 0, 10, core.SortByTitle, core.SortAsc)
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})
}

func TestDocumentRepository_GroupBy(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	t.Run("subject counts", func(t *testing.T) {
		facets, err := repo.GroupBy(ctx, storage.DimensionSubject, nil)
		require.NoError(t, err)
		require.Len(t, facets, 3)
		assert.Equal(t, "Mathematics", facets[0].Value)
		assert.Equal(t, uint64(2), facets[0].Count)
	})

	t.Run("date buckets always complete", func(t *testing.T) {
		facets, err := repo.GroupBy(ctx, storage.DimensionDate, nil)
		require.NoError(t, err)
		require.Len(t, facets, len(core.DateBuckets))

		var sum uint64
		for i, f := range facets {
			assert.Equal(t, core.DateBuckets[i], f.Value)
			sum += f.Count
		}
		assert.Equal(t, uint64(4), sum)
	})

	t.Run("filtered group sums match filtered count", func(t *testing.T) {
		filter := &core.DocumentFilter{Grade: "Grade 5"}
		facets, err := repo.GroupBy(ctx, storage.DimensionSubject, filter)
		require.NoError(t, err)

		var sum uint64
		for _, f := range facets {
			sum += f.Count
		}
		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, total, sum)
	})

	t.Run("unknown dimension", func(t *testing.T) {
		_, err := repo.GroupBy(ctx, storage.Dimension("color"), nil)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestDocumentRepository_FindByTitleOrSubject(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	t.Run("matches title", func(t *testing.T) {
		docs, err := repo.FindByTitleOrSubject(ctx, "fraction", 5)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Fractions Workbook", docs[0].Title)
	})

	t.Run("matches subject case-insensitively", func(t *testing.T) {
		docs, err := repo.FindByTitleOrSubject(ctx, "MATHEMATICS", 5)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("limit respected", func(t *testing.T) {
		docs, err := repo.FindByTitleOrSubject(ctx, "a", 2)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("no matches", func(t *testing.T) {
		docs, err := repo.FindByTitleOrSubject(ctx, "chemistry", 5)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestDocumentRepository_ListDocuments(t *testing.T) {
	repo, _ := setupDocumentRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	first, err := repo.ListDocuments(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Less(t, first[0].Id, first[1].Id)

	rest, err := repo.ListDocuments(ctx, first[1].Id, 10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Greater(t, rest[0].Id, first[1].Id)
}
