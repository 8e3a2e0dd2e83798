package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/storage"
)

func setupChunkRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	docRepo, chunkRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docRepo.Close()
		backend.Close()
	})
	return chunkRepo
}

func TestChunkRepository_ReplaceAndGet(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	chunks := []*core.DocumentChunk{
		{ChunkIndex: 0, Content: "First chunk.", WordCount: 2},
		{ChunkIndex: 1, Content: "Second chunk.", WordCount: 2},
		{ChunkIndex: 2, Content: "Third chunk.", WordCount: 2},
	}

	require.NoError(t, repo.ReplaceChunks(ctx, 7, chunks))

	got, err := repo.GetChunks(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, chunk := range got {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, core.ID(7), chunk.DocumentId)
	}
}

func TestChunkRepository_ReplaceDropsOldSet(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, 1, []*core.DocumentChunk{
		{ChunkIndex: 0, Content: "old zero"},
		{ChunkIndex: 1, Content: "old one"},
		{ChunkIndex: 2, Content: "old two"},
	}))

	// Replacement with fewer chunks must not leave stale entries behind
	require.NoError(t, repo.ReplaceChunks(ctx, 1, []*core.DocumentChunk{
		{ChunkIndex: 0, Content: "new zero"},
	}))

	got, err := repo.GetChunks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new zero", got[0].Content)
}

func TestChunkRepository_GetChunks_IsolatedByDocument(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, 1, []*core.DocumentChunk{{ChunkIndex: 0, Content: "doc one"}}))
	require.NoError(t, repo.ReplaceChunks(ctx, 2, []*core.DocumentChunk{{ChunkIndex: 0, Content: "doc two"}}))

	got, err := repo.GetChunks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "doc one", got[0].Content)
}

func TestChunkRepository_UpdateChunks(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, 3, []*core.DocumentChunk{
		{ChunkIndex: 0, Content: "needs a vector"},
	}))

	got, err := repo.GetChunks(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Vector)

	got[0].Vector = []float32{0.5, 0.5}
	require.NoError(t, repo.UpdateChunks(ctx, got[0]))

	after, err := repo.GetChunks(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, after[0].Vector)
}

func TestChunkRepository_UpdateMissing(t *testing.T) {
	repo := setupChunkRepo(t)

	err := repo.UpdateChunks(context.Background(), &core.DocumentChunk{DocumentId: 99, ChunkIndex: 0})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChunkRepository_FindSimilarChunks(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, 1, []*core.DocumentChunk{
		{ChunkIndex: 0, Content: "aligned", Vector: []float32{1, 0, 0}},
		{ChunkIndex: 1, Content: "orthogonal", Vector: []float32{0, 1, 0}},
		{ChunkIndex: 2, Content: "partial", Vector: []float32{0.7, 0.7, 0}},
		{ChunkIndex: 3, Content: "no vector"},
	}))

	matches, err := repo.FindSimilarChunks(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "aligned", matches[0].Chunk.Content)
	assert.Equal(t, "partial", matches[1].Chunk.Content)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestChunkRepository_FindSimilarChunks_Limit(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, 1, []*core.DocumentChunk{
		{ChunkIndex: 0, Content: "a", Vector: []float32{1, 0}},
		{ChunkIndex: 1, Content: "b", Vector: []float32{0.9, 0.1}},
		{ChunkIndex: 2, Content: "c", Vector: []float32{0.8, 0.2}},
	}))

	matches, err := repo.FindSimilarChunks(ctx, []float32{1, 0}, 0, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
