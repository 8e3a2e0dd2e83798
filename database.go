// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package elimu

import (
	"io"
	"log/slog"

	"github.com/poiesic/elimu/ai"
	"github.com/poiesic/elimu/ai/openai"
	"github.com/poiesic/elimu/ingestion"
	"github.com/poiesic/elimu/reindex"
	"github.com/poiesic/elimu/search"
	"github.com/poiesic/elimu/storage"
	"github.com/poiesic/elimu/storage/badger"
)

// Database wires the storage backend, repositories, and AI provider behind
// one handle, with factories for the higher-level components.
type Database struct {
	backend        *badger.Backend
	documentRepo   storage.DocumentRepository
	chunkRepo      storage.ChunkRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	aiConfig       *ai.Config
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create document repository
	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)
	checkpointRepo := badger.NewCheckpointRepository(backend)

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:        backend,
		documentRepo:   documentRepo,
		chunkRepo:      chunkRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		aiConfig:       options.aiConfig,
		logger:         slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpointRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documentRepo, db.chunkRepo, db.checkpointRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.documentRepo, db.provider.Embedder(), db.searcherOptions(opts)...)
}

// searcherOptions threads database-level wiring (chunk repository, the
// configured embedding timeout) ahead of caller options, so callers can
// still override either.
func (db *Database) searcherOptions(opts []search.Option) []search.Option {
	return append([]search.Option{
		search.WithChunkRepository(db.chunkRepo),
		search.WithEmbeddingTimeout(db.aiConfig.EmbeddingTimeout),
	}, opts...)
}

// NewReindexer creates a full-corpus reindexer writing progress to the given
// writer.
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(db.documentRepo, db.chunkRepo, db.checkpointRepo,
		db.provider.Embedder(), config, progress)
}
