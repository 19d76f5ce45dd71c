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


package docent

import (
	"log/slog"
	"strings"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/ai/anthropic"
	"github.com/poiesic/docent/ai/openai"
	"github.com/poiesic/docent/events"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/query"
	"github.com/poiesic/docent/search"
	"github.com/poiesic/docent/storage"
	"github.com/poiesic/docent/storage/badger"
)

// Database bundles the storage backend, its repositories, and the AI
// provider behind one handle, with factories for the ingestion and query
// pipelines.
type Database struct {
	backend      *badger.Backend
	documentRepo storage.DocumentRepository
	chunkRepo    storage.ChunkRepository
	messageRepo  storage.MessageRepository
	usageRepo    storage.UsageRepository
	provider     ai.AIProvider
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies a ready-made AI provider instead of building one
// from configuration. Used by tests and the seeder to run without model
// services.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens the store at filePath and wires the repositories and
// AI provider. Generator models named claude* route answer generation to
// the Anthropic backend; embedding and classification stay on the
// OpenAI-compatible services.
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

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create message repository
	messageRepo, err := badger.NewMessageRepository(backend)
	if err != nil {
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create usage repository
	usageRepo := badger.NewUsageRepository(backend)

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = buildProvider(options.aiConfig)
		if err != nil {
			messageRepo.Close()
			chunkRepo.Close()
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:      backend,
		documentRepo: documentRepo,
		chunkRepo:    chunkRepo,
		messageRepo:  messageRepo,
		usageRepo:    usageRepo,
		provider:     provider,
		logger:       slog.Default(),
	}, nil
}

// buildProvider creates the OpenAI-compatible provider, overriding the
// generator with the Anthropic backend when the model name selects it.
func buildProvider(config *ai.Config) (ai.AIProvider, error) {
	provider, err := openai.NewProvider(config)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(config.GeneratorModel, "claude") {
		return provider, nil
	}

	generator, err := anthropic.NewGenerator(config)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return ai.OverrideGenerator(provider, generator), nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.messageRepo.Close(); err != nil {
		db.logger.Error("error closing message repository", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.usageRepo.Close(); err != nil {
		db.logger.Error("error closing usage repository", "err", err)
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

func (db *Database) MessageRepository() storage.MessageRepository {
	return db.messageRepo
}

func (db *Database) UsageRepository() storage.UsageRepository {
	return db.usageRepo
}

// Provider returns the wired AI provider.
func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// NewIngestionPipeline creates an ingestion pipeline over this database.
// Ingestion events are logged; callers can layer their own sink on top
// through the pipeline options.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	defaults := []ingestion.Option{
		ingestion.WithEventSink(events.NewLogSink(db.logger)),
	}
	return ingestion.NewPipeline(db.documentRepo, db.chunkRepo, db.provider, append(defaults, opts...)...)
}

// NewRetriever creates a retriever over this database's chunks.
func (db *Database) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	return search.NewRetriever(db.documentRepo, db.chunkRepo, opts...)
}

// NewQueryProcessor creates a query processor over this database. Usage
// counters are persisted through the usage repository; later options
// replace the default sink entirely.
func (db *Database) NewQueryProcessor(opts ...query.ProcessorOption) (*query.Processor, error) {
	retriever, err := db.NewRetriever()
	if err != nil {
		return nil, err
	}

	recorder, err := events.NewUsageRecorder(db.usageRepo)
	if err != nil {
		return nil, err
	}

	defaults := []query.ProcessorOption{
		query.WithEventSink(events.Multi{events.NewLogSink(db.logger), recorder}),
	}
	return query.NewProcessor(db.documentRepo, db.messageRepo, retriever, db.provider, append(defaults, opts...)...)
}
