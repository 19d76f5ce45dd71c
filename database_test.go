package docent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/query"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.MessageRepository())
		assert.NotNil(t, db.UsageRepository())
		assert.NotNil(t, db.Provider())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create retriever", func(t *testing.T) {
		retriever, err := db.NewRetriever()
		require.NoError(t, err)
		require.NotNil(t, retriever)
	})

	t.Run("can create query processor", func(t *testing.T) {
		processor, err := db.NewQueryProcessor()
		require.NoError(t, err)
		require.NotNil(t, processor)
	})
}

func TestDatabase_IngestAndQuery(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "test_db")
	db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	contents := "Payment Terms\n\nInvoices are due within 30 days of receipt.\n\n" +
		"Late payments accrue interest at 1.5% per month."
	doc, err := pipeline.IngestFile(ctx, "terms.txt", "", []byte(contents))
	require.NoError(t, err)
	pipeline.Wait()

	stored, err := db.DocumentRepository().GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Equal(t, core.DocumentStatusCompleted, stored.Status)
	assert.Positive(t, stored.ChunkCount)

	processor, err := db.NewQueryProcessor(query.WithSimilarityFloor(0))
	require.NoError(t, err)

	msg, err := processor.Ask(ctx, query.Request{
		SessionId:      1,
		OrganizationId: 1,
		Question:       "When are invoices due?",
	})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, core.MessageRoleAssistant, msg.Role)
	assert.NotEmpty(t, msg.Contents)
}
