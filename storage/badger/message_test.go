package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

func TestMessageBasics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	msg := &core.Message{
		SessionId: 7,
		Role:      core.MessageRoleUser,
		Contents:  "What are the payment terms?",
	}

	added, err := repos.Messages.AddMessages(ctx, msg)
	if err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(added))
	}

	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := repos.Messages.GetMessage(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get message: %v", err)
	}

	if retrieved.Contents != "What are the payment terms?" {
		t.Fatalf("Unexpected contents: '%s'", retrieved.Contents)
	}
	if retrieved.Role != core.MessageRoleUser {
		t.Fatalf("Expected user role, got %v", retrieved.Role)
	}
}

func TestMessageMissing(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	_, err = repos.Messages.GetMessage(context.Background(), 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetSessionMessages(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	// Interleave two sessions
	msgs := []*core.Message{
		{SessionId: 7, Role: core.MessageRoleUser, Contents: "Question 1"},
		{SessionId: 8, Role: core.MessageRoleUser, Contents: "Other session"},
		{SessionId: 7, Role: core.MessageRoleAssistant, Contents: "Answer 1"},
		{SessionId: 7, Role: core.MessageRoleUser, Contents: "Question 2"},
		{SessionId: 7, Role: core.MessageRoleAssistant, Contents: "Answer 2"},
	}

	_, err = repos.Messages.AddMessages(ctx, msgs...)
	if err != nil {
		t.Fatalf("Failed to add messages: %v", err)
	}

	// All messages for session 7, chronological
	all, err := repos.Messages.GetSessionMessages(ctx, 7, 0)
	if err != nil {
		t.Fatalf("Failed to get session messages: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(all))
	}
	want := []string{"Question 1", "Answer 1", "Question 2", "Answer 2"}
	for i, msg := range all {
		if msg.Contents != want[i] {
			t.Fatalf("Expected '%s' at position %d, got '%s'", want[i], i, msg.Contents)
		}
	}

	// Most recent two, still chronological
	recent, err := repos.Messages.GetSessionMessages(ctx, 7, 2)
	if err != nil {
		t.Fatalf("Failed to get recent session messages: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(recent))
	}
	if recent[0].Contents != "Question 2" || recent[1].Contents != "Answer 2" {
		t.Fatalf("Unexpected recent messages: '%s', '%s'",
			recent[0].Contents, recent[1].Contents)
	}
}

func TestGetSessionMessagesEmpty(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	msgs, err := repos.Messages.GetSessionMessages(context.Background(), 42, 0)
	if err != nil {
		t.Fatalf("Failed to get session messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("Expected 0 messages, got %d", len(msgs))
	}
}

func TestMessageWithCitations(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	msg := &core.Message{
		SessionId: 7,
		Role:      core.MessageRoleAssistant,
		Contents:  "Payment is due in thirty days [1].",
		Citations: []core.Citation{
			{
				Id:            "a4c9d6a2-0000-4000-8000-000000000001",
				Marker:        1,
				DocumentId:    3,
				DocumentTitle: "Service Agreement",
				ChunkId:       17,
				PageNumber:    2,
				SectionPath:   []string{"Payment Terms"},
				Excerpt:       "Payment is due within thirty days...",
				Relevance:     0.87,
			},
		},
		ChunkRefs:    []core.ID{17, 18},
		ModelUsed:    "gpt-4o",
		InputTokens:  412,
		OutputTokens: 96,
		LatencyMs:    1250,
	}

	added, err := repos.Messages.AddMessages(ctx, msg)
	if err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}

	retrieved, err := repos.Messages.GetMessage(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get message: %v", err)
	}

	if len(retrieved.Citations) != 1 {
		t.Fatalf("Expected 1 citation, got %d", len(retrieved.Citations))
	}
	citation := retrieved.Citations[0]
	if citation.Marker != 1 || citation.ChunkId != 17 {
		t.Fatalf("Unexpected citation: %+v", citation)
	}
	if citation.DocumentTitle != "Service Agreement" {
		t.Fatalf("Expected 'Service Agreement', got '%s'", citation.DocumentTitle)
	}
	if len(citation.SectionPath) != 1 || citation.SectionPath[0] != "Payment Terms" {
		t.Fatalf("Unexpected citation section path: %v", citation.SectionPath)
	}
	if len(retrieved.ChunkRefs) != 2 {
		t.Fatalf("Expected 2 chunk refs, got %d", len(retrieved.ChunkRefs))
	}
	if retrieved.InputTokens != 412 || retrieved.OutputTokens != 96 {
		t.Fatalf("Unexpected token counts: %d in, %d out",
			retrieved.InputTokens, retrieved.OutputTokens)
	}
}

func TestSessionOrderAcrossManyMessages(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	// Enough messages that ID encoding order matters
	for i := 0; i < 30; i++ {
		_, err := repos.Messages.AddMessages(ctx, &core.Message{
			SessionId: 3,
			Role:      core.MessageRoleUser,
			Contents:  fmt.Sprintf("Message %d", i),
		})
		if err != nil {
			t.Fatalf("Failed to add message %d: %v", i, err)
		}
	}

	msgs, err := repos.Messages.GetSessionMessages(ctx, 3, 0)
	if err != nil {
		t.Fatalf("Failed to get session messages: %v", err)
	}
	if len(msgs) != 30 {
		t.Fatalf("Expected 30 messages, got %d", len(msgs))
	}
	for i, msg := range msgs {
		if msg.Contents != fmt.Sprintf("Message %d", i) {
			t.Fatalf("Expected 'Message %d' at position %d, got '%s'", i, i, msg.Contents)
		}
	}
}
