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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Filename must not be empty
//   - MimeType must not be empty
//   - Status must be a known lifecycle value
//
// NOT validated (populated during processing):
//   - Classification (zero value until the classifier runs)
//   - PageCount/ChunkCount (0 until ingestion completes)
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if doc.MimeType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyMimeType)
	}

	if err := ValidateDocumentStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - Index must not be negative
//   - Kind must be a known ChunkKind value
//
// NOT validated (populated during processing):
//   - Vector (empty until embedded, or after an embedding failure)
//   - ID (0 is valid from database sequences)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeIndex)
	}

	if err := ValidateChunkKind(chunk.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	return nil
}

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - Role must be user or assistant
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateMessageRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}

// ValidateDocumentStatus validates that a DocumentStatus has a valid value.
func ValidateDocumentStatus(status DocumentStatus) error {
	if status < DocumentStatusPending || status > DocumentStatusFailed {
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
	return nil
}

// ValidateChunkKind validates that a ChunkKind has a valid value.
func ValidateChunkKind(kind ChunkKind) error {
	if kind < ChunkKindHeading || kind > ChunkKindQuote {
		return fmt.Errorf("%w: value %d", ErrInvalidChunkKind, kind)
	}
	return nil
}

// ValidateMessageRole validates that a MessageRole has a valid value.
func ValidateMessageRole(role MessageRole) error {
	if role != MessageRoleUser && role != MessageRoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidMessageRole, role)
	}
	return nil
}
