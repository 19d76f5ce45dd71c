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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyFilename indicates the document Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrEmptyMimeType indicates the document MimeType field is empty.
	ErrEmptyMimeType = errors.New("mime type cannot be empty")

	// ErrInvalidStatus indicates an invalid DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrInvalidChunkKind indicates an invalid ChunkKind value.
	ErrInvalidChunkKind = errors.New("invalid chunk kind")

	// ErrNegativeIndex indicates a chunk Index below zero.
	ErrNegativeIndex = errors.New("chunk index cannot be negative")

	// ErrInvalidMessageRole indicates an invalid MessageRole value.
	ErrInvalidMessageRole = errors.New("invalid message role")

	// ErrInvalidVector indicates an embedding vector with a zero magnitude.
	ErrInvalidVector = errors.New("vector magnitude must be non-zero")
)
