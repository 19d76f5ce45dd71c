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


package badger

import "github.com/poiesic/docent/storage"

// Repositories bundles the repositories sharing one backend.
type Repositories struct {
	Documents storage.DocumentRepository
	Chunks    storage.ChunkRepository
	Messages  storage.MessageRepository
	Usage     storage.UsageRepository
	Backend   *Backend
}

// Close closes every repository and then the backing store.
// Returns the first error encountered.
func (r *Repositories) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{
		r.Documents, r.Chunks, r.Messages, r.Usage, r.Backend,
	} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must close the returned bundle when done.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	docRepo, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo, err := NewChunkRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	msgRepo, err := NewMessageRepository(backend)
	if err != nil {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	usageRepo := NewUsageRepository(backend)

	return &Repositories{
		Documents: docRepo,
		Chunks:    chunkRepo,
		Messages:  msgRepo,
		Usage:     usageRepo,
		Backend:   backend,
	}, nil
}
