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

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// UsageRepository implements storage.UsageRepository for BadgerDB.
type UsageRepository struct {
	backend *Backend
}

var _ storage.UsageRepository = (*UsageRepository)(nil)

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(backend *Backend) *UsageRepository {
	return &UsageRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *UsageRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *UsageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddUsage adds the given counts to the organization's accumulated usage.
// Conflicting concurrent increments are retried so no counts are lost.
func (r *UsageRepository) AddUsage(ctx context.Context, usage *core.Usage) error {
	for {
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			key := makeUsageKey(usage.OrganizationId)

			current, err := r.readUsage(tx, key)
			if err != nil {
				return err
			}
			if current == nil {
				current = &core.Usage{OrganizationId: usage.OrganizationId}
			}

			current.InputTokens += usage.InputTokens
			current.OutputTokens += usage.OutputTokens
			current.QueryCount += usage.QueryCount
			current.UpdatedAt = time.Now().UTC()

			value := storage.MarshalUsage(current)
			if err := tx.Set(key, value); err != nil {
				return err
			}
			return tx.Commit()
		}, true)

		if err == badger.ErrConflict {
			continue
		}
		return err
	}
}

// GetUsage retrieves accumulated usage for an organization.
// Returns nil, nil if the organization has no recorded usage.
func (r *UsageRepository) GetUsage(ctx context.Context, organizationID core.ID) (*core.Usage, error) {
	var usage *core.Usage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		usage, err = r.readUsage(tx, makeUsageKey(organizationID))
		return err
	}, false)
	return usage, err
}

// readUsage reads a usage record from the transaction.
// Returns nil, nil if the key does not exist.
func (r *UsageRepository) readUsage(tx *badger.Txn, key []byte) (*core.Usage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var usage *core.Usage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		usage, unmarshalErr = storage.UnmarshalUsage(val)
		return unmarshalErr
	})
	return usage, err
}
