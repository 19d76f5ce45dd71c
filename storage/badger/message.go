package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// MessageRepository implements storage.MessageRepository for BadgerDB.
type MessageRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(backend *Backend) (*MessageRepository, error) {
	idSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		return nil, err
	}

	return &MessageRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *MessageRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *MessageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddMessages appends one or more messages to storage.
func (r *MessageRepository) AddMessages(ctx context.Context, msgs ...*core.Message) ([]*core.Message, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, msg := range msgs {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			msg.Id = core.ID(nextID)

			msg.InsertedAt = time.Now().UTC()

			// Store primary record
			key := makeMessageKey(msg.Id)
			value := storage.MarshalMessage(msg)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update session index
			sessKey := makeMessageSessKey(msg.SessionId, msg.Id)
			if err := tx.Set(sessKey, storage.MarshalID(msg.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return msgs, err
}

// GetMessage retrieves a single message by ID.
func (r *MessageRepository) GetMessage(ctx context.Context, id core.ID) (*core.Message, error) {
	var result *core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMessageKey(id)
		var err error
		result, err = r.readMessage(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSessionMessages retrieves a session's messages in chronological order.
// When limit > 0, only the most recent limit messages are returned.
func (r *MessageRepository) GetSessionMessages(ctx context.Context, sessionID core.ID, limit int) ([]*core.Message, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		if limit > 0 {
			ids, err = r.readSessionIndexRecent(tx, sessionID, limit)
		} else {
			ids, err = r.readSessionIndex(tx, sessionID)
		}
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	var results []*core.Message
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			msg, err := r.readMessage(tx, makeMessageKey(id))
			if err != nil {
				return err
			}
			if msg != nil {
				results = append(results, msg)
			}
		}
		return nil
	}, false)
	return results, err
}

// Helper methods

// readSessionIndex scans a session's index forward.
// Message IDs ascend with insertion, so scan order is chronological.
func (r *MessageRepository) readSessionIndex(tx *badger.Txn, sessionID core.ID) ([]core.ID, error) {
	startKey := makePartialMessageSessKey(sessionID)

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	var ids []core.ID
	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		// Check if key still has our sessionID prefix
		if len(key) < len(startKey) {
			break
		}
		if slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var messageID core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			messageID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, messageID)
	}
	return ids, nil
}

// readSessionIndexRecent scans a session's index backward, collecting up to
// limit IDs, then restores chronological order.
func (r *MessageRepository) readSessionIndexRecent(tx *badger.Txn, sessionID core.ID, limit int) ([]core.ID, error) {
	prefix := makePartialMessageSessKey(sessionID)

	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	iter := tx.NewIterator(opts)
	defer iter.Close()

	// Seek to the last possible key for this session
	startKey := makeMessageSessKey(sessionID, core.ID(math.MaxUint64))

	var ids []core.ID
	for iter.Seek(startKey); iter.Valid() && len(ids) < limit; iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(prefix) {
			break
		}
		if slices.Compare(key[:len(prefix)], prefix) != 0 {
			break
		}

		var messageID core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			messageID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, messageID)
	}

	slices.Reverse(ids)
	return ids, nil
}

// readMessage reads a message from the transaction.
func (r *MessageRepository) readMessage(tx *badger.Txn, key []byte) (*core.Message, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var msg *core.Message
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		msg, unmarshalErr = storage.UnmarshalMessage(val)
		return unmarshalErr
	})
	return msg, err
}
