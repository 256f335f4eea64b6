// Package cache persists confirmed messages to a local pebble database
// so a reopened conversation renders instantly before the first poll
// completes. It is a write-through mirror of the in-memory store, never
// a source of truth: the backend wins on every merge.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	"classline/pkg/logger"
	"classline/pkg/models"
)

type Cache struct {
	db *pebble.DB
}

// Open opens (or creates) a pebble database at the given path.
func Open(path string) (*Cache, error) {
	logger.Info("opening_cache_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("cache_open_failed", "path", path, "error", err)
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying pebble DB.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	logger.Info("cache_closed")
	return err
}

// Ready reports whether the cache is opened and usable.
func (c *Cache) Ready() bool { return c != nil && c.db != nil }

// Key format: conv:<convID>:msg:<unix_nano_padded>-<msgID>. The padded
// timestamp keeps pebble's byte order equal to chronological order.
func msgKey(convID string, ts time.Time, msgID string) []byte {
	return []byte(fmt.Sprintf("conv:%s:msg:%020d-%s", convID, ts.UTC().UnixNano(), msgID))
}

// idxKey maps a message id to its primary key so deletes by id work
// without knowing the timestamp.
func idxKey(msgID string) []byte {
	return []byte("idx:msg:" + msgID)
}

func convPrefix(convID string) []byte {
	return []byte("conv:" + convID + ":msg:")
}

// SaveMessage writes one confirmed message. Pending messages are never
// cached; they either confirm (and get written then) or roll back.
func (c *Cache) SaveMessage(msg models.Message) error {
	if !c.Ready() {
		return fmt.Errorf("cache not opened")
	}
	if msg.Pending || msg.ID == "" {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	key := msgKey(msg.ConversationID, msg.CreatedAt, msg.ID)
	wb := c.db.NewBatch()
	_ = wb.Set(key, data, nil)
	_ = wb.Set(idxKey(msg.ID), key, nil)
	if err := c.db.Apply(wb, pebble.NoSync); err != nil {
		logger.Error("cache_save_failed", "id", msg.ID, "error", err)
		return err
	}
	return nil
}

// SaveBatch writes a page of confirmed messages in one pebble batch.
func (c *Cache) SaveBatch(msgs []models.Message) error {
	if !c.Ready() {
		return fmt.Errorf("cache not opened")
	}
	if len(msgs) == 0 {
		return nil
	}
	wb := c.db.NewBatch()
	for _, m := range msgs {
		if m.Pending || m.ID == "" {
			continue
		}
		data, err := json.Marshal(m)
		if err != nil {
			logger.Error("cache_marshal_failed", "id", m.ID, "error", err)
			continue
		}
		key := msgKey(m.ConversationID, m.CreatedAt, m.ID)
		_ = wb.Set(key, data, nil)
		_ = wb.Set(idxKey(m.ID), key, nil)
	}
	if err := c.db.Apply(wb, pebble.NoSync); err != nil {
		logger.Error("cache_batch_failed", "count", len(msgs), "error", err)
		return err
	}
	return nil
}

// DeleteMessage removes one message (hard delete mirror).
func (c *Cache) DeleteMessage(msgID string) error {
	if !c.Ready() {
		return fmt.Errorf("cache not opened")
	}
	key, closer, err := c.db.Get(idxKey(msgID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil
		}
		return err
	}
	primary := append([]byte(nil), key...)
	_ = closer.Close()
	wb := c.db.NewBatch()
	_ = wb.Delete(primary, nil)
	_ = wb.Delete(idxKey(msgID), nil)
	return c.db.Apply(wb, pebble.NoSync)
}

// LoadConversation returns up to limit cached messages for a
// conversation, newest first. limit<=0 means no limit.
func (c *Cache) LoadConversation(convID string, limit int) ([]models.Message, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("cache not opened")
	}
	prefix := convPrefix(convID)
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for ok := iter.Last(); ok; ok = iter.Prev() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Warn("cache_decode_failed", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// DropConversation removes everything cached for a conversation (leave
// or delete conversation).
func (c *Cache) DropConversation(convID string) error {
	if !c.Ready() {
		return fmt.Errorf("cache not opened")
	}
	prefix := convPrefix(convID)
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return err
	}
	wb := c.db.NewBatch()
	for ok := iter.First(); ok; ok = iter.Next() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err == nil && m.ID != "" {
			_ = wb.Delete(idxKey(m.ID), nil)
		}
		_ = wb.Delete(append([]byte(nil), iter.Key()...), nil)
	}
	_ = iter.Close()
	return c.db.Apply(wb, pebble.Sync)
}

func upperBound(prefix []byte) []byte {
	ub := append([]byte(nil), prefix...)
	for i := len(ub) - 1; i >= 0; i-- {
		if ub[i] < 0xff {
			ub[i]++
			return ub[:i+1]
		}
	}
	return nil
}
