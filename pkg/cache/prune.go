package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"

	"classline/pkg/logger"
	"classline/pkg/models"
)

// PruneBefore removes cached messages created before the cutoff across
// all conversations. Returns the number of messages removed. Used by
// the retention runner; best-effort, undecodable keys are skipped.
func (c *Cache) PruneBefore(cutoff time.Time) (int, error) {
	if !c.Ready() {
		return 0, fmt.Errorf("cache not opened")
	}
	prefix := []byte("conv:")
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return 0, err
	}
	wb := c.db.NewBatch()
	removed := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		ts, parseOK := keyTimestamp(string(iter.Key()))
		if !parseOK || !ts.Before(cutoff) {
			continue
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err == nil && m.ID != "" {
			_ = wb.Delete(idxKey(m.ID), nil)
		}
		_ = wb.Delete(append([]byte(nil), iter.Key()...), nil)
		removed++
	}
	_ = iter.Close()
	if removed == 0 {
		return 0, nil
	}
	if err := c.db.Apply(wb, pebble.Sync); err != nil {
		logger.Error("cache_prune_failed", "error", err)
		return 0, err
	}
	logger.Info("cache_pruned", "removed", removed, "cutoff", cutoff)
	return removed, nil
}

// keyTimestamp extracts the padded nanosecond timestamp from a primary
// key of the form conv:<id>:msg:<%020d>-<msgID>.
func keyTimestamp(key string) (time.Time, bool) {
	i := strings.Index(key, ":msg:")
	if i < 0 {
		return time.Time{}, false
	}
	rest := key[i+len(":msg:"):]
	j := strings.IndexByte(rest, '-')
	if j < 0 {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(rest[:j], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, n).UTC(), true
}
