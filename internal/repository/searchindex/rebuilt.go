package searchindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// MarkRebuilt records at as the completion time of the last full rebuild of typeName.
func (r *Repo) MarkRebuilt(ctx context.Context, typeName string, at time.Time) error {
	v := strconv.FormatInt(at.UnixMilli(), 10)
	if err := r.store.Set(ctx, r.rebuiltKey(typeName), []byte(v)); err != nil {
		return fmt.Errorf("mark %s rebuilt: %w", typeName, err)
	}
	return nil
}

// LastRebuilt returns when typeName was last fully rebuilt. ok is false when
// no rebuild was ever recorded.
func (r *Repo) LastRebuilt(ctx context.Context, typeName string) (at time.Time, ok bool, err error) {
	raw, err := r.store.Get(ctx, r.rebuiltKey(typeName))
	if errors.Is(err, db.ErrKeyNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last rebuild of %s: %w", typeName, err)
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode rebuild marker of %s: %w", typeName, err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func (r *Repo) rebuiltKey(typeName string) string {
	return fmt.Sprintf("%s%s:rebuilt_at", r.prefix, typeName)
}
