package redis

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// ZAdd adds members with the same score to a sorted set.
func (s *Store) ZAdd(ctx context.Context, key string, score float64, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zadd().Key(key).ScoreMember()
	for _, m := range members {
		cmd = cmd.ScoreMember(score, m)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRem removes members from a sorted set.
func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRangeByLex returns members between minLex and maxLex ("[a", "(b", "-", "+").
// A non-positive count returns every match from offset.
func (s *Store) ZRangeByLex(
	ctx context.Context, key, minLex, maxLex string, offset, count int64,
) ([]string, error) {
	if count <= 0 {
		count = -1
	}
	cmd := s.b().Zrangebylex().Key(key).Min(minLex).Max(maxLex).Limit(offset, count).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRangeByLex, Err: err}
	}
	return members, nil
}
