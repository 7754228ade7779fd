package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	fieldStatsStart = "statsStart"
	fieldStatsEnd   = "statsEnd"
)

// StatsRange is the date range a user last picked on the statistics page,
// kept as YYYY-MM-DD strings.
type StatsRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RangeStore remembers each user's statistics range without expiry.
type RangeStore struct {
	rdb *redis.Client
}

func NewRangeStore(rdb *redis.Client) *RangeStore { return &RangeStore{rdb: rdb} }

func prefsKey(uid string) string { return k("prefs", uid) }

func (s *RangeStore) Get(ctx context.Context, uid string) (StatsRange, error) {
	vals, err := s.rdb.HMGet(ctx, prefsKey(uid), fieldStatsStart, fieldStatsEnd).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return StatsRange{}, err
	}
	var r StatsRange
	if len(vals) == 2 {
		r.Start, _ = vals[0].(string)
		r.End, _ = vals[1].(string)
	}
	return r, nil
}

func (s *RangeStore) Set(ctx context.Context, uid string, r StatsRange) error {
	return s.rdb.HSet(ctx, prefsKey(uid), fieldStatsStart, r.Start, fieldStatsEnd, r.End).Err()
}

func (s *RangeStore) Clear(ctx context.Context, uid string) error {
	return s.rdb.HDel(ctx, prefsKey(uid), fieldStatsStart, fieldStatsEnd).Err()
}
