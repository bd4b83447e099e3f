package record

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/kakao-gamebot-go/internal/obslog"
)

const (
	ttlMatch    = 30 * 24 * time.Hour
	recentLimit = 20
)

// Store keeps per-player win/loss tallies and recent matches in Redis.
// All methods are nil-safe so the bot runs without a REDIS_URL; recording
// simply becomes a no-op.
type Store struct {
	rdb  *redis.Client
	repo *Repository
}

func NewStore(redisURL string) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for record store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// AttachRepository wires a database repository for durable match rows.
func (s *Store) AttachRepository(r *Repository) {
	if s != nil {
		s.repo = r
	}
}

func keyMatch(id string) string    { return "play:match:" + strings.TrimSpace(id) }
func keyRecent(user string) string { return "play:recent:" + strings.TrimSpace(user) }
func keyTally(user string) string  { return "play:tally:" + strings.TrimSpace(user) }

// RecordMatch stores the match and updates both players' tallies.
// Failures are logged, never surfaced to chat.
func (s *Store) RecordMatch(ctx context.Context, m *Match) error {
	if s == nil || s.rdb == nil || m == nil {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyMatch(m.ID), raw, ttlMatch)
	for _, uid := range []string{m.HostID, m.GuestID} {
		if strings.TrimSpace(uid) == "" {
			continue
		}
		pipe.LPush(ctx, keyRecent(uid), m.ID)
		pipe.LTrim(ctx, keyRecent(uid), 0, recentLimit-1)
		pipe.Expire(ctx, keyRecent(uid), ttlMatch)
		pipe.HIncrBy(ctx, keyTally(uid), tallyField(m, uid), 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		obslog.L().Error("record_store_error", zap.String("match_id", m.ID), zap.Error(err))
		return err
	}
	obslog.L().Info("record_match",
		zap.String("match_id", m.ID),
		zap.String("code", m.Code),
		zap.String("outcome", m.Outcome),
		zap.String("winner_id", m.WinnerID),
	)
	if s.repo != nil {
		if err := s.repo.SaveMatch(ctx, m); err != nil {
			obslog.L().Error("record_persist_error", zap.String("match_id", m.ID), zap.Error(err))
		}
	}
	return nil
}

func tallyField(m *Match, uid string) string {
	if strings.TrimSpace(m.WinnerID) == "" {
		return "draws"
	}
	if m.WinnerID == uid {
		return "wins"
	}
	return "losses"
}

// Tally returns the player's lifetime counts, zeroes when nothing is
// recorded yet.
func (s *Store) Tally(ctx context.Context, userID string) (*Tally, error) {
	if s == nil || s.rdb == nil {
		return &Tally{}, nil
	}
	fields, err := s.rdb.HGetAll(ctx, keyTally(userID)).Result()
	if err != nil {
		return nil, err
	}
	t := &Tally{}
	t.Wins, _ = strconv.ParseInt(fields["wins"], 10, 64)
	t.Losses, _ = strconv.ParseInt(fields["losses"], 10, 64)
	t.Draws, _ = strconv.ParseInt(fields["draws"], 10, 64)
	return t, nil
}

// RecentMatches loads the player's latest recorded matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, userID string, limit int) ([]*Match, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}
	ids, err := s.rdb.LRange(ctx, keyRecent(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	var out []*Match
	for _, id := range ids {
		raw, gerr := s.rdb.Get(ctx, keyMatch(id)).Bytes()
		if gerr == redis.Nil {
			continue // match expired but index entry survived
		}
		if gerr != nil {
			return nil, gerr
		}
		var m Match
		if jerr := json.Unmarshal(raw, &m); jerr != nil {
			return nil, jerr
		}
		out = append(out, &m)
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
