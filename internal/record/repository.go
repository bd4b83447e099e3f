package record

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Repository persists finished matches to Postgres. Attached to the
// store only when DATABASE_URL is configured.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveMatch upserts a finished match row.
func (r *Repository) SaveMatch(ctx context.Context, m *Match) error {
	if r == nil || r.db == nil || m == nil {
		return nil
	}

	duration := m.EndedAt.Sub(m.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO game_matches (
        match_id, game_code, room,
        host_id, host_name, guest_id, guest_name,
        winner_id, outcome,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
      ) ON CONFLICT (match_id) DO UPDATE SET
        game_code=EXCLUDED.game_code,
        room=EXCLUDED.room,
        host_id=EXCLUDED.host_id,
        host_name=EXCLUDED.host_name,
        guest_id=EXCLUDED.guest_id,
        guest_name=EXCLUDED.guest_name,
        winner_id=EXCLUDED.winner_id,
        outcome=EXCLUDED.outcome,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.Code, m.Room,
		m.HostID, m.HostName, m.GuestID, m.GuestName,
		m.WinnerID, strings.TrimSpace(m.Outcome),
		m.StartedAt, m.EndedAt, duration,
	)
	return err
}
