package repository

import (
	"context"

	"entangle_backend/internal/domain"
	"entangle_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitingRepository struct {
	db *pgxpool.Pool
}

func NewWaitingRepository(db *pgxpool.Pool) *WaitingRepository {
	return &WaitingRepository{db: db}
}

func (r *WaitingRepository) Upsert(ctx context.Context, playerID int64, gender domain.Gender) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO waiting (player_id, gender)
		 VALUES ($1, $2)
		 ON CONFLICT (player_id) DO UPDATE SET gender = EXCLUDED.gender`,
		playerID, gender,
	)
	return err
}

func (r *WaitingRepository) ListOldest(ctx context.Context, limit int) ([]*service.WaitingEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT player_id, gender, created_at
		 FROM waiting
		 ORDER BY created_at
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*service.WaitingEntry
	for rows.Next() {
		var e service.WaitingEntry
		if err := rows.Scan(&e.PlayerID, &e.Gender, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *WaitingRepository) Remove(ctx context.Context, playerIDs []int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM waiting WHERE player_id = ANY($1)`, playerIDs)
	return err
}
