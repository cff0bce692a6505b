package repository

import (
	"context"

	"entangle_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type IntentRepository struct {
	db *pgxpool.Pool
}

func NewIntentRepository(db *pgxpool.Pool) *IntentRepository {
	return &IntentRepository{db: db}
}

// Create relies on the (session_id, player_id, turn_index) primary key to
// keep intents one-shot per round.
func (r *IntentRepository) Create(ctx context.Context, it *domain.Intent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO intents (session_id, player_id, turn_index, action, target_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		it.SessionID, it.PlayerID, it.TurnIndex, it.Action, it.TargetID, it.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *IntentRepository) ListForTurn(ctx context.Context, sessionID int64, turnIndex int) ([]*domain.Intent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT session_id, player_id, turn_index, action, target_id, created_at
		 FROM intents
		 WHERE session_id = $1 AND turn_index = $2`,
		sessionID, turnIndex)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Intent
	for rows.Next() {
		var it domain.Intent
		if err := rows.Scan(&it.SessionID, &it.PlayerID, &it.TurnIndex, &it.Action, &it.TargetID, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

func (r *IntentRepository) DeleteForTurn(ctx context.Context, sessionID int64, turnIndex int) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM intents WHERE session_id = $1 AND turn_index = $2`,
		sessionID, turnIndex)
	return err
}

func (r *IntentRepository) DeleteBySession(ctx context.Context, sessionID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM intents WHERE session_id = $1`, sessionID)
	return err
}
