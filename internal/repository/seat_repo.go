package repository

import (
	"context"
	"errors"

	"entangle_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) *SeatRepository {
	return &SeatRepository{db: db}
}

const seatColumns = `session_id, player_id, seat, is_active, has_safety,
	 last_picked_by, last_picked_target, joined_at`

func scanSeat(row pgx.Row) (*domain.SeatAssignment, error) {
	var sa domain.SeatAssignment
	if err := row.Scan(
		&sa.SessionID,
		&sa.PlayerID,
		&sa.Seat,
		&sa.IsActive,
		&sa.HasSafety,
		&sa.LastPickedBy,
		&sa.LastPickedTarget,
		&sa.JoinedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sa, nil
}

func (r *SeatRepository) Create(ctx context.Context, sa *domain.SeatAssignment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO session_players (session_id, player_id, seat, is_active, has_safety, joined_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sa.SessionID, sa.PlayerID, sa.Seat, sa.IsActive, sa.HasSafety, sa.JoinedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *SeatRepository) Get(ctx context.Context, sessionID, playerID int64) (*domain.SeatAssignment, error) {
	return scanSeat(r.db.QueryRow(ctx,
		`SELECT `+seatColumns+` FROM session_players
		 WHERE session_id = $1 AND player_id = $2`,
		sessionID, playerID))
}

func (r *SeatRepository) ListBySession(ctx context.Context, sessionID int64) ([]*domain.SeatAssignment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+seatColumns+` FROM session_players
		 WHERE session_id = $1
		 ORDER BY seat NULLS LAST, joined_at`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SeatAssignment
	for rows.Next() {
		sa, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

func (r *SeatRepository) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM session_players WHERE session_id = $1`,
		sessionID).Scan(&n)
	return n, err
}

func (r *SeatRepository) AssignSeat(ctx context.Context, sessionID, playerID int64, seat int, pickedBy *int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE session_players
		 SET seat = $3, last_picked_by = COALESCE($4, last_picked_by)
		 WHERE session_id = $1 AND player_id = $2`,
		sessionID, playerID, seat, pickedBy,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SeatRepository) SetPickTarget(ctx context.Context, sessionID, pickerID, targetID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE session_players
		 SET last_picked_target = $3
		 WHERE session_id = $1 AND player_id = $2`,
		sessionID, pickerID, targetID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SeatRepository) ClearSeatsExceptHost(ctx context.Context, sessionID, hostID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE session_players
		 SET seat = NULL
		 WHERE session_id = $1 AND player_id <> $2`,
		sessionID, hostID,
	)
	return err
}

func (r *SeatRepository) GrantSafetyAll(ctx context.Context, sessionID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE session_players
		 SET has_safety = TRUE
		 WHERE session_id = $1 AND is_active`,
		sessionID,
	)
	return err
}

func (r *SeatRepository) ConsumeSafety(ctx context.Context, sessionID int64, playerIDs []int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE session_players
		 SET has_safety = FALSE
		 WHERE session_id = $1 AND player_id = ANY($2)`,
		sessionID, playerIDs,
	)
	return err
}

func (r *SeatRepository) Eliminate(ctx context.Context, sessionID int64, playerIDs []int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE session_players
		 SET is_active = FALSE
		 WHERE session_id = $1 AND player_id = ANY($2)`,
		sessionID, playerIDs,
	)
	return err
}

func (r *SeatRepository) Delete(ctx context.Context, sessionID, playerID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM session_players WHERE session_id = $1 AND player_id = $2`,
		sessionID, playerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SeatRepository) DeleteBySession(ctx context.Context, sessionID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM session_players WHERE session_id = $1`, sessionID)
	return err
}
