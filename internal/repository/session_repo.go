package repository

import (
	"context"
	"errors"
	"time"

	"entangle_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// isUniqueViolation matches the Postgres unique_violation code.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, host_id, stage, game_size, max_females, max_males, turn_index,
	 round_deadline, proposer_id, proposed_target_id, final_pair_a, final_pair_b,
	 needs_reconcile, created_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(
		&s.ID,
		&s.HostID,
		&s.Stage,
		&s.GameSize,
		&s.MaxFemales,
		&s.MaxMales,
		&s.TurnIndex,
		&s.RoundDeadline,
		&s.ProposerID,
		&s.ProposedTargetID,
		&s.FinalPairA,
		&s.FinalPairB,
		&s.NeedsReconcile,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO sessions (host_id, stage, game_size, max_females, max_males, turn_index, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		s.HostID, s.Stage, s.GameSize, s.MaxFemales, s.MaxMales, s.TurnIndex, s.CreatedAt,
	).Scan(&s.ID)
}

func (r *SessionRepository) Get(ctx context.Context, id int64) (*domain.Session, error) {
	return scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
}

func (r *SessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *SessionRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Session, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*domain.Session, error) {
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepository) Update(ctx context.Context, s *domain.Session) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions
		 SET stage = $2, turn_index = $3, round_deadline = $4,
		     proposer_id = $5, proposed_target_id = $6,
		     final_pair_a = $7, final_pair_b = $8, needs_reconcile = $9
		 WHERE id = $1`,
		s.ID, s.Stage, s.TurnIndex, s.RoundDeadline,
		s.ProposerID, s.ProposedTargetID,
		s.FinalPairA, s.FinalPairB, s.NeedsReconcile,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TryAdvanceTurn bumps turn_index only when it still equals fromTurn, so
// exactly one of several racing closers wins.
func (r *SessionRepository) TryAdvanceTurn(ctx context.Context, id int64, fromTurn int, deadline time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions
		 SET turn_index = turn_index + 1, round_deadline = $3
		 WHERE id = $1 AND turn_index = $2`,
		id, fromTurn, deadline,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepository) SetNeedsReconcile(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET needs_reconcile = TRUE WHERE id = $1`, id)
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
