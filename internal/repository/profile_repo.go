package repository

import (
	"context"
	"errors"

	"entangle_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, id int64) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx,
		`SELECT id, display_name, gender, created_at FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.DisplayName, &p.Gender, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*domain.Profile, error) {
	out := make(map[int64]*domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, display_name, gender, created_at FROM profiles WHERE id = ANY($1)`,
		ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Gender, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

// Create is used by the test-user seeding binary, not by the game itself.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (display_name, gender) VALUES ($1, $2) RETURNING id, created_at`,
		p.DisplayName, p.Gender,
	).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}
