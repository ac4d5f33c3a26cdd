package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if !u.IsActive {
		u.IsActive = true
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO users(name, email, password_hash, is_active)
         VALUES($1, LOWER($2), $3, $4)
         RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail matches case-insensitively; pgx.ErrNoRows when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, password_hash, is_active, created_at, updated_at
         FROM users WHERE LOWER(email)=LOWER($1)`, email)

	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	return &user, err
}
