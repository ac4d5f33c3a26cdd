package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository reads and writes role assignments.
type ProfileRepository struct {
	DB *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// GetRole returns the stored role; pgx.ErrNoRows when the user has no profile.
func (r *ProfileRepository) GetRole(ctx context.Context, userID int) (string, error) {
	var role string
	err := r.DB.QueryRow(ctx, `SELECT role FROM user_profiles WHERE user_id=$1`, userID).Scan(&role)
	return role, err
}

// SetRole creates or replaces a user's role.
func (r *ProfileRepository) SetRole(ctx context.Context, userID int, role string) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO user_profiles(user_id, role, updated_at) VALUES($1, $2, NOW())
         ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()`,
		userID, role)
	return err
}
