package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `
id, email, COALESCE(name,''), COALESCE(phone,''), COALESCE(role,'faculty'), COALESCE(role_label,''),
COALESCE(department_id::text,''), created_at,
is_head, is_admin, is_comptroller, is_hr, is_executive, COALESCE(exec_type,'')
`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.RoleLabel,
		&u.DepartmentID, &u.CreatedAt,
		&u.IsHead, &u.IsAdmin, &u.IsComptroller, &u.IsHR, &u.IsExecutive, &u.ExecType,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRow(ctx, q, email))
}

// PasswordHashByEmail returns the stored bcrypt hash for login checks.
func (r *Repository) PasswordHashByEmail(ctx context.Context, email string) (string, error) {
	const q = `SELECT password_hash FROM users WHERE lower(email) = lower($1)`
	var hash string
	err := r.db.QueryRow(ctx, q, email).Scan(&hash)
	return hash, err
}

// DepartmentHasParent reports whether a department sits under a parent
// department, which adds the parent-head countersignature branch to its
// requests.
func (r *Repository) DepartmentHasParent(ctx context.Context, departmentID string) (bool, error) {
	const q = `SELECT parent_department_id IS NOT NULL FROM departments WHERE id = $1`
	var has bool
	if err := r.db.QueryRow(ctx, q, departmentID).Scan(&has); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return has, nil
}

// DepartmentHead returns the head of a department, if one is designated.
func (r *Repository) DepartmentHead(ctx context.Context, departmentID string) (*User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE is_head = TRUE AND department_id = $1
ORDER BY created_at
LIMIT 1
`
	return scanUser(r.db.QueryRow(ctx, q, departmentID))
}
