package budget

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DepartmentBudget is a department's fiscal-year allocation. Remaining is
// allocated minus used minus pending (amounts reserved by in-flight
// requests).
type DepartmentBudget struct {
	ID             string          `json:"id"`
	DepartmentID   string          `json:"departmentId"`
	FiscalYear     int             `json:"fiscalYear"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	TotalUsed      decimal.Decimal `json:"totalUsed"`
	TotalPending   decimal.Decimal `json:"totalPending"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (b DepartmentBudget) Remaining() decimal.Decimal {
	return b.TotalAllocated.Sub(b.TotalUsed).Sub(b.TotalPending)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetForDepartment(ctx context.Context, departmentID string, fiscalYear int) (*DepartmentBudget, error) {
	const q = `
SELECT id, department_id, fiscal_year, total_allocated, total_used, total_pending, updated_at
FROM department_budgets
WHERE department_id = $1 AND fiscal_year = $2
`
	b := &DepartmentBudget{}
	if err := r.db.QueryRow(ctx, q, departmentID, fiscalYear).Scan(
		&b.ID, &b.DepartmentID, &b.FiscalYear, &b.TotalAllocated, &b.TotalUsed, &b.TotalPending, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return b, nil
}

// Reserve moves an amount into the pending column when a budgeted
// request is submitted.
func Reserve(ctx context.Context, tx pgx.Tx, departmentID string, fiscalYear int, amount decimal.Decimal) error {
	const q = `
UPDATE department_budgets
SET total_pending = total_pending + $3, updated_at = NOW()
WHERE department_id = $1 AND fiscal_year = $2
`
	_, err := tx.Exec(ctx, q, departmentID, fiscalYear, amount)
	return err
}

// Commit converts a pending reservation into used budget on final
// approval.
func Commit(ctx context.Context, tx pgx.Tx, departmentID string, fiscalYear int, amount decimal.Decimal) error {
	const q = `
UPDATE department_budgets
SET total_pending = GREATEST(total_pending - $3, 0),
    total_used = total_used + $3,
    updated_at = NOW()
WHERE department_id = $1 AND fiscal_year = $2
`
	_, err := tx.Exec(ctx, q, departmentID, fiscalYear, amount)
	return err
}

// Release drops a pending reservation when a request is rejected,
// cancelled, or returned to the requester.
func Release(ctx context.Context, tx pgx.Tx, departmentID string, fiscalYear int, amount decimal.Decimal) error {
	const q = `
UPDATE department_budgets
SET total_pending = GREATEST(total_pending - $3, 0), updated_at = NOW()
WHERE department_id = $1 AND fiscal_year = $2
`
	_, err := tx.Exec(ctx, q, departmentID, fiscalYear, amount)
	return err
}
