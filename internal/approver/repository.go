package approver

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/workflow"
)

// Repository is the candidate-approver directory: it lists the users
// eligible to act in each role, feeding the advisor's resolution helper.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListCandidates returns every user holding at least one approver
// capability, one candidate per capability held. Multi-role users appear
// once per role so role-code matching stays exact.
func (r *Repository) ListCandidates(ctx context.Context) ([]workflow.Candidate, error) {
	const q = `
SELECT id, COALESCE(name,''), email, COALESCE(role_label,''),
       is_head, is_admin, is_comptroller, is_hr, is_executive, COALESCE(exec_type,'')
FROM users
WHERE is_head OR is_admin OR is_comptroller OR is_hr OR is_executive
ORDER BY name
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workflow.Candidate
	for rows.Next() {
		var (
			id, name, email, roleLabel, execType         string
			isHead, isAdmin, isComptroller, isHR, isExec bool
		)
		if err := rows.Scan(&id, &name, &email, &roleLabel, &isHead, &isAdmin, &isComptroller, &isHR, &isExec, &execType); err != nil {
			return nil, err
		}

		add := func(role string) {
			out = append(out, workflow.Candidate{ID: id, Role: role, RoleLabel: roleLabel, Name: name, Email: email})
		}
		if isHead {
			add("head")
		}
		if isAdmin {
			add("admin")
		}
		if isComptroller {
			add("comptroller")
		}
		if isHR {
			add("hr")
		}
		if isExec {
			if execType == "" {
				execType = "vp"
			}
			add(execType)
		}
	}
	return out, rows.Err()
}

// ListByRole narrows the directory to a single role class, used for the
// broadcast fallback when resolution finds no preferred individual.
func (r *Repository) ListByRole(ctx context.Context, role workflow.ApproverRole) ([]workflow.Candidate, error) {
	all, err := r.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	var out []workflow.Candidate
	for _, c := range all {
		if c.Role == string(role) {
			out = append(out, c)
		}
	}
	return out, nil
}
