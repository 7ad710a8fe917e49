package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/workflow"
)

var ErrNotFound = errors.New("request not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const requestColumns = `
r.id, r.request_number, r.type, r.title, COALESCE(r.purpose,''), COALESCE(r.destination,''),
r.travel_start, r.travel_end, r.requester_id, r.department_id,
r.head_included, r.has_parent_department,
r.has_budget, r.total_budget, COALESCE(r.expense_breakdown, '[]'::jsonb), r.is_international,
r.needs_vehicle, COALESCE(r.assigned_vehicle_id::text,''), COALESCE(r.assigned_driver_id::text,''),
r.stage, COALESCE(r.exec_level,''),
COALESCE(r.requester_signature,''),
COALESCE(r.head_signature,''), COALESCE(r.head_approved_by::text,''), r.head_approved_at, COALESCE(r.head_comments,''),
COALESCE(r.parent_head_signature,''), COALESCE(r.parent_head_approved_by::text,''), r.parent_head_approved_at, COALESCE(r.parent_head_comments,''),
COALESCE(r.admin_signature,''), COALESCE(r.admin_approved_by::text,''), r.admin_approved_at, COALESCE(r.admin_comments,''),
COALESCE(r.comptroller_signature,''), COALESCE(r.comptroller_approved_by::text,''), r.comptroller_approved_at, COALESCE(r.comptroller_comments,''),
COALESCE(r.hr_signature,''), COALESCE(r.hr_approved_by::text,''), r.hr_approved_at, COALESCE(r.hr_comments,''),
COALESCE(r.exec_signature,''), COALESCE(r.exec_approved_by::text,''), r.exec_approved_at, COALESCE(r.exec_comments,''),
r.vp_approved_at, r.vp2_approved_at, r.both_vps_approved,
COALESCE(ph.is_executive AND ph.exec_type = 'vp', false),
COALESCE(r.rejection_reason,''), COALESCE(r.rejection_stage,''),
r.final_approved_at, r.created_at, r.updated_at`

const requestFrom = `
FROM requests r
LEFT JOIN users ph ON ph.id = r.parent_head_approved_by`

func scanRequest(row pgx.Row) (*Request, error) {
	r := &Request{}
	var breakdown []byte
	err := row.Scan(
		&r.ID, &r.RequestNumber, &r.Type, &r.Title, &r.Purpose, &r.Destination,
		&r.TravelStart, &r.TravelEnd, &r.RequesterID, &r.DepartmentID,
		&r.HeadIncluded, &r.HasParentDepartment,
		&r.HasBudget, &r.TotalBudget, &breakdown, &r.IsInternational,
		&r.NeedsVehicle, &r.AssignedVehicleID, &r.AssignedDriverID,
		&r.Stage, &r.ExecLevel,
		&r.RequesterSignature,
		&r.Head.Signature, &r.Head.ApprovedBy, &r.Head.ApprovedAt, &r.Head.Comments,
		&r.ParentHead.Signature, &r.ParentHead.ApprovedBy, &r.ParentHead.ApprovedAt, &r.ParentHead.Comments,
		&r.Admin.Signature, &r.Admin.ApprovedBy, &r.Admin.ApprovedAt, &r.Admin.Comments,
		&r.Comptroller.Signature, &r.Comptroller.ApprovedBy, &r.Comptroller.ApprovedAt, &r.Comptroller.Comments,
		&r.HR.Signature, &r.HR.ApprovedBy, &r.HR.ApprovedAt, &r.HR.Comments,
		&r.Exec.Signature, &r.Exec.ApprovedBy, &r.Exec.ApprovedAt, &r.Exec.Comments,
		&r.VPApprovedAt, &r.VP2ApprovedAt, &r.BothVPsApproved,
		&r.ParentHeadIsVP,
		&r.RejectionReason, &r.RejectionStage,
		&r.FinalApprovedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &r.ExpenseBreakdown); err != nil {
			return nil, fmt.Errorf("decode expense breakdown: %w", err)
		}
	}
	return r, nil
}

func (repo *Repository) GetByID(ctx context.Context, id string) (*Request, error) {
	q := "SELECT " + requestColumns + requestFrom + " WHERE r.id = $1"
	return scanRequest(repo.db.QueryRow(ctx, q, id))
}

// GetForUpdate loads a request inside a transaction with a row lock, so
// concurrent decisions on the same request serialize: one writer reads,
// computes the transition, and commits before the next reads.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Request, error) {
	q := "SELECT " + requestColumns + requestFrom + " WHERE r.id = $1 FOR UPDATE OF r"
	return scanRequest(tx.QueryRow(ctx, q, id))
}

// Create inserts a submitted request with its dual-signature back-fill
// already applied.
func Create(ctx context.Context, tx pgx.Tx, r *Request) error {
	breakdown, err := json.Marshal(r.ExpenseBreakdown)
	if err != nil {
		return fmt.Errorf("encode expense breakdown: %w", err)
	}
	const q = `
INSERT INTO requests (
  id, request_number, type, title, purpose, destination,
  travel_start, travel_end, requester_id, department_id,
  head_included, has_parent_department,
  has_budget, total_budget, expense_breakdown, is_international,
  needs_vehicle, stage, requester_signature,
  head_signature, head_approved_by, head_approved_at,
  comptroller_signature, comptroller_approved_by, comptroller_approved_at,
  hr_signature, hr_approved_by, hr_approved_at,
  exec_signature, exec_approved_by, exec_approved_at,
  created_at, updated_at
) VALUES (
  $1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''),
  $7, $8, $9, $10,
  $11, $12,
  $13, $14, CAST($15 AS jsonb), $16,
  $17, $18, NULLIF($19,''),
  NULLIF($20,''), NULLIF($21,'')::uuid, $22,
  NULLIF($23,''), NULLIF($24,'')::uuid, $25,
  NULLIF($26,''), NULLIF($27,'')::uuid, $28,
  NULLIF($29,''), NULLIF($30,'')::uuid, $31,
  $32, $32
)`
	_, err = tx.Exec(ctx, q,
		r.ID, r.RequestNumber, r.Type, r.Title, r.Purpose, r.Destination,
		r.TravelStart, r.TravelEnd, r.RequesterID, r.DepartmentID,
		r.HeadIncluded, r.HasParentDepartment,
		r.HasBudget, r.TotalBudget, string(breakdown), r.IsInternational,
		r.NeedsVehicle, r.Stage, r.RequesterSignature,
		r.Head.Signature, r.Head.ApprovedBy, r.Head.ApprovedAt,
		r.Comptroller.Signature, r.Comptroller.ApprovedBy, r.Comptroller.ApprovedAt,
		r.HR.Signature, r.HR.ApprovedBy, r.HR.ApprovedAt,
		r.Exec.Signature, r.Exec.ApprovedBy, r.Exec.ApprovedAt,
		r.CreatedAt,
	)
	return err
}

// stageColumn maps a pending stage to its signature column prefix.
func stageColumn(stage workflow.Stage) (string, bool) {
	switch stage {
	case workflow.StagePendingHead:
		return "head", true
	case workflow.StagePendingParentHead:
		return "parent_head", true
	case workflow.StagePendingAdmin:
		return "admin", true
	case workflow.StagePendingComptroller:
		return "comptroller", true
	case workflow.StagePendingHR:
		return "hr", true
	case workflow.StagePendingExec:
		return "exec", true
	}
	return "", false
}

// RecordApproval writes one stage's sign-off columns.
func RecordApproval(ctx context.Context, tx pgx.Tx, id string, stage workflow.Stage, a Approval) error {
	col, ok := stageColumn(stage)
	if !ok {
		return fmt.Errorf("stage %q has no signature columns", stage)
	}
	q := fmt.Sprintf(`
UPDATE requests
SET %[1]s_signature = $2, %[1]s_approved_by = $3, %[1]s_approved_at = $4,
    %[1]s_comments = NULLIF($5,''), updated_at = NOW()
WHERE id = $1`, col)
	_, err := tx.Exec(ctx, q, id, a.Signature, a.ApprovedBy, a.ApprovedAt, a.Comments)
	return err
}

// AdvanceStage moves the request to its next stage, stamping the exec
// route and final-approval timestamp when they apply.
func AdvanceStage(ctx context.Context, tx pgx.Tx, id string, stage workflow.Stage, execLevel workflow.ExecRoute) error {
	const q = `
UPDATE requests
SET stage = $2,
    exec_level = COALESCE(NULLIF($3,''), exec_level),
    final_approved_at = CASE WHEN $2 = 'approved' THEN NOW() ELSE final_approved_at END,
    updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, stage, string(execLevel))
	return err
}

// MarkRejected records the rejection verdict and which stage it happened
// at.
func MarkRejected(ctx context.Context, tx pgx.Tx, id, reason string, atStage workflow.Stage) error {
	const q = `
UPDATE requests
SET stage = 'rejected', rejection_reason = $2, rejection_stage = $3, updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, reason, atStage)
	return err
}

// MarkCancelled moves the request to the cancelled absorbing state.
func MarkCancelled(ctx context.Context, tx pgx.Tx, id string) error {
	const q = `UPDATE requests SET stage = 'cancelled', updated_at = NOW() WHERE id = $1`
	_, err := tx.Exec(ctx, q, id)
	return err
}

// MarkReturned sends the request back to the requester as a draft,
// clearing any sign-offs collected so far so a resubmission starts the
// chain fresh.
func MarkReturned(ctx context.Context, tx pgx.Tx, id string) error {
	const q = `
UPDATE requests
SET stage = 'draft',
    head_signature = NULL, head_approved_by = NULL, head_approved_at = NULL, head_comments = NULL,
    parent_head_signature = NULL, parent_head_approved_by = NULL, parent_head_approved_at = NULL, parent_head_comments = NULL,
    admin_signature = NULL, admin_approved_by = NULL, admin_approved_at = NULL, admin_comments = NULL,
    comptroller_signature = NULL, comptroller_approved_by = NULL, comptroller_approved_at = NULL, comptroller_comments = NULL,
    hr_signature = NULL, hr_approved_by = NULL, hr_approved_at = NULL, hr_comments = NULL,
    exec_signature = NULL, exec_approved_by = NULL, exec_approved_at = NULL, exec_comments = NULL,
    exec_level = NULL, updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id)
	return err
}

// RecordVPAcknowledgment stamps a VP acknowledgment slot for
// multi-department requests. Advisory data only; it never gates the
// sequencer.
func RecordVPAcknowledgment(ctx context.Context, tx pgx.Tx, id string, second bool, at time.Time) error {
	col, other := "vp_approved_at", "vp2_approved_at"
	if second {
		col, other = other, col
	}
	q := fmt.Sprintf(`
UPDATE requests
SET %s = $2, both_vps_approved = (%s IS NOT NULL), updated_at = NOW()
WHERE id = $1`, col, other)
	_, err := tx.Exec(ctx, q, id, at)
	return err
}

// AssignVehicle records the fleet assignment made by the admin office.
func AssignVehicle(ctx context.Context, tx pgx.Tx, id, vehicleID, driverID string) error {
	const q = `
UPDATE requests
SET assigned_vehicle_id = $2, assigned_driver_id = NULLIF($3,'')::uuid, updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, vehicleID, driverID)
	return err
}

// ListByRequester returns the caller's own requests, newest first.
func (repo *Repository) ListByRequester(ctx context.Context, requesterID string) ([]*Request, error) {
	q := "SELECT " + requestColumns + requestFrom + " WHERE r.requester_id = $1 ORDER BY r.created_at DESC"
	return repo.list(ctx, q, requesterID)
}

// ListByStage returns the pending queue for one approval stage, oldest
// first so approvers work in submission order.
func (repo *Repository) ListByStage(ctx context.Context, stage workflow.Stage) ([]*Request, error) {
	q := "SELECT " + requestColumns + requestFrom + " WHERE r.stage = $1 ORDER BY r.created_at ASC"
	return repo.list(ctx, q, stage)
}

// CountVehicleRequestsToday enforces the daily submission cap. Only
// vehicle requests count toward it.
func (repo *Repository) CountVehicleRequestsToday(ctx context.Context, requesterID string, now time.Time) (int, error) {
	const q = `
SELECT COUNT(*) FROM requests
WHERE requester_id = $1 AND needs_vehicle
  AND created_at >= date_trunc('day', $2::timestamptz)
  AND created_at < date_trunc('day', $2::timestamptz) + interval '1 day'
  AND stage <> 'cancelled'`
	var n int
	err := repo.db.QueryRow(ctx, q, requesterID, now).Scan(&n)
	return n, err
}

// NextRequestNumber allocates a sequential human-readable number like
// TR-2026-000123.
func NextRequestNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('request_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("TR-%d-%06d", now.Year(), seq), nil
}

// StalledBefore finds pending requests untouched since the cutoff, for
// the reminder job.
func (repo *Repository) StalledBefore(ctx context.Context, cutoff time.Time) ([]*Request, error) {
	q := "SELECT " + requestColumns + requestFrom + `
WHERE r.stage IN ('pending_head','pending_parent_head','pending_admin','pending_comptroller','pending_hr','pending_exec')
  AND r.updated_at < $1
ORDER BY r.updated_at ASC`
	return repo.list(ctx, q, cutoff)
}

func (repo *Repository) list(ctx context.Context, q string, args ...any) ([]*Request, error) {
	rows, err := repo.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
