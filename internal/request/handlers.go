package request

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"travelink/internal/api"
	"travelink/internal/approver"
	"travelink/internal/budget"
	"travelink/internal/history"
	"travelink/internal/user"
	"travelink/internal/workflow"
	"travelink/pkg/config"
	"travelink/pkg/db"
)

// Notifier fans a stage change out to the people who should hear about
// it. Called after the transaction commits; failures are logged, never
// surfaced to the actor.
type Notifier interface {
	StageChanged(ctx context.Context, req *Request, previous workflow.Stage, suggestion *workflow.Suggestion, approver *workflow.Candidate)
}

type Handlers struct {
	Cfg       config.Config
	Log       *zap.Logger
	Requests  *Repository
	Users     *user.Repository
	Budgets   *budget.Repository
	Approvers *approver.Repository
	Notify    Notifier
}

// Submit creates a request: validates it, applies the dual-signature
// back-fill, places it at its initial stage, and reserves department
// budget — all in one transaction.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var in SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	if err := ValidateSubmission(in, actor); err != nil {
		writeValidationError(w, err)
		return
	}

	items, err := parseExpenseItems(in.ExpenseItems)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := budget.ValidateBreakdown(in.TotalBudget, items, budget.DefaultCurrencyScale); err != nil {
		writeValidationError(w, err)
		return
	}

	now := time.Now().UTC()
	fiscalYear := now.Year()

	if in.NeedsVehicle {
		n, err := h.Requests.CountVehicleRequestsToday(r.Context(), actor.ID, now)
		if err != nil {
			h.Log.Error("count vehicle requests", zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not check daily limit")
			return
		}
		if err := CheckVehicleQuota(in, n); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	hasBudget := in.TotalBudget.GreaterThan(decimal.Zero)
	if hasBudget {
		b, err := h.Budgets.GetForDepartment(r.Context(), actor.DepartmentID, fiscalYear)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.WriteError(w, http.StatusUnprocessableEntity, "BUDGET_MISSING", "no budget allocation for the department this fiscal year")
				return
			}
			h.Log.Error("load department budget", zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not check department budget")
			return
		}
		if err := CheckDepartmentBalance(in.TotalBudget, b.Remaining()); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	hasParent := false
	if actor.DepartmentID != "" {
		hasParent, err = h.Users.DepartmentHasParent(r.Context(), actor.DepartmentID)
		if err != nil {
			h.Log.Error("check parent department", zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not check department")
			return
		}
	}

	caps := actor.Capabilities()
	patch := workflow.ApplyDualSignature(caps, actor.ID, in.Signature, now)

	req := &Request{
		ID:                  uuid.NewString(),
		Type:                in.Type,
		Title:               in.Title,
		Purpose:             in.Purpose,
		Destination:         in.Destination,
		TravelStart:         in.TravelStart,
		TravelEnd:           in.TravelEnd,
		RequesterID:         actor.ID,
		DepartmentID:        actor.DepartmentID,
		HeadIncluded:        in.HeadIncluded || actor.IsHead,
		HasParentDepartment: hasParent,
		HasBudget:           hasBudget,
		TotalBudget:         in.TotalBudget,
		ExpenseBreakdown:    items,
		IsInternational:     in.IsInternational,
		NeedsVehicle:        in.NeedsVehicle,
		Stage:               workflow.InitialStage(caps),
		RequesterSignature:  patch.RequesterSignature,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	applyPatch(req, patch)

	// A head's own request self-satisfies the head stage, but a parent
	// department still gets its countersignature before admin.
	if hasParent && caps.IsHead {
		req.Stage = workflow.StagePendingParentHead
	}

	err = db.WithTx(r.Context(), h.Requests.db, func(tx pgx.Tx) error {
		num, err := NextRequestNumber(r.Context(), tx, now)
		if err != nil {
			return err
		}
		req.RequestNumber = num

		if err := Create(r.Context(), tx, req); err != nil {
			return err
		}
		if hasBudget {
			if err := budget.Reserve(r.Context(), tx, req.DepartmentID, fiscalYear, req.TotalBudget); err != nil {
				return err
			}
		}
		return history.Insert(r.Context(), tx, req.ID, "submitted", actor.ID, actor.Role,
			string(workflow.StageDraft), string(req.Stage), "", now, dualSignMetadata(patch))
	})
	if err != nil {
		h.Log.Error("submit request", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not create request")
		return
	}

	h.notifyStageChange(r, req, workflow.StageDraft, actor)
	api.WriteJSON(w, http.StatusCreated, req)
}

// Approve records the acting approver's sign-off for the request's
// current stage and advances it. The load, capability check, signature
// write, sequencing, executive routing, and budget commit all happen
// under one row lock.
func (h *Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id := chi.URLParam(r, "id")

	var in struct {
		Signature string `json:"signature"`
		Comments  string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if in.Signature == "" {
		api.WriteError(w, http.StatusBadRequest, "SIGNATURE_REQUIRED", "approver signature is required")
		return
	}

	now := time.Now().UTC()

	var (
		req       *Request
		prevStage workflow.Stage
	)
	err := db.WithTx(r.Context(), h.Requests.db, func(tx pgx.Tx) error {
		var err error
		req, err = GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		prevStage = req.Stage

		if !req.Stage.IsPending() {
			return statusError{http.StatusConflict, "STAGE_NOT_PENDING", "request is not awaiting approval"}
		}
		snap := req.Snapshot()
		if !workflow.CanApprove(actor.Capabilities(), req.Stage, snap) {
			return statusError{http.StatusForbidden, "NOT_AUTHORIZED_FOR_STAGE", "you cannot approve this stage"}
		}

		a := Approval{Signature: in.Signature, ApprovedBy: actor.ID, ApprovedAt: &now, Comments: in.Comments}
		if err := RecordApproval(r.Context(), tx, req.ID, req.Stage, a); err != nil {
			return err
		}
		setApproval(req, req.Stage, a)
		snap = req.Snapshot()

		// A VP signing the executive stage also stamps the advisory
		// dual-VP acknowledgment slot for multi-department requests.
		if req.Stage == workflow.StagePendingExec && actor.Capabilities().IsVP() {
			second := req.VPApprovedAt != nil
			if err := RecordVPAcknowledgment(r.Context(), tx, req.ID, second, now); err != nil {
				return err
			}
		}

		next, skips, execLevel, err := h.advance(r, tx, req, snap, now)
		if err != nil {
			return err
		}

		if err := AdvanceStage(r.Context(), tx, req.ID, next, execLevel); err != nil {
			return err
		}
		if next == workflow.StageApproved && req.HasBudget {
			if err := budget.Commit(r.Context(), tx, req.DepartmentID, req.CreatedAt.Year(), req.TotalBudget); err != nil {
				return err
			}
		}

		if err := history.Insert(r.Context(), tx, req.ID, "approved", actor.ID, actor.Role,
			string(prevStage), string(next), in.Comments, now, skipMetadata(skips)); err != nil {
			return err
		}

		req.Stage = next
		if execLevel != "" {
			req.ExecLevel = execLevel
		}
		return nil
	})
	if err != nil {
		h.writeTxError(w, err, "approve request")
		return
	}

	h.notifyStageChange(r, req, prevStage, actor)
	api.WriteJSON(w, http.StatusOK, req)
}

// advance computes the request's next stage after the current stage was
// just signed, including the parent-head side branch and executive
// routing.
func (h *Handlers) advance(r *http.Request, tx pgx.Tx, req *Request, snap workflow.Snapshot, now time.Time) (workflow.Stage, []workflow.Skip, workflow.ExecRoute, error) {
	// Side branch: a sub-department request needs the parent head's
	// countersignature between the head and admin stages. The canonical
	// chain does not model it; we transition into and out of it here.
	if req.Stage == workflow.StagePendingHead && req.HasParentDepartment && !req.ParentHead.toStageApproval().Signed() {
		return workflow.StagePendingParentHead, nil, "", nil
	}

	from := req.Stage
	if from == workflow.StagePendingParentHead {
		from = workflow.StagePendingHead
	}
	next, skips := workflow.NextStageWithSkips(snap, from)

	var execLevel workflow.ExecRoute
	if next == workflow.StagePendingExec && req.ExecLevel == "" {
		requester, err := h.Users.GetByID(r.Context(), req.RequesterID)
		if err != nil {
			return "", nil, "", err
		}
		route := workflow.RouteExecutive(snap, requester.Capabilities())
		if route == workflow.RouteAutoApprove {
			// The president's own request closes itself: record the
			// requester's signature in the executive slot and resume
			// sequencing past it.
			a := Approval{Signature: req.RequesterSignature, ApprovedBy: req.RequesterID, ApprovedAt: &now}
			if err := RecordApproval(r.Context(), tx, req.ID, workflow.StagePendingExec, a); err != nil {
				return "", nil, "", err
			}
			setApproval(req, workflow.StagePendingExec, a)
			var more []workflow.Skip
			next, more = workflow.NextStageWithSkips(req.Snapshot(), from)
			skips = append(skips, more...)
		} else {
			execLevel = route
		}
	}
	return next, skips, execLevel, nil
}

// Reject moves the request to the rejected absorbing state and releases
// any budget reservation.
func (h *Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	id := chi.URLParam(r, "id")

	var in struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if in.Reason == "" {
		api.WriteError(w, http.StatusBadRequest, "REASON_REQUIRED", "rejection reason is required")
		return
	}

	now := time.Now().UTC()
	var (
		req       *Request
		prevStage workflow.Stage
	)
	err := db.WithTx(r.Context(), h.Requests.db, func(tx pgx.Tx) error {
		var err error
		req, err = GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		prevStage = req.Stage

		if !req.Stage.IsPending() {
			return statusError{http.StatusConflict, "STAGE_NOT_PENDING", "request is not awaiting approval"}
		}
		if !workflow.CanApprove(actor.Capabilities(), req.Stage, req.Snapshot()) {
			return statusError{http.StatusForbidden, "NOT_AUTHORIZED_FOR_STAGE", "you cannot act on this stage"}
		}

		if err := MarkRejected(r.Context(), tx, req.ID, in.Reason, prevStage); err != nil {
			return err
		}
		if req.HasBudget {
			if err := budget.Release(r.Context(), tx, req.DepartmentID, req.CreatedAt.Year(), req.TotalBudget); err != nil {
				return err
			}
		}
		if err := history.Insert(r.Context(), tx, req.ID, "rejected", actor.ID, actor.Role,
			string(prevStage), string(workflow.StageRejected), in.Reason, now, nil); err != nil {
			return err
		}
		req.Stage = workflow.StageRejected
		req.RejectionReason = in.Reason
		req.RejectionStage = string(prevStage)
		return nil
	})
	if err != nil {
		h.writeTxError(w, err, "reject request")
		return
	}

	h.notifyStageChange(r, req, prevStage, actor)
	api.WriteJSON(w, http.StatusOK, req)
}

// Get returns one request. Visible to its requester and to anyone
// holding an approver capability.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	req, err := h.Requests.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "request not found")
			return
		}
		h.Log.Error("load request", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load request")
		return
	}
	if req.RequesterID != actor.ID && !isApprover(actor) {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "not your request")
		return
	}
	api.WriteJSON(w, http.StatusOK, req)
}

// ListMine returns the caller's own requests.
func (h *Handlers) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	out, err := h.Requests.ListByRequester(r.Context(), actor.ID)
	if err != nil {
		h.Log.Error("list requests", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list requests")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"requests": out})
}

// Queue returns the pending requests for one stage, for approvers who
// hold the matching capability.
func (h *Handlers) Queue(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	stage, err := workflow.ParseStage(r.URL.Query().Get("stage"))
	if err != nil || !stage.IsPending() {
		api.WriteError(w, http.StatusBadRequest, "STAGE_INVALID", "stage must be a pending approval stage")
		return
	}
	if !stageCapability(actor, stage) {
		api.WriteError(w, http.StatusForbidden, "NOT_AUTHORIZED_FOR_STAGE", "you cannot view this queue")
		return
	}
	out, err := h.Requests.ListByStage(r.Context(), stage)
	if err != nil {
		h.Log.Error("list stage queue", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list queue")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"requests": out})
}

// NextApprover answers "who should act next" for a request: the
// advisor's suggestion plus, when one resolves, a concrete person from
// the approver directory. Advisory only.
func (h *Handlers) NextApprover(w http.ResponseWriter, r *http.Request) {
	req, err := h.Requests.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "request not found")
			return
		}
		h.Log.Error("load request", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load request")
		return
	}
	requester, err := h.Users.GetByID(r.Context(), req.RequesterID)
	if err != nil {
		h.Log.Error("load requester", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load requester")
		return
	}

	sg := workflow.SuggestNextApprover(req.AdvisorContext(requester))
	resp := map[string]any{"suggestion": sg, "approver": nil}
	if sg != nil {
		candidates, err := h.Approvers.ListCandidates(r.Context())
		if err != nil {
			h.Log.Error("list approver candidates", zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not resolve approver")
			return
		}
		resp["approver"] = workflow.ResolveApprover(sg, candidates, h.Cfg.PreferredAdminMatch)
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

// History returns the request's audit trail.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	entries, err := history.ListByRequest(r.Context(), h.Requests.db, chi.URLParam(r, "id"))
	if err != nil {
		h.Log.Error("load history", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load history")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// statusError carries an HTTP verdict out of a transaction closure.
type statusError struct {
	Status  int
	Code    string
	Message string
}

func (e statusError) Error() string { return e.Message }

func (h *Handlers) writeTxError(w http.ResponseWriter, err error, op string) {
	var se statusError
	if errors.As(err, &se) {
		api.WriteError(w, se.Status, se.Code, se.Message)
		return
	}
	if errors.Is(err, ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "request not found")
		return
	}
	h.Log.Error(op, zap.Error(err))
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "operation failed")
}

func writeValidationError(w http.ResponseWriter, err error) {
	code := "VALIDATION_FAILED"
	var ve ValidationError
	var bve budget.ValidationError
	switch {
	case errors.As(err, &ve):
		code = ve.Code
	case errors.As(err, &bve):
		code = bve.Code
	}
	api.WriteError(w, http.StatusUnprocessableEntity, code, err.Error())
}

func (h *Handlers) notifyStageChange(r *http.Request, req *Request, previous workflow.Stage, actor *user.User) {
	if h.Notify == nil {
		return
	}
	requester := actor
	if actor.ID != req.RequesterID {
		u, err := h.Users.GetByID(r.Context(), req.RequesterID)
		if err != nil {
			h.Log.Warn("load requester for notification", zap.Error(err))
		} else {
			requester = u
		}
	}
	sg := workflow.SuggestNextApprover(req.AdvisorContext(requester))
	var resolved *workflow.Candidate
	if sg != nil {
		candidates, err := h.Approvers.ListCandidates(r.Context())
		if err != nil {
			h.Log.Warn("list approver candidates for notification", zap.Error(err))
		} else {
			resolved = workflow.ResolveApprover(sg, candidates, h.Cfg.PreferredAdminMatch)
		}
	}
	h.Notify.StageChanged(r.Context(), req, previous, sg, resolved)
}

func parseExpenseItems(in []ExpenseItemDTO) ([]budget.ExpenseItem, error) {
	out := make([]budget.ExpenseItem, 0, len(in))
	for _, d := range in {
		amt, err := decimal.NewFromString(d.Amount)
		if err != nil {
			return nil, ValidationError{Code: "EXPENSE_AMOUNT_INVALID", Message: "expense amount is not a valid decimal"}
		}
		out = append(out, budget.ExpenseItem{Item: d.Item, Amount: amt, Description: d.Description})
	}
	return out, nil
}

func applyPatch(req *Request, p workflow.SignaturePatch) {
	set := func(dst *Approval, src *workflow.StageApproval) {
		if src == nil {
			return
		}
		at := src.ApprovedAt
		*dst = Approval{Signature: src.Signature, ApprovedBy: src.ApprovedBy, ApprovedAt: &at}
	}
	set(&req.Head, p.Head)
	set(&req.Comptroller, p.Comptroller)
	set(&req.HR, p.HR)
	set(&req.Exec, p.Exec)
}

func setApproval(req *Request, stage workflow.Stage, a Approval) {
	switch stage {
	case workflow.StagePendingHead:
		req.Head = a
	case workflow.StagePendingParentHead:
		req.ParentHead = a
	case workflow.StagePendingAdmin:
		req.Admin = a
	case workflow.StagePendingComptroller:
		req.Comptroller = a
	case workflow.StagePendingHR:
		req.HR = a
	case workflow.StagePendingExec:
		req.Exec = a
	}
}

func isApprover(u *user.User) bool {
	return u.IsHead || u.IsAdmin || u.IsComptroller || u.IsHR || u.IsExecutive
}

func stageCapability(u *user.User, stage workflow.Stage) bool {
	switch stage {
	case workflow.StagePendingHead, workflow.StagePendingParentHead:
		return u.IsHead
	case workflow.StagePendingAdmin:
		return u.IsAdmin
	case workflow.StagePendingComptroller:
		return u.IsComptroller
	case workflow.StagePendingHR:
		return u.IsHR
	case workflow.StagePendingExec:
		return u.IsExecutive
	}
	return false
}

func dualSignMetadata(p workflow.SignaturePatch) map[string]any {
	var stages []string
	if p.Head != nil {
		stages = append(stages, "head")
	}
	if p.Comptroller != nil {
		stages = append(stages, "comptroller")
	}
	if p.HR != nil {
		stages = append(stages, "hr")
	}
	if p.Exec != nil {
		stages = append(stages, "exec")
	}
	if len(stages) == 0 {
		return nil
	}
	return map[string]any{"dualSignedStages": stages}
}

func skipMetadata(skips []workflow.Skip) map[string]any {
	if len(skips) == 0 {
		return nil
	}
	out := make([]map[string]string, 0, len(skips))
	for _, s := range skips {
		out = append(out, map[string]string{"stage": string(s.Stage), "reason": s.Reason})
	}
	return map[string]any{"skippedStages": out}
}
