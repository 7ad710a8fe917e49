package adminaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"travelink/internal/api"
	"travelink/internal/budget"
	"travelink/internal/history"
	"travelink/internal/request"
	"travelink/internal/workflow"
	"travelink/pkg/db"
)

type Handlers struct {
	Log      *zap.Logger
	Requests *request.Repository
	Pool     *pgxpool.Pool
}

type actionBody struct {
	Reason string `json:"reason"`
}

var errNotActionable = errors.New("request not in an actionable stage")

// Return sends a pending request back to the requester as a draft. Sign-offs
// collected so far are cleared and any budget reservation is released.
// Admin-only.
func (h Handlers) Return(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	if !actor.IsAdmin {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only the admin office can return requests")
		return
	}

	id := chi.URLParam(r, "id")
	var in actionBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if in.Reason == "" {
		api.WriteError(w, http.StatusBadRequest, "REASON_REQUIRED", "a reason is required")
		return
	}

	now := time.Now().UTC()
	err := db.WithTx(r.Context(), h.Pool, func(tx pgx.Tx) error {
		req, err := request.GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if !req.Stage.IsPending() {
			return errNotActionable
		}
		if err := request.MarkReturned(r.Context(), tx, req.ID); err != nil {
			return err
		}
		if req.HasBudget {
			if err := budget.Release(r.Context(), tx, req.DepartmentID, req.CreatedAt.Year(), req.TotalBudget); err != nil {
				return err
			}
		}
		if err := Insert(r.Context(), tx, req.ID, ActionReturnToRequester, in.Reason, actor.ID, nil); err != nil {
			return err
		}
		return history.Insert(r.Context(), tx, req.ID, "returned", actor.ID, actor.Role,
			string(req.Stage), string(workflow.StageDraft), in.Reason, now, nil)
	})
	h.writeResult(w, err, "return request")
}

// Cancel moves a request to the cancelled absorbing state. The requester
// may cancel their own pending request; the admin office may cancel any.
func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	id := chi.URLParam(r, "id")
	var in actionBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	now := time.Now().UTC()
	err := db.WithTx(r.Context(), h.Pool, func(tx pgx.Tx) error {
		req, err := request.GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if req.RequesterID != actor.ID && !actor.IsAdmin {
			return errForbidden
		}
		if !req.Stage.IsPending() && req.Stage != workflow.StageDraft {
			return errNotActionable
		}
		if err := request.MarkCancelled(r.Context(), tx, req.ID); err != nil {
			return err
		}
		if req.HasBudget && req.Stage.IsPending() {
			if err := budget.Release(r.Context(), tx, req.DepartmentID, req.CreatedAt.Year(), req.TotalBudget); err != nil {
				return err
			}
		}
		if err := Insert(r.Context(), tx, req.ID, ActionCancelRequest, in.Reason, actor.ID, nil); err != nil {
			return err
		}
		return history.Insert(r.Context(), tx, req.ID, "cancelled", actor.ID, actor.Role,
			string(req.Stage), string(workflow.StageCancelled), in.Reason, now, nil)
	})
	h.writeResult(w, err, "cancel request")
}

type overrideBody struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Override force-moves a request to an arbitrary pending stage, for
// fixing mis-routed paperwork. Admin-only, always audited.
func (h Handlers) Override(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	if !actor.IsAdmin {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only the admin office can override stages")
		return
	}

	id := chi.URLParam(r, "id")
	var in overrideBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if in.Reason == "" {
		api.WriteError(w, http.StatusBadRequest, "REASON_REQUIRED", "a reason is required")
		return
	}
	target, err := workflow.ParseStage(in.Stage)
	if err != nil || !target.IsPending() {
		api.WriteError(w, http.StatusBadRequest, "STAGE_INVALID", "target stage must be a pending approval stage")
		return
	}

	now := time.Now().UTC()
	err = db.WithTx(r.Context(), h.Pool, func(tx pgx.Tx) error {
		req, err := request.GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		if req.Stage.IsTerminal() {
			return errNotActionable
		}
		if err := request.AdvanceStage(r.Context(), tx, req.ID, target, ""); err != nil {
			return err
		}
		if err := Insert(r.Context(), tx, req.ID, ActionOverrideStage, in.Reason, actor.ID,
			map[string]string{"from": string(req.Stage), "to": string(target)}); err != nil {
			return err
		}
		return history.Insert(r.Context(), tx, req.ID, "stage_overridden", actor.ID, actor.Role,
			string(req.Stage), string(target), in.Reason, now, nil)
	})
	h.writeResult(w, err, "override stage")
}

var errForbidden = errors.New("not allowed to act on this request")

func (h Handlers) writeResult(w http.ResponseWriter, err error, op string) {
	switch {
	case err == nil:
		api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	case errors.Is(err, request.ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "request not found")
	case errors.Is(err, errForbidden):
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "not your request")
	case errors.Is(err, errNotActionable):
		api.WriteError(w, http.StatusConflict, "STAGE_NOT_ACTIONABLE", "request is not in a stage this action applies to")
	default:
		h.Log.Error(op, zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "operation failed")
	}
}
