package fleet

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
	"travelink/internal/history"
	"travelink/internal/request"
	"travelink/internal/workflow"
	"travelink/pkg/db"
)

type Handlers struct {
	Log      *zap.Logger
	Repo     *Repository
	Requests *request.Repository
	Pool     *pgxpool.Pool
}

func (h Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	out, err := h.Repo.ListVehicles(r.Context())
	if err != nil {
		h.Log.Error("list vehicles", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list vehicles")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"vehicles": out})
}

func (h Handlers) ListDrivers(w http.ResponseWriter, r *http.Request) {
	out, err := h.Repo.ListDrivers(r.Context())
	if err != nil {
		h.Log.Error("list drivers", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list drivers")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"drivers": out})
}

type assignRequest struct {
	VehicleID string `json:"vehicleId"`
	DriverID  string `json:"driverId"`
}

// Assign attaches a vehicle (and optionally a driver) to a request
// during admin processing. Only the admin office may do it, and only
// while the request sits at the admin stage.
func (h Handlers) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	if !actor.IsAdmin {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only the admin office assigns vehicles")
		return
	}

	requestID := chi.URLParam(r, "id")
	var in assignRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if in.VehicleID == "" {
		api.WriteError(w, http.StatusBadRequest, "VEHICLE_REQUIRED", "vehicleId is required")
		return
	}

	err := db.WithTx(r.Context(), h.Pool, func(tx pgx.Tx) error {
		req, err := request.GetForUpdate(r.Context(), tx, requestID)
		if err != nil {
			return err
		}
		if req.Stage != workflow.StagePendingAdmin {
			return errStageNotAdmin
		}
		if !req.NeedsVehicle {
			return errNoVehicleNeed
		}

		available, err := h.Repo.VehicleAvailable(r.Context(), in.VehicleID, req.TravelStart, req.TravelEnd)
		if err != nil {
			return err
		}
		if !available {
			return errVehicleUnavailable
		}

		if err := request.AssignVehicle(r.Context(), tx, req.ID, in.VehicleID, in.DriverID); err != nil {
			return err
		}
		return history.Insert(r.Context(), tx, req.ID, "vehicle_assigned", actor.ID, actor.Role,
			string(req.Stage), string(req.Stage), "", time.Now().UTC(),
			map[string]string{"vehicleId": in.VehicleID, "driverId": in.DriverID})
	})
	switch {
	case err == nil:
		api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	case errors.Is(err, request.ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "request not found")
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "vehicle not found")
	case errors.Is(err, errStageNotAdmin):
		api.WriteError(w, http.StatusConflict, "STAGE_NOT_ADMIN", "vehicle assignment happens during admin processing")
	case errors.Is(err, errNoVehicleNeed):
		api.WriteError(w, http.StatusConflict, "NO_VEHICLE_NEEDED", "request did not ask for a vehicle")
	case errors.Is(err, errVehicleUnavailable):
		api.WriteError(w, http.StatusConflict, "VEHICLE_UNAVAILABLE", "vehicle is not available for those dates")
	default:
		h.Log.Error("assign vehicle", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not assign vehicle")
	}
}

var (
	errStageNotAdmin      = errors.New("request not at admin stage")
	errNoVehicleNeed      = errors.New("request does not need a vehicle")
	errVehicleUnavailable = errors.New("vehicle unavailable")
)
