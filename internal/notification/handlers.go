package notification

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"travelink/internal/api"
	"travelink/pkg/config"
	"travelink/pkg/sms"
)

type Handlers struct {
	Cfg  config.Config
	Log  *zap.Logger
	Repo *Repository
}

// ListMine returns the caller's recent notifications.
func (h Handlers) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	out, err := h.Repo.ListForRecipient(r.Context(), actor.ID, 50)
	if err != nil {
		h.Log.Error("list notifications", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list notifications")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

type deliveryCallback struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"` // delivered | failed
}

// SMSCallback receives delivery reports from the SMS gateway. The
// gateway signs the raw body; an invalid signature is rejected, an
// unknown message id is accepted so the gateway does not retry.
func (h Handlers) SMSCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	sig := strings.TrimSpace(r.Header.Get("X-Gateway-Signature"))
	if !sms.VerifyCallback(body, sig, h.Cfg.SMS.CallbackSecret) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid callback signature")
		return
	}

	var payload deliveryCallback
	if err := json.Unmarshal(body, &payload); err != nil || payload.MessageID == "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	status := payload.Status
	if status != "delivered" && status != "failed" {
		status = "failed"
	}

	matched, err := h.Repo.UpdateDeliveryStatus(r.Context(), payload.MessageID, status)
	if err != nil {
		h.Log.Error("update delivery status", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not record delivery status")
		return
	}
	if !matched && h.Cfg.AppEnv != "prod" {
		h.Log.Info("sms callback for unknown message", zap.String("messageId", payload.MessageID))
	}

	w.WriteHeader(http.StatusOK)
}
