package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devflow-qa/apiserver/internal/services"
	"github.com/devflow-qa/apiserver/types"
)

const (
	webhookSignatureHeader = "X-Webhook-Signature"
	webhookMaxBody         = 1 << 20

	webhookUserCreated = "user.created"
	webhookUserUpdated = "user.updated"
	webhookUserDeleted = "user.deleted"
)

// WebhookHandler ingests identity-provider events that mirror
// external accounts into the forum.
type WebhookHandler struct {
	userService *services.UserService
	secret      []byte
}

// NewWebhookHandler constructs a handler with the provided
// dependencies. secret is the shared HMAC key the provider signs
// request bodies with.
func NewWebhookHandler(userService *services.UserService, secret string) *WebhookHandler {
	return &WebhookHandler{
		userService: userService,
		secret:      []byte(secret),
	}
}

// WebhookRouter registers webhook routes on the given router.
func WebhookRouter(r chi.Router, userService *services.UserService, secret string) {
	handler := NewWebhookHandler(userService, secret)

	r.Post("/identity", handler.Identity)
}

// Identity handles identity-provider user events. The request body
// must carry a hex HMAC-SHA256 signature over the raw bytes.
func (h *WebhookHandler) Identity(w http.ResponseWriter, r *http.Request) {
	if len(h.secret) == 0 {
		writeError(w, http.StatusServiceUnavailable, "webhooks are not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, webhookMaxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if !h.verifySignature(body, r.Header.Get(webhookSignatureHeader)) {
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var event IdentityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	switch event.Type {
	case webhookUserCreated, webhookUserUpdated:
		user, err := h.userService.UpsertFromIdentity(r.Context(), types.User{
			ExternalID: event.Data.ExternalID,
			Name:       event.Data.Name,
			Username:   event.Data.Username,
			Email:      event.Data.Email,
			Picture:    event.Data.Picture,
		})
		if err != nil {
			writeServiceError(w, err, "failed to sync user")
			return
		}
		writeJSON(w, http.StatusOK, user)
	case webhookUserDeleted:
		if err := h.userService.DeleteFromIdentity(r.Context(), event.Data.ExternalID); err != nil {
			writeServiceError(w, err, "failed to delete user")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusBadRequest, "unknown event type")
	}
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	provided, err := hex.DecodeString(signature)
	if err != nil || len(provided) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// IdentityEvent is the envelope the identity provider posts.
type IdentityEvent struct {
	Type string            `json:"type"`
	Data IdentityEventData `json:"data"`
}

type IdentityEventData struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
}
