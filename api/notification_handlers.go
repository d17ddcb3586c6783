package api

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/notification"
)

// NotificationHandler exposes the push-notification endpoints.
type NotificationHandler struct {
	svc *notification.Service
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

// SendToDevice handles POST /api/v1/notifications/device.
func (h *NotificationHandler) SendToDevice(w http.ResponseWriter, r *http.Request) {
	var req notification.DeviceMessage
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.svc.SendToDevice(r.Context(), req)
	if err != nil {
		h.writeSendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{MessageID: id})
}

// SendToTopic handles POST /api/v1/notifications/topic.
func (h *NotificationHandler) SendToTopic(w http.ResponseWriter, r *http.Request) {
	var req notification.TopicMessage
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.svc.SendToTopic(r.Context(), req)
	if err != nil {
		h.writeSendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{MessageID: id})
}

// SendMulticast handles POST /api/v1/notifications/multicast and returns
// the per-device outcomes.
func (h *NotificationHandler) SendMulticast(w http.ResponseWriter, r *http.Request) {
	var req notification.MulticastMessage
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcomes, err := h.svc.SendMulticast(r.Context(), req)
	if err != nil {
		h.writeSendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

// Subscribe handles POST /api/v1/notifications/subscriptions.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req notification.Subscription
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Subscribe(r.Context(), req); err != nil {
		h.writeSendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unsubscribe handles DELETE /api/v1/notifications/subscriptions.
func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req notification.Subscription
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Unsubscribe(r.Context(), req); err != nil {
		h.writeSendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) writeSendError(w http.ResponseWriter, err error) {
	if errors.Is(err, notification.ErrEmptyTarget) {
		writeError(w, http.StatusBadRequest, "missing target")
		return
	}
	slog.Error("notification delivery failed", "error", err)
	writeError(w, http.StatusBadGateway, "notification delivery failed")
}
