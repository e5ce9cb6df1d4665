package handler

import (
	"net/http"
	"strings"

	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/service"
	"github.com/segyhp/debt-tracker/pkg/response"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /notifications?debtor_id=&debt_id=&status=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	debtorID, ok := queryID(w, r, "debtor_id")
	if !ok {
		return
	}
	debtID, ok := queryID(w, r, "debt_id")
	if !ok {
		return
	}

	filter := domain.NotificationFilter{
		DebtorID: debtorID,
		DebtID:   debtID,
		Status:   domain.NotificationStatus(strings.ToUpper(r.URL.Query().Get("status"))),
	}

	notifications, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, notifications)
}

// SendManual handles POST /notifications/send-manual/{debtId}. The body is
// optional; without a message the standard reminder is sent.
func (h *NotificationHandler) SendManual(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	debtID, ok := pathID(w, r, "debtId")
	if !ok {
		return
	}

	var req domain.ManualNotificationRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	result, err := h.service.SendManual(r.Context(), userID, debtID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Notification deleted")
}
