package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/service"
	"github.com/segyhp/debt-tracker/pkg/response"
)

type DebtHandler struct {
	service   service.DebtService
	validator *validator.Validate
}

func NewDebtHandler(service service.DebtService) *DebtHandler {
	return &DebtHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.DebtRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	debt, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, debt)
}

// List handles GET /debts?status=&debtor_id=
func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	debtorID, ok := queryID(w, r, "debtor_id")
	if !ok {
		return
	}

	filter := domain.DebtFilter{
		Status:   domain.DebtStatus(strings.ToUpper(r.URL.Query().Get("status"))),
		DebtorID: debtorID,
	}

	debts, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debts)
}

func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	debt, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.DebtRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	debt, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) IncreaseInterest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.IncreaseInterestRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	debt, err := h.service.IncreaseInterest(r.Context(), userID, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	debt, err := h.service.MarkPaid(r.Context(), userID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	response.Message(w, "Debt deleted")
}
