package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/service"
	"github.com/segyhp/debt-tracker/pkg/response"
)

type DebtorHandler struct {
	service   service.DebtorService
	validator *validator.Validate
}

func NewDebtorHandler(service service.DebtorService) *DebtorHandler {
	return &DebtorHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *DebtorHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.DebtorRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	debtor, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, debtor)
}

func (h *DebtorHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	debtors, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debtors)
}

func (h *DebtorHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	debtor, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debtor)
}

func (h *DebtorHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.DebtorRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	debtor, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, debtor)
}

func (h *DebtorHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	response.Message(w, "Debtor deleted")
}
