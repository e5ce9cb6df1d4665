package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/service"
	customError "github.com/segyhp/debt-tracker/pkg/errors"
	"github.com/segyhp/debt-tracker/pkg/response"

	"go.uber.org/zap"
)

// multipartOverhead is allowed on top of the file limit for form fields and boundaries.
const multipartOverhead = 1 << 20

type CollateralHandler struct {
	service   service.CollateralService
	validator *validator.Validate
	maxBytes  int64
}

func NewCollateralHandler(service service.CollateralService, maxBytes int64) *CollateralHandler {
	return &CollateralHandler{
		service:   service,
		validator: newValidator(),
		maxBytes:  maxBytes,
	}
}

// Upload handles POST /collaterals as multipart/form-data with the fields
// file, debt_id and an optional description.
func (h *CollateralHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.FromError(w, customError.WrapFileTooLarge(h.maxBytes))
			return
		}
		response.BadRequest(w, "Invalid multipart form", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required", err)
		return
	}
	defer file.Close()

	debtID, err := uuid.Parse(r.FormValue("debt_id"))
	if err != nil {
		response.BadRequest(w, "Invalid debt_id", err)
		return
	}

	req := domain.UploadCollateralRequest{
		DebtID:   debtID,
		FileName: header.Filename,
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		req.Description = &description
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	collateral, err := h.service.Upload(r.Context(), userID, &req, file)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, collateral)
}

// ListByDebt handles GET /collaterals?debt_id=
func (h *CollateralHandler) ListByDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	debtID, ok := queryID(w, r, "debt_id")
	if !ok {
		return
	}
	if debtID == nil {
		response.BadRequest(w, "debt_id is required", nil)
		return
	}

	collaterals, err := h.service.ListByDebt(r.Context(), userID, *debtID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, collaterals)
}

func (h *CollateralHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	collateral, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, collateral)
}

// Download streams the stored file under its original name.
func (h *CollateralHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	collateral, file, err := h.service.Download(r.Context(), userID, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", collateral.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": collateral.FileName}))
	if collateral.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(collateral.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file); err != nil {
		zap.L().Warn("collateral download interrupted", zap.String("collateral_id", id.String()), zap.Error(err))
	}
}

func (h *CollateralHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	response.Message(w, "Collateral deleted")
}
