package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/segyhp/debt-tracker/internal/domain"
	"github.com/segyhp/debt-tracker/internal/service"
	"github.com/segyhp/debt-tracker/pkg/response"
	"github.com/segyhp/debt-tracker/pkg/utils"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(service service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, stats)
}

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(service service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Debts handles GET /reports/debts.xlsx?debtor_id=&status=&from=&to=
func (h *ReportHandler) Debts(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	debtorID, ok := queryID(w, r, "debtor_id")
	if !ok {
		return
	}

	filter := domain.ReportFilter{
		DebtorID: debtorID,
		Status:   domain.DebtStatus(strings.ToUpper(r.URL.Query().Get("status"))),
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			response.BadRequest(w, "Invalid "+name+" date", err)
			return
		}
		*dst = &parsed
	}

	// Buffer the workbook so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.service.DebtReport(r.Context(), userID, filter, &buf); err != nil {
		response.FromError(w, err)
		return
	}

	fileName := fmt.Sprintf("relatorio-dividas-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		zap.L().Warn("report download interrupted", zap.Error(err))
	}
}
