// Package payslip renders payroll records as downloadable PDF payslips.
package payslip

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"github.com/odyssey-erp/odyssey-admin/internal/hr"
	"github.com/odyssey-erp/odyssey-admin/internal/manager"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/records"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Company is printed in the payslip header.
const Company = "Odyssey Admin"

// Render writes a one page A4 payslip for p.
func Render(p hr.Payroll) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+p.Period, true)
	pdf.SetCreator(Company, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, Company)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.CellFormat(50, 8, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}
	line("Employee", p.EmployeeName)
	line("Email", p.EmployeeEmail)
	line("Period", p.Period)
	line("Status", manager.Humanize(p.Status))
	pdf.Ln(6)

	amount := func(label string, v float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 12)
		pdf.CellFormat(100, 9, label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(60, 9, fmt.Sprintf("%.2f", v), "B", 1, "R", false, 0, "")
	}
	amount("Gross Pay", p.GrossPay, false)
	amount("Deductions", p.Deductions, false)
	amount("Net Pay", p.NetPay, true)

	if p.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, p.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("payslip: render %s: %w", p.ID, err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name, e.g. "payslip-2025-08-admin-user.pdf".
func Filename(p hr.Payroll) string {
	return "payslip-" + p.Period + "-" + hr.RoleSlug(strings.TrimSpace(p.EmployeeName)) + ".pdf"
}

// Handler serves payslip downloads.
type Handler struct {
	store  *records.Store[hr.Payroll]
	rbac   rbac.Middleware
	logger *slog.Logger
}

// NewHandler builds Handler instance.
func NewHandler(store *records.Store[hr.Payroll], rbac rbac.Middleware, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, rbac: rbac, logger: logger}
}

// MountRoutes registers the download under the payroll path.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.PermPayrollRead)).Get("/{id}/payslip.pdf", h.download)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.store.GetByID(r.Context(), id)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("payroll %s: %w", id, shared.ErrNotFound))
		return
	}
	body, err := Render(p)
	if err != nil {
		h.logger.Error("render payslip", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", Filename(p)))
	_, _ = w.Write(body)
}
