package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"invtrack/internal/report"
)

// ReportsHandler serves spreadsheet exports.
type ReportsHandler struct {
	DB *sql.DB
}

// Export handles GET /api/reports/export: the full item/movement/damaged
// collections as an XLSX download.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	workbook, err := report.BuildWorkbook(r.Context(), h.DB)
	if err != nil {
		slog.Error("building report workbook", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := workbook.Write(w); err != nil {
		slog.Error("writing report workbook", "error", err)
	}
}
