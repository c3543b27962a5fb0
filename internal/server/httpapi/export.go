package httpapi

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/regisync/regisync/internal/server/participants"
)

var exportHeaders = []string{
	"ID", "Full Name", "Email", "Phone", "Registration Status",
	"Attendance Confirmed", "Registered At", "Checked In At", "QR Code Data",
}

func exportRow(p *participants.Participant) []string {
	checkedIn := ""
	if p.CheckedInAt != nil {
		checkedIn = p.CheckedInAt.Format(time.RFC3339)
	}
	return []string{
		p.ID,
		p.FullName,
		p.Email,
		p.Phone,
		string(p.RegistrationStatus),
		fmt.Sprintf("%t", p.AttendanceConfirmed),
		p.RegisteredAt.Format(time.RFC3339),
		checkedIn,
		p.IdentifierPayload,
	}
}

// handleExport streams the filtered participant list as a CSV or XLSX
// attachment. Filters match the list endpoint; pagination does not apply.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {

	f, _, _ := parseListQuery(r)

	list, err := s.participants.Export(r.Context(), f)
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	filename := fmt.Sprintf("participants_%s", time.Now().Format("20060102_150405"))

	if r.URL.Query().Get("format") == "xlsx" {
		s.exportXLSX(w, r, list, filename)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeaders)
	for _, p := range list {
		_ = cw.Write(exportRow(p))
	}
	cw.Flush()
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request, list []*participants.Participant, filename string) {

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}
	for rowIdx, p := range list {
		for col, value := range exportRow(p) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			_ = file.SetCellValue(sheet, cell, value)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))

	if err := file.Write(w); err != nil {
		s.logger.Error(r.Context(), "error writing xlsx export", "error", err)
	}
}
