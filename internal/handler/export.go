package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/pkordes/trip-planner/web/internal/domain"
)

// Export formats accepted by ?format=.
const (
	formatJSON = "json"
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

const (
	itinerarySheet = "Itinerary"
	reviewSheet    = "Review"
)

// ExportRecord is one exported activity. The csv tags name the CSV header
// columns and the XLSX header row uses the same names.
type ExportRecord struct {
	Destination string `json:"destination" csv:"destination"`
	StartDate   string `json:"start_date" csv:"start_date"`
	EndDate     string `json:"end_date" csv:"end_date"`
	Day         int    `json:"day" csv:"day"`
	Position    int    `json:"position" csv:"position"`
	Activity    string `json:"activity" csv:"activity"`
}

// ExportResponse is the JSON export body.
type ExportResponse struct {
	Rows   []ExportRecord `json:"rows"`
	Review *domain.Review `json:"review,omitempty"`
}

// exportColumns is the header row of the XLSX export.
var exportColumns = []any{"destination", "start_date", "end_date", "day", "position", "activity"}

// GetExport handles GET /export.
// It returns the session's itinerary as a flat table, one row per activity.
// Use ?format=csv or ?format=xlsx for a download; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatCSV && format != formatXLSX {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	rows, review, err := s.exports.Export(r.Context(), sessionID(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "no itinerary to export")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	records := toRecords(rows)

	switch format {
	case formatCSV:
		body, err := buildCSV(records)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeAttachment(w, "text/csv", "itinerary.csv", body)
	case formatXLSX:
		body, err := buildXLSX(records, review)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "itinerary.xlsx", body)
	default:
		writeJSON(w, http.StatusOK, ExportResponse{Rows: records, Review: review})
	}
}

func toRecords(rows []domain.ExportRow) []ExportRecord {
	out := make([]ExportRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRecord{
			Destination: r.Destination,
			StartDate:   r.StartDate,
			EndDate:     r.EndDate,
			Day:         r.Day,
			Position:    r.Position,
			Activity:    r.Activity,
		})
	}
	return out
}

// buildCSV encodes records with a header row. An empty export still carries
// the header.
func buildCSV(records []ExportRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)

	if err := enc.EncodeHeader(ExportRecord{}); err != nil {
		return nil, fmt.Errorf("handler.buildCSV: header: %w", err)
	}
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("handler.buildCSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("handler.buildCSV: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// buildXLSX writes the records to an "Itinerary" sheet and, when review is
// present, the review text and suggestions to a "Review" sheet.
func buildXLSX(records []ExportRecord, review *domain.Review) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), itinerarySheet); err != nil {
		return nil, fmt.Errorf("handler.buildXLSX: %w", err)
	}
	if err := f.SetSheetRow(itinerarySheet, "A1", &exportColumns); err != nil {
		return nil, fmt.Errorf("handler.buildXLSX: header: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: %w", err)
		}
		row := []any{rec.Destination, rec.StartDate, rec.EndDate, rec.Day, rec.Position, rec.Activity}
		if err := f.SetSheetRow(itinerarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: row %d: %w", i+1, err)
		}
	}

	if review != nil {
		if _, err := f.NewSheet(reviewSheet); err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: %w", err)
		}
		if err := f.SetCellValue(reviewSheet, "A1", "review"); err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: %w", err)
		}
		if err := f.SetCellValue(reviewSheet, "B1", review.Review); err != nil {
			return nil, fmt.Errorf("handler.buildXLSX: %w", err)
		}
		for i, suggestion := range review.Suggestions {
			cell, err := excelize.CoordinatesToCellName(2, i+2)
			if err != nil {
				return nil, fmt.Errorf("handler.buildXLSX: %w", err)
			}
			if err := f.SetCellValue(reviewSheet, cell, suggestion); err != nil {
				return nil, fmt.Errorf("handler.buildXLSX: suggestion %d: %w", i+1, err)
			}
		}
		if len(review.Suggestions) > 0 {
			if err := f.SetCellValue(reviewSheet, "A2", "suggestions"); err != nil {
				return nil, fmt.Errorf("handler.buildXLSX: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("handler.buildXLSX: write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
