package products

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"planpro/internal/audit"
	"planpro/internal/response"
	"planpro/internal/schema"
	"planpro/internal/server"
	"planpro/internal/store"
)

// Export handles GET /api/v1/products/export: an XLSX workbook with one
// column per registry field, in registry order.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	fields := h.Store.FieldDefs()
	headers := []string{"Name", "Created"}
	for _, f := range fields {
		headers = append(headers, f.Label)
	}

	var data [][]string
	for _, p := range h.Store.Products.All() {
		row := []string{p.Name, time.UnixMilli(p.CreatedAt).Format("2006-01-02")}
		for _, f := range fields {
			row = append(row, renderAttribute(f, p.Attributes[f.Name]))
		}
		data = append(data, row)
	}

	h.Trail.Record(server.Username(r), audit.ActionExport, store.KeyProducts, "", fmt.Sprintf("Exported %d products", len(data)))
	writeExcel(w, "Products", headers, data)
}

// renderAttribute flattens a raw attribute value to a cell string according
// to its declared type. Undecodable or missing values render empty.
func renderAttribute(f schema.FieldDefinition, raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	switch f.Type {
	case schema.TypeNumber:
		var n float64
		if json.Unmarshal(raw, &n) == nil {
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", n), "0"), ".")
		}
	case schema.TypeList:
		var items []string
		if json.Unmarshal(raw, &items) == nil {
			return strings.Join(items, "\n")
		}
	case schema.TypeFAQ:
		var items []schema.FAQEntry
		if json.Unmarshal(raw, &items) == nil {
			lines := make([]string, len(items))
			for i, e := range items {
				lines[i] = "Q: " + e.Question + " A: " + e.Answer
			}
			return strings.Join(lines, "\n")
		}
	case schema.TypeRecommendation:
		var items []schema.Recommendation
		if json.Unmarshal(raw, &items) == nil {
			lines := make([]string, len(items))
			for i, rec := range items {
				lines[i] = fmt.Sprintf("%s (%s): %s", rec.Name, rec.URL, rec.Reason)
			}
			return strings.Join(lines, "\n")
		}
	default:
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return ""
}

func writeExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		response.Err(w, "failed to create sheet", 500)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		response.Err(w, "failed to create header style", 500)
		return
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	f.DeleteSheet("Sheet1")

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", strings.ToLower(sheetName)))
	if err := f.Write(w); err != nil {
		response.Err(w, "failed to write workbook", 500)
	}
}
