package infra

// pdf.go: printable picking sheet using go-pdf/fpdf.
// One A4 page (more if needed) with:
//   - Order number, customer and priority header
//   - Route table in walk order (secuencia, ubicación, producto, EAN, cantidad, check box)
//   - Per-aisle summary and time estimate
//   - Unlocated lines, listed last with their historical location
//
// The output file is saved to storagePath/picking_{numero_orden}.pdf. Each
// render goes to a temp file that is renamed into place, so a concurrent
// download of the same order never reads a half-written sheet.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/picking"

	"github.com/go-pdf/fpdf"
)

// GeneratePickingSheetPDF renders route for order and returns the file path.
func GeneratePickingSheetPDF(order *model.Order, route *picking.Route, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("picking_%s.pdf", sanitizeFileName(order.NumeroOrden))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Hoja de picking "+order.NumeroOrden), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Cliente: %s %s", order.CodigoCliente, order.NombreCliente)), "", 1, "L", false, 0, "")
	operario := "sin asignar"
	if order.Operator != nil {
		operario = order.Operator.CodigoOperario + " " + order.Operator.Nombre
	}
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Prioridad: %s   Estado: %s   Operario: %s",
		order.Prioridad, order.Estado.Nombre(), operario)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Paradas: %d   Pasillos: %s   Tiempo estimado: %.1f min",
		route.TotalStops, strings.Join(route.AislesToVisit, ", "), route.EstimatedTimeMinutes)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Route table ──────────────────────────────────────────────────────────
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"#", 8, "C"},
		{"Ubicación", 38, "L"},
		{"Producto", 70, "L"},
		{"EAN", 34, "L"},
		{"Cant", 14, "C"},
		{"OK", 10, "C"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(c.w, 6, tr(c.title), "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, stop := range route.PickingRoute {
		// Truncate long names
		producto := stop.Producto
		if r := []rune(producto); len(r) > 45 {
			producto = string(r[:44]) + "…"
		}
		cells := []string{
			fmt.Sprintf("%d", stop.Secuencia),
			stop.Ubicacion,
			producto,
			stop.EAN,
			fmt.Sprintf("%d", stop.Cantidad),
			"",
		}
		for i, c := range cols {
			pdf.CellFormat(c.w, 6, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	// ── Aisle summary ────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, "Resumen por pasillo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, a := range route.AisleSummary {
		pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Pasillo %s: %d paradas, %d unidades", a.Pasillo, a.Paradas, a.Unidades)), "", 1, "L", false, 0, "")
	}

	// ── Warnings ─────────────────────────────────────────────────────────────
	if route.Warnings.LinesWithoutLocation > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Líneas sin ubicación (%d)", route.Warnings.LinesWithoutLocation)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, w := range route.Warnings.Details {
			hist := "-"
			if w.UbicacionHistorica != nil {
				hist = *w.UbicacionHistorica
			}
			pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("%s  (histórica: %s)  %s", w.Producto, hist, w.Motivo)), "", 1, "L", false, 0, "")
		}
	}

	if err := writeAtomic(filePath, pdf); err != nil {
		return "", err
	}
	return filePath, nil
}

func writeAtomic(filePath string, pdf *fpdf.Fpdf) error {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("pdf: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("pdf: write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pdf: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("pdf: publish file: %w", err)
	}
	return nil
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
