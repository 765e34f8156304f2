package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/diewo77/invoice-manager/internal/billing"
	"github.com/jung-kurt/gofpdf"
)

// RenderPDF validates d, lays it out with l and returns the PDF bytes.
// The document creation date is pinned to the issue date so that the same
// invoice always yields the same bytes.
func RenderPDF(d *InvoiceDetails, l Layout) ([]byte, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", l.PageSize, "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(creationDate(d.IssueDate))
	pdf.SetTitle("Invoice "+d.InvoiceNumber, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, in := range BuildLayout(d, l) {
		switch in.Op {
		case OpText:
			style := ""
			if in.Bold {
				style = "B"
			}
			pdf.SetFont(l.Font, style, in.Size)
			s := tr(in.Text)
			x := in.X
			if in.Align == AlignRight {
				x -= pdf.GetStringWidth(s)
			}
			pdf.Text(x, in.Y, s)
		case OpLine:
			pdf.Line(in.X, in.Y, in.X2, in.Y2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf %s: %w", d.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func creationDate(issue time.Time) time.Time {
	if issue.IsZero() {
		return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return billing.Day(issue)
}
