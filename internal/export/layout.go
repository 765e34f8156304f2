package export

import (
	"strings"

	"github.com/diewo77/invoice-manager/internal/billing"
)

// Layout holds every position the PDF renderer uses. Units are millimetres
// from the top-left corner of the page. Nothing is derived from content
// width: items past the bottom of the page are not moved to a new page.
type Layout struct {
	PageSize string // gofpdf size name, e.g. "A4"
	Font     string

	MarginX float64

	TitleY    float64
	TitleSize float64

	HeaderY    float64
	HeaderStep float64

	BillToY    float64
	BillToStep float64

	TableY    float64
	RowHeight float64
	// Column anchors. Description is left-aligned, the numeric columns are
	// right-aligned on their anchor.
	ColDescription float64
	ColQuantity    float64
	ColRate        float64
	ColAmount      float64

	TotalsGap     float64
	TotalsLabelX  float64
	BodySize      float64
	SmallHeadSize float64
}

// DefaultLayout is the A4 layout used when nothing is configured.
func DefaultLayout() Layout {
	return Layout{
		PageSize:       "A4",
		Font:           "Helvetica",
		MarginX:        20,
		TitleY:         25,
		TitleSize:      24,
		HeaderY:        40,
		HeaderStep:     7,
		BillToY:        70,
		BillToStep:     6,
		TableY:         105,
		RowHeight:      8,
		ColDescription: 20,
		ColQuantity:    130,
		ColRate:        160,
		ColAmount:      190,
		TotalsGap:      6,
		TotalsLabelX:   130,
		BodySize:       10,
		SmallHeadSize:  12,
	}
}

// Op is the kind of drawing instruction.
type Op int

const (
	OpText Op = iota
	OpLine
)

// Align tells the renderer which edge X refers to for text.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Instruction is one positioned drawing step.
type Instruction struct {
	Op    Op
	X, Y  float64
	X2    float64 // lines only
	Y2    float64 // lines only
	Text  string
	Bold  bool
	Size  float64
	Align Align
}

// BuildLayout lays out d on a single page. It is deterministic and does not
// validate; callers go through RenderPDF for that.
func BuildLayout(d *InvoiceDetails, l Layout) []Instruction {
	var out []Instruction
	text := func(x, y float64, s string, bold bool, size float64, align Align) {
		out = append(out, Instruction{Op: OpText, X: x, Y: y, Text: s, Bold: bold, Size: size, Align: align})
	}

	text(l.MarginX, l.TitleY, "INVOICE", true, l.TitleSize, AlignLeft)

	y := l.HeaderY
	text(l.MarginX, y, "Invoice Number: "+d.InvoiceNumber, false, l.BodySize, AlignLeft)
	y += l.HeaderStep
	text(l.MarginX, y, "Issue Date: "+formatDate(d.IssueDate), false, l.BodySize, AlignLeft)
	y += l.HeaderStep
	text(l.MarginX, y, "Due Date: "+formatDate(d.DueDate), false, l.BodySize, AlignLeft)

	y = l.BillToY
	text(l.MarginX, y, "Bill To:", true, l.SmallHeadSize, AlignLeft)
	y += l.BillToStep
	text(l.MarginX, y, d.Client.Name, false, l.BodySize, AlignLeft)
	for _, line := range addressLines(d.Client.Address) {
		y += l.BillToStep
		text(l.MarginX, y, line, false, l.BodySize, AlignLeft)
	}

	y = l.TableY
	text(l.ColDescription, y, "Description", true, l.BodySize, AlignLeft)
	text(l.ColQuantity, y, "Qty", true, l.BodySize, AlignRight)
	text(l.ColRate, y, "Rate", true, l.BodySize, AlignRight)
	text(l.ColAmount, y, "Amount", true, l.BodySize, AlignRight)
	out = append(out, Instruction{Op: OpLine, X: l.ColDescription, Y: y + 2, X2: l.ColAmount, Y2: y + 2})

	for _, it := range d.Items {
		y += l.RowHeight
		text(l.ColDescription, y, it.Description, false, l.BodySize, AlignLeft)
		text(l.ColQuantity, y, it.Quantity.String(), false, l.BodySize, AlignRight)
		text(l.ColRate, y, billing.FormatCurrency(it.Rate), false, l.BodySize, AlignRight)
		text(l.ColAmount, y, billing.FormatCurrency(it.Amount), false, l.BodySize, AlignRight)
	}

	y += l.RowHeight + l.TotalsGap
	totalsLine := func(label, value string, bold bool) {
		text(l.TotalsLabelX, y, label, bold, l.BodySize, AlignLeft)
		text(l.ColAmount, y, value, bold, l.BodySize, AlignRight)
		y += l.RowHeight
	}

	totals := billing.ApplyRates(d.Subtotal, d.Discount, d.Tax)
	totalsLine("Subtotal:", billing.FormatCurrency(d.Subtotal), false)
	if d.Discount.IsPositive() {
		totalsLine("Discount ("+d.Discount.String()+"%):", "-"+billing.FormatCurrency(totals.DiscountAmount), false)
	}
	if d.Tax.IsPositive() {
		totalsLine("Tax ("+d.Tax.String()+"%):", billing.FormatCurrency(totals.TaxAmount), false)
	}
	totalsLine("Total:", billing.FormatCurrency(d.Total), true)

	return out
}

func addressLines(addr string) []string {
	var lines []string
	for _, line := range strings.Split(addr, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
