package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/invoice-manager/httpx"
	"github.com/diewo77/invoice-manager/internal/billing"
	"github.com/diewo77/invoice-manager/internal/export"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/services"
	"github.com/rs/zerolog"
)

type InvoiceHandler struct {
	svc    *services.InvoiceService
	layout export.Layout
}

func NewInvoiceHandler(svc *services.InvoiceService, layout export.Layout) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, layout: layout}
}

// invoiceView adds the derived status and display amounts to the stored invoice.
type invoiceView struct {
	*models.Invoice
	EffectiveStatus billing.Status `json:"effective_status"`
	SubtotalDisplay string         `json:"subtotal_display"`
	TotalDisplay    string         `json:"total_display"`
}

func (h *InvoiceHandler) view(inv *models.Invoice) invoiceView {
	return invoiceView{
		Invoice:         inv,
		EffectiveStatus: inv.EffectiveStatus(h.svc.Now()),
		SubtotalDisplay: billing.FormatCurrency(inv.Subtotal),
		TotalDisplay:    billing.FormatCurrency(inv.Total),
	}
}

// List supports ?status= filtering on the effective status.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), currentUser(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]invoiceView, 0, len(list))
	for i := range list {
		out = append(out, h.view(&list[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.InvoiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := h.svc.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.view(inv))
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(inv))
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.InvoiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := h.svc.Update(r.Context(), currentUser(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(inv))
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := h.svc.UpdateStatus(r.Context(), currentUser(r), id, body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(inv))
}

func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "pdf_generation_failed", export.PDFContentType, export.PDFFilename,
		func(d *export.InvoiceDetails) ([]byte, error) { return export.RenderPDF(d, h.layout) })
}

func (h *InvoiceHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "xlsx_generation_failed", export.XLSXContentType, export.XLSXFilename, export.RenderSpreadsheet)
}

// download renders the whole document before writing anything, so a failed
// export never produces a partial file.
func (h *InvoiceHandler) download(w http.ResponseWriter, r *http.Request, code, contentType string,
	filename func(string) string, render func(*export.InvoiceDetails) ([]byte, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.svc.FetchInvoiceWithDetails(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := render(d)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrInvalidItem) || errors.Is(err, export.ErrMissingNumber) {
			status = http.StatusUnprocessableEntity
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Uint("invoice_id", id).Msg(code)
		httpx.JSONError(w, status, code, err.Error())
		return
	}
	httpx.Attachment(w, contentType, filename(d.InvoiceNumber), data)
}

// amountField accepts a JSON number or string. Anything unparseable counts
// as zero, like an empty form field.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	if string(b) == "null" {
		*a = ""
		return nil
	}
	*a = amountField(b)
	return nil
}

type totalsRequest struct {
	Items []struct {
		Quantity amountField `json:"quantity"`
		Rate     amountField `json:"rate"`
	} `json:"items"`
	Discount amountField `json:"discount"`
	Tax      amountField `json:"tax"`
}

type totalsResponse struct {
	Subtotal       string            `json:"subtotal"`
	DiscountAmount string            `json:"discount_amount"`
	TaxableAmount  string            `json:"taxable_amount"`
	TaxAmount      string            `json:"tax_amount"`
	Total          string            `json:"total"`
	Display        map[string]string `json:"display"`
}

// Totals previews the totals of an unsaved invoice form.
func (h *InvoiceHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	lines := make([]billing.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, billing.ParseLine(string(it.Quantity), string(it.Rate)))
	}
	t := billing.ComputeTotals(lines, billing.ParseAmount(string(req.Discount)), billing.ParseAmount(string(req.Tax)))
	httpx.JSON(w, http.StatusOK, totalsResponse{
		Subtotal:       t.Subtotal.String(),
		DiscountAmount: t.DiscountAmount.String(),
		TaxableAmount:  t.TaxableAmount.String(),
		TaxAmount:      t.TaxAmount.String(),
		Total:          t.Total.String(),
		Display: map[string]string{
			"subtotal":        billing.FormatCurrency(t.Subtotal),
			"discount_amount": billing.FormatCurrency(t.DiscountAmount),
			"tax_amount":      billing.FormatCurrency(t.TaxAmount),
			"total":           billing.FormatCurrency(t.Total),
		},
	})
}
