package handlers

import (
	"net/http"

	"github.com/diewo77/invoice-manager/httpx"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/services"
)

type PaymentSettingsHandler struct {
	svc *services.PaymentSettingsService
}

func NewPaymentSettingsHandler(svc *services.PaymentSettingsService) *PaymentSettingsHandler {
	return &PaymentSettingsHandler{svc: svc}
}

// paymentSettingsView never carries the secret, only whether one is stored.
type paymentSettingsView struct {
	*models.PaymentSettings
	HasSecret bool `json:"has_secret"`
}

func (h *PaymentSettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, paymentSettingsView{ps, ps.HasSecret()})
}

func (h *PaymentSettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in services.PaymentSettingsInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ps, err := h.svc.Save(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, paymentSettingsView{ps, ps.HasSecret()})
}
