package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/services"
)

type ReportHandler struct {
	Svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{Svc: svc}
}

// Kardex: GET /api/reportes/kardex/{id}
func (h *ReportHandler) Kardex(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	k, err := h.Svc.Kardex(r.Context(), id)
	if errors.Is(err, services.ErrProductNotFound) {
		httpx.JSONMessage(w, http.StatusNotFound, "product_not_found", "Producto no encontrado")
		return
	}
	if err != nil {
		log.Printf("[reports] kardex %d: %v", id, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_kardex", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, k)
}
