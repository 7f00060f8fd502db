package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/ale3590/fares/auth"
	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/internal/services"
)

// IdempotencyHeader carries the client-chosen key of a submission.
const IdempotencyHeader = "Idempotency-Key"

type SaleHandler struct {
	DB  *gorm.DB
	Svc *services.SalesService
}

func NewSaleHandler(db *gorm.DB, svc *services.SalesService) *SaleHandler {
	return &SaleHandler{DB: db, Svc: svc}
}

// listLimit reads ?limit=, default 500, capped at 2000.
func listLimit(r *http.Request) int {
	limit := 500
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 2000 {
			limit = n
		}
	}
	return limit
}

// List: GET /api/ventas, newest first.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	var sales []models.Sale
	err := h.DB.WithContext(r.Context()).Preload("Client").
		Order("date desc, id desc").Limit(listLimit(r)).Find(&sales).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_sales", nil)
		return
	}
	out := make([]models.SaleSummary, len(sales))
	for i := range sales {
		out[i] = sales[i].Summary()
	}
	httpx.JSON(w, http.StatusOK, out)
}

// pathID reads the {id} path value, writing 400 when it is not a positive id.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONMessage(w, http.StatusBadRequest, "invalid_id", "Identificador inválido")
		return 0, false
	}
	return uint(id), true
}

func writeNotFound(w http.ResponseWriter) {
	httpx.JSONMessage(w, http.StatusNotFound, "record_not_found", "Registro no encontrado")
}

// Get: GET /api/ventas/{id}, with its lines.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var sale models.Sale
	err := h.DB.WithContext(r.Context()).Preload("Client").Preload("Items.Product").First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_get_sale", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, sale.Detail())
}

// Create: POST /api/ventas. A repeated Idempotency-Key answers 200 with the
// stored sale instead of 201.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !decodeOrder(w, r, &req) {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	sale, replayed, err := h.Svc.RecordSale(r.Context(), services.SaleInput{
		ClientID:       req.ClientID,
		UserID:         uid,
		Items:          lineInputs(req.Items),
		Total:          req.Total,
		IdempotencyKey: r.Header.Get(IdempotencyHeader),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	httpx.JSON(w, status, sale.Summary())
}
