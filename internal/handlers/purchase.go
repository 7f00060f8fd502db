package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/ale3590/fares/auth"
	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/internal/services"
)

type PurchaseHandler struct {
	DB  *gorm.DB
	Svc *services.PurchaseService
}

func NewPurchaseHandler(db *gorm.DB, svc *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{DB: db, Svc: svc}
}

// List: GET /api/compras, newest first.
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	var purchases []models.Purchase
	err := h.DB.WithContext(r.Context()).Preload("Supplier").
		Order("date desc, id desc").Limit(listLimit(r)).Find(&purchases).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_purchases", nil)
		return
	}
	out := make([]models.PurchaseSummary, len(purchases))
	for i := range purchases {
		out[i] = purchases[i].Summary()
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get: GET /api/compras/{id}, with its lines.
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var pur models.Purchase
	err := h.DB.WithContext(r.Context()).Preload("Supplier").Preload("Items.Product").First(&pur, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_get_purchase", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, pur.Detail())
}

// Create: POST /api/compras/ingreso
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !decodeOrder(w, r, &req) {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	pur, replayed, err := h.Svc.RecordPurchase(r.Context(), services.PurchaseInput{
		SupplierID:     req.SupplierID,
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
	httpx.JSON(w, status, pur.Summary())
}
