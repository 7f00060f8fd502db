package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/models"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{DB: db}
}

// List: GET /api/parametros/productos[?q=&activos=1]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.WithContext(r.Context())
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(code) LIKE ? OR lower(name) LIKE ?", like, like)
	}
	if r.URL.Query().Get("activos") == "1" {
		dbq = dbq.Where("inactive = ?", false)
	}
	products := []models.Product{}
	if err := dbq.Order("name").Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}
