package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/ale3590/fares/auth"
	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/validation"
)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{DB: db}
}

// List: GET /api/clientes[?nit=|?q=]. nit matches exactly, ignoring case.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.WithContext(r.Context())
	if nit := strings.TrimSpace(r.URL.Query().Get("nit")); nit != "" {
		dbq = dbq.Where("upper(tax_id) = ?", strings.ToUpper(nit))
	} else if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(code) LIKE ?", like, like)
	}
	clients := []models.Client{}
	if err := dbq.Order("name").Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

type createClientRequest struct {
	TaxID   string `json:"nit" validate:"required,max=30"`
	Name    string `json:"nombre" validate:"required,max=255"`
	Code    string `json:"codigo" validate:"max=50"`
	Address string `json:"direccion" validate:"max=255"`
	Phone   string `json:"telefono" validate:"max=30"`
	Email   string `json:"correo" validate:"omitempty,email"`
}

// Create: POST /api/clientes. A tax id already on file answers 409.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.TaxID = strings.ToUpper(strings.TrimSpace(req.TaxID))
	req.Name = strings.TrimSpace(req.Name)
	if v, err := validation.Struct(validate, req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
		return
	} else if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	c := models.Client{TaxID: req.TaxID, Name: req.Name, Code: req.Code, Address: req.Address, Phone: req.Phone, Email: req.Email}
	uid, _ := auth.UserIDFromContext(r.Context())
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{UserID: uid, EntityType: "Client", EntityID: c.ID, Action: "create", Detail: c.TaxID}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		httpx.JSONMessage(w, http.StatusConflict, "duplicate_tax_id", "Ya existe un cliente con NIT "+req.TaxID)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

type SupplierHandler struct {
	DB *gorm.DB
}

func NewSupplierHandler(db *gorm.DB) *SupplierHandler {
	return &SupplierHandler{DB: db}
}

// List: GET /api/proveedores
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers := []models.Supplier{}
	if err := h.DB.WithContext(r.Context()).Order("name").Find(&suppliers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_suppliers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, suppliers)
}
