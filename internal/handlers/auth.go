package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ale3590/fares/auth"
	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/validation"
)

type AuthHandler struct {
	DB       *gorm.DB
	TokenTTL time.Duration
}

func NewAuthHandler(db *gorm.DB, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &AuthHandler{DB: db, TokenTTL: ttl}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("username", req.Username, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var user models.User
	err := h.DB.WithContext(r.Context()).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	if err != nil || !user.Active || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONMessage(w, http.StatusUnauthorized, "invalid_credentials", "Usuario o contraseña incorrectos")
		return
	}
	token, err := auth.IssueToken(user.ID, user.Username, user.Role, h.TokenTTL)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "token_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.DB.WithContext(r.Context()).First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
