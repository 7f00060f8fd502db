// Package server wires the ERP API routes.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/ale3590/fares/auth"
	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/db"
	"github.com/ale3590/fares/internal/handlers"
	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/internal/policy"
	"github.com/ale3590/fares/internal/services"
	"github.com/ale3590/fares/internal/telemetry"
)

// Options tune the router. The zero value is usable.
type Options struct {
	TokenTTL time.Duration
	// Roles defaults to policy.DefaultRoles.
	Roles policy.Roles
}

// New returns the ERP API handler. Every /api route but login requires the
// bearer token of an active user whose role grants the route's permission.
func New(d *gorm.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := d.WithContext(ctx).Model(&models.User{}).Where("id = ? AND active = ?", uid, true).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(d); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	roles := opts.Roles
	if roles == nil {
		roles = policy.DefaultRoles()
	}
	protected := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }
	guarded := func(resource string, action policy.Action, h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(roles.Require(resource, action)(h))
	}

	ah := handlers.NewAuthHandler(d, opts.TokenTTL)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.Handle("GET /api/auth/me", protected(ah.Me))

	ph := handlers.NewProductHandler(d)
	mux.Handle("GET /api/parametros/productos", guarded(policy.Products, policy.ActionList, ph.List))

	ch := handlers.NewClientHandler(d)
	mux.Handle("GET /api/clientes", guarded(policy.Clients, policy.ActionList, ch.List))
	mux.Handle("POST /api/clientes", guarded(policy.Clients, policy.ActionCreate, ch.Create))

	sh := handlers.NewSupplierHandler(d)
	mux.Handle("GET /api/proveedores", guarded(policy.Suppliers, policy.ActionList, sh.List))

	sales := handlers.NewSaleHandler(d, services.NewSalesService(d))
	mux.Handle("GET /api/ventas", guarded(policy.Sales, policy.ActionList, sales.List))
	mux.Handle("GET /api/ventas/{id}", guarded(policy.Sales, policy.ActionView, sales.Get))
	mux.Handle("POST /api/ventas", guarded(policy.Sales, policy.ActionCreate, sales.Create))

	purchases := handlers.NewPurchaseHandler(d, services.NewPurchaseService(d))
	mux.Handle("GET /api/compras", guarded(policy.Purchases, policy.ActionList, purchases.List))
	mux.Handle("GET /api/compras/{id}", guarded(policy.Purchases, policy.ActionView, purchases.Get))
	mux.Handle("POST /api/compras/ingreso", guarded(policy.Purchases, policy.ActionCreate, purchases.Create))

	reports := handlers.NewReportHandler(services.NewReportService(d))
	mux.Handle("GET /api/reportes/kardex/{id}", guarded(policy.Products, policy.ActionView, reports.Kardex))

	return telemetry.Handler(withRecover(WithLogging(auth.Middleware(mux))), "erp")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WithLogging logs method, path, status and duration of every request.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
