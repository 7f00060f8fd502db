package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/i18n"
	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/composer"
	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/erpclient"
	"github.com/ale3590/fares/internal/export"
	"github.com/ale3590/fares/internal/history"
	"github.com/ale3590/fares/internal/money"
	"github.com/ale3590/fares/internal/screen"
	"github.com/ale3590/fares/internal/session"
	"github.com/ale3590/fares/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// App is the panel API: sessions plus one composer screen per session and kind.
type App struct {
	mux      *http.ServeMux
	erp      *erpclient.Client
	store    session.Store
	screens  *screen.Registry
	profiles map[screen.Kind]screen.Profile
	loc      *time.Location
	cookie   config.SessionConfig
	validate *validatorv10.Validate
}

// NewApp creates the panel application with all routes configured.
func NewApp(erp *erpclient.Client, store session.Store, profiles map[screen.Kind]screen.Profile, sc config.SessionConfig, loc *time.Location) *App {
	if loc == nil {
		loc = time.UTC
	}
	a := &App{
		mux:      http.NewServeMux(),
		erp:      erp,
		store:    store,
		profiles: profiles,
		loc:      loc,
		cookie:   sc,
		validate: validation.New(),
	}
	a.screens = screen.NewRegistry(a.newScreen)
	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.withSession(a.mux).ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("POST /api/login", a.login)
	a.mux.Handle("POST /api/logout", a.requireSession(http.HandlerFunc(a.logout)))
	a.mux.Handle("GET /api/me", a.requireSession(http.HandlerFunc(a.me)))

	a.screen("GET /api/screens/{kind}", a.view)
	a.screen("POST /api/screens/{kind}/reload", a.reload)
	a.screen("POST /api/screens/{kind}/lines", a.addLine)
	a.screen("POST /api/screens/{kind}/lines/{index}/search", a.searchLine)
	a.screen("POST /api/screens/{kind}/lines/{index}/select", a.selectItem)
	a.screen("POST /api/screens/{kind}/lines/{index}/accept", a.acceptLine)
	a.screen("PATCH /api/screens/{kind}/lines/{index}", a.updateLine)
	a.screen("POST /api/screens/{kind}/lines/{index}/edit", a.editLine)
	a.screen("DELETE /api/screens/{kind}/lines/{index}", a.removeLine)
	a.screen("POST /api/screens/{kind}/counterparty/search", a.searchCounterparty)
	a.screen("POST /api/screens/{kind}/counterparty/select", a.selectCounterparty)
	a.screen("POST /api/screens/{kind}/counterparty/accept", a.acceptCounterparty)
	a.screen("PUT /api/screens/{kind}/walk-in", a.setWalkIn)
	a.screen("GET /api/screens/{kind}/history", a.history)
	a.screen("GET /api/screens/{kind}/history.xlsx", a.historyXLSX)
	a.mux.Handle("GET /api/screens/{kind}/history/{id}", a.requireSession(http.HandlerFunc(a.historyDetail)))
	a.mux.Handle("GET /api/reports/kardex/{id}", a.requireSession(http.HandlerFunc(a.kardex)))
	a.screen("POST /api/screens/{kind}/submit", a.submit)
}

func langOf(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); i18n.Supported(l) {
		return l
	}
	return i18n.DetectLanguage(r.Header.Get("Accept-Language"))
}

// ─────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────

var errNoSession = errors.New("no session in context")

// newScreen builds a screen bound to the ERP token of the session in ctx.
func (a *App) newScreen(ctx context.Context, _ string, kind screen.Kind) (*screen.Screen, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, errNoSession
	}
	client := a.erp.WithToken(sess.Token)
	gw := client.SalesGateway()
	if !kind.Sales() {
		gw = client.PurchasesGateway()
	}
	opts := []screen.Option{screen.WithLocation(a.loc)}
	if kind == screen.KindPOS {
		opts = append(opts, screen.WithPartyFinder(client))
	}
	return screen.New(a.profiles[kind], gw, opts...), nil
}

// withSession attaches the session named by the cookie, if it is still valid.
// The screens of an expired session are dropped.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(a.cookie.CookieName)
		if err == nil && c.Value != "" {
			sess, err := a.store.Get(r.Context(), c.Value)
			switch {
			case err == nil:
				r = r.WithContext(session.WithSession(r.Context(), sess))
			case errors.Is(err, session.ErrNotFound):
				a.screens.Drop(c.Value)
			default:
				log.Printf("session lookup failed: %v", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			httpx.JSONMessage(w, http.StatusUnauthorized, "unauthorized", i18n.T(langOf(r), "unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     a.cookie.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// login: POST /api/login
func (a *App) login(w http.ResponseWriter, r *http.Request) {
	lang := langOf(r)
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v, err := validation.Struct(a.validate, req); err != nil || !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	res, err := a.erp.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, erpclient.ErrConnection) {
			log.Printf("login: %v", err)
			httpx.JSONMessage(w, http.StatusBadGateway, "connection_error", i18n.T(lang, "connection_error"))
			return
		}
		httpx.JSONMessage(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(lang, "invalid_credentials"))
		return
	}
	u := session.User{ID: res.User.ID, Username: res.User.Username, Role: res.User.Role, ProfileImage: res.User.ProfileImage}
	sess := session.New(res.Token, u, a.cookie.TTL)
	if err := a.store.Save(r.Context(), sess); err != nil {
		log.Printf("login: save session: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "session_error", nil)
		return
	}
	a.setCookie(w, sess.ID, sess.ExpiresAt)
	httpx.JSON(w, http.StatusOK, map[string]any{"user": u, "expires_at": sess.ExpiresAt})
}

// logout: POST /api/logout. Drafts of the session are discarded.
func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if err := a.store.Delete(r.Context(), sess.ID); err != nil {
		log.Printf("logout: %v", err)
	}
	a.screens.Drop(sess.ID)
	a.setCookie(w, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusNoContent)
}

// me: GET /api/me
func (a *App) me(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"user": sess.User, "expires_at": sess.ExpiresAt})
}

// ─────────────────────────────────────────────────────────────────────────
// Screens
// ─────────────────────────────────────────────────────────────────────────

type screenFunc func(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string)

// screen registers a route acting on the screen named by {kind}.
func (a *App) screen(pattern string, fn screenFunc) {
	a.mux.Handle(pattern, a.requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind, err := screen.ParseKind(r.PathValue("kind"))
		if err != nil {
			httpx.JSONError(w, http.StatusNotFound, "unknown_screen", nil)
			return
		}
		sess, _ := session.FromContext(r.Context())
		s, err := a.screens.Get(r.Context(), sess.ID, kind)
		if err != nil {
			log.Printf("screen %s: %v", kind, err)
			httpx.JSONError(w, http.StatusInternalServerError, "screen_error", nil)
			return
		}
		fn(w, r, s, langOf(r))
	})))
}

// render writes the view after an operation. Operations applied with a
// clamped value still answer 200; the notice tells the user.
func render(w http.ResponseWriter, s *screen.Screen, lang string, err error, extra map[string]any) {
	status := http.StatusOK
	if err != nil && !composer.Clamped(err) {
		status = http.StatusUnprocessableEntity
	}
	if extra == nil {
		httpx.JSON(w, status, s.View(lang))
		return
	}
	extra["view"] = s.View(lang)
	httpx.JSON(w, status, extra)
}

func lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || i < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"index": "invalid"})
		return 0, false
	}
	return i, true
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself and reports false on failure.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(r, v); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	viol, err := validation.Struct(a.validate, v)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
		return false
	}
	if !viol.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", viol)
		return false
	}
	return true
}

func (a *App) view(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	httpx.JSON(w, http.StatusOK, s.View(lang))
}

func (a *App) reload(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	s.Load(r.Context())
	httpx.JSON(w, http.StatusOK, s.View(lang))
}

func (a *App) addLine(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	var index int
	err := s.Apply(func(c *composer.Composer) error {
		index = c.AddLine()
		return nil
	})
	render(w, s, lang, err, map[string]any{"index": index})
}

type searchRequest struct {
	Query string `json:"q"`
}

func (a *App) searchLine(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	i, ok := lineIndex(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if !a.decode(w, r, &req) {
		return
	}
	var out []catalog.Item
	err := s.Apply(func(c *composer.Composer) error {
		var err error
		out, err = c.SearchLine(i, req.Query)
		return err
	})
	if out == nil {
		out = []catalog.Item{}
	}
	render(w, s, lang, err, map[string]any{"suggestions": out})
}

type selectItemRequest struct {
	ItemID uint `json:"item_id" validate:"required"`
}

func (a *App) selectItem(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	i, ok := lineIndex(w, r)
	if !ok {
		return
	}
	var req selectItemRequest
	if !a.decode(w, r, &req) {
		return
	}
	err := s.Apply(func(c *composer.Composer) error { return c.SelectItem(i, req.ItemID) })
	render(w, s, lang, err, nil)
}

func (a *App) acceptLine(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	i, ok := lineIndex(w, r)
	if !ok {
		return
	}
	err := s.Apply(func(c *composer.Composer) error { return c.AcceptLine(i) })
	render(w, s, lang, err, nil)
}

// updateLineRequest carries the fields to change; absent fields stay. The
// change is applied whole or not at all.
type updateLineRequest struct {
	Quantity *int         `json:"cantidad"`
	Discount *float64     `json:"descuento"`
	Price    *money.Cents `json:"precio"`
}

func (a *App) updateLine(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	i, ok := lineIndex(w, r)
	if !ok {
		return
	}
	var req updateLineRequest
	if !a.decode(w, r, &req) {
		return
	}
	err := s.Apply(func(c *composer.Composer) error {
		return c.UpdateLine(i, composer.LineChange{Quantity: req.Quantity, Discount: req.Discount, Price: req.Price})
	})
	render(w, s, lang, err, nil)
}

func (a *App) editLine(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	i, ok := lineIndex(w, r)
	if !ok {
		return
	}
	err := s.Apply(func(c *composer.Composer) error { return c.EditLine(i) })
	render(w, s, lang, err, nil)
}

func (a *App) removeLine(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	i, ok := lineIndex(w, r)
	if !ok {
		return
	}
	err := s.Apply(func(c *composer.Composer) error { return c.RemoveLine(i) })
	render(w, s, lang, err, nil)
}

func (a *App) searchCounterparty(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	var req searchRequest
	if !a.decode(w, r, &req) {
		return
	}
	var out []catalog.Counterparty
	err := s.Apply(func(c *composer.Composer) error {
		out = c.SearchCounterparty(req.Query)
		return nil
	})
	if out == nil {
		out = []catalog.Counterparty{}
	}
	render(w, s, lang, err, map[string]any{"suggestions": out})
}

type selectCounterpartyRequest struct {
	ID uint `json:"id" validate:"required"`
}

func (a *App) selectCounterparty(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	var req selectCounterpartyRequest
	if !a.decode(w, r, &req) {
		return
	}
	err := s.Apply(func(c *composer.Composer) error { return c.SelectCounterparty(req.ID) })
	render(w, s, lang, err, nil)
}

func (a *App) acceptCounterparty(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	err := s.Apply(func(c *composer.Composer) error { return c.AcceptCounterparty() })
	render(w, s, lang, err, nil)
}

type walkInRequest struct {
	TaxID string `json:"nit" validate:"max=30"`
	Name  string `json:"nombre" validate:"max=255"`
}

func (a *App) setWalkIn(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	if s.Profile().Kind != screen.KindPOS {
		httpx.JSONError(w, http.StatusNotFound, "unknown_screen", nil)
		return
	}
	var req walkInRequest
	if !a.decode(w, r, &req) {
		return
	}
	s.SetWalkIn(req.TaxID, req.Name)
	httpx.JSON(w, http.StatusOK, s.View(lang))
}

// applyHistoryQuery sets the filter from ?q= and ?date= and, when given,
// moves to ?page=. It writes the error response itself and reports false on
// failure.
func applyHistoryQuery(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) bool {
	q := r.URL.Query()
	date := q.Get("date")
	if date != "" {
		if _, err := time.Parse(history.DateLayout, date); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"date": "invalid"})
			return false
		}
	}
	s.SetHistoryFilter(q.Get("q"), date)
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"page": "invalid"})
			return false
		}
		if err := s.SetHistoryPage(n); err != nil {
			render(w, s, lang, err, nil)
			return false
		}
	}
	return true
}

func (a *App) history(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	if !applyHistoryQuery(w, r, s, lang) {
		return
	}
	v := s.View(lang)
	httpx.JSON(w, http.StatusOK, map[string]any{"history": v.History, "history_filter": v.HistoryFilter})
}

func (a *App) historyXLSX(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	if !applyHistoryQuery(w, r, s, lang) {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteHistory(&buf, s.HistoryRecords(), a.loc); err != nil {
		log.Printf("export %s: %v", s.Profile().Kind, err)
		httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="historial-`+string(s.Profile().Kind)+`.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// submit: POST /api/screens/{kind}/submit. An ERP answering 401 ends the
// session.
func (a *App) submit(w http.ResponseWriter, r *http.Request, s *screen.Screen, lang string) {
	rec, err := s.Submit(r.Context())
	if err == nil {
		httpx.JSON(w, http.StatusCreated, map[string]any{"receipt": rec, "view": s.View(lang)})
		return
	}
	if erpclient.IsStatus(err, http.StatusUnauthorized) {
		a.endSession(w, r, lang)
		return
	}
	status := http.StatusUnprocessableEntity
	if errors.Is(err, erpclient.ErrConnection) {
		status = http.StatusBadGateway
	}
	httpx.JSON(w, status, s.View(lang))
}

// endSession answers 401 after the ERP rejected the session token.
func (a *App) endSession(w http.ResponseWriter, r *http.Request, lang string) {
	sess, _ := session.FromContext(r.Context())
	_ = a.store.Delete(r.Context(), sess.ID)
	a.screens.Drop(sess.ID)
	a.setCookie(w, "", time.Unix(0, 0))
	httpx.JSONMessage(w, http.StatusUnauthorized, "unauthorized", i18n.T(lang, "unauthorized"))
}

// ─────────────────────────────────────────────────────────────────────────
// Reports
// ─────────────────────────────────────────────────────────────────────────

// writeERPError maps a failed ERP read onto the panel's answer.
func (a *App) writeERPError(w http.ResponseWriter, r *http.Request, lang string, err error) {
	switch {
	case erpclient.IsStatus(err, http.StatusUnauthorized):
		a.endSession(w, r, lang)
	case erpclient.IsStatus(err, http.StatusForbidden):
		httpx.JSONMessage(w, http.StatusForbidden, "forbidden", i18n.T(lang, "forbidden"))
	case erpclient.IsStatus(err, http.StatusNotFound):
		httpx.JSONMessage(w, http.StatusNotFound, "record_not_found", i18n.T(lang, "record_not_found"))
	default:
		log.Printf("erp read %s: %v", r.URL.Path, err)
		httpx.JSONMessage(w, http.StatusBadGateway, "connection_error", i18n.T(lang, "connection_error"))
	}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return uint(id), err == nil && id > 0
}

// historyDetail: GET /api/screens/{kind}/history/{id}, a confirmed record
// with its lines.
func (a *App) historyDetail(w http.ResponseWriter, r *http.Request) {
	lang := langOf(r)
	kind, err := screen.ParseKind(r.PathValue("kind"))
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "unknown_screen", nil)
		return
	}
	id, ok := pathID(r)
	if !ok {
		httpx.JSONMessage(w, http.StatusNotFound, "record_not_found", i18n.T(lang, "record_not_found"))
		return
	}
	sess, _ := session.FromContext(r.Context())
	client := a.erp.WithToken(sess.Token)
	var d history.Detail
	if kind.Sales() {
		d, err = client.SaleDetail(r.Context(), id)
	} else {
		d, err = client.PurchaseDetail(r.Context(), id)
	}
	if err != nil {
		a.writeERPError(w, r, lang, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// kardex: GET /api/reports/kardex/{id}
func (a *App) kardex(w http.ResponseWriter, r *http.Request) {
	lang := langOf(r)
	id, ok := pathID(r)
	if !ok {
		httpx.JSONMessage(w, http.StatusNotFound, "record_not_found", i18n.T(lang, "record_not_found"))
		return
	}
	sess, _ := session.FromContext(r.Context())
	k, err := a.erp.WithToken(sess.Token).Kardex(r.Context(), id)
	if err != nil {
		a.writeERPError(w, r, lang, err)
		return
	}
	httpx.JSON(w, http.StatusOK, k)
}
