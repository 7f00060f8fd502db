package erpclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/composer"
	"github.com/ale3590/fares/internal/history"
	"github.com/ale3590/fares/internal/money"
	"github.com/ale3590/fares/internal/screen"
)

// User is the account returned at login.
type User struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"rol"`
	ProfileImage string `json:"imagen_perfil,omitempty"`
}

// LoginResult is the answer to a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, nil, &out)
	return out, err
}

// Products returns the whole catalog, inactive items included.
func (c *Client) Products(ctx context.Context) ([]catalog.Item, error) {
	var out []catalog.Item
	err := c.do(ctx, http.MethodGet, "/api/parametros/productos", nil, nil, nil, &out)
	return out, err
}

func (c *Client) Clients(ctx context.Context) ([]catalog.Counterparty, error) {
	var out []catalog.Counterparty
	err := c.do(ctx, http.MethodGet, "/api/clientes", nil, nil, nil, &out)
	return out, err
}

// ClientByTaxID looks a client up by tax id. ok is false when none exists.
func (c *Client) ClientByTaxID(ctx context.Context, taxID string) (cp catalog.Counterparty, ok bool, err error) {
	var out []catalog.Counterparty
	if err = c.do(ctx, http.MethodGet, "/api/clientes", url.Values{"nit": {taxID}}, nil, nil, &out); err != nil {
		return cp, false, err
	}
	for _, v := range out {
		if strings.EqualFold(v.TaxID, taxID) {
			return v, true, nil
		}
	}
	return cp, false, nil
}

// NewClient is the minimal record created at the point of sale.
type NewClient struct {
	TaxID string `json:"nit"`
	Name  string `json:"nombre"`
}

func (c *Client) CreateClient(ctx context.Context, nc NewClient) (catalog.Counterparty, error) {
	var out catalog.Counterparty
	err := c.do(ctx, http.MethodPost, "/api/clientes", nil, nc, nil, &out)
	return out, err
}

// FindOrCreateClient looks the client up by tax id and creates it when
// absent. If the create collides with a concurrent one (409), the lookup is
// repeated once.
func (c *Client) FindOrCreateClient(ctx context.Context, taxID, name string) (catalog.Counterparty, error) {
	if cp, ok, err := c.ClientByTaxID(ctx, taxID); err != nil || ok {
		return cp, err
	}
	cp, err := c.CreateClient(ctx, NewClient{TaxID: taxID, Name: name})
	if err == nil {
		return cp, nil
	}
	if !IsStatus(err, http.StatusConflict) {
		return cp, err
	}
	found, ok, lerr := c.ClientByTaxID(ctx, taxID)
	if lerr != nil {
		return found, lerr
	}
	if !ok {
		return found, err
	}
	return found, nil
}

func (c *Client) Suppliers(ctx context.Context) ([]catalog.Counterparty, error) {
	var out []catalog.Counterparty
	err := c.do(ctx, http.MethodGet, "/api/proveedores", nil, nil, nil, &out)
	return out, err
}

type saleRecord struct {
	ID         uint        `json:"id"`
	Number     string      `json:"numero_venta"`
	ClientName string      `json:"cliente_nombre"`
	Total      money.Cents `json:"total"`
	Date       time.Time   `json:"fecha"`
	Status     string      `json:"estado"`
}

type purchaseRecord struct {
	ID           uint        `json:"id"`
	Number       string      `json:"numero_factura"`
	SupplierName string      `json:"proveedor_nombre"`
	Total        money.Cents `json:"total"`
	Date         time.Time   `json:"fecha"`
	Status       string      `json:"estado"`
}

// Sales returns the sales history, newest first.
func (c *Client) Sales(ctx context.Context) ([]history.Record, error) {
	var in []saleRecord
	if err := c.do(ctx, http.MethodGet, "/api/ventas", nil, nil, nil, &in); err != nil {
		return nil, err
	}
	out := make([]history.Record, len(in))
	for i, r := range in {
		out[i] = history.Record{ID: r.ID, Number: r.Number, Counterparty: r.ClientName, Total: r.Total, Date: r.Date, Status: r.Status}
	}
	return out, nil
}

// Purchases returns the purchase history, newest first.
func (c *Client) Purchases(ctx context.Context) ([]history.Record, error) {
	var in []purchaseRecord
	if err := c.do(ctx, http.MethodGet, "/api/compras", nil, nil, nil, &in); err != nil {
		return nil, err
	}
	out := make([]history.Record, len(in))
	for i, r := range in {
		out[i] = history.Record{ID: r.ID, Number: r.Number, Counterparty: r.SupplierName, Total: r.Total, Date: r.Date, Status: r.Status}
	}
	return out, nil
}

type lineRecord struct {
	Code     string      `json:"codigo"`
	Name     string      `json:"nombre"`
	Quantity int         `json:"cantidad"`
	Price    money.Cents `json:"precio"`
	Discount float64     `json:"descuento"`
	Subtotal money.Cents `json:"subtotal"`
}

func historyLines(in []lineRecord) []history.Line {
	out := make([]history.Line, len(in))
	for i, l := range in {
		out[i] = history.Line(l)
	}
	return out
}

// SaleDetail returns sale id with its lines.
func (c *Client) SaleDetail(ctx context.Context, id uint) (history.Detail, error) {
	var in struct {
		saleRecord
		Items []lineRecord `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/ventas/"+strconv.FormatUint(uint64(id), 10), nil, nil, nil, &in); err != nil {
		return history.Detail{}, err
	}
	r := in.saleRecord
	return history.Detail{
		Record: history.Record{ID: r.ID, Number: r.Number, Counterparty: r.ClientName, Total: r.Total, Date: r.Date, Status: r.Status},
		Lines:  historyLines(in.Items),
	}, nil
}

// PurchaseDetail returns purchase id with its lines.
func (c *Client) PurchaseDetail(ctx context.Context, id uint) (history.Detail, error) {
	var in struct {
		purchaseRecord
		Items []lineRecord `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/compras/"+strconv.FormatUint(uint64(id), 10), nil, nil, nil, &in); err != nil {
		return history.Detail{}, err
	}
	r := in.purchaseRecord
	return history.Detail{
		Record: history.Record{ID: r.ID, Number: r.Number, Counterparty: r.SupplierName, Total: r.Total, Date: r.Date, Status: r.Status},
		Lines:  historyLines(in.Items),
	}, nil
}

// KardexEntry is one stock movement of a product.
type KardexEntry struct {
	Date     time.Time   `json:"fecha"`
	Document string      `json:"documento"`
	Kind     string      `json:"tipo"`
	In       int         `json:"entrada"`
	Out      int         `json:"salida"`
	Price    money.Cents `json:"precio"`
	Balance  int         `json:"saldo"`
}

// Kardex is the movement history of a product, oldest first.
type Kardex struct {
	ProductID uint          `json:"producto_id"`
	Code      string        `json:"codigo"`
	Name      string        `json:"nombre"`
	Opening   int           `json:"saldo_inicial"`
	Stock     int           `json:"stock"`
	Entries   []KardexEntry `json:"movimientos"`
}

func (c *Client) Kardex(ctx context.Context, productID uint) (Kardex, error) {
	var out Kardex
	err := c.do(ctx, http.MethodGet, "/api/reportes/kardex/"+strconv.FormatUint(uint64(productID), 10), nil, nil, nil, &out)
	return out, err
}

// LineRequest is one line of a sale or purchase request.
type LineRequest struct {
	ProductID uint        `json:"producto_id"`
	Quantity  int         `json:"cantidad"`
	Discount  float64     `json:"descuento,omitempty"`
	Price     money.Cents `json:"precio"`
}

type SaleRequest struct {
	ClientID uint          `json:"cliente_id"`
	Items    []LineRequest `json:"items"`
	Total    money.Cents   `json:"total"`
}

type PurchaseRequest struct {
	SupplierID uint          `json:"proveedor_id"`
	Items      []LineRequest `json:"items"`
	Total      money.Cents   `json:"total"`
}

func lineRequests(s composer.Submission) []LineRequest {
	out := make([]LineRequest, len(s.Lines))
	for i, l := range s.Lines {
		out[i] = LineRequest{ProductID: l.ItemID, Quantity: l.Quantity, Discount: l.Discount, Price: l.Price}
	}
	return out
}

func idempotencyHeader(key string) http.Header {
	if key == "" {
		return nil
	}
	return http.Header{"Idempotency-Key": {key}}
}

// CreateSale records a sale. The same key replays the stored sale.
func (c *Client) CreateSale(ctx context.Context, req SaleRequest, key string) (screen.Receipt, error) {
	var out saleRecord
	if err := c.do(ctx, http.MethodPost, "/api/ventas", nil, req, idempotencyHeader(key), &out); err != nil {
		return screen.Receipt{}, err
	}
	return screen.Receipt{ID: out.ID, Number: out.Number, Total: out.Total}, nil
}

// CreatePurchase records a merchandise receipt and raises stock.
func (c *Client) CreatePurchase(ctx context.Context, req PurchaseRequest, key string) (screen.Receipt, error) {
	var out purchaseRecord
	if err := c.do(ctx, http.MethodPost, "/api/compras/ingreso", nil, req, idempotencyHeader(key), &out); err != nil {
		return screen.Receipt{}, err
	}
	return screen.Receipt{ID: out.ID, Number: out.Number, Total: out.Total}, nil
}

type salesGateway struct{ c *Client }

// SalesGateway adapts c to the invoicing and point-of-sale screens.
func (c *Client) SalesGateway() screen.Gateway { return salesGateway{c} }

func (g salesGateway) Catalog(ctx context.Context) ([]catalog.Item, error) { return g.c.Products(ctx) }

func (g salesGateway) Counterparties(ctx context.Context) ([]catalog.Counterparty, error) {
	return g.c.Clients(ctx)
}

func (g salesGateway) History(ctx context.Context) ([]history.Record, error) { return g.c.Sales(ctx) }

func (g salesGateway) Submit(ctx context.Context, s composer.Submission, key string) (screen.Receipt, error) {
	return g.c.CreateSale(ctx, SaleRequest{ClientID: s.CounterpartyID, Items: lineRequests(s), Total: s.Total}, key)
}

type purchasesGateway struct{ c *Client }

// PurchasesGateway adapts c to the receiving screen.
func (c *Client) PurchasesGateway() screen.Gateway { return purchasesGateway{c} }

func (g purchasesGateway) Catalog(ctx context.Context) ([]catalog.Item, error) { return g.c.Products(ctx) }

func (g purchasesGateway) Counterparties(ctx context.Context) ([]catalog.Counterparty, error) {
	return g.c.Suppliers(ctx)
}

func (g purchasesGateway) History(ctx context.Context) ([]history.Record, error) {
	return g.c.Purchases(ctx)
}

func (g purchasesGateway) Submit(ctx context.Context, s composer.Submission, key string) (screen.Receipt, error) {
	return g.c.CreatePurchase(ctx, PurchaseRequest{SupplierID: s.CounterpartyID, Items: lineRequests(s), Total: s.Total}, key)
}
