package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ale3590/fares/auth"
	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/db"
	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/internal/server"
)

func setupERP(t *testing.T) (*config.Config, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "cli-test")
	t.Setenv("FARES_USER", "")
	t.Setenv("FARES_PASSWORD", "")
	d, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:cli_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	require.NoError(t, db.Seed(d))
	t.Cleanup(func() { auth.SetUserVerifier(nil) })

	srv := httptest.NewServer(server.New(d, server.Options{TokenTTL: time.Hour}))
	t.Cleanup(srv.Close)

	cfg := config.Load()
	cfg.ERP.BaseURL = srv.URL
	cfg.App.TimeZone = "UTC"
	return cfg, d
}

func run(cfg *config.Config, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"-u", "admin", "-p", "admin123"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeOrder(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "order.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestComposeDryRunAndSubmit(t *testing.T) {
	cfg, d := setupERP(t)
	order := writeOrder(t, `
screen: invoicing
counterparty: consumidor
lines:
  - item: martillo
    cantidad: 3
    descuento: 10
`)

	out, _, err := run(cfg, "compose", "-f", order)
	require.NoError(t, err)
	assert.Contains(t, out, "A1 - Martillo 16oz")
	assert.Contains(t, out, "Consumidor Final")
	assert.Contains(t, out, "Q 270.00")

	var count int64
	d.Model(&models.Sale{}).Count(&count)
	assert.Zero(t, count, "dry run does not submit")

	out, _, err = run(cfg, "compose", "-f", order, "--submit")
	require.NoError(t, err)
	assert.Contains(t, out, "submitted V-000001 total Q 270.00")

	var p models.Product
	require.NoError(t, d.Where("code = ?", "A1").First(&p).Error)
	assert.Equal(t, 7, p.Stock)
}

func TestComposeClampsAndRejects(t *testing.T) {
	cfg, _ := setupERP(t)
	order := writeOrder(t, `
screen: pos
walk_in: {nit: "", nombre: ""}
lines:
  - item: A1
    cantidad: 50
`)
	out, warn, err := run(cfg, "compose", "-f", order, "--submit")
	require.NoError(t, err)
	assert.Contains(t, warn, "line 1")
	assert.Contains(t, out, "C/F")
	assert.Contains(t, out, "submitted V-000001 total Q 1000.00")

	bad := writeOrder(t, `
lines:
  - item: zzz
`)
	_, _, err = run(cfg, "compose", "-f", bad)
	assert.ErrorContains(t, err, "zzz")

	_, _, err = run(cfg, "compose", "-f", writeOrder(t, "screen: admin\n"))
	assert.ErrorContains(t, err, "unknown screen")
}

func TestComposeReceiving(t *testing.T) {
	cfg, d := setupERP(t)
	order := writeOrder(t, `
screen: receiving
counterparty: norte
lines:
  - item: D4
    cantidad: 4
    precio: 150
`)
	out, _, err := run(cfg, "compose", "-f", order, "--submit")
	require.NoError(t, err)
	assert.Contains(t, out, "submitted C-000001 total Q 600.00")

	var p models.Product
	require.NoError(t, d.Where("code = ?", "D4").First(&p).Error)
	assert.Equal(t, 4, p.Stock)
}

func TestExport(t *testing.T) {
	cfg, _ := setupERP(t)
	order := writeOrder(t, "counterparty: consumidor\nlines:\n  - item: B2\n    cantidad: 2\n")
	_, _, err := run(cfg, "compose", "-f", order, "--submit")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "ventas.xlsx")
	out, _, err := run(cfg, "export", "sales", "-o", file, "--client", "consumidor")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 records")

	f, err := excelize.OpenFile(file)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3, "header, record and total")
	assert.Equal(t, "V-000001", rows[1][0])

	out, _, err = run(cfg, "export", "purchases", "-o", file)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 0 records")

	_, _, err = run(cfg, "export", "sales", "--date", "01/02/2024", "-o", file)
	assert.ErrorContains(t, err, "--date")
	_, _, err = run(cfg, "export", "stock")
	assert.Error(t, err)
}

func TestCredentialsRequired(t *testing.T) {
	cfg, _ := setupERP(t)
	cmd := newRootCmd(cfg)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "sales"})
	assert.ErrorContains(t, cmd.Execute(), "credentials required")

	_, _, err := run(cfg, "--password", "wrong", "export", "sales")
	assert.ErrorContains(t, err, "login")
}

func TestVersion(t *testing.T) {
	out, _, err := run(config.Load(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "faresctl dev")
}
