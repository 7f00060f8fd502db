package db

import (
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ale3590/fares/internal/models"
)

// WalkInTaxID is the tax id of the anonymous point-of-sale client.
const WalkInTaxID = "C/F"

var baseProducts = []models.Product{
	{Code: "A1", Name: "Martillo 16oz", Category: "Herramientas", PublicPrice: 10000, WholesalePrice: 9000, Stock: 10, MinStock: 2},
	{Code: "B2", Name: "Tornillo 1/4 (caja)", Category: "Ferretería", PublicPrice: 1550, WholesalePrice: 1300, Stock: 40, MinStock: 10},
	{Code: "C3", Name: "Cinta métrica 5m", Category: "Herramientas", PublicPrice: 4500, WholesalePrice: 3900, Stock: 5, MinStock: 5},
	{Code: "D4", Name: "Pintura blanca galón", Category: "Pinturas", PublicPrice: 17500, WholesalePrice: 15000, Stock: 0, MinStock: 3},
}

// Seed writes the admin user, a sample catalog, the walk-in client and one
// supplier. Rows that already exist are left alone.
func Seed(d *gorm.DB) error {
	var admin models.User
	err := d.Where("username = ?", "admin").First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pw := os.Getenv("SEED_ADMIN_PASSWORD")
		if pw == "" {
			pw = "admin123"
		}
		hash, herr := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if herr != nil {
			return herr
		}
		admin = models.User{Username: "admin", Password: string(hash), Role: models.RoleAdmin, Active: true}
		if err := d.Create(&admin).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, p := range baseProducts {
		if err := d.Where(models.Product{Code: p.Code}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
	}
	walkIn := models.Client{TaxID: WalkInTaxID, Name: "Consumidor Final"}
	if err := d.Where(models.Client{TaxID: WalkInTaxID}).FirstOrCreate(&walkIn).Error; err != nil {
		return err
	}
	sup := models.Supplier{Code: "PR-1", Name: "Distribuidora Norte", TaxID: "555"}
	return d.Where(models.Supplier{Code: sup.Code}).FirstOrCreate(&sup).Error
}
