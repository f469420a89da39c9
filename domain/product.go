package domain

import "time"

type UnitType string

const (
	UnitPiece UnitType = "adet"
	UnitBox   UnitType = "kutu"
)

func (u UnitType) Valid() bool {
	return u == UnitPiece || u == UnitBox
}

type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Barcode         string    `json:"barcode"`
	Brand           string    `json:"brand"`
	Category        string    `json:"category"`
	Quantity        int       `json:"quantity"`
	MinQuantity     int       `json:"min_quantity"`
	UnitType        UnitType  `json:"unit_type"`
	PackageQuantity *int      `json:"package_quantity"`
	PurchasePrice   float64   `json:"purchase_price"`
	SalePrice       float64   `json:"sale_price"`
	Description     *string   `json:"description"`
	ImageURL        *string   `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LowStock is the reorder predicate shared by every report.
func (p Product) LowStock() bool {
	return p.Quantity <= p.MinQuantity
}

// ProductPatch carries a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name            *string   `json:"name"`
	Barcode         *string   `json:"barcode"`
	Brand           *string   `json:"brand"`
	Category        *string   `json:"category"`
	Quantity        *int      `json:"quantity"`
	MinQuantity     *int      `json:"min_quantity"`
	UnitType        *UnitType `json:"unit_type"`
	PackageQuantity *int      `json:"package_quantity"`
	PurchasePrice   *float64  `json:"purchase_price"`
	SalePrice       *float64  `json:"sale_price"`
	Description     *string   `json:"description"`
	ImageURL        *string   `json:"image_base64"`
}

// Empty reports whether the patch would change nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Barcode == nil && p.Brand == nil && p.Category == nil &&
		p.Quantity == nil && p.MinQuantity == nil && p.UnitType == nil &&
		p.PackageQuantity == nil && p.PurchasePrice == nil && p.SalePrice == nil &&
		p.Description == nil && p.ImageURL == nil
}
