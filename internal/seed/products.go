package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

// Catalog columns, in file order.
const (
	colName = iota
	colBarcode
	colBrand
	colCategory
	colQuantity
	colMinQuantity
	colPurchasePrice
	colSalePrice
	catalogColumns
)

// LoadProducts ingests the product catalog CSV, ignoring rows whose barcode
// already exists. It returns the number of products created.
func LoadProducts(ctx context.Context, products store.Products, csvPath string) int {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load product catalog %s: %v", csvPath, err)
		return 0
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read product header: %v", err)
		return 0
	}

	rows := 0
	now := time.Now().UTC()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read product row %d: %v", line, err)
			continue
		}
		p, err := parseProduct(record, now)
		if err != nil {
			log.Printf("skipping product row %d: %v", line, err)
			continue
		}
		err = products.CreateProduct(ctx, p)
		switch {
		case errors.Is(err, domain.ErrConflict):
		case err != nil:
			log.Printf("unable to insert product %s: %v", p.Name, err)
		default:
			rows++
		}
	}

	log.Printf("seeded product catalog with %d rows", rows)
	return rows
}

func parseProduct(record []string, now time.Time) (*domain.Product, error) {
	if len(record) < catalogColumns {
		return nil, errors.New("too few columns")
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	if record[colName] == "" || record[colBarcode] == "" {
		return nil, errors.New("name and barcode are required")
	}
	qty, err := strconv.Atoi(record[colQuantity])
	if err != nil {
		return nil, err
	}
	minQty, err := strconv.Atoi(record[colMinQuantity])
	if err != nil {
		return nil, err
	}
	cost, err := strconv.ParseFloat(record[colPurchasePrice], 64)
	if err != nil {
		return nil, err
	}
	price, err := strconv.ParseFloat(record[colSalePrice], 64)
	if err != nil {
		return nil, err
	}
	if cost < 0 || price < 0 {
		return nil, errors.New("prices must not be negative")
	}
	return &domain.Product{
		ID:            uuid.NewString(),
		Name:          record[colName],
		Barcode:       record[colBarcode],
		Brand:         record[colBrand],
		Category:      record[colCategory],
		Quantity:      qty,
		MinQuantity:   minQty,
		UnitType:      domain.UnitPiece,
		PurchasePrice: cost,
		SalePrice:     price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
