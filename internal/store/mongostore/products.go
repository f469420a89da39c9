package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

// lowStockFilter compares two fields of the same document, which a plain
// query document cannot express.
var lowStockFilter = bson.M{"$expr": bson.M{"$lte": bson.A{"$quantity", "$min_quantity"}}}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.c(colProducts).InsertOne(ctx, newProductDoc(p))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("barcode %q: %w", p.Barcode, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *Store) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.oneProduct(ctx, byID(id))
}

func (s *Store) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return s.oneProduct(ctx, bson.M{"barcode": barcode})
}

func (s *Store) oneProduct(ctx context.Context, filter bson.M) (*domain.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc, err := findOne[productDoc](ctx, s.c(colProducts), filter, "product")
	if err != nil {
		return nil, err
	}
	p, err := doc.product()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products(ctx, bson.M{})
}

func (s *Store) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products(ctx, lowStockFilter)
}

func (s *Store) products(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	docs, err := findAll[productDoc](ctx, s.c(colProducts), filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func productSet(patch domain.ProductPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Barcode != nil {
		set["barcode"] = *patch.Barcode
	}
	if patch.Brand != nil {
		set["brand"] = *patch.Brand
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.MinQuantity != nil {
		set["min_quantity"] = *patch.MinQuantity
	}
	if patch.UnitType != nil {
		set["unit_type"] = string(*patch.UnitType)
	}
	if patch.PackageQuantity != nil {
		set["package_quantity"] = *patch.PackageQuantity
	}
	if patch.PurchasePrice != nil {
		set["purchase_price"] = *patch.PurchasePrice
	}
	if patch.SalePrice != nil {
		set["sale_price"] = *patch.SalePrice
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		set["image_url"] = *patch.ImageURL
	}
	return set
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch, at time.Time) (*domain.Product, error) {
	set := productSet(patch)
	if len(set) == 0 {
		return nil, fmt.Errorf("empty product update: %w", domain.ErrInvalid)
	}
	set["updated_at"] = store.FormatTime(at)

	bctx, cancel := s.bound(ctx)
	res, err := s.c(colProducts).UpdateOne(bctx, byID(id), bson.M{"$set": set})
	cancel()
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("barcode %q: %w", *patch.Barcode, domain.ErrConflict)
	}
	if err := mustMatch(res, err, "product "+id); err != nil {
		return nil, err
	}
	return s.ProductByID(ctx, id)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.c(colProducts).DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) AdjustProductQuantity(ctx context.Context, id string, delta int) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.c(colProducts).UpdateOne(ctx, byID(id), bson.M{"$inc": bson.M{"quantity": delta}})
	if err != nil {
		return false, fmt.Errorf("adjust stock of %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	return s.count(ctx, colProducts, bson.M{})
}

func (s *Store) CountLowStockProducts(ctx context.Context) (int, error) {
	return s.count(ctx, colProducts, lowStockFilter)
}

func (s *Store) count(ctx context.Context, col string, filter bson.M) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	n, err := s.c(col).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", col, err)
	}
	return int(n), nil
}
