package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

func (s *Store) InsertSale(ctx context.Context, sale *domain.Sale) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.c(colSales).InsertOne(ctx, newSaleDoc(sale)); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func saleFilter(f store.SaleFilter) bson.M {
	filter := bson.M{}
	created := bson.M{}
	if f.Start != nil {
		created["$gte"] = store.FormatTime(*f.Start)
	}
	if f.End != nil {
		created["$lte"] = store.FormatTime(*f.End)
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	return filter
}

func (s *Store) ListSales(ctx context.Context, f store.SaleFilter) ([]domain.Sale, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	docs, err := findAll[saleDoc](ctx, s.c(colSales), saleFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	out := make([]domain.Sale, 0, len(docs))
	for _, d := range docs {
		sale, err := d.sale()
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, nil
}

// topSellingPipeline groups the line items of sales created within
// [start, end] by product. Ties on quantity are broken by product id so the
// result is deterministic.
func topSellingPipeline(start, end string, limit int) bson.A {
	return bson.A{
		bson.M{"$match": bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}},
		bson.M{"$unwind": "$items"},
		bson.M{"$group": bson.M{
			"_id":            "$items.product_id",
			"product_name":   bson.M{"$first": "$items.name"},
			"total_quantity": bson.M{"$sum": "$items.quantity"},
			"total_revenue":  bson.M{"$sum": "$items.total"},
		}},
		bson.M{"$sort": bson.D{{Key: "total_quantity", Value: -1}, {Key: "_id", Value: 1}}},
		bson.M{"$limit": limit},
	}
}

func summaryPipeline(since string) bson.A {
	return bson.A{
		bson.M{"$match": bson.M{"created_at": bson.M{"$gte": since}}},
		bson.M{"$group": bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$final_amount"},
		}},
	}
}

func (s *Store) TopSelling(ctx context.Context, start, end time.Time, limit int) ([]store.ProductSales, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	cur, err := s.c(colSales).Aggregate(ctx, topSellingPipeline(store.FormatTime(start), store.FormatTime(end), limit))
	if err != nil {
		return nil, fmt.Errorf("top selling: %w", err)
	}
	var rows []struct {
		ProductID     string  `bson:"_id"`
		ProductName   string  `bson:"product_name"`
		TotalQuantity int     `bson:"total_quantity"`
		TotalRevenue  float64 `bson:"total_revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode top selling: %w", err)
	}
	out := make([]store.ProductSales, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ProductSales(r))
	}
	return out, nil
}

func (s *Store) SummarizeSales(ctx context.Context, since time.Time) (store.SalesSummary, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	cur, err := s.c(colSales).Aggregate(ctx, summaryPipeline(store.FormatTime(since)))
	if err != nil {
		return store.SalesSummary{}, fmt.Errorf("summarize sales: %w", err)
	}
	var rows []struct {
		Count   int     `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return store.SalesSummary{}, fmt.Errorf("decode sales summary: %w", err)
	}
	if len(rows) == 0 {
		return store.SalesSummary{}, nil
	}
	return store.SalesSummary{Count: rows[0].Count, Revenue: rows[0].Revenue}, nil
}
