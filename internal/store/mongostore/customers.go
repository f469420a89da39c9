package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.c(colCustomers).InsertOne(ctx, customerDoc{
		ID:         c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		Notes:      c.Notes,
		TotalSpent: c.TotalSpent,
		Deleted:    c.Deleted,
		CreatedAt:  store.FormatTime(c.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (s *Store) CustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc, err := findOne[customerDoc](ctx, s.c(colCustomers), byID(id), "customer")
	if err != nil {
		return nil, err
	}
	c, err := doc.customer()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// customerFilter selects live customers, optionally narrowed by a
// case-insensitive substring of name or phone.
func customerFilter(search string) bson.M {
	filter := bson.M{"deleted": bson.M{"$ne": true}}
	if search = strings.TrimSpace(search); search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"phone": re},
		}
	}
	return filter
}

func (s *Store) ListCustomers(ctx context.Context, search string) ([]domain.Customer, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	docs, err := findAll[customerDoc](ctx, s.c(colCustomers), customerFilter(search),
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]domain.Customer, 0, len(docs))
	for _, d := range docs {
		c, err := d.customer()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id string, patch domain.CustomerPatch) (*domain.Customer, error) {
	set := bson.M{}
	add := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	add("name", patch.Name)
	add("phone", patch.Phone)
	add("email", patch.Email)
	add("address", patch.Address)
	add("notes", patch.Notes)
	if len(set) == 0 {
		return nil, fmt.Errorf("empty customer update: %w", domain.ErrInvalid)
	}

	bctx, cancel := s.bound(ctx)
	res, err := s.c(colCustomers).UpdateOne(bctx, byID(id), bson.M{"$set": set})
	cancel()
	if err := mustMatch(res, err, "customer "+id); err != nil {
		return nil, err
	}
	return s.CustomerByID(ctx, id)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if domain.CustomerDeletePolicy == domain.SoftDelete {
		res, err := s.c(colCustomers).UpdateOne(ctx, byID(id), bson.M{"$set": bson.M{"deleted": true}})
		return mustMatch(res, err, "customer "+id)
	}
	res, err := s.c(colCustomers).DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) AddCustomerSpent(ctx context.Context, id string, amount float64) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.c(colCustomers).UpdateOne(ctx, byID(id), bson.M{"$inc": bson.M{"total_spent": amount}})
	if err != nil {
		return false, fmt.Errorf("accrue spend of %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}
