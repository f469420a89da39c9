package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medstock/m/domain"
	"medstock/m/internal/store"
)

func TestTopSellingPipelineStages(t *testing.T) {
	p := topSellingPipeline("2024-01-01T00:00:00.000000Z", "2024-01-31T23:59:59.000000Z", 5)
	require.Len(t, p, 5)

	match := p[0].(bson.M)["$match"].(bson.M)
	assert.Equal(t, bson.M{"$gte": "2024-01-01T00:00:00.000000Z", "$lte": "2024-01-31T23:59:59.000000Z"}, match["created_at"])
	assert.Equal(t, "$items", p[1].(bson.M)["$unwind"])

	group := p[2].(bson.M)["$group"].(bson.M)
	assert.Equal(t, "$items.product_id", group["_id"])
	assert.Equal(t, bson.M{"$sum": "$items.quantity"}, group["total_quantity"])

	sort := p[3].(bson.M)["$sort"].(bson.D)
	assert.Equal(t, bson.D{{Key: "total_quantity", Value: -1}, {Key: "_id", Value: 1}}, sort)
	assert.Equal(t, 5, p[4].(bson.M)["$limit"])
}

func TestSummaryPipelineMatchesLeftBoundOnly(t *testing.T) {
	p := summaryPipeline("2024-03-10T00:00:00.000000Z")
	require.Len(t, p, 2)
	match := p[0].(bson.M)["$match"].(bson.M)
	assert.Equal(t, bson.M{"$gte": "2024-03-10T00:00:00.000000Z"}, match["created_at"])
}

func TestCustomerFilter(t *testing.T) {
	assert.Equal(t, bson.M{"deleted": bson.M{"$ne": true}}, customerFilter("  "))

	f := customerFilter("a.b")
	or := f["$or"].(bson.A)
	require.Len(t, or, 2)
	assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, or[0].(bson.M)["name"])
}

func TestSaleFilterBounds(t *testing.T) {
	assert.Empty(t, saleFilter(store.SaleFilter{}))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := saleFilter(store.SaleFilter{Start: &start, CustomerID: "c1"})
	assert.Equal(t, bson.M{"$gte": store.FormatTime(start)}, f["created_at"])
	assert.Equal(t, "c1", f["customer_id"])
}

func TestEventFilterScopesToUser(t *testing.T) {
	f := eventFilter("u1", nil, nil)
	assert.Equal(t, bson.M{"user_id": "u1"}, f)
}

func TestProductSetOnlyCarriesPatchedFields(t *testing.T) {
	assert.Empty(t, productSet(domain.ProductPatch{}))

	price := 12.5
	img := "data:image/png;base64,AAAA"
	set := productSet(domain.ProductPatch{SalePrice: &price, ImageURL: &img})
	assert.Equal(t, bson.M{"sale_price": 12.5, "image_url": img}, set)
}
