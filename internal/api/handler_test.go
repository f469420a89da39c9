package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medstock/m/domain"
	"medstock/m/internal/auth"
	"medstock/m/internal/currency"
	"medstock/m/internal/seed"
	"medstock/m/internal/store/sqlstore"
	"medstock/m/internal/store/storetest"
)

type staticRates struct{ r currency.Rates }

func (s staticRates) Rates(context.Context) currency.Rates { return s.r }

type testServer struct {
	t      *testing.T
	store  *sqlstore.Store
	router http.Handler
}

var testNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := storetest.SQLite(t)
	h := New(s, auth.NewTokens("test-secret", time.Hour), staticRates{currency.Rates{USDTRY: 32.1, Timestamp: testNow}}, nil)
	h.now = func() time.Time { return testNow }
	return &testServer{t: t, store: s, router: h.Router()}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// user registers and logs in, returning the token and user id. Admins
// cannot register, so they are written to the store directly.
func (ts *testServer) user(name string, role domain.Role) (string, string) {
	ts.t.Helper()
	if role == domain.RoleAdmin {
		seed.EnsureAdmin(context.Background(), ts.store, name, "pw-"+name)
	} else {
		rec := ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{"username": name, "password": "pw-" + name, "role": role})
		require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := ts.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": name, "password": "pw-" + name})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp tokenResponse
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(ts.t, "bearer", resp.TokenType)
	return resp.AccessToken, resp.User.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(http.MethodGet, "/api/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{"username": "ayse", "password": "x"})
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decode[domain.User](t, rec)
	assert.Equal(t, domain.RoleWarehouse, u.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{"username": "ayse", "password": "y"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{"username": "veli", "password": "y", "role": "boss"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPost, "/api/auth/register", "", map[string]any{"username": "veli", "password": "y", "role": domain.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "ayse", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "nobody", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _ := ts.user("mehmet", domain.RoleSales)
	rec = ts.do(http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.User](t, rec), 2)
}

func TestDeleteUserRules(t *testing.T) {
	ts := newTestServer(t)
	adminToken, adminID := ts.user("admin", domain.RoleAdmin)
	salesToken, salesID := ts.user("sales", domain.RoleSales)

	rec := ts.do(http.MethodDelete, "/api/users/"+adminID, adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/users/"+adminID, salesToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/users/missing", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/users/"+salesID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// the deleted user's token no longer authenticates
	rec = ts.do(http.MethodGet, "/api/products", salesToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.user("depo", domain.RoleWarehouse)

	body := map[string]any{
		"name": "Eldiven", "barcode": "869", "brand": "Medi", "category": "Sarf",
		"quantity": 5, "min_quantity": 5, "purchase_price": 1.5, "sale_price": 3,
	}
	rec := ts.do(http.MethodPost, "/api/products", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[domain.Product](t, rec)
	assert.Equal(t, domain.UnitPiece, p.UnitType)

	rec = ts.do(http.MethodPost, "/api/products", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	body["barcode"], body["sale_price"] = "870", -1
	rec = ts.do(http.MethodPost, "/api/products", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/products/barcode/869", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p.ID, decode[domain.Product](t, rec).ID)
	rec = ts.do(http.MethodGet, "/api/products/barcode/000", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/api/products/low-stock", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Product](t, rec), 1)

	rec = ts.do(http.MethodPut, "/api/products/"+p.ID, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPut, "/api/products/missing", token, map[string]any{"quantity": 9})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodPut, "/api/products/"+p.ID, token, map[string]any{"quantity": 9, "image_base64": "data:x"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Product](t, rec)
	assert.Equal(t, 9, updated.Quantity)
	assert.Equal(t, "Eldiven", updated.Name)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, "data:x", *updated.ImageURL)

	rec = ts.do(http.MethodGet, "/api/products/"+p.ID+"/price-comparison", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, decode[priceComparison](t, rec).CurrentPrice)

	rec = ts.do(http.MethodDelete, "/api/products/"+p.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/products/"+p.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaleUpdatesStockAndCustomer(t *testing.T) {
	ts := newTestServer(t)
	token, cashierID := ts.user("kasa", domain.RoleSales)
	storetest.Product(t, ts.store, "P1", 10, 2, 6, 10)
	storetest.Customer(t, ts.store, "C1", 100)

	rec := ts.do(http.MethodPost, "/api/sales", token, map[string]any{
		"items":          []map[string]any{{"product_id": "P1", "name": "product P1", "quantity": 3, "price": 10, "total": 30}},
		"total_amount":   30,
		"discount":       5,
		"payment_method": "nakit",
		"customer_id":    "C1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[domain.Sale](t, rec)
	assert.Equal(t, 25.0, sale.FinalAmount)
	assert.Equal(t, cashierID, sale.CashierID)

	p, err := ts.store.ProductByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)
	c, err := ts.store.CustomerByID(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, 125.0, c.TotalSpent)

	rec = ts.do(http.MethodGet, "/api/customers/C1/purchases", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Sale](t, rec), 1)

	rec = ts.do(http.MethodPost, "/api/sales", token, map[string]any{
		"items":          []map[string]any{{"product_id": "P1", "quantity": 0}},
		"total_amount":   0,
		"payment_method": "nakit",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/sales?start_date=2024-03-10&end_date=2024-03-11", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Sale](t, rec), 1)
	rec = ts.do(http.MethodGet, "/api/sales?start_date=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerEndpoints(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.user("admin", domain.RoleAdmin)
	salesToken, _ := ts.user("sales", domain.RoleSales)

	rec := ts.do(http.MethodPost, "/api/customers", salesToken, map[string]any{"name": "Zeynep Kaya", "phone": "5551234"})
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decode[domain.Customer](t, rec)
	rec = ts.do(http.MethodPost, "/api/customers", salesToken, map[string]any{"name": "Ali Demir", "phone": "5559876"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodGet, "/api/customers?search=kaya", salesToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]domain.Customer](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID)

	rec = ts.do(http.MethodPut, "/api/customers/"+c.ID, salesToken, map[string]any{"notes": "VIP"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decode[domain.Customer](t, rec).Notes)
	rec = ts.do(http.MethodPut, "/api/customers/"+c.ID, salesToken, map[string]any{"total_spent": 1e6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPut, "/api/customers/missing", salesToken, map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/customers/"+c.ID, salesToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/customers/"+c.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/customers/missing", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/api/customers", salesToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Customer](t, rec), 1)

	stored, err := ts.store.CustomerByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.user("admin", domain.RoleAdmin)
	storetest.Product(t, ts.store, "P1", 1, 5, 4, 10)
	storetest.Sale(t, ts.store, testNow.Add(-time.Hour), 20, storetest.Line("P1", 2, 10))

	rec := ts.do(http.MethodGet, "/api/reports/top-selling", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodGet, "/api/reports/top-selling?start_date=2024-03-01&end_date=2024-03-31&limit=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/reports/top-selling?start_date=2024-03-01&end_date=2024-03-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	selling := decode[[]map[string]any](t, rec)
	require.Len(t, selling, 1)
	assert.Equal(t, "P1", selling[0]["product_id"])
	assert.Equal(t, 2.0, selling[0]["total_quantity"])

	rec = ts.do(http.MethodGet, "/api/reports/top-profit?start_date=2024-03-01T00:00:00Z&end_date=2024-03-31T00:00:00Z", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profit := decode[[]map[string]any](t, rec)
	require.Len(t, profit, 1)
	assert.Equal(t, 12.0, profit[0]["total_profit"])

	rec = ts.do(http.MethodGet, "/api/reports/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_products":1,"low_stock_count":1,"today_sales_count":1,"today_revenue":20,"week_sales_count":1,"week_revenue":20}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/currency", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 32.1, decode[currency.Rates](t, rec).USDTRY)
}

func TestCalendarIsPerUser(t *testing.T) {
	ts := newTestServer(t)
	aToken, _ := ts.user("a", domain.RoleSales)
	bToken, _ := ts.user("b", domain.RoleSales)

	rec := ts.do(http.MethodPost, "/api/calendar", aToken, map[string]any{"title": "Sayım", "date": "2024-03-12T09:00:00Z", "alarm": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decode[domain.CalendarEvent](t, rec)
	rec = ts.do(http.MethodPost, "/api/calendar", aToken, map[string]any{"title": "Sipariş", "date": "2024-03-11T09:00:00Z"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(http.MethodPost, "/api/calendar", aToken, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/calendar", aToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]domain.CalendarEvent](t, rec)
	require.Len(t, events, 2)
	assert.Equal(t, "Sipariş", events[0].Title)

	rec = ts.do(http.MethodGet, "/api/calendar?start_date=2024-03-12&end_date=2024-03-13", aToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.CalendarEvent](t, rec), 1)

	rec = ts.do(http.MethodGet, "/api/calendar", bToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.CalendarEvent](t, rec))

	rec = ts.do(http.MethodDelete, "/api/calendar/"+e.ID, bToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/calendar/"+e.ID, aToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDate("2024-03-10T12:00:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), got)

	_, err = parseDate("10/03/2024")
	assert.Error(t, err)
}
