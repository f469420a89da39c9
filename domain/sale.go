package domain

import "time"

// LineItem is one product entry of a sale. Name and Price are snapshots
// taken at sale time.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}

type Sale struct {
	ID            string     `json:"id"`
	Items         []LineItem `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	Discount      float64    `json:"discount"`
	FinalAmount   float64    `json:"final_amount"`
	PaymentMethod string     `json:"payment_method"`
	CustomerID    *string    `json:"customer_id"`
	CashierID     string     `json:"cashier_id"`
	CreatedAt     time.Time  `json:"created_at"`
}
