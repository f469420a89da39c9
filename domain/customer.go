package domain

import "time"

type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      *string   `json:"email"`
	Address    *string   `json:"address"`
	Notes      *string   `json:"notes"`
	TotalSpent float64   `json:"total_spent"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
}

// CustomerPatch updates contact fields only. TotalSpent is owned by the
// ledger and Deleted by the soft-delete path.
type CustomerPatch struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (p CustomerPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil && p.Address == nil && p.Notes == nil
}
