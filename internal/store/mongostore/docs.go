package mongostore

import (
	"medstock/m/domain"
	"medstock/m/internal/store"
)

type userDoc struct {
	ID        string  `bson:"id"`
	Username  string  `bson:"username"`
	Email     *string `bson:"email"`
	Password  string  `bson:"password"`
	Role      string  `bson:"role"`
	CreatedAt string  `bson:"created_at"`
}

func (d userDoc) credentials() (*domain.Credentials, error) {
	created, err := store.ParseTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Credentials{
		User: domain.User{
			ID:        d.ID,
			Username:  d.Username,
			Email:     d.Email,
			Role:      domain.Role(d.Role),
			CreatedAt: created,
		},
		PasswordHash: d.Password,
	}, nil
}

type productDoc struct {
	ID              string  `bson:"id"`
	Name            string  `bson:"name"`
	Barcode         string  `bson:"barcode"`
	Brand           string  `bson:"brand"`
	Category        string  `bson:"category"`
	Quantity        int     `bson:"quantity"`
	MinQuantity     int     `bson:"min_quantity"`
	UnitType        string  `bson:"unit_type"`
	PackageQuantity *int    `bson:"package_quantity"`
	PurchasePrice   float64 `bson:"purchase_price"`
	SalePrice       float64 `bson:"sale_price"`
	Description     *string `bson:"description"`
	ImageURL        *string `bson:"image_url"`
	CreatedAt       string  `bson:"created_at"`
	UpdatedAt       string  `bson:"updated_at"`
}

func newProductDoc(p *domain.Product) productDoc {
	return productDoc{
		ID:              p.ID,
		Name:            p.Name,
		Barcode:         p.Barcode,
		Brand:           p.Brand,
		Category:        p.Category,
		Quantity:        p.Quantity,
		MinQuantity:     p.MinQuantity,
		UnitType:        string(p.UnitType),
		PackageQuantity: p.PackageQuantity,
		PurchasePrice:   p.PurchasePrice,
		SalePrice:       p.SalePrice,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		CreatedAt:       store.FormatTime(p.CreatedAt),
		UpdatedAt:       store.FormatTime(p.UpdatedAt),
	}
}

func (d productDoc) product() (domain.Product, error) {
	p := domain.Product{
		ID:              d.ID,
		Name:            d.Name,
		Barcode:         d.Barcode,
		Brand:           d.Brand,
		Category:        d.Category,
		Quantity:        d.Quantity,
		MinQuantity:     d.MinQuantity,
		UnitType:        domain.UnitType(d.UnitType),
		PackageQuantity: d.PackageQuantity,
		PurchasePrice:   d.PurchasePrice,
		SalePrice:       d.SalePrice,
		Description:     d.Description,
		ImageURL:        d.ImageURL,
	}
	if p.UnitType == "" {
		p.UnitType = domain.UnitPiece
	}
	var err error
	if p.CreatedAt, err = store.ParseTime(d.CreatedAt); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = store.ParseTime(d.UpdatedAt); err != nil {
		return p, err
	}
	return p, nil
}

type customerDoc struct {
	ID         string  `bson:"id"`
	Name       string  `bson:"name"`
	Phone      string  `bson:"phone"`
	Email      *string `bson:"email"`
	Address    *string `bson:"address"`
	Notes      *string `bson:"notes"`
	TotalSpent float64 `bson:"total_spent"`
	Deleted    bool    `bson:"deleted"`
	CreatedAt  string  `bson:"created_at"`
}

func (d customerDoc) customer() (domain.Customer, error) {
	created, err := store.ParseTime(d.CreatedAt)
	if err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		ID:         d.ID,
		Name:       d.Name,
		Phone:      d.Phone,
		Email:      d.Email,
		Address:    d.Address,
		Notes:      d.Notes,
		TotalSpent: d.TotalSpent,
		Deleted:    d.Deleted,
		CreatedAt:  created,
	}, nil
}

type lineItemDoc struct {
	ProductID string  `bson:"product_id"`
	Name      string  `bson:"name"`
	Quantity  int     `bson:"quantity"`
	Price     float64 `bson:"price"`
	Total     float64 `bson:"total"`
}

type saleDoc struct {
	ID            string        `bson:"id"`
	Items         []lineItemDoc `bson:"items"`
	TotalAmount   float64       `bson:"total_amount"`
	Discount      float64       `bson:"discount"`
	FinalAmount   float64       `bson:"final_amount"`
	PaymentMethod string        `bson:"payment_method"`
	CustomerID    *string       `bson:"customer_id"`
	CashierID     string        `bson:"cashier_id"`
	CreatedAt     string        `bson:"created_at"`
}

func newSaleDoc(s *domain.Sale) saleDoc {
	items := make([]lineItemDoc, len(s.Items))
	for i, it := range s.Items {
		items[i] = lineItemDoc(it)
	}
	return saleDoc{
		ID:            s.ID,
		Items:         items,
		TotalAmount:   s.TotalAmount,
		Discount:      s.Discount,
		FinalAmount:   s.FinalAmount,
		PaymentMethod: s.PaymentMethod,
		CustomerID:    s.CustomerID,
		CashierID:     s.CashierID,
		CreatedAt:     store.FormatTime(s.CreatedAt),
	}
}

func (d saleDoc) sale() (domain.Sale, error) {
	created, err := store.ParseTime(d.CreatedAt)
	if err != nil {
		return domain.Sale{}, err
	}
	items := make([]domain.LineItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = domain.LineItem(it)
	}
	return domain.Sale{
		ID:            d.ID,
		Items:         items,
		TotalAmount:   d.TotalAmount,
		Discount:      d.Discount,
		FinalAmount:   d.FinalAmount,
		PaymentMethod: d.PaymentMethod,
		CustomerID:    d.CustomerID,
		CashierID:     d.CashierID,
		CreatedAt:     created,
	}, nil
}

type eventDoc struct {
	ID          string  `bson:"id"`
	Title       string  `bson:"title"`
	Description *string `bson:"description"`
	Date        string  `bson:"date"`
	Alarm       bool    `bson:"alarm"`
	UserID      string  `bson:"user_id"`
	CreatedAt   string  `bson:"created_at"`
}

func (d eventDoc) event() (domain.CalendarEvent, error) {
	date, err := store.ParseTime(d.Date)
	if err != nil {
		return domain.CalendarEvent{}, err
	}
	created, err := store.ParseTime(d.CreatedAt)
	if err != nil {
		return domain.CalendarEvent{}, err
	}
	return domain.CalendarEvent{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Date:        date,
		Alarm:       d.Alarm,
		UserID:      d.UserID,
		CreatedAt:   created,
	}, nil
}
