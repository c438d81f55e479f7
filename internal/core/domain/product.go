package domain

import "time"

type Product struct {
	ID        string
	Name      string
	Stock     int
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLowStock reports whether the product is running low without being
// sold out. Out-of-stock items have their own lifecycle and never
// appear in low-stock alerts.
func (p Product) IsLowStock(threshold int) bool {
	return p.Stock > 0 && p.Stock < threshold
}
