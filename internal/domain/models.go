package domain

import "database/sql"

// Soda is one SKU row in the sodas table. Quantity is nullable at the
// storage layer; the form layer is responsible for defaulting blank input
// to 0 before it reaches the repository.
type Soda struct {
	ID       int64         `db:"id"`
	Name     string        `db:"name"`
	Quantity sql.NullInt64 `db:"quantity"`
	Price    int64         `db:"price"`
	Sold     int64         `db:"sold"`
	Got      int64         `db:"got"`
}

// Qty returns the on-hand count, treating a NULL quantity as 0.
func (s Soda) Qty() int64 {
	if s.Quantity.Valid {
		return s.Quantity.Int64
	}
	return 0
}

// SodaPatch is a partial record: nil means "field not present in the patch",
// so callers can distinguish absent from zero.
type SodaPatch struct {
	Name     *string
	Quantity *int64
	Price    *int64
	Sold     *int64
	Got      *int64
}

// Empty reports whether the patch carries no fields at all.
func (p SodaPatch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.Price == nil && p.Sold == nil && p.Got == nil
}
