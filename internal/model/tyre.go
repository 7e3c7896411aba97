package model

import "time"

// Tyre is a stocked tyre. ID is assigned by the record store on insert and its
// format is owned by that store.
type Tyre struct {
	ID        string    `json:"id"`
	Brand     string    `json:"brand"`
	Size      string    `json:"size"`
	Type      string    `json:"type"`
	Pattern   string    `json:"pattern"`
	Stock     int       `json:"stock"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TyrePatch is a partial update of a tyre. Only stock and price are mutable
// after creation; nil fields are left unchanged.
type TyrePatch struct {
	Stock     *int
	Price     *float64
	UpdatedAt time.Time
}

// Apply returns a copy of t with the patch applied.
func (p TyrePatch) Apply(t Tyre) Tyre {
	if p.Stock != nil {
		t.Stock = *p.Stock
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	t.UpdatedAt = p.UpdatedAt
	return t
}
