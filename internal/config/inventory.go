package config

import "time"

type Inventory struct {
	// AllowNegative accepts negative stock and price values on create and update.
	AllowNegative bool `env:"INVENTORY_ALLOW_NEGATIVE" envDefault:"true"`
	// ListLimit caps the number of records returned by list and search.
	ListLimit int64 `env:"INVENTORY_LIST_LIMIT" envDefault:"1000"`
	// LowStockThreshold is the stock level at or below which the event
	// consumer reports a low-stock alert.
	LowStockThreshold int `env:"INVENTORY_LOW_STOCK_THRESHOLD" envDefault:"2"`
	// EventTimeout bounds how long a write waits for its event to be
	// acknowledged by the broker.
	EventTimeout time.Duration `env:"INVENTORY_EVENT_TIMEOUT" envDefault:"2s"`
}
