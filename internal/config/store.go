package config

import (
	"fmt"
	"strings"
)

type Store struct {
	Driver StoreDriver `env:"STORE_DRIVER" envDefault:"MONGO"`
}

// StoreDriver selects the record store backing the inventory.
type StoreDriver uint8

const (
	StoreDriverMongo StoreDriver = iota
	StoreDriverPostgres
	StoreDriverMemory
)

func (d StoreDriver) String() string {
	return []string{"MONGO", "POSTGRES", "MEMORY"}[d]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *StoreDriver) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "MONGO", "MONGODB":
		*d = StoreDriverMongo
	case "POSTGRES", "POSTGRESQL":
		*d = StoreDriverPostgres
	case "MEMORY":
		*d = StoreDriverMemory
	default:
		return fmt.Errorf("unknown store driver: %s", text)
	}
	return nil
}

func (d StoreDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
