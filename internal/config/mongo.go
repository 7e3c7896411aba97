package config

import "time"

type Mongo struct {
	URL            string        `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	DBName         string        `env:"MONGO_DB_NAME" envDefault:"tyre_inventory"`
	Collection     string        `env:"MONGO_COLLECTION" envDefault:"tyres"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}
