package config

// Kafka configures the inventory event stream. Events are disabled when no
// broker address is configured.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"tyre-inventory"`
}

func (k Kafka) Enabled() bool {
	return len(k.Addresses) > 0
}
