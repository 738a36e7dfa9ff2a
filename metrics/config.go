// Package metrics holds the metrics configuration shared by the vault and its
// operator tool. Collection itself uses the go-ethereum metrics registry.
package metrics

import gethmetrics "github.com/ethereum/go-ethereum/metrics"

// Config contains the configuration for the metric collection.
type Config struct {
	Enabled bool `toml:",omitempty"`
}

// DefaultConfig is the default config for metrics used in lockvault.
var DefaultConfig = Config{
	Enabled: false,
}

// Setup turns on metric collection when the config asks for it. Call it
// before the vault is opened.
func (c Config) Setup() {
	if c.Enabled {
		gethmetrics.Enabled = true
	}
}
