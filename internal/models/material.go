package models

type Material struct {
	Meta       `mapstructure:",squash"`
	Name       string  `mapstructure:"name" json:"name"`
	Stock      float64 `mapstructure:"stock" json:"stock"`
	Dispatched float64 `mapstructure:"dispatched" json:"dispatched"`
	Installed  float64 `mapstructure:"installed" json:"installed"`
	// Balance is entered by hand, not derived from the other counts.
	Balance float64 `mapstructure:"balance" json:"balance"`
	Unit    string  `mapstructure:"unit" json:"unit"`
}
