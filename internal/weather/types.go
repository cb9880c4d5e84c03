package weather

import (
	"context"
	"fmt"
)

// Snapshot is the current weather for one city as returned by one fetch.
type Snapshot struct {
	City      string  `json:"city,omitempty"`
	TempC     float64 `json:"temp_c"`
	Humidity  int     `json:"humidity"`
	WindSpeed float64 `json:"wind_speed"`
	Condition string  `json:"condition"`
}

// Fahrenheit converts the Celsius temperature.
func (s Snapshot) Fahrenheit() float64 {
	return s.TempC*9/5 + 32
}

// FormatFahrenheit renders the converted temperature with one decimal place.
func (s Snapshot) FormatFahrenheit() string {
	return fmt.Sprintf("%.1f", s.Fahrenheit())
}

// Fetcher looks up the current weather for a city name.
type Fetcher interface {
	Current(ctx context.Context, city string) (*Snapshot, error)
}
