// Package prompt builds the prompts sent to the insight model
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/weatherinsight/internal/weather"
)

// Builder renders the system and user prompts for a weather snapshot
type Builder struct {
	system string
}

// NewBuilder returns a Builder using the built-in system prompt
func NewBuilder() *Builder {
	return &Builder{system: GetDefault()}
}

// Load reads a custom system prompt from path. An empty path selects the
// built-in prompt.
func Load(path string) (*Builder, error) {
	if path == "" {
		return NewBuilder(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", path, err)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil, fmt.Errorf("prompt %s is empty", path)
	}
	return &Builder{system: s}, nil
}

// LoadWithFallback is Load, logging and falling back to the built-in prompt
// on error
func LoadWithFallback(path string, logger zerolog.Logger) *Builder {
	b, err := Load(path)
	if err != nil {
		logger.Warn().Err(err).Msg("using default insight prompt")
		return NewBuilder()
	}
	return b
}

// System returns the system prompt
func (b *Builder) System() string { return b.system }

// User renders the conditions the model is asked about
func (b *Builder) User(snap weather.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "City: %s", snap.City)
	if snap.Country != "" {
		fmt.Fprintf(&sb, ", %s", snap.Country)
	}
	sym := snap.Units.Symbol()
	fmt.Fprintf(&sb, "\nTemperature: %.1f%s", snap.Temperature, sym)
	fmt.Fprintf(&sb, "\nFeels like: %.1f%s", snap.FeelsLike, sym)
	fmt.Fprintf(&sb, "\nHumidity: %d%%", snap.Humidity)
	fmt.Fprintf(&sb, "\nConditions: %s", snap.Description)
	fmt.Fprintf(&sb, "\nWind speed: %.1f %s", snap.WindSpeed, windUnit(snap.Units))
	if !snap.ObservedAt.IsZero() {
		fmt.Fprintf(&sb, "\nObserved at: %s", snap.ObservedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return sb.String()
}

func windUnit(u weather.Units) string {
	if u == weather.Imperial {
		return "mph"
	}
	return "m/s"
}
