package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/retreatworks/bandscan/internal/domain"
)

type Config struct {
	API         APIConfig        `toml:"api"`
	Scanner     ScannerConfig    `toml:"scanner"`
	Database    DatabaseConfig   `toml:"database"`
	Logging     LoggingConfig    `toml:"logging"`
	MealWindows []MealWindowSpec `toml:"meal_windows"`
}

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ScannerConfig struct {
	EventID  string `toml:"event_id"`
	LaneCode int    `toml:"lane_code"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	DevFile string `toml:"dev_file"`
}

type MealWindowSpec struct {
	Slot  string    `toml:"slot"`
	Start time.Time `toml:"start"`
	End   time.Time `toml:"end"`
}

// eastern is the retreat venue's timezone offset (EDT) for the default
// calendar. Config files may carry any offset RFC 3339 allows.
var eastern = time.FixedZone("EDT", -4*60*60)

func defaultMealWindows() []MealWindowSpec {
	day := func(d, h, m int) time.Time {
		return time.Date(2025, 5, d, h, m, 0, 0, eastern)
	}
	return []MealWindowSpec{
		// friDinner opens weeks early so late-arrival scans before the
		// event proper still land in a window.
		{Slot: "friDinner", Start: day(2, 13, 30), End: day(23, 23, 30)},
		{Slot: "satBreakfast", Start: day(24, 6, 30), End: day(24, 11, 30)},
		{Slot: "satLunch", Start: day(24, 11, 30), End: day(24, 16, 30)},
		{Slot: "satDinner", Start: day(24, 16, 30), End: day(24, 23, 30)},
		{Slot: "sunBreakfast", Start: day(25, 6, 30), End: day(25, 11, 30)},
		{Slot: "sunLunch", Start: day(25, 11, 30), End: day(25, 16, 30)},
		{Slot: "sunDinner", Start: day(25, 16, 30), End: day(25, 23, 59)},
		{Slot: "monBreakfast", Start: day(26, 6, 30), End: day(26, 9, 10)},
		{Slot: "monLunch", Start: day(26, 6, 10), End: day(26, 14, 30)},
	}
}

func Default(dbPath string) Config {
	return Config{
		API: APIConfig{
			TimeoutSeconds: 15,
		},
		Scanner: ScannerConfig{
			EventID:  "USASadhuSanga2025",
			LaneCode: 0,
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		MealWindows: defaultMealWindows(),
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must be >= 0")
	}
	if c.Scanner.LaneCode < 0 {
		return errors.New("scanner.lane_code must be >= 0")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if _, err := c.Schedule(); err != nil {
		return err
	}
	return nil
}

// Schedule converts the configured windows into the domain schedule,
// preserving declaration order.
func (c Config) Schedule() (domain.Schedule, error) {
	windows := make([]domain.MealWindow, 0, len(c.MealWindows))
	for i, spec := range c.MealWindows {
		slot := domain.MealSlot(strings.TrimSpace(spec.Slot))
		if spec.Start.IsZero() || spec.End.IsZero() {
			return domain.Schedule{}, fmt.Errorf("meal_windows[%d]: start and end are required", i)
		}
		windows = append(windows, domain.MealWindow{Slot: slot, Start: spec.Start, End: spec.End})
	}
	sched, err := domain.NewSchedule(windows)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("meal_windows: %w", err)
	}
	return sched, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
