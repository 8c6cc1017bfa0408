package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retreatworks/bandscan/internal/domain"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default("/tmp/bandscan.db")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(cfg.MealWindows) != 9 {
		t.Fatalf("expected 9 default meal windows, got %d", len(cfg.MealWindows))
	}
}

func TestDefaultScheduleResolves(t *testing.T) {
	cfg := Default("/tmp/bandscan.db")
	sched, err := cfg.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	at := time.Date(2025, 5, 24, 12, 0, 0, 0, eastern)
	slot, err := sched.Resolve(at)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if slot != domain.MealSatLunch {
		t.Fatalf("unexpected slot %q", slot)
	}

	// Monday morning overlap: breakfast is declared first and wins.
	at = time.Date(2025, 5, 26, 8, 0, 0, 0, eastern)
	slot, err = sched.Resolve(at)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if slot != domain.MealMonBreakfast {
		t.Fatalf("unexpected slot %q", slot)
	}

	if _, err := sched.Resolve(time.Date(2025, 6, 1, 12, 0, 0, 0, eastern)); err == nil {
		t.Fatal("expected no window in June")
	}
}

func TestDefaultScheduleBoundaries(t *testing.T) {
	sched, err := Default("/tmp/bandscan.db").Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	// friDinner opens weeks ahead of the event for late-arrival scans.
	slot, err := sched.Resolve(time.Date(2025, 5, 10, 12, 0, 0, 0, eastern))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if slot != domain.MealFriDinner {
		t.Fatalf("unexpected slot %q", slot)
	}

	// sunDinner runs to the end of the day.
	slot, err = sched.Resolve(time.Date(2025, 5, 25, 23, 45, 0, 0, eastern))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if slot != domain.MealSunDinner {
		t.Fatalf("unexpected slot %q", slot)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	defaults := Default("/tmp/bandscan.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scanner.EventID != defaults.Scanner.EventID {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandscan.toml")
	content := `
[api]
base_url = "https://ledger.example.org"
timeout_seconds = 5

[scanner]
event_id = "USASadhuSanga2026"
lane_code = 9

[[meal_windows]]
slot = "satLunch"
start = 2026-05-23T11:30:00-04:00
end = 2026-05-23T16:30:00-04:00
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, Default("/tmp/bandscan.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://ledger.example.org" || cfg.API.TimeoutSeconds != 5 {
		t.Fatalf("unexpected api config %#v", cfg.API)
	}
	if cfg.Scanner.EventID != "USASadhuSanga2026" || cfg.Scanner.LaneCode != 9 {
		t.Fatalf("unexpected scanner config %#v", cfg.Scanner)
	}
	if len(cfg.MealWindows) != 1 || cfg.MealWindows[0].Slot != "satLunch" {
		t.Fatalf("expected windows replaced, got %#v", cfg.MealWindows)
	}
}

func TestValidateRejections(t *testing.T) {
	cfg := Default("")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty database path")
	}

	cfg = Default("/tmp/bandscan.db")
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad logging level")
	}

	cfg = Default("/tmp/bandscan.db")
	cfg.MealWindows = []MealWindowSpec{{
		Slot:  "brunch",
		Start: time.Date(2025, 5, 24, 11, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 5, 24, 12, 0, 0, 0, time.UTC),
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown slot")
	}

	cfg = Default("/tmp/bandscan.db")
	cfg.MealWindows[0].End = cfg.MealWindows[0].Start
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty window")
	}
}
