package engine

import (
	"testing"
	"time"

	"github.com/talgya/crownworks/internal/resource"
)

func TestClockCadence(t *testing.T) {
	c := NewClock(3)

	var days, seasons, years []int
	c.OnDay = func(d int) { days = append(days, d) }
	c.OnSeason = func(d int) { seasons = append(seasons, d) }
	c.OnYear = func(d int) { years = append(years, d) }

	for i := 0; i < 13; i++ {
		c.Step()
	}

	if len(days) != 13 {
		t.Errorf("day hooks = %d, want 13", len(days))
	}
	if len(seasons) != 4 {
		t.Fatalf("season hooks = %d, want 4", len(seasons))
	}
	for i, d := range seasons {
		if want := (i + 1) * 3; d != want {
			t.Errorf("season hook %d fired on day %d, want %d", i, d, want)
		}
	}
	if len(years) != 1 || years[0] != 12 {
		t.Errorf("year hooks = %v, want [12]", years)
	}
}

func TestClockSpeedRoundTrip(t *testing.T) {
	c := NewClock(90)
	if got := c.Speed(); got != 1.0 {
		t.Errorf("default speed = %v, want 1.0", got)
	}
	c.SetSpeed(2.5)
	if got := c.Speed(); got != 2.5 {
		t.Errorf("speed = %v, want 2.5", got)
	}
}

func TestClockStopFromAnotherGoroutine(t *testing.T) {
	c := NewClock(90)
	c.Interval = time.Millisecond
	c.OnDay = func(day int) {
		if day >= 3 {
			c.Stop()
		}
	}

	done := make(chan struct{})
	go func() {
		c.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("clock did not stop")
	}
	if c.Running() {
		t.Error("still reported running after stop")
	}
	if c.Day < 3 {
		t.Errorf("stopped on day %d, want at least 3", c.Day)
	}
}

func TestClockDefaultsSeasonLength(t *testing.T) {
	if c := NewClock(0); c.DaysPerSeason != 90 {
		t.Errorf("DaysPerSeason = %d, want 90", c.DaysPerSeason)
	}
}

func TestSeasonalModifiers(t *testing.T) {
	// Winter starves food, autumn feasts; abstract resources never move.
	if got := SeasonalProductionMod(SeasonWinter, resource.Food); got != 0.5 {
		t.Errorf("winter food = %v, want 0.5", got)
	}
	if got := SeasonalProductionMod(SeasonAutumn, resource.Food); got != 1.5 {
		t.Errorf("autumn food = %v, want 1.5", got)
	}
	for s := SeasonSpring; s < seasonCount; s++ {
		if got := SeasonalProductionMod(s, resource.Gold); got != 1.0 {
			t.Errorf("%s gold = %v, want 1.0", SeasonName(s), got)
		}
	}
}
