package models_test

import (
	"testing"
	"time"

	"github.com/cinevote/cinevote/internal/domain/models"
)

func testCycle() models.VotingCycle {
	return models.VotingCycle{
		Name:            "January Movie Night",
		SuggestionStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		VotingStart:     time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		VotingEnd:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestPhaseAt(t *testing.T) {
	c := testCycle()

	tests := []struct {
		name string
		now  time.Time
		want models.Phase
	}{
		{"well before suggestion start", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), models.PhaseNotStarted},
		{"instant before suggestion start", c.SuggestionStart.Add(-time.Nanosecond), models.PhaseNotStarted},
		{"exactly suggestion start", c.SuggestionStart, models.PhaseSuggestion},
		{"mid suggestion window", time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC), models.PhaseSuggestion},
		{"instant before voting start", c.VotingStart.Add(-time.Nanosecond), models.PhaseSuggestion},
		{"exactly voting start", c.VotingStart, models.PhaseVoting},
		{"mid voting window", time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC), models.PhaseVoting},
		{"instant before voting end", c.VotingEnd.Add(-time.Nanosecond), models.PhaseVoting},
		{"exactly voting end", c.VotingEnd, models.PhaseEnded},
		{"long after voting end", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), models.PhaseEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.PhaseAt(tt.now); got != tt.want {
				t.Errorf("PhaseAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

// TestPhaseAt_PartitionsTimeline walks the whole window in hourly steps and
// checks that every instant maps to exactly one phase and that phases only
// ever advance (NotStarted -> Suggestion -> Voting -> Ended).
func TestPhaseAt_PartitionsTimeline(t *testing.T) {
	c := testCycle()

	order := map[models.Phase]int{
		models.PhaseNotStarted: 0,
		models.PhaseSuggestion: 1,
		models.PhaseVoting:     2,
		models.PhaseEnded:      3,
	}

	prev := -1
	start := c.SuggestionStart.Add(-48 * time.Hour)
	end := c.VotingEnd.Add(48 * time.Hour)
	for now := start; !now.After(end); now = now.Add(time.Hour) {
		phase := c.PhaseAt(now)
		rank, ok := order[phase]
		if !ok {
			t.Fatalf("PhaseAt(%v) returned unknown phase %q", now, phase)
		}
		if rank < prev {
			t.Fatalf("phase went backwards at %v: %v", now, phase)
		}
		prev = rank
	}
	if prev != order[models.PhaseEnded] {
		t.Fatalf("timeline walk never reached Ended")
	}
}

func TestPhaseAt_DegenerateWindows(t *testing.T) {
	// Zero-length voting window: the voting phase is never entered, but
	// derivation still terminates and stays total.
	at := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	c := models.VotingCycle{
		SuggestionStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		VotingStart:     at,
		VotingEnd:       at,
	}
	if got := c.PhaseAt(at); got != models.PhaseEnded {
		t.Errorf("zero-length voting window at boundary: got %v, want %v", got, models.PhaseEnded)
	}
}

func TestValidate(t *testing.T) {
	c := testCycle()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() on well-ordered cycle: %v", err)
	}

	bad := []struct {
		name   string
		mutate func(*models.VotingCycle)
	}{
		{"voting start before suggestion start", func(c *models.VotingCycle) {
			c.VotingStart = c.SuggestionStart.Add(-time.Hour)
		}},
		{"voting end before voting start", func(c *models.VotingCycle) {
			c.VotingEnd = c.VotingStart.Add(-time.Hour)
		}},
		{"suggestion start equals voting start", func(c *models.VotingCycle) {
			c.VotingStart = c.SuggestionStart
		}},
		{"voting start equals voting end", func(c *models.VotingCycle) {
			c.VotingEnd = c.VotingStart
		}},
	}

	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			c := testCycle()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() accepted out-of-order timestamps")
			}
		})
	}
}

func TestPhaseLabel(t *testing.T) {
	labels := map[models.Phase]string{
		models.PhaseNotStarted: "Not Started",
		models.PhaseSuggestion: "Suggestion Phase",
		models.PhaseVoting:     "Voting Phase",
		models.PhaseEnded:      "Ended",
	}
	for phase, want := range labels {
		if got := phase.Label(); got != want {
			t.Errorf("Label(%v) = %q, want %q", phase, got, want)
		}
	}
}
