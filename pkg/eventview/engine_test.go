package eventview

import (
	"strings"
	"testing"
)

func TestShouldFire(t *testing.T) {
	tests := []struct {
		d      int
		repeat bool
		want   bool
	}{
		{0, true, false},
		{1, false, true},
		{2, false, false},
		{repeatDelay, false, false},
		{repeatDelay, true, true},
		{repeatDelay + 1, true, false},
		{repeatDelay + repeatInterval, true, true},
	}
	for _, tt := range tests {
		if got := shouldFire(tt.d, tt.repeat); got != tt.want {
			t.Errorf("shouldFire(%d, %v): expected %v, got %v", tt.d, tt.repeat, tt.want, got)
		}
	}
}

func TestDefaultKeyBindingsAreUnique(t *testing.T) {
	seen := map[Action]bool{}
	for _, b := range DefaultKeyBindings {
		if seen[b.Action] {
			t.Errorf("Action %d bound twice", b.Action)
		}
		seen[b.Action] = true
	}
	if len(seen) != int(ActionResetCamera)+1 {
		t.Errorf("Expected every action to be bound, got %d", len(seen))
	}
}

func TestHUDLines(t *testing.T) {
	st := Status{
		Elapsed:        1_500_000,
		Duration:       3_000_000,
		Speed:          1.2,
		WindowUS:       20000,
		Mode:           DisplayEventsOnly,
		Paused:         true,
		EventsInWindow: 12345,
		Strategy:       "2d",
	}
	lines := hudLines(st)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"PAUSED", "Events Only", "1.500s / 3.000s", "1.20x", "20.0ms", "12,345"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected HUD to contain %q, got:\n%s", want, joined)
		}
	}
	if p := st.progress(); p != 0.5 {
		t.Errorf("Expected progress 0.5, got %v", p)
	}
	st.Elapsed = 9e9
	if p := st.progress(); p != 1 {
		t.Errorf("Expected progress clamped to 1, got %v", p)
	}
	st.Duration = 0
	if p := st.progress(); p != 0 {
		t.Errorf("Expected progress 0 for an empty stream, got %v", p)
	}
}
