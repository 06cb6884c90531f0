package sentence

import (
	"sync"
	"testing"

	"github.com/ayusman/bemysenses/internal/domain"
)

func feed(a *Accumulator, chars string) int {
	emitted := 0
	for _, r := range chars {
		if a.Apply(domain.Char(r)) {
			emitted++
		}
	}
	return emitted
}

func TestAccumulator_EdgeTrigger(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		emitted int
	}{
		{name: "held then changed", input: "AAABBA", want: "ABA", emitted: 3},
		{name: "single", input: "A", want: "A", emitted: 1},
		{name: "all distinct", input: "HELO", want: "HELO", emitted: 4},
		{name: "double letters collapse", input: "HELLO", want: "HELO", emitted: 4},
		{name: "long hold", input: "ZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ", want: "Z", emitted: 1},
		{name: "alternating", input: "ABABAB", want: "ABABAB", emitted: 6},
		{name: "empty", input: "", want: "", emitted: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccumulator()
			emitted := feed(a, tt.input)

			if got := a.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
			if emitted != tt.emitted {
				t.Errorf("emitted = %d, want %d", emitted, tt.emitted)
			}
		})
	}
}

func TestAccumulator_Idempotence(t *testing.T) {
	a := NewAccumulator()
	if !a.Apply('C') {
		t.Fatal("first C should be emitted")
	}
	before := a.Text()

	for i := 0; i < 100; i++ {
		if a.Apply('C') {
			t.Fatalf("repeat %d of C was emitted", i)
		}
	}
	if a.Text() != before {
		t.Errorf("Text() = %q, want %q", a.Text(), before)
	}
}

func TestAccumulator_LastMatchesText(t *testing.T) {
	a := NewAccumulator()

	s := a.State()
	if s.HasLast || len(s.Text) != 0 {
		t.Fatalf("fresh state should be empty and unset: %+v", s)
	}

	for _, r := range "ABBCAAD" {
		a.Apply(domain.Char(r))
		s := a.State()
		if !s.HasLast {
			t.Fatal("HasLast should be set once text is non-empty")
		}
		if s.Last != s.Text[len(s.Text)-1] {
			t.Fatalf("Last = %q, final char = %q", s.Last, s.Text[len(s.Text)-1])
		}
	}
}

func TestAccumulator_StartResets(t *testing.T) {
	a := NewAccumulator()
	feed(a, "HELLO")
	a.End()

	a.Start()

	s := a.State()
	if len(s.Text) != 0 {
		t.Errorf("text should be empty after Start, got %q", domain.Join(s.Text))
	}
	if s.HasLast {
		t.Error("last character should be unset after Start")
	}
	if a.Phase() != Idle {
		t.Errorf("Phase() = %s, want idle", a.Phase())
	}

	// The previous session's last letter must not suppress the first letter now
	if !a.Apply('O') {
		t.Error("first letter of a new session should be emitted")
	}
}

func TestAccumulator_End(t *testing.T) {
	a := NewAccumulator()
	feed(a, "AB")

	if got := a.End(); got != "AB" {
		t.Errorf("End() = %q, want AB", got)
	}
	if got := a.End(); got != "AB" {
		t.Errorf("second End() = %q, want AB", got)
	}
	if !a.Ended() || a.Phase() != Ended {
		t.Error("accumulator should report ended")
	}

	if a.Apply('C') {
		t.Error("Apply after End must not emit")
	}
	if a.Text() != "AB" {
		t.Errorf("text mutated after End: %q", a.Text())
	}
}

func TestAccumulator_Phases(t *testing.T) {
	a := NewAccumulator()
	if a.Phase() != Idle {
		t.Errorf("initial phase = %s", a.Phase())
	}
	a.Apply('K')
	if a.Phase() != Holding {
		t.Errorf("phase after letter = %s", a.Phase())
	}
	a.End()
	if a.Phase() != Ended {
		t.Errorf("phase after end = %s", a.Phase())
	}
}

func TestAccumulator_Snapshot(t *testing.T) {
	a := NewAccumulator()
	empty := a.Snapshot()
	if empty.Text != "" || empty.Last != "" || empty.Phase != "idle" {
		t.Errorf("unexpected empty snapshot %+v", empty)
	}

	feed(a, "HHI")
	snap := a.Snapshot()
	if snap.Text != "HI" || snap.Last != "I" || snap.Length != 2 || snap.Phase != "holding" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	a.Apply('I')
	if a.Snapshot().Version != snap.Version {
		t.Error("suppressed duplicate should not change the version")
	}
	a.Apply('J')
	if a.Snapshot().Version <= snap.Version {
		t.Error("emission should advance the version")
	}
}

func TestAccumulator_StateIsCopy(t *testing.T) {
	a := NewAccumulator()
	feed(a, "AB")

	s := a.State()
	s.Text[0] = 'Z'

	if a.Text() != "AB" {
		t.Errorf("State() leaked internal slice: %q", a.Text())
	}
}

func TestAccumulator_ConcurrentSnapshots(t *testing.T) {
	a := NewAccumulator()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = a.Snapshot()
		}
	}()

	for i := 0; i < 1000; i++ {
		a.Apply(domain.Char('A' + i%2))
	}
	wg.Wait()

	if a.Snapshot().Length != 1000 {
		t.Errorf("Length = %d, want 1000", a.Snapshot().Length)
	}
}
