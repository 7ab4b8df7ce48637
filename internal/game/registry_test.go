package game

import (
	"errors"
	"testing"

	"github.com/tunequiz/tunequiz/internal/trivia"
)

func TestRegistrySingleSessionPerGuild(t *testing.T) {
	r := NewRegistry()

	s, err := r.Create("g1", "u1", trivia.Medium)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.GuildID != "g1" || s.InitiatorID != "u1" || s.Difficulty != trivia.Medium {
		t.Fatalf("session = %+v", s)
	}
	if _, err := r.Create("g1", "u2", trivia.Easy); !errors.Is(err, ErrMatchActive) {
		t.Fatalf("second create: err = %v, want ErrMatchActive", err)
	}
	// Other guilds are independent.
	if _, err := r.Create("g2", "u1", trivia.Easy); err != nil {
		t.Fatalf("create for other guild: %v", err)
	}
}

func TestRegistryTerminateTransitionsOnce(t *testing.T) {
	r := NewRegistry()
	s, err := r.Create("g1", "u1", trivia.Easy)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got := r.Terminate("g1")
	if got != s {
		t.Fatal("terminate did not return the live session")
	}
	if !s.Terminated() || s.Active() {
		t.Error("session not flagged terminated")
	}
	select {
	case <-s.Done():
	default:
		t.Error("done channel not closed")
	}

	// Second call finds the session already terminated.
	if got := r.Terminate("g1"); got != nil {
		t.Error("second terminate reported a transition")
	}
	if got := r.Terminate("missing"); got != nil {
		t.Error("terminate of unknown guild reported a transition")
	}
}

func TestRegistryStatus(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Status("g1"); ok {
		t.Fatal("status reported for unknown guild")
	}

	s, err := r.Create("g1", "u1", trivia.Hard)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.setRound(3)

	st, ok := r.Status("g1")
	if !ok {
		t.Fatal("no status for live session")
	}
	if st.Round != 3 || st.Difficulty != trivia.Hard || !st.Active || st.Terminated {
		t.Errorf("status = %+v", st)
	}

	r.Clear("g1", s)
	if _, ok := r.Status("g1"); ok {
		t.Error("status survived clear")
	}
}

func TestRegistryClearRequiresIdentity(t *testing.T) {
	r := NewRegistry()
	old, err := r.Create("g1", "u1", trivia.Easy)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r.Clear("g1", old)

	fresh, err := r.Create("g1", "u9", trivia.Easy)
	if err != nil {
		t.Fatalf("create after clear: %v", err)
	}

	// A stale clear from the previous session must not evict the new one.
	r.Clear("g1", old)
	if got := r.Get("g1"); got != fresh {
		t.Fatalf("session = %v, want the fresh one to survive a stale clear", got)
	}

	r.Clear("g1", fresh)
	if got := r.Get("g1"); got != nil {
		t.Fatalf("session = %v after owner clear, want nil", got)
	}
}

func TestRegistryGenrePreference(t *testing.T) {
	r := NewRegistry()
	if g := r.Genre("g1"); g != DefaultGenre {
		t.Fatalf("default genre = %q", g)
	}
	r.SetGenre("g1", "hiphop")
	if g := r.Genre("g1"); g != "hiphop" {
		t.Fatalf("genre = %q", g)
	}
	if g := r.Genre("g2"); g != DefaultGenre {
		t.Fatalf("other guild genre = %q", g)
	}
}
