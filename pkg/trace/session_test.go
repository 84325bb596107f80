package trace

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceLength/internal/testboard"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
)

func TestSession(t *testing.T) {
	s, err := NewSession(testboard.Sample(), SessionOptions{CacheGraphs: true, Workers: 2})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer s.Close()

	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", s.ID, err)
	}

	if _, err := s.Analyzer.RankAll(context.Background(), "AVDD"); err != nil {
		t.Fatalf("RankAll() error = %v", err)
	}
	if s.Cache.Len() == 0 {
		t.Error("cache should hold the AVDD graphs")
	}

	s.Close()
	if s.Cache.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", s.Cache.Len())
	}
}

func TestSessionWithoutCache(t *testing.T) {
	s, err := NewSession(testboard.Sample(), SessionOptions{})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer s.Close()

	if s.Cache != nil {
		t.Error("Cache should be nil when caching is off")
	}
	if got := s.Resolver.Strategies(); !sameStrings(got, []string{"exact", "tolerant"}) {
		t.Errorf("Strategies() = %v, want [exact tolerant]", got)
	}
}

func TestSessionRejectsInvalidBoard(t *testing.T) {
	b := board.New("bad")
	b.AddTrack(&board.Track{})

	if _, err := NewSession(b, SessionOptions{}); err == nil {
		t.Error("NewSession() should reject a primitive without a net")
	}
}
