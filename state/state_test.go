package state

import (
	"sync"
	"testing"
)

func TestMachine_InitialStatus(t *testing.T) {
	m := NewMachine(StatusWaiting)

	if m.Current() != StatusWaiting {
		t.Errorf("Expected initial status %q, got %q", StatusWaiting, m.Current())
	}
}

func TestMachine_TryTransition(t *testing.T) {
	m := NewMachine(StatusPlaying)

	if !m.TryTransition(StatusPlaying, StatusEnded) {
		t.Fatal("Expected the playing -> ended transition to succeed")
	}
	if m.Current() != StatusEnded {
		t.Errorf("Expected status %q, got %q", StatusEnded, m.Current())
	}

	// Second attempt must lose: the round already ended.
	if m.TryTransition(StatusPlaying, StatusEnded) {
		t.Error("Expected a repeated transition from a stale status to fail")
	}
	if m.Current() != StatusEnded {
		t.Errorf("Expected status to remain %q, got %q", StatusEnded, m.Current())
	}
}

func TestMachine_TryTransition_ExactlyOneWinner(t *testing.T) {
	m := NewMachine(StatusPlaying)

	var wg sync.WaitGroup
	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.TryTransition(StatusPlaying, StatusEnded) {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("Expected exactly one winning transition, got %d", count)
	}
}

func TestMachine_Set(t *testing.T) {
	m := NewMachine(StatusEnded)

	m.Set(StatusWaiting)
	if m.Current() != StatusWaiting {
		t.Errorf("Expected status %q after Set, got %q", StatusWaiting, m.Current())
	}
}
