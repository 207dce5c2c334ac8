package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/xzayogn/jobchat/internal/job"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore()

	store.AddUserMessage("s1", "find me a go job")
	store.AddAIMessage("s1", "Here are some job recommendations:", []job.Listing{
		{Title: "Go Developer", Company: "Acme"},
	})

	history := store.History("s1")
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}

	if history[0].User != RoleUser || history[0].Message != "find me a go job" {
		t.Fatalf("unexpected user message: %+v", history[0])
	}
	if history[1].User != RoleAI || len(history[1].JobData) != 1 {
		t.Fatalf("unexpected ai message: %+v", history[1])
	}
	if history[0].Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestStoreSessionsIsolated(t *testing.T) {
	store := NewStore()

	store.AddUserMessage("s1", "hello")
	store.AddUserMessage("s2", "world")

	if got := len(store.History("s1")); got != 1 {
		t.Fatalf("expected 1 message in s1, got %d", got)
	}
	if got := len(store.History("unknown")); got != 0 {
		t.Fatalf("expected empty history for unknown session, got %d", got)
	}
}

func TestStoreHistoryIsCopy(t *testing.T) {
	store := NewStore()
	store.AddUserMessage("s1", "original")

	history := store.History("s1")
	history[0].Message = "mutated"

	if store.History("s1")[0].Message != "original" {
		t.Fatalf("expected stored history to be unaffected by caller mutation")
	}
}

func TestStoreRecent(t *testing.T) {
	store := NewStore()
	for i := 0; i < 5; i++ {
		store.AddUserMessage("s1", fmt.Sprintf("msg-%d", i))
	}

	recent := store.Recent("s1", 2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(recent))
	}
	if recent[0].Message != "msg-3" || recent[1].Message != "msg-4" {
		t.Fatalf("expected latest messages oldest first, got %+v", recent)
	}

	if got := len(store.Recent("s1", 0)); got != 5 {
		t.Fatalf("expected full history for non-positive limit, got %d", got)
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore()
	store.AddUserMessage("s1", "hello")

	store.Clear("s1")
	store.Clear("never-existed")

	if got := len(store.History("s1")); got != 0 {
		t.Fatalf("expected cleared history, got %d messages", got)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.AddUserMessage("s1", fmt.Sprintf("msg-%d", n))
			store.History("s1")
		}(i)
	}
	wg.Wait()

	if got := len(store.History("s1")); got != 20 {
		t.Fatalf("expected 20 messages, got %d", got)
	}
}
