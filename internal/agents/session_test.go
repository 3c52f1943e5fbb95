package agents

import (
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/chigozzdevv/hyperliquid-trading-agent/internal/errors"
)

func TestSessionStoreCreatesOnFirstGet(t *testing.T) {
	store := NewSessionStore(time.Hour)

	sess, err := store.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.ID != "alpha" {
		t.Errorf("ID = %q, want alpha", sess.ID)
	}
	if len(sess.Messages) != 0 {
		t.Errorf("new session has %d messages, want 0", len(sess.Messages))
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestSessionStoreReturnsSameSession(t *testing.T) {
	store := NewSessionStore(time.Hour)

	first, err := store.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	store.Update("alpha", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello"},
	})

	second, err := store.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if second != first {
		t.Error("Get returned a different session for the same id")
	}
	if len(second.Messages) != 1 {
		t.Errorf("session has %d messages after Update, want 1", len(second.Messages))
	}
}

func TestSessionStoreExpirySurfacesOnRead(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)

	if _, err := store.Get("alpha"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	_, err := store.Get("alpha")
	if !errors.Is(err, apperrors.ErrSessionExpired) {
		t.Fatalf("Get after ttl = %v, want ErrSessionExpired", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d after expiry, want 0", store.Len())
	}

	// The id is usable again once the expiry has been reported.
	if _, err := store.Get("alpha"); err != nil {
		t.Fatalf("Get after expiry report: %v", err)
	}
}

func TestSessionStoreSweepDropsOtherExpired(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)

	if _, err := store.Get("stale"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	if _, err := store.Get("fresh"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1 (stale session swept)", store.Len())
	}
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore(time.Hour)

	if _, err := store.Get("alpha"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	store.Delete("alpha")
	if store.Len() != 0 {
		t.Errorf("Len = %d after Delete, want 0", store.Len())
	}
}
