package ws

import (
	"sync"
	"testing"
	"time"
)

func TestTypingTrackerSetAndClear(t *testing.T) {
	tracker := NewTypingTracker(time.Minute, nil)

	if !tracker.Set(1, 10) {
		t.Error("first Set should report a fresh start")
	}
	if tracker.Set(1, 10) {
		t.Error("refresh should not report a fresh start")
	}

	users := tracker.Users(1)
	if len(users) != 1 || users[0] != 10 {
		t.Errorf("Users: got %v, want [10]", users)
	}

	if !tracker.Clear(1, 10) {
		t.Error("Clear of an active lease should report true")
	}
	if tracker.Clear(1, 10) {
		t.Error("Clear of a cleared lease should report false")
	}
	if len(tracker.Users(1)) != 0 {
		t.Errorf("lease should be gone, got %v", tracker.Users(1))
	}
}

func TestTypingTrackerLeaseExpiry(t *testing.T) {
	var mu sync.Mutex
	expired := make(map[[2]uint]int)
	tracker := NewTypingTracker(30*time.Millisecond, func(conversationID, userID uint) {
		mu.Lock()
		expired[[2]uint{conversationID, userID}]++
		mu.Unlock()
	})

	tracker.Set(1, 10)
	tracker.Set(1, 11)

	// Refresh one lease past the other's expiry.
	time.Sleep(20 * time.Millisecond)
	tracker.Set(1, 10)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	if expired[[2]uint{1, 11}] != 1 {
		t.Errorf("user 11 lease should have expired once, got %d", expired[[2]uint{1, 11}])
	}
	if expired[[2]uint{1, 10}] != 0 {
		t.Errorf("refreshed lease must not expire early, got %d expiries", expired[[2]uint{1, 10}])
	}
	mu.Unlock()

	users := tracker.Users(1)
	if len(users) != 1 || users[0] != 10 {
		t.Errorf("only the refreshed user should remain, got %v", users)
	}

	// And the refreshed lease eventually lapses on its own.
	time.Sleep(40 * time.Millisecond)
	mu.Lock()
	if expired[[2]uint{1, 10}] != 1 {
		t.Errorf("refreshed lease should expire exactly once, got %d", expired[[2]uint{1, 10}])
	}
	mu.Unlock()
}

func TestTypingTrackerExplicitClearSkipsExpireCallback(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	tracker := NewTypingTracker(20*time.Millisecond, func(conversationID, userID uint) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	tracker.Set(1, 10)
	tracker.Clear(1, 10)
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	if calls != 0 {
		t.Errorf("explicit clear should suppress the expiry callback, got %d calls", calls)
	}
	mu.Unlock()
}

func TestTypingTrackerClearUser(t *testing.T) {
	tracker := NewTypingTracker(time.Minute, nil)

	tracker.Set(1, 10)
	tracker.Set(2, 10)
	tracker.Set(2, 11)

	affected := tracker.ClearUser(10)
	if len(affected) != 2 {
		t.Fatalf("ClearUser should report both conversations, got %v", affected)
	}

	if len(tracker.Users(1)) != 0 {
		t.Errorf("conversation 1 should be empty, got %v", tracker.Users(1))
	}
	remaining := tracker.Users(2)
	if len(remaining) != 1 || remaining[0] != 11 {
		t.Errorf("conversation 2 should keep user 11, got %v", remaining)
	}

	if len(tracker.ClearUser(10)) != 0 {
		t.Error("second ClearUser should find nothing")
	}
}
