package geopress

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("fourth attempt within the window should be denied")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	if !l.Allow("10.0.0.1") {
		t.Fatal("first key should be allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("second key should not be affected by the first")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("first key should now be denied")
	}
}

func TestRateLimiterCheckDoesNotRecord(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	for i := 0; i < 5; i++ {
		if !l.Check("10.0.0.1") {
			t.Fatal("Check alone must not consume the budget")
		}
	}
	l.Record("10.0.0.1")
	if l.Check("10.0.0.1") {
		t.Fatal("recorded hit should exhaust a max=1 limiter")
	}
}

func TestRateLimiterWindowExpires(t *testing.T) {
	l := NewRateLimiter(1, 50*time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatal("first attempt should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("second immediate attempt should be denied")
	}
	time.Sleep(80 * time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatal("attempt after the window should be allowed again")
	}
}
