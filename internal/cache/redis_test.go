package cache

import (
	"testing"
)

func TestSlotsKey(t *testing.T) {
	got := SlotsKey("owner-1", "2025-01-27")
	want := "timeslots:owner-1:2025-01-27"
	if got != want {
		t.Errorf("SlotsKey() = %q, want %q", got, want)
	}
}

func TestTokenKey(t *testing.T) {
	got := TokenKey("abc123")
	want := "token:abc123"
	if got != want {
		t.Errorf("TokenKey() = %q, want %q", got, want)
	}
}

func TestNewToken(t *testing.T) {
	token := NewToken("owner-1", "2025-01-27")

	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64", len(token))
	}
	for _, r := range token {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("token contains non-hex character %q: %s", r, token)
		}
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token := NewToken("owner-1", "2025-01-27")
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token for identical inputs: %s", token)
		}
		seen[token] = struct{}{}
	}
}
