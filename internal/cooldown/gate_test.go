package cooldown

import (
	"testing"
	"time"
)

func TestGateWindowProgression(t *testing.T) {
	g := NewGate(5 * time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if d := g.checkAt(1, 0, base); !d.Allowed {
		t.Fatalf("first trigger blocked: %+v", d)
	}
	if d := g.checkAt(1, 0, base.Add(2*time.Second)); d.Allowed {
		t.Fatalf("trigger inside window allowed")
	} else {
		if d.Scope != ScopeUser {
			t.Errorf("scope = %q, want %q", d.Scope, ScopeUser)
		}
		if d.RetryAfter != 3*time.Second {
			t.Errorf("retry after = %v, want 3s", d.RetryAfter)
		}
	}
	if d := g.checkAt(1, 0, base.Add(6*time.Second)); !d.Allowed {
		t.Fatalf("trigger after window blocked: %+v", d)
	}
}

func TestGateDenialDoesNotStamp(t *testing.T) {
	g := NewGate(10 * time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	g.checkAt(1, 0, base)
	g.checkAt(1, 0, base.Add(9*time.Second)) // denied
	if d := g.checkAt(1, 0, base.Add(10*time.Second)); !d.Allowed {
		t.Fatalf("denied attempt extended the window: %+v", d)
	}
}

func TestGateScopeOrderAndWindows(t *testing.T) {
	g := NewGate(60 * time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if d := g.checkAt(1, 7, base); !d.Allowed {
		t.Fatalf("first trigger blocked: %+v", d)
	}

	// Another user in the same channel trips only the channel scope.
	if d := g.checkAt(2, 7, base.Add(10*time.Second)); d.Allowed {
		t.Fatalf("channel scope did not block")
	} else if d.Scope != ScopeChannel {
		t.Errorf("scope = %q, want %q", d.Scope, ScopeChannel)
	}

	// The channel window (30s) reopens before the pair window (90s): the
	// original user is now blocked at user scope first.
	if d := g.checkAt(1, 7, base.Add(35*time.Second)); d.Allowed {
		t.Fatalf("user scope did not block")
	} else if d.Scope != ScopeUser {
		t.Errorf("scope = %q, want %q", d.Scope, ScopeUser)
	}

	// Past the user (60s) and channel (30s) windows, the pair window still
	// holds the same user+channel combination.
	if d := g.checkAt(1, 7, base.Add(70*time.Second)); d.Allowed {
		t.Fatalf("pair scope did not block")
	} else if d.Scope != ScopeUserChannel {
		t.Errorf("scope = %q, want %q", d.Scope, ScopeUserChannel)
	}

	// A different user after the channel window is clear everywhere.
	if d := g.checkAt(3, 7, base.Add(70*time.Second)); !d.Allowed {
		t.Fatalf("fresh user blocked: %+v", d)
	}
}

func TestGateSkipsZeroIdentities(t *testing.T) {
	g := NewGate(60 * time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Channel-only triggers (no attributable user) never touch user scopes.
	if d := g.checkAt(0, 7, base); !d.Allowed {
		t.Fatalf("channel-only trigger blocked: %+v", d)
	}
	if d := g.checkAt(1, 0, base); !d.Allowed {
		t.Fatalf("user unaffected by channel-only stamp: %+v", d)
	}
}

func TestGateReset(t *testing.T) {
	g := NewGate(60 * time.Second)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	g.checkAt(1, 7, base)
	g.Reset(1)

	// User and pair scopes reopen; channel scope is still closed.
	if d := g.checkAt(1, 0, base.Add(time.Second)); !d.Allowed {
		t.Fatalf("user scope survived reset: %+v", d)
	}
	if d := g.checkAt(2, 7, base.Add(time.Second)); d.Allowed || d.Scope != ScopeChannel {
		t.Fatalf("channel scope should survive reset, got %+v", d)
	}
}
