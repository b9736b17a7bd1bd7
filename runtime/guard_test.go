package runtime

import (
	"errors"
	"testing"
)

func TestBlockGuard_HappyPath(t *testing.T) {
	g := NewBlockGuard()

	if !g.IsIdle() {
		t.Fatal("expected Idle initially")
	}

	// Idle → Initializing → Open
	g.AcquireInitialize()
	g.CompleteInitialize()

	if !g.IsOpen() {
		t.Fatalf("expected Open, got %s", g.Phase())
	}

	g.AcquireApply()
	g.ReleaseApply()
	g.AcquireApply()
	g.ReleaseApply()

	// Open → Finalizing → Idle
	g.AcquireFinalize()
	g.CompleteFinalize()

	if !g.IsIdle() {
		t.Fatal("expected Idle after finalize")
	}

	// Should be able to cycle again.
	g.AcquireInitialize()
	g.CompleteInitialize()
	g.AcquireFinalize()
	g.CompleteFinalize()
}

func TestBlockGuard_Abort(t *testing.T) {
	g := NewBlockGuard()
	g.AcquireInitialize()
	g.CompleteInitialize()
	g.Abort()

	if !g.IsIdle() {
		t.Fatal("expected Idle after abort")
	}

	g.AcquireInitialize()
	g.CompleteInitialize()
}

func TestBlockGuard_Misuse(t *testing.T) {
	open := func() *BlockGuard {
		g := NewBlockGuard()
		g.AcquireInitialize()
		g.CompleteInitialize()
		return g
	}

	cases := []struct {
		name string
		call func()
	}{
		{"apply before initialize", func() { NewBlockGuard().AcquireApply() }},
		{"finalize before initialize", func() { NewBlockGuard().AcquireFinalize() }},
		{"abort while idle", func() { NewBlockGuard().Abort() }},
		{"double initialize", func() { open().AcquireInitialize() }},
		{"apply after finalize", func() {
			g := open()
			g.AcquireFinalize()
			g.CompleteFinalize()
			g.AcquireApply()
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Fatalf("expected panic for %s", tc.name)
				}
			}()
			tc.call()
		})
	}
}

func TestBlockGuard_PanicReleasesLock(t *testing.T) {
	g := NewBlockGuard()

	func() {
		defer func() { _ = recover() }()
		g.AcquireApply()
	}()

	// The failed acquire must not leave the lock held.
	g.AcquireInitialize()
	g.CompleteInitialize()
}

func TestBlockGuard_WhileIdle(t *testing.T) {
	g := NewBlockGuard()

	ran := false
	if err := g.WhileIdle(func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("expected fn to run while idle: ran=%v err=%v", ran, err)
	}

	g.AcquireInitialize()
	g.CompleteInitialize()
	err := g.WhileIdle(func() error {
		t.Fatal("fn must not run while a block is open")
		return nil
	})
	if !errors.Is(err, ErrBlockInProgress) {
		t.Fatalf("expected ErrBlockInProgress, got %v", err)
	}
	g.AcquireFinalize()
	g.CompleteFinalize()

	want := errors.New("boom")
	if err := g.WhileIdle(func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestBlockPhase_String(t *testing.T) {
	tests := []struct {
		p    blockPhase
		want string
	}{
		{phaseIdle, "Idle"},
		{phaseInitializing, "Initializing"},
		{phaseOpen, "Open"},
		{phaseFinalizing, "Finalizing"},
		{blockPhase(99), "unknown(99)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("blockPhase(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
