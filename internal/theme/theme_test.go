package theme_test

import (
	"context"
	"testing"

	"github.com/nhle/todoboard/internal/theme"
	"github.com/nhle/todoboard/tests/testutil"
)

func TestCurrentDefaultsToLight(t *testing.T) {
	m := theme.NewManager(testutil.NewTestStorage(t))
	if mode := m.Current(context.Background()); mode != theme.ModeLight {
		t.Errorf("Current = %v, want light on empty storage", mode)
	}
}

func TestUnknownValueReadsAsLight(t *testing.T) {
	kv := testutil.NewTestStorage(t)
	ctx := context.Background()
	if err := kv.Set(ctx, "theme", "solarized"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	m := theme.NewManager(kv)
	if mode := m.Current(ctx); mode != theme.ModeLight {
		t.Errorf("Current = %v, want light for unknown value", mode)
	}
}

func TestTogglePersists(t *testing.T) {
	kv := testutil.NewTestStorage(t)
	ctx := context.Background()
	m := theme.NewManager(kv)

	mode, err := m.Toggle(ctx)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if mode != theme.ModeDark {
		t.Errorf("Toggle = %v, want dark", mode)
	}

	// A fresh manager over the same storage sees the preference.
	if mode := theme.NewManager(kv).Current(ctx); mode != theme.ModeDark {
		t.Errorf("Current after toggle = %v, want dark", mode)
	}

	mode, err = m.Toggle(ctx)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if mode != theme.ModeLight {
		t.Errorf("second Toggle = %v, want light", mode)
	}
}
