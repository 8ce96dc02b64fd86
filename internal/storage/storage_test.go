package storage_test

import (
	"context"
	"testing"

	"github.com/nhle/todoboard/tests/testutil"
)

func TestSetGetRemoveRoundtrip(t *testing.T) {
	kv := testutil.NewTestStorage(t)
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "theme"); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v err=%v, want absent", ok, err)
	}

	if err := kv.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := kv.Get(ctx, "theme")
	if err != nil || !ok || value != "dark" {
		t.Fatalf("Get = %q ok=%v err=%v, want dark", value, ok, err)
	}

	// Overwrite replaces the previous value.
	if err := kv.Set(ctx, "theme", "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if value, _, _ := kv.Get(ctx, "theme"); value != "light" {
		t.Errorf("Get after overwrite = %q, want light", value)
	}

	if err := kv.Remove(ctx, "theme"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "theme"); ok {
		t.Error("key present after Remove")
	}

	// Removing an absent key is not an error.
	if err := kv.Remove(ctx, "theme"); err != nil {
		t.Errorf("Remove absent key: %v", err)
	}
}

func TestJSONRoundtrip(t *testing.T) {
	kv := testutil.NewTestStorage(t)
	ctx := context.Background()

	type draft struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	}

	in := draft{ID: 4, Description: "water the plants"}
	if err := kv.SetJSON(ctx, "todo-edit-form", in); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var out draft
	ok, err := kv.GetJSON(ctx, "todo-edit-form", &out)
	if err != nil || !ok {
		t.Fatalf("GetJSON = ok=%v err=%v", ok, err)
	}
	if out != in {
		t.Errorf("GetJSON = %+v, want %+v", out, in)
	}
}

func TestCorruptJSONReadsAsAbsent(t *testing.T) {
	kv := testutil.NewTestStorage(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "todo-edit-form", "{not valid json"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out struct {
		ID int `json:"id"`
	}
	ok, err := kv.GetJSON(ctx, "todo-edit-form", &out)
	if err != nil {
		t.Fatalf("GetJSON on corrupt value: %v", err)
	}
	if ok {
		t.Error("corrupt value read as present")
	}
}
