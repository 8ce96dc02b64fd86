package todos_test

import (
	"context"
	"strings"
	"testing"

	"github.com/nhle/todoboard/internal/api"
	"github.com/nhle/todoboard/internal/model"
	"github.com/nhle/todoboard/internal/session"
	"github.com/nhle/todoboard/internal/todos"
	"github.com/nhle/todoboard/tests/testutil"
)

func seedTodos(n int) []model.Todo {
	out := make([]model.Todo, n)
	for i := range out {
		out[i] = model.Todo{
			ID:          i + 1,
			Description: "task " + strings.Repeat("x", i+1),
			Author:      "author",
			Email:       "author@example.com",
		}
	}
	return out
}

func newTestStore(t *testing.T) (*todos.Store, *testutil.Server) {
	t.Helper()
	server := testutil.NewServer(t)
	client := api.NewClient(server.URL(), nil)
	return todos.New(client, nil), server
}

func newAdminStore(t *testing.T) (*todos.Store, *testutil.Server) {
	t.Helper()
	server := testutil.NewServer(t)
	client := api.NewClient(server.URL(), nil)

	sess := session.New(client, testutil.NewMemoryVault(), testutil.NewTestStorage(t), nil)
	if err := sess.Login(context.Background(), testutil.TestUsername, testutil.TestPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}

	return todos.New(client, nil), server
}

func TestFetchPagePaginates(t *testing.T) {
	store, server := newTestStore(t)
	server.Seed(seedTodos(7)...)
	ctx := context.Background()

	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Todos) != 3 {
		t.Errorf("page holds %d todos, want 3", len(snap.Todos))
	}
	if snap.TotalCount != 7 {
		t.Errorf("count = %d, want 7", snap.TotalCount)
	}
	if got := store.PageCount(); got != 3 {
		t.Errorf("PageCount = %d, want 3", got)
	}
	if snap.List.Status != todos.StatusSucceeded {
		t.Errorf("list status = %v, want succeeded", snap.List.Status)
	}

	// The last page carries the remainder.
	store.SetPage(3)
	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if got := len(store.Snapshot().Todos); got != 1 {
		t.Errorf("last page holds %d todos, want 1", got)
	}
}

func TestQueryParametersReachServer(t *testing.T) {
	store, server := newTestStore(t)
	server.Seed(
		model.Todo{ID: 1, Author: "zoe", Email: "zoe@example.com"},
		model.Todo{ID: 2, Author: "amy", Email: "amy@example.com"},
		model.Todo{ID: 3, Author: "mia", Email: "mia@example.com"},
	)
	ctx := context.Background()

	store.SetSort(model.SortAuthor)
	store.SetOrder(model.OrderDesc)
	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Todos) != 3 {
		t.Fatalf("page holds %d todos, want 3", len(snap.Todos))
	}
	if snap.Todos[0].Author != "zoe" || snap.Todos[2].Author != "amy" {
		t.Errorf("order = %s..%s, want zoe..amy", snap.Todos[0].Author, snap.Todos[2].Author)
	}
}

func TestStaleListFetchDiscarded(t *testing.T) {
	store, server := newTestStore(t)
	server.Seed(seedTodos(7)...)
	ctx := context.Background()

	// Hold the first fetch until a second one has fully resolved.
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int
	server.OnList = func() {
		calls++
		if calls == 1 {
			close(firstEntered)
			<-releaseFirst
		}
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- store.FetchPage(ctx) }()
	<-firstEntered

	store.SetPage(2)
	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("second FetchPage: %v", err)
	}
	pageTwo := store.Snapshot().Todos

	close(releaseFirst)
	if err := <-firstDone; err != nil {
		t.Fatalf("first FetchPage: %v", err)
	}

	snap := store.Snapshot()
	if snap.Query.Page != 2 {
		t.Fatalf("query page = %d, want 2", snap.Query.Page)
	}
	if len(snap.Todos) != len(pageTwo) || snap.Todos[0].ID != pageTwo[0].ID {
		t.Error("stale first fetch overwrote the newer page")
	}
}

func TestFetchFailureKeepsPreviousPage(t *testing.T) {
	store, server := newTestStore(t)
	server.Seed(seedTodos(4)...)
	ctx := context.Background()

	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	before := store.Snapshot().Todos

	server.SetFailList(true)
	if err := store.FetchPage(ctx); err == nil {
		t.Fatal("expected fetch error")
	}

	snap := store.Snapshot()
	if snap.List.Status != todos.StatusFailed {
		t.Errorf("list status = %v, want failed", snap.List.Status)
	}
	if len(snap.Todos) != len(before) {
		t.Error("failed fetch dropped the previous page")
	}

	server.SetFailList(false)
	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("FetchPage after recovery: %v", err)
	}
	if store.Snapshot().List.Status != todos.StatusSucceeded {
		t.Error("list status not cleared after successful fetch")
	}
}

func TestCreateRefetchesPage(t *testing.T) {
	store, server := newTestStore(t)
	server.Seed(seedTodos(2)...)
	ctx := context.Background()

	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	err := store.Create(ctx, model.CreateTodoInput{
		Author:      "new author",
		Email:       "new@example.com",
		Description: "a fresh task",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	snap := store.Snapshot()
	if snap.TotalCount != 3 {
		t.Errorf("count = %d, want 3 after create", snap.TotalCount)
	}
	if len(snap.Todos) != 3 {
		t.Errorf("page holds %d todos, want 3 after refetch", len(snap.Todos))
	}
	if snap.Create.Status != todos.StatusSucceeded {
		t.Errorf("create status = %v, want succeeded", snap.Create.Status)
	}
}

func TestCreateValidationBlocksRequest(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	err := store.Create(ctx, model.CreateTodoInput{
		Author:      "x",
		Email:       "not-an-email",
		Description: "ok task",
	})
	if !model.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}

	if got := len(server.Todos()); got != 0 {
		t.Errorf("server holds %d todos, want 0: invalid input must not be sent", got)
	}
	if store.Snapshot().Create.Status != todos.StatusFailed {
		t.Error("create status not failed after validation error")
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	store, server := newAdminStore(t)
	server.Seed(seedTodos(3)...)
	ctx := context.Background()

	if err := store.FetchPage(ctx); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	completed := true
	if err := store.Update(ctx, 2, model.TodoPatch{Completed: &completed}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	snap := store.Snapshot()
	var updated *model.Todo
	for i := range snap.Todos {
		if snap.Todos[i].ID == 2 {
			updated = &snap.Todos[i]
		}
	}
	if updated == nil {
		t.Fatal("updated todo missing from page")
	}
	if !updated.Completed {
		t.Error("completed flag not applied in place")
	}
	if !updated.UpdatedByAdmin {
		t.Error("admin edit marker not applied in place")
	}

	// Only the patched record changed.
	for _, todo := range snap.Todos {
		if todo.ID != 2 && todo.Completed {
			t.Errorf("todo %d mutated by unrelated update", todo.ID)
		}
	}
}

func TestUpdateRefreshesDetailRecord(t *testing.T) {
	store, server := newAdminStore(t)
	server.Seed(seedTodos(3)...)
	ctx := context.Background()

	if err := store.FetchByID(ctx, 1); err != nil {
		t.Fatalf("FetchByID: %v", err)
	}

	description := "rewritten task"
	if err := store.Update(ctx, 1, model.TodoPatch{Description: &description}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	current := store.Snapshot().Current
	if current == nil || current.Description != description {
		t.Errorf("detail record = %+v, want updated description", current)
	}
}

func TestOperationStatusesAreIndependent(t *testing.T) {
	store, server := newAdminStore(t)
	server.Seed(seedTodos(3)...)
	ctx := context.Background()

	server.SetFailList(true)
	if err := store.FetchPage(ctx); err == nil {
		t.Fatal("expected list failure")
	}

	completed := true
	if err := store.Update(ctx, 1, model.TodoPatch{Completed: &completed}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	snap := store.Snapshot()
	if snap.List.Status != todos.StatusFailed {
		t.Errorf("list status = %v, want failed", snap.List.Status)
	}
	if snap.Update.Status != todos.StatusSucceeded {
		t.Errorf("update status = %v, want succeeded", snap.Update.Status)
	}
}

func TestClearCurrent(t *testing.T) {
	store, server := newAdminStore(t)
	server.Seed(seedTodos(1)...)
	ctx := context.Background()

	if err := store.FetchByID(ctx, 1); err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if store.Snapshot().Current == nil {
		t.Fatal("detail record not set")
	}

	store.ClearCurrent()
	snap := store.Snapshot()
	if snap.Current != nil {
		t.Error("detail record not cleared")
	}
	if snap.Detail.Status != todos.StatusIdle {
		t.Errorf("detail status = %v, want idle", snap.Detail.Status)
	}
}
