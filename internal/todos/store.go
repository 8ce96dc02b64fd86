// Package todos owns the paginated todo list state: the current page,
// the record being viewed in detail, the query parameters, and the
// status of every in-flight operation against the backend.
package todos

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nhle/todoboard/internal/api"
	"github.com/nhle/todoboard/internal/model"
)

// Snapshot is a copy of the list state for rendering.
type Snapshot struct {
	Todos      []model.Todo
	TotalCount int
	Current    *model.Todo
	Query      model.Query

	List   OpState
	Detail OpState
	Create OpState
	Update OpState
}

// Store is the todo collection state container. All mutation happens
// through its methods; the blocking operations may be called from any
// goroutine.
type Store struct {
	client *api.Client
	log    *slog.Logger

	mu         sync.Mutex
	todos      []model.Todo
	totalCount int
	current    *model.Todo
	query      model.Query

	list   OpState
	detail OpState
	create OpState
	update OpState

	// Sequence counters guard against out-of-order resolutions: a fetch
	// whose response lands after a later-issued fetch has already
	// applied is discarded, so stale data never flashes onto screen.
	listSeq     uint64
	listApplied uint64

	detailSeq     uint64
	detailApplied uint64
}

// New creates a todo store issuing calls through the given client.
func New(client *api.Client, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		client: client,
		log:    log,
		query:  model.DefaultQuery(),
	}
}

// SetPageSize overrides the configured page size. Intended for startup
// wiring, before the first fetch.
func (s *Store) SetPageSize(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.PageSize = n
}

// SetPage sets the current page number. The caller owns the contract
// that every parameter change is followed by exactly one FetchPage.
func (s *Store) SetPage(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Page = n
}

// SetSort selects the sort field, or model.SortNone for natural order.
// The stored order value is retained either way.
func (s *Store) SetSort(field model.SortField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Sort = field
}

// SetOrder sets the listing direction.
func (s *Store) SetOrder(order model.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Order = order
}

// Query returns the current listing parameters.
func (s *Store) Query() model.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// PageCount returns the number of pages implied by the last fetched
// total count and the current page size.
func (s *Store) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.PageSize < 1 {
		return 0
	}
	return (s.totalCount + s.query.PageSize - 1) / s.query.PageSize
}

// Snapshot returns a copy of the current list state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := make([]model.Todo, len(s.todos))
	copy(todos, s.todos)

	var current *model.Todo
	if s.current != nil {
		c := *s.current
		current = &c
	}

	return Snapshot{
		Todos:      todos,
		TotalCount: s.totalCount,
		Current:    current,
		Query:      s.query,
		List:       s.list,
		Detail:     s.detail,
		Create:     s.create,
		Update:     s.update,
	}
}

// FetchPage fetches the page described by the query parameters in
// effect when the call is issued. On success it replaces the page
// contents and total count; on failure the previous page stays visible
// with the error recorded. If a later-issued fetch has already applied
// by the time this one resolves, the resolution is discarded.
func (s *Store) FetchPage(ctx context.Context) error {
	s.mu.Lock()
	s.listSeq++
	seq := s.listSeq
	query := s.query
	s.list = pending()
	s.mu.Unlock()

	page, err := s.client.ListTodos(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.listApplied {
		s.log.Debug("discarding superseded list fetch",
			slog.Uint64("seq", seq), slog.Uint64("applied", s.listApplied))
		return nil
	}
	s.listApplied = seq

	if err != nil {
		s.list = failed(err)
		return err
	}

	s.todos = page.Data
	s.totalCount = page.Count
	s.list = succeeded()
	return nil
}

// FetchByID fetches a single todo into the detail slot. The detail
// operation has its own status and sequence guard so a concurrent list
// fetch cannot clobber it.
func (s *Store) FetchByID(ctx context.Context, id int) error {
	s.mu.Lock()
	s.detailSeq++
	seq := s.detailSeq
	s.detail = pending()
	s.mu.Unlock()

	todo, err := s.client.GetTodo(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.detailApplied {
		return nil
	}
	s.detailApplied = seq

	if err != nil {
		s.detail = failed(err)
		return err
	}

	s.current = &todo
	s.detail = succeeded()
	return nil
}

// Create validates and submits a new todo, then re-fetches the current
// page. The re-fetch keeps pagination, count, and sort order consistent
// with the server; a local insert into a sorted, paginated, counted
// list would not.
func (s *Store) Create(ctx context.Context, in model.CreateTodoInput) error {
	if err := in.Validate(); err != nil {
		s.mu.Lock()
		s.create = failed(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.create = pending()
	s.mu.Unlock()

	_, err := s.client.CreateTodo(ctx, in)

	s.mu.Lock()
	if err != nil {
		s.create = failed(err)
		s.mu.Unlock()
		return err
	}
	s.create = succeeded()
	s.mu.Unlock()

	return s.FetchPage(ctx)
}

// Update patches a todo. On success the matching entry on the current
// page and the detail record are replaced in place; no re-fetch runs.
// When the active sort key is the mutated field the displayed order may
// be stale until the next navigation.
func (s *Store) Update(ctx context.Context, id int, patch model.TodoPatch) error {
	if err := patch.Validate(); err != nil {
		s.mu.Lock()
		s.update = failed(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.update = pending()
	s.mu.Unlock()

	updated, err := s.client.UpdateTodo(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.update = failed(err)
		return err
	}

	for i := range s.todos {
		if s.todos[i].ID == updated.ID {
			s.todos[i] = updated
			break
		}
	}
	if s.current != nil && s.current.ID == updated.ID {
		s.current = &updated
	}

	s.update = succeeded()
	return nil
}

// ClearCurrent drops the detail record, typically when leaving the
// edit view.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.detail = OpState{}
}
