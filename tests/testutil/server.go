// Package testutil provides the fake todo service and in-memory state
// used by the package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nhle/todoboard/internal/model"
)

// Credentials accepted by the fake service.
const (
	TestUsername = "admin"
	TestPassword = "s3cret"
	TestToken    = "test-token"
)

// Server is an in-memory todo service. Hooks run before a request is
// answered, letting tests block or reorder responses.
type Server struct {
	t   *testing.T
	srv *httptest.Server

	mu          sync.Mutex
	todos       []model.Todo
	nextID      int
	failList    bool
	logoutCalls int

	// OnLogin and OnList run before the respective handler responds.
	// They are read under the lock but invoked outside it.
	OnLogin func()
	OnList  func()
}

// NewServer starts a fake todo service that shuts down with the test.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{t: t, nextID: 1}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/me", s.handleMe)
	mux.HandleFunc("GET /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /todos", s.handleList)
	mux.HandleFunc("POST /todos", s.handleCreate)
	mux.HandleFunc("GET /todos/{id}", s.handleGet)
	mux.HandleFunc("PATCH /todos/{id}", s.handlePatch)

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)

	return s
}

// URL returns the base URL of the fake service.
func (s *Server) URL() string {
	return s.srv.URL
}

// Seed replaces the stored todos.
func (s *Server) Seed(todos ...model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = append([]model.Todo(nil), todos...)
	for _, todo := range todos {
		if todo.ID >= s.nextID {
			s.nextID = todo.ID + 1
		}
	}
}

// Todos returns a copy of the stored todos.
func (s *Server) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Todo(nil), s.todos...)
}

// LogoutCalls reports how many logout notifications arrived with a
// valid token.
func (s *Server) LogoutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutCalls
}

// SetFailList makes list requests answer with a 500 until reset.
func (s *Server) SetFailList(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = fail
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	hook := s.OnLogin
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	if req.Username != TestUsername || req.Password != TestPassword {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": TestToken})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, model.User{ID: 1, Username: TestUsername})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.mu.Lock()
	s.logoutCalls++
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	hook := s.OnList
	fail := s.failList
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	if fail {
		writeError(w, http.StatusInternalServerError, "list unavailable")
		return
	}

	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("pageSize"), 3)

	s.mu.Lock()
	todos := append([]model.Todo(nil), s.todos...)
	s.mu.Unlock()

	sortTodos(todos, q.Get("sort"), q.Get("order"))

	count := len(todos)
	start := (page - 1) * pageSize
	if start > count {
		start = count
	}
	end := start + pageSize
	if end > count {
		end = count
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":     todos[start:end],
		"page":     page,
		"pageSize": pageSize,
		"count":    count,
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.CreateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	todo := model.Todo{
		ID:          s.nextID,
		Description: in.Description,
		Author:      in.Author,
		Email:       in.Email,
	}
	s.nextID++
	s.todos = append(s.todos, todo)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, todo := range s.todos {
		if todo.ID == id {
			writeJSON(w, http.StatusOK, todo)
			return
		}
	}
	writeError(w, http.StatusNotFound, "no such todo")
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return
	}

	var patch model.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, todo := range s.todos {
		if todo.ID != id {
			continue
		}
		if patch.Description != nil {
			todo.Description = *patch.Description
		}
		if patch.Completed != nil {
			todo.Completed = *patch.Completed
		}
		todo.UpdatedByAdmin = true
		s.todos[i] = todo
		writeJSON(w, http.StatusOK, todo)
		return
	}
	writeError(w, http.StatusNotFound, "no such todo")
}

func authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+TestToken
}

func sortTodos(todos []model.Todo, field, order string) {
	if field == "" {
		return
	}
	less := func(a, b model.Todo) bool { return a.ID < b.ID }
	switch field {
	case "author":
		less = func(a, b model.Todo) bool { return strings.ToLower(a.Author) < strings.ToLower(b.Author) }
	case "email":
		less = func(a, b model.Todo) bool { return strings.ToLower(a.Email) < strings.ToLower(b.Email) }
	case "completed":
		less = func(a, b model.Todo) bool { return !a.Completed && b.Completed }
	}
	sort.SliceStable(todos, func(i, j int) bool {
		if order == "desc" {
			return less(todos[j], todos[i])
		}
		return less(todos[i], todos[j])
	})
}

func intParam(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
