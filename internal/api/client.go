package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todoboard/internal/model"
)

// TokenSource supplies the current bearer token for outbound requests.
// An empty token means the request is sent unauthenticated. The session
// store is the only implementation whose token ever changes, so the
// Authorization header is never hidden global state.
type TokenSource interface {
	Token() string
}

// Client is a thin HTTP client for the todo service REST API.
// It handles bearer authentication, JSON marshaling, and classification
// of failures into the Unauthorized / Server / Unknown taxonomy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	onUnauth   func()
	log        *slog.Logger
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// SetTokenSource installs the credential provider consulted on every
// request. Must be called before any authenticated call is issued.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// SetUnauthenticatedHandler installs the hook invoked synchronously on
// every 401 response, before the error is returned to the caller.
func (c *Client) SetUnauthenticatedHandler(fn func()) {
	c.onUnauth = fn
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login",
		LoginRequest{Username: username, Password: password}, &resp)
	return resp, err
}

// Me fetches the identity of the currently authenticated user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

// Logout notifies the server that the session is over. The caller
// passes the token explicitly: local session state is cleared before
// the notification goes out, so the token source no longer has it.
func (c *Client) Logout(ctx context.Context, token string) error {
	var resp MessageResponse
	return c.doWithToken(ctx, http.MethodGet, "/auth/logout", nil, &resp, token)
}

// ListTodos fetches one page of todos using the given query parameters.
func (c *Client) ListTodos(ctx context.Context, q model.Query) (TodoPage, error) {
	var page TodoPage
	err := c.do(ctx, http.MethodGet, "/todos?"+q.Values().Encode(), nil, &page)
	return page, err
}

// GetTodo fetches a single todo by id.
func (c *Client) GetTodo(ctx context.Context, id int) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodGet, "/todos/"+strconv.Itoa(id), nil, &todo)
	return todo, err
}

// CreateTodo submits a new todo record.
func (c *Client) CreateTodo(ctx context.Context, in model.CreateTodoInput) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPost, "/todos", in, &todo)
	return todo, err
}

// UpdateTodo patches the description and/or completed flag of a todo.
func (c *Client) UpdateTodo(ctx context.Context, id int, patch model.TodoPatch) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPatch, "/todos/"+strconv.Itoa(id), patch, &todo)
	return todo, err
}

// do is the core HTTP method that builds the request, attaches auth,
// and maps the outcome onto the error taxonomy.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	return c.doWithToken(ctx, method, path, body, result, "")
}

// doWithToken is do with an explicit bearer token overriding the token
// source.
func (c *Client) doWithToken(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
	token string,
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{
				Kind:    KindUnknown,
				Message: fmt.Sprintf("marshaling request body: %v", err),
			}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return &Error{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("creating request: %v", err),
		}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("executing %s %s: %v", method, path, err),
		}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &Error{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("reading response from %s %s: %v", method, path, readErr),
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Warn("unauthenticated response",
			slog.String("method", method), slog.String("path", path))
		// Signal the session store before the caller sees the error so
		// that local session state is already cleared when it does.
		if c.onUnauth != nil {
			c.onUnauth()
		}
		return &Error{
			Kind:    KindUnauthorized,
			Status:  resp.StatusCode,
			Message: serverMessage(respBody, "authentication required"),
		}

	case resp.StatusCode >= 500:
		return &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: serverMessage(respBody, fmt.Sprintf("%s %s failed", method, path)),
		}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &Error{
			Kind:    KindUnknown,
			Status:  resp.StatusCode,
			Message: serverMessage(respBody, fmt.Sprintf("unexpected status on %s %s", method, path)),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &Error{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("unmarshaling response from %s %s: %v", method, path, err),
		}
	}

	return nil
}

// serverMessage extracts the backend's `{message}` payload, falling back
// to the given default when the body has no usable message.
func serverMessage(body []byte, fallback string) string {
	var msg MessageResponse
	if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
		return msg.Message
	}
	return fallback
}
