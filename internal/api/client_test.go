package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/nhle/todoboard/internal/model"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, nil)
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"username":"admin"}`))
	})
	client.SetTokenSource(staticToken("tok-123"))

	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestEmptyTokenSendsNoHeader(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth, hasAuth = r.Header.Get("Authorization"), r.Header.Get("Authorization") != ""
		w.Write([]byte(`{"data":[],"page":1,"pageSize":3,"count":0}`))
	})
	client.SetTokenSource(staticToken(""))

	if _, err := client.ListTodos(context.Background(), model.DefaultQuery()); err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if hasAuth {
		t.Errorf("Authorization = %q, want unset", gotAuth)
	}
}

func TestUnauthenticatedHandlerRunsBeforeReturn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	})

	var handlerRan bool
	client.SetUnauthenticatedHandler(func() { handlerRan = true })

	_, err := client.Me(context.Background())
	if !handlerRan {
		t.Fatal("unauthenticated handler did not run")
	}
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if apiErr.Message != "token expired" {
		t.Errorf("message = %q, want server-provided message", apiErr.Message)
	}
}

func TestServerErrorClassification(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListTodos(context.Background(), model.DefaultQuery())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := Classify(err); kind != KindServer {
		t.Errorf("kind = %v, want KindServer", kind)
	}
}

func TestUnexpectedStatusIsUnknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	_, err := client.GetTodo(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := Classify(err); kind != KindUnknown {
		t.Errorf("kind = %v, want KindUnknown", kind)
	}
}

func TestTransportFailureIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL, nil)

	_, err := client.ListTodos(context.Background(), model.DefaultQuery())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := Classify(err); kind != KindUnknown {
		t.Errorf("kind = %v, want KindUnknown", kind)
	}
}

func TestMalformedBodyIsUnknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": not json`))
	})

	_, err := client.ListTodos(context.Background(), model.DefaultQuery())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := Classify(err); kind != KindUnknown {
		t.Errorf("kind = %v, want KindUnknown", kind)
	}
}

func TestLogoutUsesSuppliedToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"message":"logged out"}`))
	})
	// The token source is already empty by the time logout goes out.
	client.SetTokenSource(staticToken(""))

	if err := client.Logout(context.Background(), "captured-token"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if gotAuth != "Bearer captured-token" {
		t.Errorf("Authorization = %q, want the supplied token", gotAuth)
	}
}

func TestListTodosSendsQueryParameters(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[],"page":2,"pageSize":5,"count":0}`))
	})

	q := model.Query{Page: 2, PageSize: 5, Sort: model.SortAuthor, Order: model.OrderDesc}
	if _, err := client.ListTodos(context.Background(), q); err != nil {
		t.Fatalf("ListTodos: %v", err)
	}

	parsed, err := url.ParseQuery(gotQuery)
	if err != nil {
		t.Fatalf("parsing query %q: %v", gotQuery, err)
	}
	for key, want := range map[string]string{
		"page": "2", "pageSize": "5", "sort": "author", "order": "desc",
	} {
		if got := parsed.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
}
