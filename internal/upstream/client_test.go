package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stagefront/internal/session"
	"stagefront/internal/shared/config"
	"stagefront/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) (*Client, session.Store) {
	t.Helper()
	store := session.NewMemoryStore()
	client := NewClient(config.UpstreamConfig{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
		UploadTimeout:  2 * time.Second,
		DevUserID:      "dev-user",
	}, store, logger.GetDefault())
	return client, store
}

func sessionContext(token, userID string) context.Context {
	return session.NewContext(context.Background(), &session.Session{
		Token: token,
		User:  &session.User{ID: userID},
	})
}

func TestRequest_InjectsIdentityHeaders(t *testing.T) {
	var gotAuth, gotIdentity string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotIdentity = r.Header.Get("X-User-Id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	ctx := sessionContext("token-123", "user-7")

	if _, err := client.Request(ctx, http.MethodGet, "/events", nil, nil); err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotIdentity != "user-7" {
		t.Fatalf("unexpected identity header %q", gotIdentity)
	}
}

func TestRequest_DevIdentityFallback(t *testing.T) {
	var gotIdentity string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = r.Header.Get("X-User-Id")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	if _, err := client.Request(context.Background(), http.MethodGet, "/events", nil, nil); err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotIdentity != "dev-user" {
		t.Fatalf("expected dev identity fallback, got %q", gotIdentity)
	}
}

func TestRequest_QueryParamsAndBody(t *testing.T) {
	var gotQuery, gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	_, err := client.Request(context.Background(), http.MethodPost, "zones", map[string]string{"name": "GA"}, &Options{
		Query: map[string]string{"event_id": "e1"},
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotQuery != "event_id=e1" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if string(gotBody) != `{"name":"GA"}` {
		t.Fatalf("unexpected body %s", gotBody)
	}
}

func TestRequest_ExtractsErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		wantMessage string
	}{
		{"message field", "application/json", `{"message":"zone not found"}`, 404, "zone not found"},
		{"error field", "application/json", `{"error":"bad input"}`, 400, "bad input"},
		{"detail field", "application/json", `{"detail":"denied"}`, 403, "denied"},
		{"plain text", "text/plain", "upstream exploded", 500, "upstream exploded"},
		{"no body", "application/json", `{}`, 503, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := newTestClient(t, server.URL)
			_, err := client.Request(context.Background(), http.MethodGet, "/x", nil, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}
		})
	}
}

func TestRequest_AuthFailureClearsSessionOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)

	var callbacks atomic.Int32
	client.OnAuthFailure(func(ctx context.Context, err *APIError) {
		callbacks.Add(1)
	})

	ctx := sessionContext("tok-1", "user-1")
	if err := store.Save(ctx, session.FromContext(ctx)); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := client.Request(ctx, http.MethodGet, "/events", nil, nil); err == nil {
			t.Fatal("expected an auth error")
		}
	}

	if _, err := store.Get(context.Background(), "tok-1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session cleared, got %v", err)
	}
	if got := callbacks.Load(); got != 1 {
		t.Fatalf("expected auth-failure callback exactly once, got %d", got)
	}
}

func TestMarkCleared_BoundedSet(t *testing.T) {
	client, _ := newTestClient(t, "http://upstream")

	for i := 0; i < clearedTokenLimit; i++ {
		if !client.markCleared(fmt.Sprintf("tok-%d", i)) {
			t.Fatalf("fresh token %d reported as already cleared", i)
		}
	}
	if client.markCleared("tok-0") {
		t.Fatal("known token must not re-mark")
	}

	// The next fresh token trips the cap and resets the set.
	if !client.markCleared("tok-overflow") {
		t.Fatal("overflow token rejected")
	}
	if got := len(client.cleared); got != 1 {
		t.Fatalf("set not reset at the cap: %d entries", got)
	}
}

func TestRequest_TimeoutAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	_, err := client.Request(context.Background(), http.MethodGet, "/slow", nil, &Options{Timeout: 30 * time.Millisecond})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected a network error from the aborted request, got %v", err)
	}
}

func TestUpload_PreservesMultipartContentType(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)
	field, err := writer.CreateFormField("poster")
	if err != nil {
		t.Fatalf("form field: %v", err)
	}
	field.Write([]byte("image-bytes"))
	writer.Close()

	client, _ := newTestClient(t, server.URL)
	if _, err := client.Upload(context.Background(), "/events/e1/poster", writer.FormDataContentType(), buf, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotContentType != writer.FormDataContentType() {
		t.Fatalf("multipart boundary lost: got %q", gotContentType)
	}
}
