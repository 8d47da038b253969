package claude

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claudebar/claudebar/pkg/credentials"
	"github.com/claudebar/claudebar/pkg/usage"
)

const validBody = `{
	"five_hour": {"percent_used": 42, "resets_at": "2025-01-01T00:00:00Z"},
	"seven_day": {"percent_used": 10, "resets_at": "2025-01-05T00:00:00Z"},
	"seven_day_sonnet": {"percent_used": 5, "resets_at": "2025-01-05T00:00:00Z"},
	"extra_field": {"ignored": true}
}`

func testCreds() credentials.Credentials {
	return credentials.Credentials{
		SessionKey:     "sk-ant-sid01-test",
		OrganizationID: "org-1234",
	}
}

func kindOf(t *testing.T, err error) usage.ErrorKind {
	t.Helper()
	var pe *usage.PollError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *usage.PollError, got %T: %v", err, err)
	}
	return pe.Kind
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/organizations/org-1234/usage" {
			t.Errorf("Expected path /organizations/org-1234/usage, got %s", r.URL.Path)
		}
		cookie, err := r.Cookie("sessionKey")
		if err != nil || cookie.Value != "sk-ant-sid01-test" {
			t.Errorf("Expected sessionKey cookie, got %v", cookie)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Expected Accept header, got %s", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(validBody))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	snap, err := c.Fetch(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if snap.Session.PercentUsed != 42 {
		t.Errorf("Expected session 42, got %v", snap.Session.PercentUsed)
	}
	if snap.Weekly.PercentUsed != 10 {
		t.Errorf("Expected weekly 10, got %v", snap.Weekly.PercentUsed)
	}
	if snap.WeeklySonnet.PercentUsed != 5 {
		t.Errorf("Expected sonnet 5, got %v", snap.WeeklySonnet.PercentUsed)
	}

	wantReset := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !snap.Session.ResetsAt.Equal(wantReset) {
		t.Errorf("Expected session reset %v, got %v", wantReset, snap.Session.ResetsAt)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("Expected FetchedAt to be set")
	}
}

func TestFetch_FractionalPercentPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"five_hour": {"percent_used": 42.5, "resets_at": "2025-01-01T00:00:00Z"},
			"seven_day": {"percent_used": 0, "resets_at": "2025-01-05T00:00:00Z"},
			"seven_day_sonnet": {"percent_used": 100, "resets_at": "2025-01-05T00:00:00Z"}
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	snap, err := c.Fetch(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if snap.Session.PercentUsed != 42.5 {
		t.Errorf("Expected 42.5 passed through unmodified, got %v", snap.Session.PercentUsed)
	}
	if snap.Weekly.PercentUsed != 0 {
		t.Errorf("Expected 0 passed through, got %v", snap.Weekly.PercentUsed)
	}
	if snap.WeeklySonnet.PercentUsed != 100 {
		t.Errorf("Expected 100 passed through, got %v", snap.WeeklySonnet.PercentUsed)
	}
}

func TestFetch_Idempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validBody))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	first, err := c.Fetch(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	second, err := c.Fetch(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("Expected structurally equal snapshots, got %+v vs %+v", first, second)
	}
}

func TestFetch_MissingWindowObjects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing five_hour", `{"seven_day": {"percent_used": 10, "resets_at": "2025-01-05T00:00:00Z"}, "seven_day_sonnet": {"percent_used": 5, "resets_at": "2025-01-05T00:00:00Z"}}`},
		{"missing seven_day", `{"five_hour": {"percent_used": 42, "resets_at": "2025-01-01T00:00:00Z"}, "seven_day_sonnet": {"percent_used": 5, "resets_at": "2025-01-05T00:00:00Z"}}`},
		{"missing seven_day_sonnet", `{"five_hour": {"percent_used": 42, "resets_at": "2025-01-01T00:00:00Z"}, "seven_day": {"percent_used": 10, "resets_at": "2025-01-05T00:00:00Z"}}`},
		{"empty object", `{}`},
		{"window without percent", `{"five_hour": {"resets_at": "2025-01-01T00:00:00Z"}, "seven_day": {"percent_used": 10, "resets_at": "2025-01-05T00:00:00Z"}, "seven_day_sonnet": {"percent_used": 5, "resets_at": "2025-01-05T00:00:00Z"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := NewClient(server.URL)
			_, err := c.Fetch(context.Background(), testCreds())
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if kind := kindOf(t, err); kind != usage.ErrAPI {
				t.Errorf("Expected api error, got %s", kind)
			}
		})
	}
}

func TestFetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Fetch(context.Background(), testCreds())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if kind := kindOf(t, err); kind != usage.ErrAPI {
		t.Errorf("Expected api error, got %s", kind)
	}
}

func TestFetch_BadTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"five_hour": {"percent_used": 42, "resets_at": "yesterday"},
			"seven_day": {"percent_used": 10, "resets_at": "2025-01-05T00:00:00Z"},
			"seven_day_sonnet": {"percent_used": 5, "resets_at": "2025-01-05T00:00:00Z"}
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Fetch(context.Background(), testCreds())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if kind := kindOf(t, err); kind != usage.ErrAPI {
		t.Errorf("Expected api error, got %s", kind)
	}
}

func TestFetch_AuthStatuses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewClient(server.URL)
		_, err := c.Fetch(context.Background(), testCreds())
		server.Close()

		if err == nil {
			t.Fatalf("Expected error for status %d, got nil", status)
		}
		if kind := kindOf(t, err); kind != usage.ErrAuth {
			t.Errorf("Expected auth error for status %d, got %s", status, kind)
		}
	}
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Fetch(context.Background(), testCreds())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if kind := kindOf(t, err); kind != usage.ErrAPI {
		t.Errorf("Expected api error, got %s", kind)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	c := NewClient(server.URL)
	_, err := c.Fetch(context.Background(), testCreds())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if kind := kindOf(t, err); kind != usage.ErrNetwork {
		t.Errorf("Expected network error, got %s", kind)
	}
}

func TestFetch_MissingCredentials(t *testing.T) {
	c := NewClient("http://127.0.0.1:0")
	_, err := c.Fetch(context.Background(), credentials.Credentials{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if kind := kindOf(t, err); kind != usage.ErrUnconfigured {
		t.Errorf("Expected unconfigured error, got %s", kind)
	}
}
