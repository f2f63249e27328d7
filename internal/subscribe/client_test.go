package subscribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testSubscription() Subscription {
	return Subscription{
		Object:      "page",
		CallbackURL: "https://hooks.example.com/facebook",
		Fields:      []string{"feed", "messages"},
		VerifyToken: "verify-me",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := NewClient(context.Background(), "access-token", WithBaseURL(ts.URL+"/"), WithAPIVersion("v1.0"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestSubscribe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1.0/12345/subscriptions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}

		expected := map[string]string{
			"object":       "page",
			"callback_url": "https://hooks.example.com/facebook",
			"fields":       "feed,messages",
			"verify_token": "verify-me",
		}
		for key, want := range expected {
			if got := r.PostForm.Get(key); got != want {
				t.Errorf("Form %s = %q, expected %q", key, got, want)
			}
		}
		if r.PostForm.Has("include_values") {
			t.Error("Expected include_values to be omitted when false")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	})

	if err := client.Subscribe(context.Background(), "12345", testSubscription()); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
}

func TestSubscribe_NotAcknowledged(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})

	if err := client.Subscribe(context.Background(), "12345", testSubscription()); err == nil {
		t.Error("Expected error when success is false")
	}
}

func TestSubscribe_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Callback verification failed","type":"OAuthException","code":2200,"fbtrace_id":"abc"}}`))
	})

	err := client.Subscribe(context.Background(), "12345", testSubscription())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Code != 2200 || apiErr.Message != "Callback verification failed" {
		t.Errorf("Unexpected error contents: %+v", apiErr)
	}
}

func TestSubscribe_OpaqueError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	err := client.Subscribe(context.Background(), "12345", testSubscription())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", apiErr.StatusCode)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no request for invalid subscription")
	})

	testCases := []struct {
		name   string
		modify func(*Subscription)
	}{
		{"missing object", func(s *Subscription) { s.Object = "" }},
		{"missing fields", func(s *Subscription) { s.Fields = nil }},
		{"missing token", func(s *Subscription) { s.VerifyToken = "" }},
		{"http callback", func(s *Subscription) { s.CallbackURL = "http://hooks.example.com/facebook" }},
		{"relative callback", func(s *Subscription) { s.CallbackURL = "/facebook" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub := testSubscription()
			tc.modify(&sub)
			if err := client.Subscribe(context.Background(), "12345", sub); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	if err := client.Subscribe(context.Background(), "", testSubscription()); err == nil {
		t.Error("Expected error for empty app id")
	}
}

func TestList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		w.Write([]byte(`{"data":[{"object":"page","callback_url":"https://hooks.example.com/facebook","active":true,"fields":[{"name":"feed","version":"v19.0"}]}]}`))
	})

	subs, err := client.List(context.Background(), "12345")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("Expected 1 subscription, got %d", len(subs))
	}
	if !subs[0].Active || subs[0].Object != "page" || subs[0].Fields[0].Name != "feed" {
		t.Errorf("Unexpected subscription: %+v", subs[0])
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	if _, err := NewClient(context.Background(), ""); err == nil {
		t.Error("Expected error for empty access token")
	}
}

func TestAppAccessToken(t *testing.T) {
	if got := AppAccessToken("123", "secret"); got != "123|secret" {
		t.Errorf("Expected 123|secret, got %s", got)
	}
}
