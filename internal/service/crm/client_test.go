package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *int) {
	t.Helper()

	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if err := r.ParseForm(); err != nil {
			t.Errorf("token form parse failed: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "password" {
			t.Errorf("grant_type = %q, want password", got)
		}
		if got := r.PostForm.Get("username"); got != "ops@example.com" {
			t.Errorf("username = %q", got)
		}
		if got := r.PostForm.Get("client_secret"); got != "secret" {
			t.Errorf("client_secret = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-1","token_type":"Bearer"}`)
	})
	mux.HandleFunc("/services/data/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"totalSize":1,"done":true,"records":[{"Id":"006xx"}]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		InstanceURL:  srv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		Username:     "ops@example.com",
		Password:     "pw",
	}, zap.NewNop())

	return client, &tokenCalls
}

func TestQueryAuthenticatesAndReusesToken(t *testing.T) {
	client, tokenCalls := newTestClient(t)
	ctx := context.Background()

	records, err := client.Query(ctx, "SELECT Id FROM Opportunity")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(records) != 1 || records[0]["Id"] != "006xx" {
		t.Errorf("records = %+v", records)
	}

	if _, err := client.Query(ctx, "SELECT Id FROM Opportunity"); err != nil {
		t.Fatalf("second Query failed: %v", err)
	}
	if *tokenCalls != 1 {
		t.Errorf("token endpoint hit %d times, want 1", *tokenCalls)
	}
}

func TestQueryReportsTokenRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant","error_description":"authentication failure"}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		InstanceURL:  srv.URL,
		ClientID:     "client",
		ClientSecret: "wrong",
		Username:     "ops@example.com",
		Password:     "pw",
	}, zap.NewNop())

	if _, err := client.Query(context.Background(), "SELECT Id FROM Opportunity"); err == nil {
		t.Fatal("Query should fail when the token endpoint rejects the grant")
	}
}

func TestPasswordGrantAssignsFallbackExpiry(t *testing.T) {
	client, _ := newTestClient(t)

	tok, err := client.tokens.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok.Expiry.IsZero() {
		t.Error("token without expires_in should get a bounded expiry")
	}
}
