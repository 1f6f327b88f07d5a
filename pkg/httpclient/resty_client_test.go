package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientDoSendsMethodHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Errorf("unexpected body %q", body)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Do(context.Background(), Request{
		Method:  "patch",
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "1"},
		Body:    []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if string(resp.Body()) != "ok" {
		t.Fatalf("body = %q", resp.Body())
	}
}

func TestRestyClientDoReturnsNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode())
	}
}

func TestRestyClientDoRejectsEmptyMethod(t *testing.T) {
	if _, err := NewRestyClient(0).Do(context.Background(), Request{URL: "http://127.0.0.1:1"}); err == nil {
		t.Fatalf("expected error for empty method")
	}
}
