package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher() *Fetcher {
	return NewFetcher(FetcherConfig{RatePerSecond: 1000, Burst: 10, MaxElapsed: 2 * time.Second})
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Season") != "2024-25" {
			t.Errorf("Season = %q", r.URL.Query().Get("Season"))
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var out struct{ OK bool }
	err := testFetcher().GetJSON(context.Background(), server.URL+"/x", url.Values{"Season": {"2024-25"}}, &out)
	if err != nil || !out.OK {
		t.Fatalf("GetJSON = %+v, %v", out, err)
	}
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var out struct{ OK bool }
	if err := testFetcher().GetJSON(context.Background(), server.URL, nil, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGetJSON_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var out struct{}
	err := testFetcher().GetJSON(context.Background(), server.URL, nil, &out)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want StatusError 401", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGetJSON_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	var out struct{}
	if err := testFetcher().GetJSON(context.Background(), server.URL, nil, &out); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}
