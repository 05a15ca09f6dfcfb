package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchHeight(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"height": 820000, "time": 1700000000, "hash": "0000abc"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", WithTimeout(5*time.Second))

	s, err := c.FetchHeight(context.Background())
	if err != nil {
		t.Fatalf("FetchHeight failed: %v", err)
	}

	if s.Height != 820000 {
		t.Errorf("Height = %d, want 820000", s.Height)
	}
	if s.ObservedAt.Unix() != 1700000000 {
		t.Errorf("ObservedAt = %v, want unix 1700000000", s.ObservedAt)
	}
	if s.ObservedAt.Location() != time.UTC {
		t.Errorf("ObservedAt location = %v, want UTC", s.ObservedAt.Location())
	}
}

func TestFetchHeightMissingTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"height": 820000}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	_, err := c.FetchHeight(context.Background())
	if err == nil {
		t.Fatal("FetchHeight succeeded, want error")
	}
	if !errors.Is(err, ErrMissingTime) {
		t.Errorf("error = %v, want ErrMissingTime", err)
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("error = %T, want *DecodeError", err)
	}
}

func TestFetchHeightBadShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	_, err := c.FetchHeight(context.Background())
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("error = %v (%T), want *DecodeError", err, err)
	}
}

func TestFetchHeightServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	_, err := c.FetchHeight(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
	if transportErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", transportErr.StatusCode)
	}
}

func TestFetchHeightUnreachable(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, "", WithTimeout(time.Second))

	_, err := c.FetchHeight(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
	if transportErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for failed request", transportErr.StatusCode)
	}
}

func TestFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin": {"usd": 65000.5}}`))
	}))
	defer server.Close()

	c := NewClient("", server.URL)

	before := time.Now().Add(-time.Second)
	s, err := c.FetchPrice(context.Background())
	if err != nil {
		t.Fatalf("FetchPrice failed: %v", err)
	}

	if s.Price != 65000.5 {
		t.Errorf("Price = %f, want 65000.5", s.Price)
	}
	if s.ObservedAt.Before(before) || s.ObservedAt.After(time.Now().Add(time.Second)) {
		t.Errorf("ObservedAt = %v, want roughly now", s.ObservedAt)
	}
}

func TestFetchPriceMissingQuote(t *testing.T) {
	// Zero price is the wire sentinel for "no price sample", so a response
	// without the quote must fail decode rather than yield Price=0.
	for _, body := range []string{`{}`, `{"bitcoin": {}}`, `{"bitcoin": {"eur": 60000.0}}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		c := NewClient("", server.URL)

		_, err := c.FetchPrice(context.Background())
		if err == nil {
			t.Errorf("FetchPrice on %s succeeded, want error", body)
			server.Close()
			continue
		}
		if !errors.Is(err, ErrMissingPrice) {
			t.Errorf("FetchPrice on %s error = %v, want ErrMissingPrice", body, err)
		}
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("FetchPrice on %s error = %T, want *DecodeError", body, err)
		}
		server.Close()
	}
}

func TestFetchPriceCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := NewClient("", server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPrice(ctx)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("error = %v (%T), want *TransportError", err, err)
	}
}
