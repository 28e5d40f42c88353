package smilebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlotsDecodesResponse(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/slots" {
			t.Errorf("path = %q, want /v1/slots", r.URL.Path)
		}
		gotQuery = map[string]string{
			"practice": r.URL.Query().Get("practice"),
			"date":     r.URL.Query().Get("date"),
			"type":     r.URL.Query().Get("type"),
			"provider": r.URL.Query().Get("provider"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"date":"2026-02-24","slots":[
			{"id":"s1","time":"09:00","available":true,"provider":"101"},
			{"id":"s2","time":"09:30","available":false}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	slots, err := client.Slots(context.Background(), "tok-123", "2026-02-24", "2", "101")
	if err != nil {
		t.Fatalf("Slots returned error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Time != "09:00" || !slots[0].Available {
		t.Errorf("first slot = %+v, want 09:00 available", slots[0])
	}
	if slots[1].Available {
		t.Errorf("second slot should be unavailable")
	}
	if gotQuery["practice"] != "tok-123" || gotQuery["date"] != "2026-02-24" || gotQuery["type"] != "2" || gotQuery["provider"] != "101" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestSlotsOmitsEmptyProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("provider") {
			t.Errorf("provider param should be omitted when empty")
		}
		w.Write([]byte(`{"date":"2026-02-24","slots":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Slots(context.Background(), "tok", "2026-02-24", "1", ""); err != nil {
		t.Fatalf("Slots returned error: %v", err)
	}
}

func TestSlotsNon2xxIncludesBodyExcerpt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream unavailable"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Slots(context.Background(), "tok", "2026-02-24", "1", "")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should name the status code, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Errorf("error should carry the body excerpt, got %v", err)
	}
}

func TestSlotsNetworkErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // force connection refused

	client := NewClient(server.URL)
	if _, err := client.Slots(context.Background(), "tok", "2026-02-24", "1", ""); err == nil {
		t.Fatal("expected error when server is unreachable")
	}
}

func TestSlotsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"slots": [`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Slots(context.Background(), "tok", "2026-02-24", "1", ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("")
	if client.baseURL != defaultAPIBase {
		t.Errorf("baseURL = %q, want %q", client.baseURL, defaultAPIBase)
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", client.httpClient.Timeout, defaultTimeout)
	}
}
