package reconapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestDownloadReport_RequestShape(t *testing.T) {
	var gotPath, gotAuth, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotFormat = r.URL.Query().Get("file_format")
		w.Write([]byte("zip bytes"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/api/v1/reports", "secret-token", newTestLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	body, err := client.DownloadReport(context.Background(), "job-123", FormatAll)
	if err != nil {
		t.Fatalf("DownloadReport failed: %v", err)
	}

	if string(body) != "zip bytes" {
		t.Errorf("unexpected body %q", body)
	}
	if gotPath != "/api/v1/reports/job-123" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotFormat != "all" {
		t.Errorf("unexpected file_format %q", gotFormat)
	}
}

func TestDownloadReport_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token", newTestLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.DownloadReport(context.Background(), "job-123", FormatJSON); err == nil {
		t.Error("expected error for 403 response")
	}
}

func TestSaveReport_WritesArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token", newTestLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	outDir := filepath.Join(t.TempDir(), "reports")
	path, err := client.SaveReport(context.Background(), "job-9", FormatAll, outDir)
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	if filepath.Base(path) != "job-9_report.zip" {
		t.Errorf("unexpected file name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved report unreadable: %v", err)
	}
	if string(data) != "archive" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestFetchReportJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_threats": 4}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token", newTestLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	doc, err := client.FetchReportJSON(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("FetchReportJSON failed: %v", err)
	}
	if doc["total_threats"].(float64) != 4 {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "token", newTestLogger()); err == nil {
		t.Error("expected error for missing base URL")
	}
	if _, err := NewClient("http://example.com", "", newTestLogger()); err == nil {
		t.Error("expected error for missing token")
	}
}
