package edgar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chevalinn/minilake/internal/models"
)

const testContact = "minilake-test/1.0 (dev@example.com)"

func TestGetTickerDirectory(t *testing.T) {
	mockResp := `{
		"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
		"1": {"cik_str": 789019, "ticker": "MSFT", "title": "Microsoft Corp"}
	}`

	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(testContact, WithDirectoryURL(srv.URL), WithPacing(0))
	directory, err := client.GetTickerDirectory(context.Background())
	if err != nil {
		t.Fatalf("GetTickerDirectory failed: %v", err)
	}

	if gotAgent != testContact {
		t.Errorf("User-Agent = %q, want %q", gotAgent, testContact)
	}
	if directory["AAPL"] != "0000320193" {
		t.Errorf("AAPL CIK = %s, want 0000320193 (zero-padded)", directory["AAPL"])
	}
	if directory["MSFT"] != "0000789019" {
		t.Errorf("MSFT CIK = %s, want 0000789019", directory["MSFT"])
	}
}

func TestGetCompanyFacts(t *testing.T) {
	mockResp := `{
		"cik": 320193,
		"entityName": "Apple Inc.",
		"facts": {
			"us-gaap": {
				"Revenue": {
					"units": {
						"USD": [
							{"val": 365817000000, "end": "2021-09-25", "filed": "2021-10-29", "form": "10-K"},
							{"val": 394328000000, "end": "2022-09-24", "filed": "2022-10-28", "form": "10-K"},
							{"val": 82959000000, "end": "2022-06-25", "filed": "2022-07-29", "form": "10-Q"}
						]
					}
				}
			}
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/CIK0000320193.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != testContact {
			t.Errorf("User-Agent = %q, want contact string", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(testContact, WithBaseURL(srv.URL), WithPacing(0))
	facts, err := client.GetCompanyFacts(context.Background(), "0000320193")
	if err != nil {
		t.Fatalf("GetCompanyFacts failed: %v", err)
	}

	gaap, ok := facts.Facts["us-gaap"]
	if !ok {
		t.Fatal("missing us-gaap facts")
	}
	series := gaap["Revenue"].Units["USD"]
	if len(series) != 3 {
		t.Fatalf("expected 3 filings, got %d", len(series))
	}
	if series[1].Value != 394328000000 {
		t.Errorf("val = %v, want 394328000000", series[1].Value)
	}
	if series[1].Form != "10-K" {
		t.Errorf("form = %s, want 10-K", series[1].Form)
	}
}

func TestGetCompanyFacts_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no facts", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(testContact, WithBaseURL(srv.URL), WithPacing(0))
	_, err := client.GetCompanyFacts(context.Background(), "0000000000")
	if err == nil {
		t.Fatal("expected error")
	}

	var provErr *models.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if provErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", provErr.StatusCode)
	}
}

func TestPacingBetweenRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	pacing := 50 * time.Millisecond
	client := NewClient(testContact, WithDirectoryURL(srv.URL), WithPacing(pacing))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.GetTickerDirectory(context.Background()); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// three paced calls need at least two full intervals
	if elapsed < 2*pacing {
		t.Errorf("three calls took %v, want at least %v", elapsed, 2*pacing)
	}
}
