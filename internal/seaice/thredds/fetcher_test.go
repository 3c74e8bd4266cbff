package thredds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ewanvin/seaicemod/internal/seaice"
)

func testKey() seaice.SeriesKey {
	return seaice.SeriesKey{
		Variable:           "siarean",
		Model:              "NorESM2-LM_sea_ice",
		TemporalResolution: "Monthly",
		Scenario:           "ssp126",
		EnsembleMember:     "r1i1p1f1",
	}
}

func TestURLTemplate(t *testing.T) {
	f := New(http.DefaultClient, Config{
		URLPrefix: "https://thredds.example.org/climmodseaice",
		YearRange: "2015_2100",
	})

	got := f.URL(testKey())
	want := "https://thredds.example.org/climmodseaice/siarean/NorESM2-LM_sea_ice/Monthly/ssp126/r1i1p1f1/" +
		"siarean_SImon_NorESM2-LM_ssp126_r1i1p1f1_2015_2100.nc"
	if got != want {
		t.Errorf("URL =\n  %s\nwant\n  %s", got, want)
	}
}

func TestURLVariesPerKey(t *testing.T) {
	f := New(http.DefaultClient, Config{URLPrefix: "https://x", YearRange: "2015_2100"})

	a := f.URL(testKey())
	k := testKey()
	k.EnsembleMember = "r2i1p1f1"
	b := f.URL(k)
	if a == b {
		t.Error("distinct keys must resolve to distinct addresses")
	}
}

func TestFetchRemoteErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone fishing", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(srv.Client(), Config{URLPrefix: srv.URL, YearRange: "2015_2100"})

	_, err := f.Fetch(context.Background(), testKey())
	var fetchErr *seaice.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Key != testKey() {
		t.Errorf("error does not identify the failing key: %v", fetchErr.Key)
	}
}

func TestFetchDoesNotRetryByDefault(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(srv.Client(), Config{URLPrefix: srv.URL, YearRange: "2015_2100"})

	if _, err := f.Fetch(context.Background(), testKey()); err == nil {
		t.Fatal("expected fetch failure")
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1 (no internal retries)", hits)
	}
}

func TestFetchRetriesWhenConfigured(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(srv.Client(), Config{URLPrefix: srv.URL, YearRange: "2015_2100", MaxRetries: 2})

	if _, err := f.Fetch(context.Background(), testKey()); err == nil {
		t.Fatal("expected fetch failure")
	}
	if hits != 3 {
		t.Errorf("server hit %d times, want 3 (initial + 2 retries)", hits)
	}
}

func TestDecodeTimesDaysSince(t *testing.T) {
	ts, err := decodeTimes([]float64{0, 31}, "days since 2015-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if !ts[0].Equal(time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ts[0] = %v", ts[0])
	}
	if !ts[1].Equal(time.Date(2015, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ts[1] = %v", ts[1])
	}
}

func TestDecodeTimesSecondsSinceEpochWithClock(t *testing.T) {
	ts, err := decodeTimes([]float64{3600}, "seconds since 1970-01-01 00:00:00")
	if err != nil {
		t.Fatal(err)
	}
	if !ts[0].Equal(time.Date(1970, time.January, 1, 1, 0, 0, 0, time.UTC)) {
		t.Errorf("ts[0] = %v", ts[0])
	}
}

func TestDecodeTimesFractionalDays(t *testing.T) {
	ts, err := decodeTimes([]float64{15.5}, "days since 2020-03-01")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2020, time.March, 16, 12, 0, 0, 0, time.UTC)
	if !ts[0].Equal(want) {
		t.Errorf("ts[0] = %v, want %v", ts[0], want)
	}
}

func TestDecodeTimesRejectsUnknownUnits(t *testing.T) {
	if _, err := decodeTimes([]float64{1}, "fortnights since 2015-01-01"); err == nil {
		t.Error("expected error for unsupported step")
	}
	if _, err := decodeTimes([]float64{1}, "not a cf unit"); err == nil {
		t.Error("expected error for malformed units")
	}
}
