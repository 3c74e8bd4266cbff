// Package thredds fetches gridded sea-ice time series from a THREDDS data
// server: it resolves a series key to the dataset's download address, pulls
// the NetCDF file and extracts the requested variable with its metadata.
package thredds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ewanvin/seaicemod/internal/catalog"
	"github.com/ewanvin/seaicemod/internal/seaice"
)

// Config carries the address template constants and resilience settings.
type Config struct {
	// URLPrefix is the dataset root on the THREDDS server.
	URLPrefix string
	// YearRange is the projection span segment of dataset file names,
	// e.g. "2015_2100".
	YearRange string
	// MaxRetries is the number of extra attempts per fetch; zero disables
	// retrying.
	MaxRetries int
}

// Fetcher downloads and extracts one dataset per series key. It performs
// exactly one download per Fetch call (retries aside); memoization is the
// cache's job.
type Fetcher struct {
	cfg     Config
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// New creates a Fetcher using the given HTTP client; the client's timeout
// bounds each download.
func New(client *http.Client, cfg Config) *Fetcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "thredds",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Fetcher{
		cfg: cfg,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      cfg.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

// URL resolves a series key to the dataset download address:
//
//	{prefix}/{variable}/{model}/{resolution}/{scenario}/{member}/
//	    {variable}_SImon_{model_base}_{scenario}_{member}_{year_range}.nc
func (f *Fetcher) URL(key seaice.SeriesKey) string {
	file := fmt.Sprintf("%s_SImon_%s_%s_%s_%s.nc",
		key.Variable, catalog.ModelBase(key.Model), key.Scenario,
		key.EnsembleMember, f.cfg.YearRange)
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s/%s",
		f.cfg.URLPrefix, key.Variable, key.Model, key.TemporalResolution,
		key.Scenario, key.EnsembleMember, file)
}

// Fetch retrieves the dataset for key and extracts the keyed variable. The
// result is all-or-nothing: any network, variable or attribute problem yields
// a FetchError and no partial series.
func (f *Fetcher) Fetch(ctx context.Context, key seaice.SeriesKey) (*seaice.RawSeries, error) {
	raw, err := f.fetchURL(ctx, f.URL(key), key.Variable)
	if err != nil {
		var fetchErr *seaice.FetchError
		if errors.As(err, &fetchErr) {
			fetchErr.Key = key
			return nil, fetchErr
		}
		return nil, &seaice.FetchError{Key: key, Reason: seaice.ReasonUnreachable, Err: err}
	}
	raw.Key = key
	return raw, nil
}

// FetchURL retrieves an arbitrary dataset address and extracts the named
// variable. The baseline provider uses this for the fixed observational
// dataset, which has no series key.
func (f *Fetcher) FetchURL(ctx context.Context, url, variable string) (*seaice.RawSeries, error) {
	return f.fetchURL(ctx, url, variable)
}

func (f *Fetcher) fetchURL(ctx context.Context, url, variable string) (*seaice.RawSeries, error) {
	resp, err := doRequestWithResilience(ctx, f.httpCfg, f.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	})
	if err != nil {
		reason := seaice.ReasonUnreachable
		if errors.Is(err, context.DeadlineExceeded) {
			reason = seaice.ReasonTimeout
		}
		return nil, &seaice.FetchError{Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	// The NetCDF library reads from files, so spool the download to disk
	// before opening it.
	tmp, err := os.CreateTemp("", "seaice-*.nc")
	if err != nil {
		return nil, &seaice.FetchError{Reason: seaice.ReasonBadDataset, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, &seaice.FetchError{Reason: seaice.ReasonUnreachable, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &seaice.FetchError{Reason: seaice.ReasonBadDataset, Err: err}
	}

	return extractSeries(tmp.Name(), variable)
}
