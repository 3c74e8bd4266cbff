// Package baseline owns the fixed observational reference series (OSISAF sea
// ice index) that model projections are plotted against. The dataset is
// loaded once at startup and never re-fetched; a load failure is fatal
// because no meaningful comparison view exists without it.
package baseline

import (
	"context"
	"fmt"
	"log"

	"github.com/ewanvin/seaicemod/internal/catalog"
	"github.com/ewanvin/seaicemod/internal/seaice"
)

// Variable is the name of the sea ice area variable inside the OSISAF index
// dataset.
const Variable = "sia"

// Loader retrieves a dataset by address; the THREDDS fetcher satisfies it.
type Loader interface {
	FetchURL(ctx context.Context, url, variable string) (*seaice.RawSeries, error)
}

// Provider holds the baseline series for the life of the process.
type Provider struct {
	raw *seaice.RawSeries
}

// Load eagerly fetches the baseline dataset. It is called once from main.
func Load(ctx context.Context, loader Loader, url string) (*Provider, error) {
	raw, err := loader.FetchURL(ctx, url, Variable)
	if err != nil {
		return nil, fmt.Errorf("load baseline dataset: %w", err)
	}
	log.Printf("baseline loaded: %q, %d observations", raw.Title, len(raw.Values))
	return &Provider{raw: raw}, nil
}

// Raw returns the baseline series. Callers must treat it as read-only.
func (p *Provider) Raw() *seaice.RawSeries {
	return p.raw
}

// AggregateSeason reduces the baseline to one mean value per year over the
// season's months.
func (p *Provider) AggregateSeason(season catalog.Season) seaice.AggregatedSeries {
	return seaice.Aggregate(p.raw, season)
}
