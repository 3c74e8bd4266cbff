package thredds

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/ewanvin/seaicemod/internal/seaice"
)

// datasetSpec describes a small NetCDF file to generate for extraction tests.
type datasetSpec struct {
	variable     string
	timeUnits    string
	times        []float64
	values       []float64 // row-major when sliceWidth > 1
	sliceWidth   int       // 0 or 1 = plain 1-D variable
	fill         *float64
	omitTitle    bool
	omitLongName bool
	omitVariable bool
}

// writeDataset creates a NetCDF file matching spec and returns its path.
func writeDataset(t *testing.T, spec datasetSpec) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset.nc")
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		t.Fatalf("create dataset: %v", err)
	}

	timeDim, err := ds.AddDim("time", uint64(len(spec.times)))
	if err != nil {
		t.Fatalf("add time dim: %v", err)
	}
	timeVar, err := ds.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		t.Fatalf("add time var: %v", err)
	}
	if err := timeVar.Attr("units").WriteBytes([]byte(spec.timeUnits)); err != nil {
		t.Fatalf("write time units: %v", err)
	}

	var dataVar netcdf.Var
	if !spec.omitVariable {
		dims := []netcdf.Dim{timeDim}
		if spec.sliceWidth > 1 {
			sliceDim, err := ds.AddDim("slice", uint64(spec.sliceWidth))
			if err != nil {
				t.Fatalf("add slice dim: %v", err)
			}
			dims = append(dims, sliceDim)
		}
		dataVar, err = ds.AddVar(spec.variable, netcdf.DOUBLE, dims)
		if err != nil {
			t.Fatalf("add data var: %v", err)
		}
		if !spec.omitLongName {
			if err := dataVar.Attr("long_name").WriteBytes([]byte("sea ice area")); err != nil {
				t.Fatalf("write long_name: %v", err)
			}
		}
		if err := dataVar.Attr("units").WriteBytes([]byte("1e6 km2")); err != nil {
			t.Fatalf("write units: %v", err)
		}
		if spec.fill != nil {
			if err := dataVar.Attr("_FillValue").WriteFloat64s([]float64{*spec.fill}); err != nil {
				t.Fatalf("write fill value: %v", err)
			}
		}
	}
	if !spec.omitTitle {
		if err := ds.Attr("title").WriteBytes([]byte("test sea ice dataset")); err != nil {
			t.Fatalf("write title: %v", err)
		}
	}

	if err := ds.EndDef(); err != nil {
		t.Fatalf("end define mode: %v", err)
	}
	if err := timeVar.WriteFloat64s(spec.times); err != nil {
		t.Fatalf("write time axis: %v", err)
	}
	if !spec.omitVariable {
		if err := dataVar.WriteFloat64s(spec.values); err != nil {
			t.Fatalf("write values: %v", err)
		}
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("close dataset: %v", err)
	}
	return path
}

func TestExtractSeries(t *testing.T) {
	path := writeDataset(t, datasetSpec{
		variable:  "siarean",
		timeUnits: "days since 2015-01-01",
		times:     []float64{0, 31, 59},
		values:    []float64{10.5, 11.5, 12.5},
	})

	raw, err := extractSeries(path, "siarean")
	if err != nil {
		t.Fatal(err)
	}

	if raw.Title != "test sea ice dataset" {
		t.Errorf("title = %q", raw.Title)
	}
	if raw.LongName != "sea ice area" || raw.Units != "1e6 km2" {
		t.Errorf("metadata = %q / %q", raw.LongName, raw.Units)
	}
	if len(raw.Values) != 3 || raw.Values[1] != 11.5 {
		t.Errorf("values = %v", raw.Values)
	}
	want := time.Date(2015, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !raw.Timestamps[1].Equal(want) {
		t.Errorf("timestamps[1] = %v, want %v", raw.Timestamps[1], want)
	}
}

func TestExtractSeriesMapsFillValueToNaN(t *testing.T) {
	fill := -999.0
	path := writeDataset(t, datasetSpec{
		variable:  "siarean",
		timeUnits: "days since 2015-01-01",
		times:     []float64{0, 31, 59},
		values:    []float64{10.5, -999.0, 12.5},
		fill:      &fill,
	})

	raw, err := extractSeries(path, "siarean")
	if err != nil {
		t.Fatal(err)
	}

	if !math.IsNaN(raw.Values[1]) {
		t.Errorf("fill value not mapped to NaN: %v", raw.Values[1])
	}
	if math.IsNaN(raw.Values[0]) || math.IsNaN(raw.Values[2]) {
		t.Errorf("ordinary values must survive fill mapping: %v", raw.Values)
	}
}

func TestExtractSeriesTakesFirstSliceElement(t *testing.T) {
	path := writeDataset(t, datasetSpec{
		variable:   "siarean",
		timeUnits:  "days since 2015-01-01",
		times:      []float64{0, 31},
		values:     []float64{1, 100, 2, 200}, // two slice elements per step
		sliceWidth: 2,
	})

	raw, err := extractSeries(path, "siarean")
	if err != nil {
		t.Fatal(err)
	}

	if len(raw.Values) != 2 || raw.Values[0] != 1 || raw.Values[1] != 2 {
		t.Errorf("values = %v, want first slice element per step [1 2]", raw.Values)
	}
}

func TestExtractSeriesMissingVariable(t *testing.T) {
	path := writeDataset(t, datasetSpec{
		timeUnits:    "days since 2015-01-01",
		times:        []float64{0},
		omitVariable: true,
	})

	_, err := extractSeries(path, "siarean")
	var fetchErr *seaice.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Reason != seaice.ReasonVariableMissing {
		t.Errorf("reason = %q, want %q", fetchErr.Reason, seaice.ReasonVariableMissing)
	}
}

func TestExtractSeriesMissingAttributeIsAllOrNothing(t *testing.T) {
	path := writeDataset(t, datasetSpec{
		variable:     "siarean",
		timeUnits:    "days since 2015-01-01",
		times:        []float64{0},
		values:       []float64{10},
		omitLongName: true,
	})

	raw, err := extractSeries(path, "siarean")
	if raw != nil {
		t.Fatal("missing attribute must not yield a partial series")
	}
	var fetchErr *seaice.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Reason != seaice.ReasonAttributeMissing {
		t.Errorf("reason = %q, want %q", fetchErr.Reason, seaice.ReasonAttributeMissing)
	}
}

func TestExtractSeriesMissingTitle(t *testing.T) {
	path := writeDataset(t, datasetSpec{
		variable:  "siarean",
		timeUnits: "days since 2015-01-01",
		times:     []float64{0},
		values:    []float64{10},
		omitTitle: true,
	})

	_, err := extractSeries(path, "siarean")
	var fetchErr *seaice.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Reason != seaice.ReasonAttributeMissing {
		t.Fatalf("expected attribute-missing FetchError, got %v", err)
	}
}

func TestFetchExtractsDownloadedDataset(t *testing.T) {
	path := writeDataset(t, datasetSpec{
		variable:  "siarean",
		timeUnits: "days since 2015-01-01",
		times:     []float64{0, 31},
		values:    []float64{10.5, 11.5},
	})
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	f := New(srv.Client(), Config{URLPrefix: srv.URL, YearRange: "2015_2100"})

	raw, err := f.Fetch(context.Background(), testKey())
	if err != nil {
		t.Fatal(err)
	}
	if raw.Key != testKey() {
		t.Errorf("raw series key = %v", raw.Key)
	}
	if len(raw.Values) != 2 || raw.Values[0] != 10.5 {
		t.Errorf("values = %v", raw.Values)
	}
}
