package thredds

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/ewanvin/seaicemod/internal/seaice"
)

// extractSeries opens a NetCDF file and pulls out the named variable's time
// axis and values plus the title/long_name/units attributes. Values matching
// the variable's fill value are mapped to NaN.
func extractSeries(path, variable string) (*seaice.RawSeries, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, &seaice.FetchError{Reason: seaice.ReasonBadDataset, Err: err}
	}
	defer nc.Close()

	timeVar, err := nc.Var("time")
	if err != nil {
		return nil, &seaice.FetchError{
			Reason: seaice.ReasonVariableMissing,
			Err:    fmt.Errorf("time coordinate: %w", err),
		}
	}
	timeRaw, err := readNumeric1D(timeVar)
	if err != nil {
		return nil, &seaice.FetchError{Reason: seaice.ReasonBadDataset, Err: err}
	}
	timeUnits, err := attrString(timeVar.Attr("units"))
	if err != nil {
		return nil, &seaice.FetchError{
			Reason: seaice.ReasonAttributeMissing,
			Err:    fmt.Errorf("time units: %w", err),
		}
	}
	timestamps, err := decodeTimes(timeRaw, timeUnits)
	if err != nil {
		return nil, &seaice.FetchError{Reason: seaice.ReasonBadDataset, Err: err}
	}

	v, err := nc.Var(variable)
	if err != nil {
		return nil, &seaice.FetchError{
			Reason: seaice.ReasonVariableMissing,
			Err:    fmt.Errorf("%s: %w", variable, err),
		}
	}
	values, err := readSeriesValues(v)
	if err != nil {
		return nil, &seaice.FetchError{Reason: seaice.ReasonBadDataset, Err: err}
	}
	if len(values) != len(timestamps) {
		return nil, &seaice.FetchError{
			Reason: seaice.ReasonBadDataset,
			Err: fmt.Errorf("%s has %d values but time axis has %d points",
				variable, len(values), len(timestamps)),
		}
	}
	if fill, ok := fillValue(v); ok {
		for i, val := range values {
			if val == fill {
				values[i] = math.NaN()
			}
		}
	}

	title, err := attrString(nc.Attr("title"))
	if err != nil {
		return nil, &seaice.FetchError{
			Reason: seaice.ReasonAttributeMissing,
			Err:    fmt.Errorf("title: %w", err),
		}
	}
	longName, err := attrString(v.Attr("long_name"))
	if err != nil {
		return nil, &seaice.FetchError{
			Reason: seaice.ReasonAttributeMissing,
			Err:    fmt.Errorf("long_name: %w", err),
		}
	}
	units, err := attrString(v.Attr("units"))
	if err != nil {
		return nil, &seaice.FetchError{
			Reason: seaice.ReasonAttributeMissing,
			Err:    fmt.Errorf("units: %w", err),
		}
	}

	return &seaice.RawSeries{
		Timestamps: timestamps,
		Values:     values,
		Title:      title,
		LongName:   longName,
		Units:      units,
	}, nil
}

// readSeriesValues reads a variable as one value per time step. A trailing
// dimension (a slice not yet reduced to scalar upstream) is handled by taking
// the first slice element per step; general N-D reduction is out of scope.
func readSeriesValues(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, err
	}
	switch len(dims) {
	case 1:
		return readNumeric1D(v)
	case 2:
		rows, err := dims[0].Len()
		if err != nil {
			return nil, err
		}
		cols, err := dims[1].Len()
		if err != nil {
			return nil, err
		}
		flat, err := readNumericFlat(v, rows*cols)
		if err != nil {
			return nil, err
		}
		out := make([]float64, rows)
		for i := uint64(0); i < rows; i++ {
			out[i] = flat[i*cols]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected 1D or 2D variable, got %dD", len(dims))
	}
}

// readNumeric1D reads a 1D numeric variable as float64.
func readNumeric1D(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	return readNumericFlat(v, length)
}

// readNumericFlat reads length elements of a numeric variable as float64,
// converting from the on-disk type.
func readNumericFlat(v netcdf.Var, length uint64) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, length)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, length)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported variable type: %v", t)
	}
}

// fillValue returns the _FillValue or missing_value attribute if present.
func fillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		n, err := a.Len()
		if err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
		bufi := make([]int32, 1)
		if err := a.ReadInt32s(bufi); err == nil {
			return float64(bufi[0]), true
		}
	}
	return 0, false
}

// attrString reads a character attribute as a string.
func attrString(a netcdf.Attr) (string, error) {
	n, err := a.Len()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if err := a.ReadBytes(b); err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

// decodeTimes converts a CF-style numeric time axis into timestamps. units
// must look like "<step> since <epoch>" with a step of seconds, minutes,
// hours or days; other calendars are not supported.
func decodeTimes(raw []float64, units string) ([]time.Time, error) {
	fields := strings.Fields(units)
	if len(fields) < 3 || !strings.EqualFold(fields[1], "since") {
		return nil, fmt.Errorf("unsupported time units %q", units)
	}

	var step time.Duration
	switch strings.ToLower(fields[0]) {
	case "seconds", "second", "s":
		step = time.Second
	case "minutes", "minute", "min":
		step = time.Minute
	case "hours", "hour", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	default:
		return nil, fmt.Errorf("unsupported time step %q in units %q", fields[0], units)
	}

	epochStr := strings.Join(fields[2:], " ")
	epochStr = strings.TrimSuffix(epochStr, " UTC")
	var epoch time.Time
	var parseErr error
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		epoch, parseErr = time.Parse(layout, epochStr)
		if parseErr == nil {
			break
		}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("unsupported time epoch in units %q", units)
	}

	out := make([]time.Time, len(raw))
	for i, offset := range raw {
		out[i] = epoch.Add(time.Duration(offset * float64(step))).UTC()
	}
	return out, nil
}
