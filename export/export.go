// Package export renders duration tables as CSV.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/transitmetrics/gtfs"
)

//go:embed routes.csv.tmpl
var routesCsvTmpl string

//go:embed trips.csv.tmpl
var tripsCsvTmpl string

//go:embed segments.csv.tmpl
var segmentsCsvTmpl string

var funcMap = template.FuncMap{
	// Field quotes a value that would otherwise break the row.
	"Field": func(s string) string {
		if !strings.ContainsAny(s, ",\"\r\n") {
			return s
		}
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	},
	"FormatFloat": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
}

var routesCsv = template.Must(template.New("routes.csv.tmpl").Funcs(funcMap).Parse(routesCsvTmpl))
var tripsCsv = template.Must(template.New("trips.csv.tmpl").Funcs(funcMap).Parse(tripsCsvTmpl))
var segmentsCsv = template.Must(template.New("segments.csv.tmpl").Funcs(funcMap).Parse(segmentsCsvTmpl))

// WriteCsv writes the table populated by the durations' method.
func WriteCsv(w io.Writer, durations *gtfs.Durations) error {
	var err error
	switch durations.Method {
	case gtfs.Method_ByTrip:
		err = tripsCsv.Execute(w, durations.Trips)
	case gtfs.Method_Detailed:
		err = segmentsCsv.Execute(w, durations.Segments)
	default:
		err = routesCsv.Execute(w, durations.Routes)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s durations: %w", durations.Method, err)
	}
	return nil
}

// Csv returns the CSV export of the durations.
func Csv(durations *gtfs.Durations) ([]byte, error) {
	var b bytes.Buffer
	if err := WriteCsv(&b, durations); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
