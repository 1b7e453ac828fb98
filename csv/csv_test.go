package csv

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/transitmetrics/gtfs/constants"
)

func TestFile(t *testing.T) {
	for _, tc := range []struct {
		desc           string
		content        string
		wantRows       [][]string
		wantMissing    [][]string
		wantMissingCol []string
	}{
		{
			desc:        "all columns present",
			content:     "trip_id,stop_id,arrival_time\nt1,s1,08:00:00\nt1,s2,08:10:00",
			wantRows:    [][]string{{"t1", "s1", "08:00:00"}, {"t1", "s2", "08:10:00"}},
			wantMissing: [][]string{nil, nil},
		},
		{
			desc:        "blank required cell",
			content:     "trip_id,stop_id,arrival_time\n,s1,",
			wantRows:    [][]string{{"", "s1", ""}},
			wantMissing: [][]string{{"trip_id"}},
		},
		{
			desc:           "missing required column",
			content:        "trip_id,arrival_time\nt1,08:00:00",
			wantRows:       [][]string{{"t1", "", "08:00:00"}},
			wantMissing:    [][]string{{"stop_id"}},
			wantMissingCol: []string{"stop_id"},
		},
		{
			desc:        "short row",
			content:     "trip_id,stop_id,arrival_time\nt1",
			wantRows:    [][]string{{"t1", "", ""}},
			wantMissing: [][]string{{"stop_id"}},
		},
		{
			desc:        "byte order mark",
			content:     "\ufefftrip_id,stop_id,arrival_time\nt1,s1,25:00:00",
			wantRows:    [][]string{{"t1", "s1", "25:00:00"}},
			wantMissing: [][]string{nil},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			f, err := New(constants.StopTimesFile, io.NopCloser(strings.NewReader(tc.content)))
			if err != nil {
				t.Fatalf("New() err = %s", err)
			}
			tripID := f.RequiredColumn("trip_id")
			stopID := f.RequiredColumn("stop_id")
			arrival := f.OptionalColumn("arrival_time")
			var gotRows [][]string
			var gotMissing [][]string
			for f.NextRow() {
				gotRows = append(gotRows, []string{tripID.Read(), stopID.Read(), arrival.Read()})
				gotMissing = append(gotMissing, f.MissingRowKeys())
			}
			if err := f.Close(); err != nil {
				t.Fatalf("Close() err = %s", err)
			}
			if diff := cmp.Diff(tc.wantRows, gotRows); diff != "" {
				t.Errorf("rows diff (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantMissing, gotMissing); diff != "" {
				t.Errorf("missing keys diff (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantMissingCol, f.MissingRequiredColumns()); diff != "" {
				t.Errorf("missing columns diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadInt(t *testing.T) {
	f, err := New(constants.StopTimesFile, io.NopCloser(strings.NewReader("stop_sequence\n7\nx")))
	if err != nil {
		t.Fatalf("New() err = %s", err)
	}
	seq := f.RequiredColumn("stop_sequence")
	if !f.NextRow() {
		t.Fatalf("expected first row")
	}
	if got := seq.ReadInt(); got != 7 {
		t.Errorf("ReadInt() = %d, want 7", got)
	}
	if !f.NextRow() {
		t.Fatalf("expected second row")
	}
	seq.ReadInt()
	if diff := cmp.Diff([]string{"stop_sequence"}, f.MissingRowKeys()); diff != "" {
		t.Errorf("missing keys diff (-want +got):\n%s", diff)
	}
}

func TestEmptyFile(t *testing.T) {
	if _, err := New(constants.TripsFile, io.NopCloser(strings.NewReader(""))); err == nil {
		t.Errorf("New() on empty file returned no error")
	}
}
