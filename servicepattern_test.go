package gtfs

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDeriveServicePatterns(t *testing.T) {
	saturday := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		desc     string
		services []Service
		trips    []Trip
		want     []ServicePattern
	}{
		{
			desc: "calendar only",
			services: []Service{
				{ID: "weekday", Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true, StartDate: jan1, EndDate: dec31},
				{ID: "weekend", Saturday: true, Sunday: true, StartDate: jan1, EndDate: dec31},
			},
			trips: []Trip{
				{ID: "T1", ServiceID: "weekday"},
				{ID: "T2", ServiceID: "weekday"},
				{ID: "T3", ServiceID: "weekend"},
			},
			want: []ServicePattern{
				{ServiceID: "weekday", Pattern: "1111100", Frequency: 2},
				{ServiceID: "weekend", Pattern: "0000011", Frequency: 1},
			},
		},
		{
			desc: "services sharing a pattern share its frequency",
			services: []Service{
				{ID: "a", Monday: true, StartDate: jan1, EndDate: dec31},
				{ID: "b", Monday: true, StartDate: jan1, EndDate: dec31},
			},
			trips: []Trip{
				{ID: "T1", ServiceID: "a"},
				{ID: "T2", ServiceID: "b"},
				{ID: "T3", ServiceID: "b"},
			},
			want: []ServicePattern{
				{ServiceID: "a", Pattern: "1000000", Frequency: 3},
				{ServiceID: "b", Pattern: "1000000", Frequency: 3},
			},
		},
		{
			desc: "calendar dates only",
			services: []Service{
				{ID: "special", AddedDates: []time.Time{saturday, sunday, monday}},
			},
			trips: []Trip{{ID: "T1", ServiceID: "special"}},
			want: []ServicePattern{
				{ServiceID: "special", Pattern: "1000011", Frequency: 1},
			},
		},
		{
			desc: "added dates on other weekdays give a second pattern",
			services: []Service{
				{ID: "weekday", Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true, StartDate: jan1, EndDate: dec31, AddedDates: []time.Time{saturday}},
			},
			trips: []Trip{{ID: "T1", ServiceID: "weekday"}},
			want: []ServicePattern{
				{ServiceID: "weekday", Pattern: "1111100", Frequency: 1},
				{ServiceID: "weekday", Pattern: "0000010", Frequency: 1},
			},
		},
		{
			desc: "service that never runs",
			services: []Service{
				{ID: "never", StartDate: jan1, EndDate: dec31, RemovedDates: []time.Time{monday}},
			},
			trips: []Trip{{ID: "T1", ServiceID: "never"}},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			got := DeriveServicePatterns(&Schedule{Services: tc.services, Trips: tc.trips})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("DeriveServicePatterns() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadServicePatterns(t *testing.T) {
	input := "service_id,service_pattern,pattern_frequency\n" +
		"weekday,1111100,12\n" +
		"weekday,0000010,3\n" +
		",1111111,1\n"

	got, err := ReadServicePatterns(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadServicePatterns() err = %s", err)
	}

	want := []ServicePattern{
		{ServiceID: "weekday", Pattern: "1111100", Frequency: 12},
		{ServiceID: "weekday", Pattern: "0000010", Frequency: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadServicePatterns() diff (-want +got):\n%s", diff)
	}
}

func TestWriteServicePatterns(t *testing.T) {
	patterns := []ServicePattern{
		{ServiceID: "weekday", Pattern: "1111100", Frequency: 12},
	}
	var b bytes.Buffer
	if err := WriteServicePatterns(&b, patterns); err != nil {
		t.Fatalf("WriteServicePatterns() err = %s", err)
	}
	got, err := ReadServicePatterns(&b)
	if err != nil {
		t.Fatalf("ReadServicePatterns() err = %s", err)
	}
	if diff := cmp.Diff(patterns, got); diff != "" {
		t.Errorf("diff (-want +got):\n%s", diff)
	}
}

func TestServicePatternJoin(t *testing.T) {
	idx := indexServicePatterns([]ServicePattern{
		{ServiceID: "weekday", Pattern: "1111100", Frequency: 2},
		{ServiceID: "weekday", Pattern: "0000010", Frequency: 1},
	})

	got, ok := idx.join("weekday")
	if !ok || len(got) != 2 {
		t.Errorf("join(weekday) = (%v, %t), want two patterns", got, ok)
	}
	got, ok = idx.join("unknown")
	if ok {
		t.Errorf("join(unknown) matched")
	}
	if diff := cmp.Diff([]ServicePattern{{ServiceID: "unknown"}}, got); diff != "" {
		t.Errorf("join(unknown) diff (-want +got):\n%s", diff)
	}
}
