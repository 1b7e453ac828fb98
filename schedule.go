package gtfs

import (
	"cmp"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/transitmetrics/gtfs/warnings"
)

// Schedule contains the tables of a GTFS static feed that duration metrics are computed from.
//
// A Schedule built by hand or returned by ParseStatic is raw. Normalize returns the canonical form,
// in which trips are unique, every stop time belongs to a known trip and each trip's stop times are
// contiguous and ordered by stop sequence.
type Schedule struct {
	Routes    []Route
	Trips     []Trip
	StopTimes []StopTime
	Services  []Service

	Warnings []warnings.StaticWarning

	canonical bool
	tripIndex map[string]int
	spans     map[string]span
}

type span struct {
	start, end int
}

type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Type      RouteType
}

type Trip struct {
	ID          string
	RouteID     string
	ServiceID   string
	DirectionID DirectionID
	Headsign    string
}

// StopTime corresponds to a single row in stop_times.txt.
//
// The arrival and departure times are kept as the raw strings in the feed. Either may be empty.
type StopTime struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string
}

// Service describes the days on which trips with a given service ID run.
type Service struct {
	ID        string
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool
	StartDate time.Time
	EndDate   time.Time

	AddedDates   []time.Time
	RemovedDates []time.Time
}

// Canonical reports whether the schedule is already in normalized form.
func (s *Schedule) Canonical() bool {
	return s != nil && s.canonical
}

// Trip returns the trip with the given ID. It is only valid on a canonical schedule.
func (s *Schedule) Trip(tripID string) (*Trip, bool) {
	i, ok := s.tripIndex[tripID]
	if !ok {
		return nil, false
	}
	return &s.Trips[i], true
}

// TripStopTimes returns the trip's stop times ordered by stop sequence.
// It is only valid on a canonical schedule; the returned slice must not be modified.
func (s *Schedule) TripStopTimes(tripID string) []StopTime {
	sp, ok := s.spans[tripID]
	if !ok {
		return nil
	}
	return s.StopTimes[sp.start:sp.end]
}

// Normalize returns the canonical form of the schedule. Canonical schedules are returned as-is and
// a nil schedule normalizes to an empty one.
//
// The input is not modified. Duplicate routes and trips keep their first occurrence, and stop times
// that reference a trip not in the trips table are dropped.
func Normalize(s *Schedule) *Schedule {
	if s.Canonical() {
		return s
	}
	if s == nil {
		out := &Schedule{}
		out.buildIndex()
		return out
	}
	out := &Schedule{
		Services: s.Services,
		Warnings: s.Warnings,
	}
	seenRoutes := map[string]bool{}
	for _, route := range s.Routes {
		if seenRoutes[route.ID] {
			log.Debug().Str("route_id", route.ID).Msg("dropping duplicate route")
			continue
		}
		seenRoutes[route.ID] = true
		out.Routes = append(out.Routes, route)
	}
	seenTrips := map[string]bool{}
	for _, trip := range s.Trips {
		if seenTrips[trip.ID] {
			log.Debug().Str("trip_id", trip.ID).Msg("dropping duplicate trip")
			continue
		}
		seenTrips[trip.ID] = true
		out.Trips = append(out.Trips, trip)
	}
	tripIDToStopTimes := map[string][]StopTime{}
	numOrphans := 0
	for _, stopTime := range s.StopTimes {
		if !seenTrips[stopTime.TripID] {
			numOrphans++
			continue
		}
		tripIDToStopTimes[stopTime.TripID] = append(tripIDToStopTimes[stopTime.TripID], stopTime)
	}
	if numOrphans > 0 {
		log.Warn().Int("stop_times", numOrphans).Msg("dropped stop times that reference unknown trips")
	}
	out.StopTimes = make([]StopTime, 0, len(s.StopTimes)-numOrphans)
	for _, trip := range out.Trips {
		stopTimes := tripIDToStopTimes[trip.ID]
		slices.SortStableFunc(stopTimes, func(a, b StopTime) int {
			return cmp.Compare(a.StopSequence, b.StopSequence)
		})
		out.StopTimes = append(out.StopTimes, stopTimes...)
	}
	out.buildIndex()
	return out
}

// buildIndex marks the schedule as canonical. Stop times must already be grouped by trip, in trip order.
func (s *Schedule) buildIndex() {
	s.tripIndex = make(map[string]int, len(s.Trips))
	for i, trip := range s.Trips {
		s.tripIndex[trip.ID] = i
	}
	s.spans = make(map[string]span, len(s.Trips))
	start := 0
	for i := 1; i <= len(s.StopTimes); i++ {
		if i == len(s.StopTimes) || s.StopTimes[i].TripID != s.StopTimes[start].TripID {
			s.spans[s.StopTimes[start].TripID] = span{start: start, end: i}
			start = i
		}
	}
	s.canonical = true
}

// TripFilter restricts a computation to a subset of trips. The zero value selects all trips.
type TripFilter struct {
	only bool
	ids  map[string]bool
}

func AllTrips() TripFilter {
	return TripFilter{}
}

// OnlyTrips selects exactly the given trips. OnlyTrips() with no arguments selects no trips.
func OnlyTrips(tripIDs ...string) TripFilter {
	f := TripFilter{only: true, ids: make(map[string]bool, len(tripIDs))}
	for _, tripID := range tripIDs {
		f.ids[tripID] = true
	}
	return f
}

func (f TripFilter) All() bool {
	return !f.only
}

func (f TripFilter) Contains(tripID string) bool {
	return !f.only || f.ids[tripID]
}

// FilterTrips returns a schedule restricted to the trips selected by the filter.
//
// Routes are restricted to those still referenced by a trip. Services are kept as-is.
// Filtering a canonical schedule yields a canonical schedule.
func FilterTrips(s *Schedule, filter TripFilter) *Schedule {
	if filter.All() || s == nil {
		return s
	}
	out := &Schedule{
		Services: s.Services,
		Warnings: s.Warnings,
	}
	routeIDs := map[string]bool{}
	for _, trip := range s.Trips {
		if !filter.Contains(trip.ID) {
			continue
		}
		routeIDs[trip.RouteID] = true
		out.Trips = append(out.Trips, trip)
	}
	for _, route := range s.Routes {
		if routeIDs[route.ID] {
			out.Routes = append(out.Routes, route)
		}
	}
	for _, stopTime := range s.StopTimes {
		if filter.Contains(stopTime.TripID) {
			out.StopTimes = append(out.StopTimes, stopTime)
		}
	}
	if s.Canonical() {
		out.buildIndex()
	}
	return out
}
