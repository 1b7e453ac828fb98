package gtfs

import (
	"cmp"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/transitmetrics/gtfs/warnings"
	"golang.org/x/exp/maps"
)

// RouteDuration is the average duration of the trips of a route that share a service pattern.
type RouteDuration struct {
	RouteID          string
	Trips            int
	AverageDuration  float64
	ServicePattern   string
	PatternFrequency int
}

// TripDuration is the time between the first and last arrival of a trip, in seconds.
type TripDuration struct {
	RouteID          string
	TripID           string
	Duration         int
	ServicePattern   string
	PatternFrequency int
}

// SegmentDuration is the time between departing one stop and arriving at the next, in seconds.
//
// ArrivalTime is the arrival at ToStopID in canonical HH:MM:SS form. Hour is the hour of the raw
// arrival time at FromStopID; like GTFS times it may exceed 23.
type SegmentDuration struct {
	RouteID          string
	TripID           string
	ArrivalTime      string
	Hour             int
	FromStopID       string
	ToStopID         string
	Duration         int
	ServicePattern   string
	PatternFrequency int
}

// Durations is the result of GetDurations. Only the table corresponding to Method is populated.
type Durations struct {
	Method   Method
	Routes   []RouteDuration
	Trips    []TripDuration
	Segments []SegmentDuration

	Stats    Stats
	Warnings []warnings.DurationWarning
}

// Stats counts the input that did not make it into the result.
type Stats struct {
	// Trips considered after filtering and normalization.
	Trips int
	// Trips without any parseable arrival time.
	TripsWithoutArrivals int
	// Trips whose service has no service pattern.
	TripsWithoutServicePattern int
	// Stop-to-stop segments dropped because a time or the hour could not be read, or because the
	// trip has no service pattern.
	DroppedSegments int
}

func (s *Stats) add(other Stats) {
	s.Trips += other.Trips
	s.TripsWithoutArrivals += other.TripsWithoutArrivals
	s.TripsWithoutServicePattern += other.TripsWithoutServicePattern
	s.DroppedSegments += other.DroppedSegments
}

// Recorder receives every result computed by GetDurations.
type Recorder interface {
	Record(durations *Durations, elapsed time.Duration)
}

type Options struct {
	// ServicePatterns replaces the patterns derived from the schedule by DeriveServicePatterns.
	ServicePatterns []ServicePattern

	// Workers is the number of trip partitions computed concurrently. Values below 2 compute
	// sequentially. The result does not depend on this value.
	Workers int

	Recorder Recorder
}

// GetDurations computes trip durations using the given method.
//
// If the filter does not select all trips, the schedule is restricted to the selected trips before
// anything else is computed. An unknown method falls back to DefaultMethod with a warning.
// Problems with the schedule's data never fail the computation: incomplete rows are left out of
// the result and counted in its Stats.
func GetDurations(s *Schedule, method Method, trips TripFilter, opts *Options) *Durations {
	if opts == nil {
		opts = &Options{}
	}
	start := time.Now()
	result := &Durations{}
	resolved, ok := ParseMethod(string(method))
	if !ok {
		result.addWarning(warnings.UnknownMethod{Method: string(method), Fallback: string(resolved)})
	}
	result.Method = resolved

	s = FilterTrips(s, trips)
	if !s.Canonical() {
		log.Info().Msg("schedule is not canonical; normalizing before computing durations")
		result.addWarning(warnings.NonCanonicalSchedule{})
		s = Normalize(s)
	}
	patterns := opts.ServicePatterns
	if patterns == nil {
		patterns = DeriveServicePatterns(s)
	}
	c := computation{
		schedule: s,
		patterns: indexServicePatterns(patterns),
	}
	switch resolved {
	case Method_ByTrip:
		c.byTrip(opts.Workers, result)
	case Method_Detailed:
		c.detailed(opts.Workers, result)
	default:
		c.byRoute(opts.Workers, result)
	}

	elapsed := time.Since(start)
	log.Debug().
		Str("method", result.Method.String()).
		Int("trips", result.Stats.Trips).
		Int("rows", result.Len()).
		Dur("elapsed", elapsed).
		Msg("computed durations")
	if opts.Recorder != nil {
		opts.Recorder.Record(result, elapsed)
	}
	return result
}

// Len returns the number of rows in the populated table.
func (d *Durations) Len() int {
	switch d.Method {
	case Method_ByTrip:
		return len(d.Trips)
	case Method_Detailed:
		return len(d.Segments)
	default:
		return len(d.Routes)
	}
}

func (d *Durations) addWarning(w warnings.DurationWarning) {
	log.Warn().Msg(w.Error())
	d.Warnings = append(d.Warnings, w)
}

type computation struct {
	schedule *Schedule
	patterns servicePatternIndex
}

// partial is the result of computing one partition of trips.
type partial struct {
	trips    []TripDuration
	segments []SegmentDuration
	groups   map[routeGroupKey]*routeGroup
	stats    Stats
	missing  []warnings.MissingServicePattern
}

func (p *partial) missingPattern(trip *Trip) {
	p.stats.TripsWithoutServicePattern++
	p.missing = append(p.missing, warnings.MissingServicePattern{TripID: trip.ID, ServiceID: trip.ServiceID})
}

type routeGroupKey struct {
	routeID   string
	pattern   string
	frequency int
}

type routeGroup struct {
	sum   int
	count int
}

func (c *computation) tripDurations(trips []Trip) *partial {
	p := &partial{}
	for i := range trips {
		trip := &trips[i]
		p.stats.Trips++
		duration, ok := tripSpan(c.schedule.TripStopTimes(trip.ID))
		if !ok {
			p.stats.TripsWithoutArrivals++
			continue
		}
		patterns, matched := c.patterns.join(trip.ServiceID)
		if !matched {
			p.missingPattern(trip)
		}
		for _, pattern := range patterns {
			p.trips = append(p.trips, TripDuration{
				RouteID:          trip.RouteID,
				TripID:           trip.ID,
				Duration:         duration,
				ServicePattern:   pattern.Pattern,
				PatternFrequency: pattern.Frequency,
			})
		}
	}
	return p
}

func (c *computation) byTrip(workers int, result *Durations) {
	for _, p := range runPartitions(c.schedule.Trips, workers, c.tripDurations) {
		result.Trips = append(result.Trips, p.trips...)
		result.merge(p)
	}
}

// byRoute groups trip durations strictly after the service pattern join, so a trip counts once in
// the group of every pattern of its service. Trips without a pattern form the group with an empty
// pattern and frequency 0, as they do in the by-trip rows. Partitions contribute partial sums and
// counts and the averages are taken once all partitions are merged.
func (c *computation) byRoute(workers int, result *Durations) {
	partials := runPartitions(c.schedule.Trips, workers, func(trips []Trip) *partial {
		p := c.tripDurations(trips)
		p.groups = map[routeGroupKey]*routeGroup{}
		for _, tripDuration := range p.trips {
			key := routeGroupKey{
				routeID:   tripDuration.RouteID,
				pattern:   tripDuration.ServicePattern,
				frequency: tripDuration.PatternFrequency,
			}
			group, ok := p.groups[key]
			if !ok {
				group = &routeGroup{}
				p.groups[key] = group
			}
			group.sum += tripDuration.Duration
			group.count++
		}
		p.trips = nil
		return p
	})
	groups := map[routeGroupKey]*routeGroup{}
	for _, p := range partials {
		for key, partialGroup := range p.groups {
			group, ok := groups[key]
			if !ok {
				group = &routeGroup{}
				groups[key] = group
			}
			group.sum += partialGroup.sum
			group.count += partialGroup.count
		}
		result.merge(p)
	}
	keys := maps.Keys(groups)
	slices.SortFunc(keys, func(a, b routeGroupKey) int {
		return cmp.Or(
			cmp.Compare(a.routeID, b.routeID),
			cmp.Compare(a.pattern, b.pattern),
			cmp.Compare(a.frequency, b.frequency),
		)
	})
	for _, key := range keys {
		group := groups[key]
		result.Routes = append(result.Routes, RouteDuration{
			RouteID:          key.routeID,
			Trips:            group.count,
			AverageDuration:  float64(group.sum) / float64(group.count),
			ServicePattern:   key.pattern,
			PatternFrequency: key.frequency,
		})
	}
}

func (c *computation) segmentDurations(trips []Trip) *partial {
	p := &partial{}
	for i := range trips {
		trip := &trips[i]
		p.stats.Trips++
		segments, incomplete := tripSegments(c.schedule.TripStopTimes(trip.ID))
		p.stats.DroppedSegments += incomplete
		if len(segments) == 0 {
			continue
		}
		patterns, matched := c.patterns.join(trip.ServiceID)
		if !matched || trip.RouteID == "" {
			if !matched {
				p.missingPattern(trip)
			}
			p.stats.DroppedSegments += len(segments)
			continue
		}
		for _, seg := range segments {
			hour, ok := ExtractHour(seg.from.ArrivalTime)
			if !ok || seg.from.StopID == "" || seg.to.StopID == "" {
				p.stats.DroppedSegments++
				continue
			}
			for _, pattern := range patterns {
				p.segments = append(p.segments, SegmentDuration{
					RouteID:          trip.RouteID,
					TripID:           trip.ID,
					ArrivalTime:      FormatTime(seg.arrival),
					Hour:             hour,
					FromStopID:       seg.from.StopID,
					ToStopID:         seg.to.StopID,
					Duration:         seg.duration,
					ServicePattern:   pattern.Pattern,
					PatternFrequency: pattern.Frequency,
				})
			}
		}
	}
	return p
}

func (c *computation) detailed(workers int, result *Durations) {
	for _, p := range runPartitions(c.schedule.Trips, workers, c.segmentDurations) {
		result.Segments = append(result.Segments, p.segments...)
		result.merge(p)
	}
}

func (d *Durations) merge(p *partial) {
	d.Stats.add(p.stats)
	for _, w := range p.missing {
		log.Debug().Str("trip_id", w.TripID).Str("service_id", w.ServiceID).Msg("trip has no service pattern")
		d.Warnings = append(d.Warnings, w)
	}
}

// runPartitions splits the trips into at most workers contiguous partitions and computes them
// concurrently. Results are returned in partition order.
func runPartitions[T any](trips []Trip, workers int, f func([]Trip) T) []T {
	if workers < 2 || len(trips) < 2 {
		return []T{f(trips)}
	}
	if workers > len(trips) {
		workers = len(trips)
	}
	size := (len(trips) + workers - 1) / workers
	var partitions [][]Trip
	for start := 0; start < len(trips); start += size {
		partitions = append(partitions, trips[start:min(start+size, len(trips))])
	}
	results := make([]T, len(partitions))
	p := pool.New().WithMaxGoroutines(workers)
	for i, partition := range partitions {
		p.Go(func() {
			results[i] = f(partition)
		})
	}
	p.Wait()
	return results
}
