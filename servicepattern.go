package gtfs

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// ServicePattern associates a service ID with the weekdays on which it runs.
//
// Pattern is a Monday-first bitstring, for example "1111100" for weekday-only service.
// Frequency is the number of trips whose service runs on this exact pattern. A service ID may have
// more than one pattern.
type ServicePattern struct {
	ServiceID string `csv:"service_id"`
	Pattern   string `csv:"service_pattern"`
	Frequency int    `csv:"pattern_frequency"`
}

// DeriveServicePatterns computes the service patterns of a schedule.
//
// A service gets one pattern from its calendar.txt weekday flags and, if its calendar_dates.txt
// additions fall on a different set of weekdays, a second pattern from those weekdays. Removed dates
// do not change a pattern. Services that never run have no pattern.
func DeriveServicePatterns(s *Schedule) []ServicePattern {
	serviceIDToPatterns := map[string][]string{}
	for i := range s.Services {
		service := &s.Services[i]
		var patterns []string
		if !service.StartDate.IsZero() {
			if p := calendarPattern(service); p != noServicePattern {
				patterns = append(patterns, p)
			}
		}
		if len(service.AddedDates) > 0 {
			p := datesPattern(service.AddedDates)
			if len(patterns) == 0 || patterns[0] != p {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			log.Debug().Str("service_id", service.ID).Msg("service never runs; no service pattern")
			continue
		}
		serviceIDToPatterns[service.ID] = patterns
	}
	patternToNumTrips := map[string]int{}
	for _, trip := range s.Trips {
		for _, p := range serviceIDToPatterns[trip.ServiceID] {
			patternToNumTrips[p]++
		}
	}
	var result []ServicePattern
	for _, service := range s.Services {
		for _, p := range serviceIDToPatterns[service.ID] {
			result = append(result, ServicePattern{
				ServiceID: service.ID,
				Pattern:   p,
				Frequency: patternToNumTrips[p],
			})
		}
	}
	return result
}

const noServicePattern = "0000000"

func calendarPattern(service *Service) string {
	return weekdayPattern([7]bool{
		service.Monday,
		service.Tuesday,
		service.Wednesday,
		service.Thursday,
		service.Friday,
		service.Saturday,
		service.Sunday,
	})
}

func datesPattern(dates []time.Time) string {
	var days [7]bool
	for _, date := range dates {
		// time.Weekday starts on Sunday.
		days[(int(date.Weekday())+6)%7] = true
	}
	return weekdayPattern(days)
}

func weekdayPattern(days [7]bool) string {
	b := []byte(noServicePattern)
	for i, runs := range days {
		if runs {
			b[i] = '1'
		}
	}
	return string(b)
}

// ReadServicePatterns reads a precomputed service pattern table in CSV form with the columns
// service_id, service_pattern and pattern_frequency.
func ReadServicePatterns(r io.Reader) ([]ServicePattern, error) {
	var rows []ServicePattern
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read service patterns: %w", err)
	}
	var result []ServicePattern
	for _, row := range rows {
		if row.ServiceID == "" || row.Pattern == "" {
			log.Warn().Str("service_id", row.ServiceID).Msg("skipping incomplete service pattern row")
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

// WriteServicePatterns writes service patterns in the form read by ReadServicePatterns.
func WriteServicePatterns(w io.Writer, patterns []ServicePattern) error {
	if patterns == nil {
		patterns = []ServicePattern{}
	}
	return gocsv.Marshal(patterns, w)
}

// servicePatternIndex is the lookup side of the join between duration rows and service patterns.
//
// The join is many-to-many: a row is replicated once for every pattern of its service.
type servicePatternIndex map[string][]ServicePattern

func indexServicePatterns(patterns []ServicePattern) servicePatternIndex {
	idx := servicePatternIndex{}
	for _, p := range patterns {
		idx[p.ServiceID] = append(idx[p.ServiceID], p)
	}
	return idx
}

// join returns the patterns of the service. The second return value is false if there are none,
// in which case a single zero pattern is returned so that a left join keeps the row.
func (idx servicePatternIndex) join(serviceID string) ([]ServicePattern, bool) {
	patterns := idx[serviceID]
	if len(patterns) == 0 {
		return []ServicePattern{{ServiceID: serviceID}}, false
	}
	return patterns, true
}
