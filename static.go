// Package gtfs computes trip duration metrics from GTFS static schedules.
package gtfs

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/transitmetrics/gtfs/constants"
	"github.com/transitmetrics/gtfs/csv"
	"github.com/transitmetrics/gtfs/warnings"
)

// ParseStatic parses the content as a zipped GTFS static feed.
//
// Only the tables needed for duration metrics are read. Rows with missing required values are
// skipped and reported in the returned schedule's Warnings. The schedule is not canonical.
func ParseStatic(content []byte) (*Schedule, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	fileNameToFile := map[string]*zip.File{}
	for _, file := range reader.File {
		fileNameToFile[file.Name] = file
	}
	result := &Schedule{}
	var services servicesBuilder
	for _, table := range []struct {
		file     constants.StaticFile
		optional bool
		action   func(file *csv.File)
	}{
		{
			file: constants.RoutesFile,
			action: func(file *csv.File) {
				result.Routes = parseRoutes(file, result)
			},
		},
		{
			file: constants.TripsFile,
			action: func(file *csv.File) {
				result.Trips = parseTrips(file, result)
			},
		},
		{
			file: constants.StopTimesFile,
			action: func(file *csv.File) {
				result.StopTimes = parseStopTimes(file, result)
			},
		},
		{
			file:     constants.CalendarFile,
			optional: true,
			action: func(file *csv.File) {
				services.parseCalendar(file, result)
			},
		},
		{
			file:     constants.CalendarDatesFile,
			optional: true,
			action: func(file *csv.File) {
				services.parseCalendarDates(file, result)
			},
		},
	} {
		zipFile := fileNameToFile[string(table.file)]
		if zipFile == nil {
			if table.optional {
				continue
			}
			return nil, fmt.Errorf("no %q file in GTFS static feed", table.file)
		}
		if err := readCsvFile(zipFile, table.file, table.action); err != nil {
			return nil, err
		}
	}
	result.Services = services.build()
	log.Debug().
		Int("routes", len(result.Routes)).
		Int("trips", len(result.Trips)).
		Int("stop_times", len(result.StopTimes)).
		Int("services", len(result.Services)).
		Int("warnings", len(result.Warnings)).
		Msg("parsed GTFS static feed")
	return result, nil
}

func readCsvFile(zipFile *zip.File, name constants.StaticFile, action func(*csv.File)) error {
	content, err := zipFile.Open()
	if err != nil {
		return err
	}
	f, err := csv.New(name, content)
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", name, err)
	}
	action(f)
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to parse %q: %w", name, err)
	}
	return nil
}

func (s *Schedule) addWarning(w warnings.StaticWarning) {
	log.Debug().Str("file", string(w.File())).Msg(w.Error())
	s.Warnings = append(s.Warnings, w)
}

func checkRequiredColumns(file *csv.File, s *Schedule) {
	if missing := file.MissingRequiredColumns(); missing != nil {
		s.addWarning(warnings.MissingColumns{StaticFile: file.Name(), Columns: missing})
	}
}

func skipRow(file *csv.File, entity constants.ScheduleEntity, s *Schedule) bool {
	missingKeys := file.MissingRowKeys()
	if len(missingKeys) == 0 {
		return false
	}
	s.addWarning(warnings.RowMissingKeys{
		StaticFile:  file.Name(),
		Entity:      entity,
		RowNumber:   file.RowNumber(),
		MissingKeys: missingKeys,
	})
	return true
}

func parseRoutes(file *csv.File, s *Schedule) []Route {
	idColumn := file.RequiredColumn("route_id")
	agencyIDColumn := file.OptionalColumn("agency_id")
	shortNameColumn := file.OptionalColumn("route_short_name")
	longNameColumn := file.OptionalColumn("route_long_name")
	typeColumn := file.RequiredColumn("route_type")
	checkRequiredColumns(file, s)

	var routes []Route
	for file.NextRow() {
		route := Route{
			ID:        idColumn.Read(),
			AgencyID:  agencyIDColumn.Read(),
			ShortName: shortNameColumn.Read(),
			LongName:  longNameColumn.Read(),
			Type:      parseRouteType(typeColumn.Read()),
		}
		if skipRow(file, constants.Route, s) {
			continue
		}
		routes = append(routes, route)
	}
	return routes
}

func parseTrips(file *csv.File, s *Schedule) []Trip {
	idColumn := file.RequiredColumn("trip_id")
	routeIDColumn := file.RequiredColumn("route_id")
	serviceIDColumn := file.RequiredColumn("service_id")
	directionIDColumn := file.OptionalColumn("direction_id")
	headsignColumn := file.OptionalColumn("trip_headsign")
	checkRequiredColumns(file, s)

	var trips []Trip
	for file.NextRow() {
		trip := Trip{
			ID:          idColumn.Read(),
			RouteID:     routeIDColumn.Read(),
			ServiceID:   serviceIDColumn.Read(),
			DirectionID: parseDirectionID(directionIDColumn.Read()),
			Headsign:    headsignColumn.Read(),
		}
		if skipRow(file, constants.Trip, s) {
			continue
		}
		trips = append(trips, trip)
	}
	return trips
}

func parseStopTimes(file *csv.File, s *Schedule) []StopTime {
	tripIDColumn := file.RequiredColumn("trip_id")
	stopIDColumn := file.RequiredColumn("stop_id")
	stopSequenceColumn := file.RequiredColumn("stop_sequence")
	arrivalTimeColumn := file.OptionalColumn("arrival_time")
	departureTimeColumn := file.OptionalColumn("departure_time")
	checkRequiredColumns(file, s)

	var stopTimes []StopTime
	for file.NextRow() {
		stopTime := StopTime{
			TripID:        tripIDColumn.Read(),
			StopID:        stopIDColumn.Read(),
			StopSequence:  stopSequenceColumn.ReadInt(),
			ArrivalTime:   arrivalTimeColumn.Read(),
			DepartureTime: departureTimeColumn.Read(),
		}
		if skipRow(file, constants.StopTime, s) {
			continue
		}
		stopTimes = append(stopTimes, stopTime)
	}
	return stopTimes
}

// servicesBuilder merges calendar.txt and calendar_dates.txt rows by service ID.
type servicesBuilder struct {
	services []*Service
	byID     map[string]*Service
}

func (b *servicesBuilder) get(serviceID string) *Service {
	if b.byID == nil {
		b.byID = map[string]*Service{}
	}
	service, ok := b.byID[serviceID]
	if !ok {
		service = &Service{ID: serviceID}
		b.byID[serviceID] = service
		b.services = append(b.services, service)
	}
	return service
}

func (b *servicesBuilder) build() []Service {
	var services []Service
	for _, service := range b.services {
		services = append(services, *service)
	}
	return services
}

func (b *servicesBuilder) parseCalendar(file *csv.File, s *Schedule) {
	idColumn := file.RequiredColumn("service_id")
	var dayColumns [7]csv.RequiredColumn
	for i, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		dayColumns[i] = file.RequiredColumn(day)
	}
	startDateColumn := file.RequiredColumn("start_date")
	endDateColumn := file.RequiredColumn("end_date")
	checkRequiredColumns(file, s)

	for file.NextRow() {
		serviceID := idColumn.Read()
		var days [7]bool
		for i := range dayColumns {
			days[i] = dayColumns[i].Read() == "1"
		}
		rawStartDate := startDateColumn.Read()
		rawEndDate := endDateColumn.Read()
		if skipRow(file, constants.Service, s) {
			continue
		}
		startDate, startOk := parseDate(rawStartDate)
		endDate, endOk := parseDate(rawEndDate)
		if !startOk || !endOk {
			value := rawStartDate
			if startOk {
				value = rawEndDate
			}
			s.addWarning(warnings.InvalidDate{StaticFile: file.Name(), ServiceID: serviceID, Value: value})
			continue
		}
		service := b.get(serviceID)
		service.Monday, service.Tuesday, service.Wednesday, service.Thursday = days[0], days[1], days[2], days[3]
		service.Friday, service.Saturday, service.Sunday = days[4], days[5], days[6]
		service.StartDate = startDate
		service.EndDate = endDate
	}
}

func (b *servicesBuilder) parseCalendarDates(file *csv.File, s *Schedule) {
	idColumn := file.RequiredColumn("service_id")
	dateColumn := file.RequiredColumn("date")
	exceptionTypeColumn := file.RequiredColumn("exception_type")
	checkRequiredColumns(file, s)

	for file.NextRow() {
		serviceID := idColumn.Read()
		rawDate := dateColumn.Read()
		exceptionType := exceptionTypeColumn.Read()
		if skipRow(file, constants.ServiceDate, s) {
			continue
		}
		date, ok := parseDate(rawDate)
		if !ok {
			s.addWarning(warnings.InvalidDate{StaticFile: file.Name(), ServiceID: serviceID, Value: rawDate})
			continue
		}
		service := b.get(serviceID)
		switch exceptionType {
		case "1":
			service.AddedDates = append(service.AddedDates, date)
		case "2":
			service.RemovedDates = append(service.RemovedDates, date)
		}
	}
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
