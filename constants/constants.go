package constants

type StaticFile string

const (
	RoutesFile        StaticFile = "routes.txt"
	TripsFile         StaticFile = "trips.txt"
	StopTimesFile     StaticFile = "stop_times.txt"
	CalendarFile      StaticFile = "calendar.txt"
	CalendarDatesFile StaticFile = "calendar_dates.txt"
)

// ScheduleEntity names the kind of record a warning or log line refers to.
type ScheduleEntity string

const (
	Route       ScheduleEntity = "route"
	Trip        ScheduleEntity = "trip"
	StopTime    ScheduleEntity = "stop_time"
	Service     ScheduleEntity = "service"
	ServiceDate ScheduleEntity = "service_date"
)
