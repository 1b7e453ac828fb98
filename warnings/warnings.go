// Package warnings contains the non-fatal problems reported while reading a schedule or computing durations.
package warnings

import (
	"fmt"

	"github.com/transitmetrics/gtfs/constants"
)

type StaticWarning interface {
	File() constants.StaticFile
	Error() string
}

type MissingColumns struct {
	StaticFile constants.StaticFile
	Columns    []string
}

func (w MissingColumns) File() constants.StaticFile {
	return w.StaticFile
}

func (w MissingColumns) Error() string {
	return fmt.Sprintf("%s is missing required columns %s", w.StaticFile, w.Columns)
}

type RowMissingKeys struct {
	StaticFile  constants.StaticFile
	Entity      constants.ScheduleEntity
	RowNumber   int
	MissingKeys []string
}

func (w RowMissingKeys) File() constants.StaticFile {
	return w.StaticFile
}

func (w RowMissingKeys) Error() string {
	return fmt.Sprintf("skipping %s on row %d because of missing keys %s", w.Entity, w.RowNumber, w.MissingKeys)
}

type InvalidDate struct {
	StaticFile constants.StaticFile
	ServiceID  string
	Value      string
}

func (w InvalidDate) File() constants.StaticFile {
	return w.StaticFile
}

func (w InvalidDate) Error() string {
	return fmt.Sprintf("service %q has invalid date %q", w.ServiceID, w.Value)
}

// DurationWarning is reported by the duration engine. None of them abort a computation.
type DurationWarning interface {
	error
	isDurationWarning()
}

type UnknownMethod struct {
	Method   string
	Fallback string
}

func (w UnknownMethod) Error() string {
	return fmt.Sprintf("unknown duration method %q; using %q", w.Method, w.Fallback)
}

func (UnknownMethod) isDurationWarning() {}

type NonCanonicalSchedule struct{}

func (w NonCanonicalSchedule) Error() string {
	return "schedule is not canonical; it was normalized before computing durations"
}

func (NonCanonicalSchedule) isDurationWarning() {}

type MissingServicePattern struct {
	TripID    string
	ServiceID string
}

func (w MissingServicePattern) Error() string {
	return fmt.Sprintf("trip %q has no service pattern for service %q", w.TripID, w.ServiceID)
}

func (MissingServicePattern) isDurationWarning() {}
