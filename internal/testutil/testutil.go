// Package testutil builds in-memory GTFS static feeds for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
)

// ZipBuilder accumulates the files of a zipped GTFS static feed.
type ZipBuilder struct {
	m map[string]string
}

// NewZipBuilder returns a builder containing the required feed files with headers only.
func NewZipBuilder() *ZipBuilder {
	return (&ZipBuilder{m: map[string]string{}}).Add(
		"routes.txt", "route_id,route_type",
	).Add(
		"trips.txt", "route_id,service_id,trip_id",
	).Add(
		"stop_times.txt", "trip_id,stop_id,stop_sequence,arrival_time,departure_time",
	)
}

// NewZipBuilderWithDefaults returns a builder with one weekday route and trip T1 stopping three times.
func NewZipBuilderWithDefaults() *ZipBuilder {
	return NewZipBuilder().Add(
		"routes.txt",
		"route_id,route_type",
		"R1,3",
	).Add(
		"trips.txt",
		"route_id,service_id,trip_id",
		"R1,weekday,T1",
	).Add(
		"stop_times.txt",
		"trip_id,stop_id,stop_sequence,arrival_time,departure_time",
		"T1,S1,1,08:00:00,08:00:00",
		"T1,S2,2,08:10:00,08:10:00",
		"T1,S3,3,08:25:00,08:25:00",
	).Add(
		"calendar.txt",
		"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
		"weekday,1,1,1,1,1,0,0,20240101,20241231",
	)
}

// Add sets the content of a file; the lines are joined with newlines.
func (z *ZipBuilder) Add(fileName string, lines ...string) *ZipBuilder {
	z.m[fileName] = strings.Join(lines, "\n")
	return z
}

// Remove deletes a file from the feed.
func (z *ZipBuilder) Remove(fileName string) *ZipBuilder {
	delete(z.m, fileName)
	return z
}

func (z *ZipBuilder) Build() []byte {
	var b bytes.Buffer
	zipWriter := zip.NewWriter(&b)
	for fileName, fileContent := range z.m {
		fileWriter, err := zipWriter.Create(fileName)
		if err != nil {
			panic(err)
		}
		if _, err := io.Copy(fileWriter, bytes.NewBufferString(fileContent)); err != nil {
			panic(err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		panic(err)
	}
	return b.Bytes()
}
