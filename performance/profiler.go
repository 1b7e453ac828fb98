package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/transitmetrics/gtfs"
)

var out = flag.String("out", "gtfsdurations_profile.pb.gz", "file path to output the profile to")
var method = flag.String("method", string(gtfs.Method_Detailed), "duration method to profile")
var workers = flag.Int("workers", 1, "number of trip partitions computed concurrently")

func main() {
	if err := run(); err != nil {
		fmt.Println("failed:", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	gtfsFiles := flag.Args()
	var schedules []*gtfs.Schedule
	for _, gtfsFile := range gtfsFiles {
		b, err := os.ReadFile(gtfsFile)
		if err != nil {
			return err
		}
		schedule, err := gtfs.ParseStatic(b)
		if err != nil {
			return err
		}
		schedules = append(schedules, schedule)
	}

	fmt.Println("starting profile")
	var profile bytes.Buffer
	if err := pprof.StartCPUProfile(&profile); err != nil {
		return err
	}
	for i, schedule := range schedules {
		fmt.Printf("computing durations for file %d/%d\n", i+1, len(schedules))
		durations := gtfs.GetDurations(schedule, gtfs.Method(*method), gtfs.AllTrips(), &gtfs.Options{Workers: *workers})
		fmt.Printf("%d rows\n", durations.Len())
	}
	pprof.StopCPUProfile()

	fmt.Println("writing profile to", *out)
	return os.WriteFile(*out, profile.Bytes(), 0644)
}
