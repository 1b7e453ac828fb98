package gtfs

// qualifyingStopTimes returns the stop times whose arrival time parses, in order, together with the
// parsed arrivals. Empty and malformed arrivals are excluded here and nowhere else.
func qualifyingStopTimes(stopTimes []StopTime) ([]StopTime, []int) {
	var qualifying []StopTime
	var arrivals []int
	for _, stopTime := range stopTimes {
		arrival, ok := ParseTime(stopTime.ArrivalTime)
		if !ok {
			continue
		}
		qualifying = append(qualifying, stopTime)
		arrivals = append(arrivals, arrival)
	}
	return qualifying, arrivals
}

// tripSpan returns the time between the first and last qualifying arrival of a trip.
//
// Stop times must be ordered by stop sequence. A trip with a single qualifying stop has a span of
// zero; a trip with none has no span.
func tripSpan(stopTimes []StopTime) (int, bool) {
	_, arrivals := qualifyingStopTimes(stopTimes)
	if len(arrivals) == 0 {
		return 0, false
	}
	return arrivals[len(arrivals)-1] - arrivals[0], true
}

type segment struct {
	from, to StopTime
	// Seconds after midnight at which the vehicle arrives at the destination.
	arrival int
	// Destination arrival minus origin departure.
	duration int
}

// tripSegments returns the complete stop-to-stop segments of a trip.
//
// Stop times must be ordered by stop sequence. Stop times with an empty arrival are dropped first,
// then each remaining stop time is paired with its successor; the trailing stop time has none and
// produces nothing. A pair whose origin departure or destination arrival does not parse is
// incomplete and is counted in the second return value rather than emitted.
func tripSegments(stopTimes []StopTime) ([]segment, int) {
	var withArrival []StopTime
	for _, stopTime := range stopTimes {
		if stopTime.ArrivalTime != "" {
			withArrival = append(withArrival, stopTime)
		}
	}
	var segments []segment
	incomplete := 0
	for i := 0; i+1 < len(withArrival); i++ {
		from, to := withArrival[i], withArrival[i+1]
		departure, departureOk := ParseTime(from.DepartureTime)
		arrival, arrivalOk := ParseTime(to.ArrivalTime)
		if !departureOk || !arrivalOk {
			incomplete++
			continue
		}
		segments = append(segments, segment{
			from:     from,
			to:       to,
			arrival:  arrival,
			duration: arrival - departure,
		})
	}
	return segments, incomplete
}
