package gtfs

// Method selects how GetDurations aggregates trip durations.
type Method string

const (
	// Method_ByRoute averages trip durations per route and service pattern.
	Method_ByRoute Method = "by.route"
	// Method_ByTrip reports one duration per trip and service pattern.
	Method_ByTrip Method = "by.trip"
	// Method_Detailed reports one duration per stop-to-stop segment.
	Method_Detailed Method = "detailed"

	DefaultMethod = Method_ByRoute
)

// ParseMethod returns the method with the given name. The second return value is false
// if the name is not one of the known methods, in which case DefaultMethod is returned.
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case Method_ByRoute, Method_ByTrip, Method_Detailed:
		return Method(s), true
	default:
		return DefaultMethod, false
	}
}

func (m Method) String() string {
	return string(m)
}

// RouteType describes the type of transportation used on a route.
//
// This is a Go representation of the enum described in the `route_type` field of `routes.txt`.
type RouteType int32

const (
	RouteType_Tram       RouteType = 0
	RouteType_Subway     RouteType = 1
	RouteType_Rail       RouteType = 2
	RouteType_Bus        RouteType = 3
	RouteType_Ferry      RouteType = 4
	RouteType_CableTram  RouteType = 5
	RouteType_AerialLift RouteType = 6
	RouteType_Funicular  RouteType = 7
	RouteType_TrolleyBus RouteType = 11
	RouteType_Monorail   RouteType = 12

	RouteType_Unknown RouteType = 10000
)

func parseRouteType(s string) RouteType {
	switch s {
	case "0":
		return RouteType_Tram
	case "1":
		return RouteType_Subway
	case "2":
		return RouteType_Rail
	case "3":
		return RouteType_Bus
	case "4":
		return RouteType_Ferry
	case "5":
		return RouteType_CableTram
	case "6":
		return RouteType_AerialLift
	case "7":
		return RouteType_Funicular
	case "11":
		return RouteType_TrolleyBus
	case "12":
		return RouteType_Monorail
	default:
		return RouteType_Unknown
	}
}

// DirectionID is a mechanism for distinguishing between trips going in the opposite direction.
type DirectionID uint8

const (
	DirectionID_Unspecified DirectionID = 0
	DirectionID_True        DirectionID = 1
	DirectionID_False       DirectionID = 2
)

func parseDirectionID(s string) DirectionID {
	switch s {
	case "0":
		return DirectionID_False
	case "1":
		return DirectionID_True
	default:
		return DirectionID_Unspecified
	}
}
