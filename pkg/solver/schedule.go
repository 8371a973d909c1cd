package solver

import (
	"math"

	"github.com/paiban/vrpcore/pkg/model"
)

// UpdateSchedule 沿路线重新推算每个活动的到达/离开时刻
func UpdateSchedule(route *model.Route, transport model.TransportCost) {
	activities := route.Tour.All()
	if len(activities) == 0 {
		return
	}

	start := activities[0]
	departure := math.Max(route.Actor.Vehicle.Shift.Start, start.Place.Time.Start)
	start.Schedule = model.Schedule{Arrival: departure, Departure: departure}

	for i := 1; i < len(activities); i++ {
		prev, a := activities[i-1], activities[i]
		arrival := prev.Schedule.Departure +
			transport.Duration(route, prev.Place.Location, a.Place.Location, model.DepartureAt(prev.Schedule.Departure))
		a.Schedule = model.Schedule{
			Arrival:   arrival,
			Departure: math.Max(arrival, a.Place.Time.Start) + a.Place.Duration,
		}
	}
}

// IsScheduleFeasible 检查路线上每个活动都在时间窗内到达，且不晚于车辆班次结束
func IsScheduleFeasible(route *model.Route) bool {
	shiftEnd := route.Actor.Vehicle.Shift.End
	for _, a := range route.Tour.All() {
		if a.Schedule.Arrival > a.Place.Time.End || a.Schedule.Arrival > shiftEnd {
			return false
		}
	}
	return true
}
