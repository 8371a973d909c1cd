package builtin

import (
	"math"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// scaledTransport 行程时长 = |to-from| * scale
type scaledTransport struct {
	scale float64
}

func (t scaledTransport) Duration(_ *model.Route, from, to model.Location, _ model.TravelTime) model.Duration {
	return math.Abs(float64(to-from)) * t.scale
}

func (t scaledTransport) Distance(_ *model.Route, from, to model.Location, _ model.TravelTime) model.Distance {
	return math.Abs(float64(to - from))
}

func testVehicle() *model.Vehicle {
	return model.NewVehicle("v1", 0, nil, model.NewTimeWindow(0, 10000), nil)
}

func testSingle(location model.Location, demand model.Demand) *model.Single {
	s := model.NewSingle([]model.Place{{Location: location}}, nil)
	model.JobDemandKey.Set(s.Attributes(), demand)
	return s
}

func activityOf(s *model.Single, arrival, departure model.Timestamp) *model.Activity {
	a := model.NewJobActivities(s)[0]
	a.Schedule = model.Schedule{Arrival: arrival, Departure: departure}
	return a
}

// testRoute 按给定顺序把活动追加到车辆路线
func testRoute(vehicle *model.Vehicle, jobs *model.Jobs, activities ...*model.Activity) *model.RouteContext {
	rc := model.NewRouteContext(model.NewActor(vehicle, model.NewDriver("d1")))
	for _, a := range activities {
		rc.Route().Tour.InsertLast(a, jobs.Root(a.Job))
	}
	return rc
}

func activityMove(solution *model.SolutionContext, rc *model.RouteContext, index int, target *model.Activity) *feature.MoveContext {
	actx := feature.NewActivityContext(rc.Route().Tour, index, target)
	return feature.NewActivityMove(solution, rc, actx)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
