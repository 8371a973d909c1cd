package solver

import (
	"math"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// lineTransport 行程时长 = |to-from| * scale
type lineTransport struct {
	scale float64
}

func (t lineTransport) Duration(_ *model.Route, from, to model.Location, _ model.TravelTime) model.Duration {
	return math.Abs(float64(to-from)) * t.scale
}

func (t lineTransport) Distance(_ *model.Route, from, to model.Location, _ model.TravelTime) model.Distance {
	return math.Abs(float64(to - from))
}

func newActor(id string, shiftEnd model.Timestamp) *model.Actor {
	vehicle := model.NewVehicle(id, 0, nil, model.NewTimeWindow(0, shiftEnd), nil)
	return model.NewActor(vehicle, model.NewDriver("d-"+id))
}

func newSingle(id string, location model.Location, duration model.Duration, tw model.TimeWindow, demand model.Demand) *model.Single {
	s := model.NewSingle([]model.Place{{Location: location, Duration: duration, Times: []model.TimeWindow{tw}}}, nil)
	model.JobIDKey.Set(s.Attributes(), id)
	model.JobDemandKey.Set(s.Attributes(), demand)
	return s
}

func newPickupDelivery(id string, from, to model.Location) *model.Multi {
	pickup := newSingle(id+"-p", from, 0, model.MaxTimeWindow(), model.PickupDemand(1))
	delivery := newSingle(id+"-d", to, 0, model.MaxTimeWindow(), model.DeliveryDemand(1))
	m := model.NewMulti([]*model.Single{pickup, delivery}, nil)
	model.JobIDKey.Set(m.Attributes(), id)
	return m
}

func locations(rc *model.RouteContext) []model.Location {
	var out []model.Location
	for _, a := range rc.Route().Tour.All() {
		out = append(out, a.Place.Location)
	}
	return out
}

func equalLocations(a, b []model.Location) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countingState 统计状态钩子调用次数
type countingState struct {
	insertions int
	routes     int
	solutions  int
}

func (s *countingState) AcceptInsertion(*model.SolutionContext, int, model.Job) { s.insertions++ }
func (s *countingState) AcceptRouteState(*model.RouteContext)                   { s.routes++ }
func (s *countingState) AcceptSolutionState(*model.SolutionContext)             { s.solutions++ }

// constObjective 固定的方案成本
type constObjective struct {
	cost model.Cost
}

func (o constObjective) Fitness(*model.SolutionContext) model.Cost { return o.cost }
func (o constObjective) Estimate(*feature.MoveContext) model.Cost  { return 0 }
