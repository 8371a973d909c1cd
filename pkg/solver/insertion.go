package solver

import (
	"math"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// Placement 单个活动的插入位置
type Placement struct {
	Activity *model.Activity
	Leg      int // 插入到 tour[Leg] 与 tour[Leg+1] 之间
}

// Insertion 任务在某条路线上的最优插入方案
type Insertion struct {
	RouteIndex int
	Placements []Placement
	Cost       model.Cost
}

// routeResult 单条路线的评估结果
type routeResult struct {
	insertion *Insertion
	code      model.ViolationCode
	violated  bool
}

// evaluator 在单条路线上为任务寻找最优插入位置
type evaluator struct {
	manager   *feature.Manager
	transport model.TransportCost
	solution  *model.SolutionContext
}

// evaluateRoute 评估任务插入到指定路线的最优方案
func (e *evaluator) evaluateRoute(routeIndex int, job model.Job) routeResult {
	rc := e.solution.Routes[routeIndex]

	if v := e.manager.Evaluate(feature.NewRouteMove(e.solution, rc, job)); v != nil {
		return routeResult{code: v.Code, violated: true}
	}
	routeCost := e.manager.Estimate(feature.NewRouteMove(e.solution, rc, job))

	var result routeResult
	switch j := job.(type) {
	case *model.Single:
		placement, cost, v := e.bestPlacement(rc, j, 0)
		if placement == nil {
			if v != nil {
				result.code, result.violated = v.Code, true
			}
			return result
		}
		result.insertion = &Insertion{
			RouteIndex: routeIndex,
			Placements: []Placement{*placement},
			Cost:       routeCost + cost,
		}
	case *model.Multi:
		for _, perm := range j.Permutations() {
			if !j.Validate(perm) {
				continue
			}
			placements, cost, v := e.multiPlacements(rc, j, perm)
			if placements == nil {
				if v != nil {
					result.code, result.violated = v.Code, true
				}
				continue
			}
			if result.insertion == nil || routeCost+cost < result.insertion.Cost {
				result.insertion = &Insertion{
					RouteIndex: routeIndex,
					Placements: placements,
					Cost:       routeCost + cost,
				}
			}
		}
	}
	return result
}

// multiPlacements 按给定顺序依次插入子任务，后一个子任务只能位于前一个之后
func (e *evaluator) multiPlacements(rc *model.RouteContext, m *model.Multi, perm []int) ([]Placement, model.Cost, *feature.Violation) {
	work := rc.Clone()
	placements := make([]Placement, 0, len(perm))
	var total model.Cost
	minLeg := 0

	for _, idx := range perm {
		placement, cost, v := e.bestPlacement(work, m.Jobs[idx], minLeg)
		if placement == nil {
			return nil, 0, v
		}

		placements = append(placements, *placement)
		total += cost

		applied := placement.Activity.Clone()
		work.Route().Tour.InsertAt(applied, m, placement.Leg+1)
		UpdateSchedule(work.Route(), e.transport)
		minLeg = placement.Leg + 1
	}
	return placements, total, nil
}

// bestPlacement 在路线的全部路段中为 Single 选择成本最低的位置
// 返回 nil 表示没有可行位置，此时附带最后一次违反
func (e *evaluator) bestPlacement(rc *model.RouteContext, s *model.Single, minLeg int) (*Placement, model.Cost, *feature.Violation) {
	tour := rc.Route().Tour
	lastLeg := tour.Total() - 1
	if tour.HasEnd() {
		lastLeg--
	}

	var (
		best     *Placement
		bestCost = math.Inf(1)
		last     *feature.Violation
	)

scan:
	for _, candidate := range model.NewJobActivities(s) {
		for leg := minLeg; leg <= lastLeg; leg++ {
			actx := feature.NewActivityContext(tour, leg, candidate)
			move := feature.NewActivityMove(e.solution, rc, actx)

			if v := e.manager.Evaluate(move); v != nil {
				last = v
				if v.Stopped {
					break scan
				}
				continue
			}

			arrival, ok := e.simulate(rc.Route(), leg, candidate)
			if !ok {
				continue
			}

			cost := e.detour(rc.Route(), actx) + e.manager.Estimate(move)
			if cost < bestCost {
				placed := candidate.Clone()
				placed.Schedule.Arrival = arrival
				best = &Placement{Activity: placed, Leg: leg}
				bestCost = cost
			}
		}
	}

	if best == nil {
		return nil, 0, last
	}
	return best, bestCost, nil
}

// detour 插入带来的额外行驶时长
func (e *evaluator) detour(route *model.Route, actx *feature.ActivityContext) model.Cost {
	prev, target, next := actx.Prev, actx.Target, actx.Next
	basis := model.DepartureAt(prev.Schedule.Departure)

	cost := e.transport.Duration(route, prev.Place.Location, target.Place.Location, basis)
	if next != nil {
		cost += e.transport.Duration(route, target.Place.Location, next.Place.Location, basis)
		cost -= e.transport.Duration(route, prev.Place.Location, next.Place.Location, basis)
	}
	return cost
}

// simulate 推算插入后的时刻表，检查所有后续活动的时间窗
func (e *evaluator) simulate(route *model.Route, leg int, target *model.Activity) (model.Timestamp, bool) {
	activities := route.Tour.All()
	shiftEnd := route.Actor.Vehicle.Shift.End

	prev := activities[leg]
	departure := prev.Schedule.Departure
	location := prev.Place.Location

	var targetArrival model.Timestamp
	step := func(a *model.Activity) bool {
		arrival := departure + e.transport.Duration(route, location, a.Place.Location, model.DepartureAt(departure))
		if arrival > a.Place.Time.End || arrival > shiftEnd {
			return false
		}
		departure = math.Max(arrival, a.Place.Time.Start) + a.Place.Duration
		location = a.Place.Location
		if a == target {
			targetArrival = arrival
		}
		return true
	}

	if !step(target) {
		return 0, false
	}
	for i := leg + 1; i < len(activities); i++ {
		if !step(activities[i]) {
			return 0, false
		}
	}
	return targetArrival, true
}
