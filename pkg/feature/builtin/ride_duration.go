package builtin

import (
	"math"
	"sync/atomic"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// RideDurationFeatureName 最大乘车时长特性默认名称
const RideDurationFeatureName = "max_ride_duration"

// MaxRideDurationKey 取件离开到送件到达的最大时长（秒），可设在 Single 或其 Multi 上
var MaxRideDurationKey = model.NewKey[model.Duration]("job_max_ride_duration")

// NewMaxRideDurationFeature 创建最大乘车时长硬约束
func NewMaxRideDurationFeature(name string, code feature.ViolationCode, transport model.TransportCost) (*feature.Feature, error) {
	if transport == nil {
		return nil, apperrors.MissingCapability(name, "transport")
	}
	return feature.NewBuilder().
		WithName(name).
		WithConstraint(&rideDurationConstraint{name: name, code: code, transport: transport}).
		Build()
}

type rideDurationConstraint struct {
	name      string
	code      feature.ViolationCode
	transport model.TransportCost
	jobs      atomic.Pointer[model.Jobs]
}

// BindJobs 绑定任务索引，合并时据此查找 Single 所属的 Multi
func (c *rideDurationConstraint) BindJobs(jobs *model.Jobs) {
	c.jobs.Store(jobs)
}

func (c *rideDurationConstraint) Evaluate(move *feature.MoveContext) *feature.Violation {
	if !move.IsActivity() {
		return nil
	}

	target := move.Activity.Target
	if target == nil || target.Job == nil {
		return nil
	}

	bound, ok := singleAttr(MaxRideDurationKey, move.Jobs(), target.Job)
	if !ok {
		return nil
	}

	switch {
	case isPickup(target):
		return c.checkPickup(move, bound)
	case isDelivery(target):
		return c.checkDelivery(move, bound)
	}
	return nil
}

// Merge 源任务、其子任务或所属 Multi 带最大乘车时长时拒绝合并
func (c *rideDurationConstraint) Merge(source, _ model.Job) (model.Job, error) {
	if inheritedBy(MaxRideDurationKey, c.jobs.Load(), source) {
		return nil, &feature.MergeRefusedError{Feature: c.name, Code: c.code}
	}
	return source, nil
}

// checkPickup 插入取件后，重新推算路线中已有送件的到达时刻
func (c *rideDurationConstraint) checkPickup(move *feature.MoveContext, bound model.Duration) *feature.Violation {
	actx := move.Activity
	route := move.Route.Route()
	activities := route.Tour.All()

	pickupDeparture := c.departure(route, actx)
	departure := pickupDeparture
	location := actx.Target.Place.Location

	for i := actx.Index + 1; i < len(activities); i++ {
		a := activities[i]
		arrival := departure + c.transport.Duration(route, location, a.Place.Location, model.DepartureAt(departure))

		if a.Job != nil && actx.Target.Job.SameParent(a.Job) && isDelivery(a) {
			if arrival-pickupDeparture > bound {
				return c.violation()
			}
			return nil
		}

		departure = math.Max(arrival, a.Place.Time.Start) + a.Place.Duration
		location = a.Place.Location
	}
	return nil
}

// checkDelivery 向前查找已固定的取件，用其离开时刻计算乘车时长
func (c *rideDurationConstraint) checkDelivery(move *feature.MoveContext, bound model.Duration) *feature.Violation {
	actx := move.Activity
	route := move.Route.Route()

	for i := actx.Index; i >= 0; i-- {
		a := route.Tour.MustGet(i)
		if a.Job == nil || !actx.Target.Job.SameParent(a.Job) || !isPickup(a) {
			continue
		}
		if c.arrival(route, actx)-a.Schedule.Departure > bound {
			return c.violation()
		}
		return nil
	}
	return nil
}

func (c *rideDurationConstraint) arrival(route *model.Route, actx *feature.ActivityContext) model.Timestamp {
	prev := actx.Prev
	return prev.Schedule.Departure +
		c.transport.Duration(route, prev.Place.Location, actx.Target.Place.Location, model.DepartureAt(prev.Schedule.Departure))
}

func (c *rideDurationConstraint) departure(route *model.Route, actx *feature.ActivityContext) model.Timestamp {
	target := actx.Target
	return math.Max(c.arrival(route, actx), target.Place.Time.Start) + target.Place.Duration
}

func (c *rideDurationConstraint) violation() *feature.Violation {
	return &feature.Violation{Code: c.code, Stopped: false}
}
