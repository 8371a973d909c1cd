package builtin

import (
	"math"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// RequestedTimeFeatureName 期望到达时间特性默认名称
const RequestedTimeFeatureName = "requested_time"

// RequestedTimes 地点下标到期望到达时刻的映射
type RequestedTimes map[int]model.Timestamp

// RequestedTimesKey 任务各地点的期望到达时刻
var RequestedTimesKey = model.NewKey[RequestedTimes]("job_requested_times")

// RequestedTimePenalty 偏离期望到达时刻的惩罚（每秒）
type RequestedTimePenalty struct {
	EarlyPerSecond model.Cost
	LatePerSecond  model.Cost
}

// NewRequestedTimePenalty 按每分钟费率创建惩罚配置
func NewRequestedTimePenalty(earlyPerMinute, latePerMinute model.Cost) RequestedTimePenalty {
	return RequestedTimePenalty{
		EarlyPerSecond: earlyPerMinute / 60,
		LatePerSecond:  latePerMinute / 60,
	}
}

// DefaultRequestedTimePenalty 默认每分钟 1.0
func DefaultRequestedTimePenalty() RequestedTimePenalty {
	return NewRequestedTimePenalty(1, 1)
}

// Penalty 计算到达时刻相对期望时刻的惩罚
func (p RequestedTimePenalty) Penalty(arrival, requested model.Timestamp) model.Cost {
	if arrival < requested {
		return (requested - arrival) * p.EarlyPerSecond
	}
	return (arrival - requested) * p.LatePerSecond
}

func (p RequestedTimePenalty) validate() bool {
	for _, v := range []float64{p.EarlyPerSecond, p.LatePerSecond} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NewRequestedTimeFeature 创建期望到达时间软目标
func NewRequestedTimeFeature(name string, penalty RequestedTimePenalty, transport model.TransportCost) (*feature.Feature, error) {
	if !penalty.validate() {
		return nil, apperrors.InvalidConfig(name, "费率必须为非负有限数")
	}
	if transport == nil {
		return nil, apperrors.MissingCapability(name, "transport")
	}
	return feature.NewBuilder().
		WithName(name).
		WithObjective(&requestedTimeObjective{penalty: penalty, transport: transport}).
		Build()
}

type requestedTimeObjective struct {
	penalty   RequestedTimePenalty
	transport model.TransportCost
}

// Fitness 按已固定的到达时刻汇总全部活动的惩罚
func (o *requestedTimeObjective) Fitness(solution *model.SolutionContext) model.Cost {
	var total model.Cost
	for _, rc := range solution.Routes {
		for _, a := range rc.Route().Tour.All() {
			total += o.activityPenalty(a, a.Schedule.Arrival)
		}
	}
	return total
}

// Estimate 按候选插入实际产生的到达时刻计算惩罚
func (o *requestedTimeObjective) Estimate(move *feature.MoveContext) model.Cost {
	if !move.IsActivity() {
		return 0
	}
	actx := move.Activity
	prev := actx.Prev
	departure := prev.Schedule.Departure
	arrival := departure + o.transport.Duration(move.Route.Route(), prev.Place.Location, actx.Target.Place.Location, model.DepartureAt(departure))
	return o.activityPenalty(actx.Target, arrival)
}

func (o *requestedTimeObjective) activityPenalty(a *model.Activity, arrival model.Timestamp) model.Cost {
	if a == nil || a.Job == nil {
		return 0
	}
	times, ok := RequestedTimesKey.Get(a.Job.Attributes())
	if !ok {
		return 0
	}
	requested, ok := times[a.Place.Index]
	if !ok {
		return 0
	}
	return o.penalty.Penalty(arrival, requested)
}
