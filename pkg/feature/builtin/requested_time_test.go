package builtin

import (
	"math"
	"testing"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

func TestRequestedTimePenalty(t *testing.T) {
	penalty := NewRequestedTimePenalty(1.0, 2.0)

	tests := []struct {
		name      string
		arrival   model.Timestamp
		requested model.Timestamp
		want      model.Cost
	}{
		{name: "准时", arrival: 1000, requested: 1000, want: 0},
		{name: "提前 1800 秒", arrival: 1000, requested: 2800, want: 30},
		{name: "迟到 1800 秒", arrival: 2800, requested: 1000, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := penalty.Penalty(tt.arrival, tt.requested); !almostEqual(got, tt.want) {
				t.Errorf("Penalty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func requestedSingle(location model.Location, requested model.Timestamp) *model.Single {
	s := testSingle(location, model.Demand{})
	RequestedTimesKey.Set(s.Attributes(), RequestedTimes{0: requested})
	return s
}

func TestRequestedTime_Estimate(t *testing.T) {
	f, err := NewRequestedTimeFeature("requested_time", NewRequestedTimePenalty(1.0, 2.0), scaledTransport{scale: 10})
	if err != nil {
		t.Fatalf("NewRequestedTimeFeature() error = %v", err)
	}

	prev := activityOf(testSingle(5, model.Demand{}), 90, 100)
	rc := testRoute(testVehicle(), nil, prev)

	tests := []struct {
		name   string
		target *model.Activity
		want   model.Cost
	}{
		// 100 + |15-5|*10 = 200
		{name: "按实际到达计算提前", target: activityOf(requestedSingle(15, 1400), 9999, 9999), want: 20},
		{name: "按实际到达计算迟到", target: activityOf(requestedSingle(15, 170), 0, 0), want: 1},
		{name: "准时", target: activityOf(requestedSingle(15, 200), 0, 0), want: 0},
		{name: "无期望时刻", target: activityOf(testSingle(15, model.Demand{}), 0, 0), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Objective.Estimate(activityMove(nil, rc, 1, tt.target))
			if !almostEqual(got, tt.want) {
				t.Errorf("Estimate() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := f.Objective.Estimate(feature.NewRouteMove(nil, rc, nil)); got != 0 {
		t.Errorf("路线级估计应为 0, got %v", got)
	}
}

func TestRequestedTime_Fitness(t *testing.T) {
	f, _ := NewRequestedTimeFeature("requested_time", NewRequestedTimePenalty(1.0, 2.0), scaledTransport{scale: 1})

	late := requestedSingle(10, 1000)
	early := requestedSingle(20, 2000)
	other := testSingle(30, model.Demand{})

	jobs := model.NewJobs([]model.Job{late, early, other})
	solution := model.NewSolutionContext(jobs)
	solution.AddRoute(testRoute(testVehicle(), jobs,
		activityOf(late, 1060, 1060),  // 迟到 60 秒：2
		activityOf(early, 1880, 1900), // 提前 120 秒：2
		activityOf(other, 2000, 2000),
	))

	if got := f.Objective.Fitness(solution); !almostEqual(got, 4) {
		t.Errorf("Fitness() = %v, want 4", got)
	}
}

func TestRequestedTime_PlaceIndex(t *testing.T) {
	f, _ := NewRequestedTimeFeature("requested_time", NewRequestedTimePenalty(60, 60), scaledTransport{scale: 1})

	s := model.NewSingle([]model.Place{{Location: 1}, {Location: 2}}, nil)
	RequestedTimesKey.Set(s.Attributes(), RequestedTimes{1: 100})

	acts := model.NewJobActivities(s)
	acts[0].Schedule.Arrival = 50
	acts[1].Schedule.Arrival = 50

	jobs := model.NewJobs([]model.Job{s})
	solution := model.NewSolutionContext(jobs)
	solution.AddRoute(testRoute(testVehicle(), jobs, acts[0]))
	if got := f.Objective.Fitness(solution); got != 0 {
		t.Errorf("未设置期望时刻的地点不应计入, got %v", got)
	}

	solution = model.NewSolutionContext(jobs)
	solution.AddRoute(testRoute(testVehicle(), jobs, acts[1]))
	if got := f.Objective.Fitness(solution); !almostEqual(got, 50) {
		t.Errorf("Fitness() = %v, want 50", got)
	}
}

func TestRequestedTime_Construction(t *testing.T) {
	tests := []struct {
		name      string
		penalty   RequestedTimePenalty
		transport model.TransportCost
		code      apperrors.Code
	}{
		{name: "负费率", penalty: NewRequestedTimePenalty(-1, 1), transport: scaledTransport{scale: 1}, code: apperrors.CodeInvalidConfig},
		{name: "NaN 费率", penalty: RequestedTimePenalty{EarlyPerSecond: math.NaN()}, transport: scaledTransport{scale: 1}, code: apperrors.CodeInvalidConfig},
		{name: "缺少行程能力", penalty: DefaultRequestedTimePenalty(), transport: nil, code: apperrors.CodeMissingCapability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewRequestedTimeFeature("requested_time", tt.penalty, tt.transport)
			if f != nil || !apperrors.Is(err, tt.code) {
				t.Errorf("NewRequestedTimeFeature() = %v, %v, want %s", f, err, tt.code)
			}
		})
	}

	f, err := NewRequestedTimeFeature("requested_time", DefaultRequestedTimePenalty(), scaledTransport{scale: 1})
	if err != nil || f.Constraint != nil || f.State != nil {
		t.Errorf("应为纯目标特性, got %+v, %v", f, err)
	}
}
