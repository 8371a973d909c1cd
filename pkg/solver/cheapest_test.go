package solver

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/feature/builtin"
	"github.com/paiban/vrpcore/pkg/model"
)

func TestSolver_Solve_CheapestPosition(t *testing.T) {
	a := newSingle("a", 5, 0, model.MaxTimeWindow(), model.Demand{})
	b := newSingle("b", 2, 0, model.MaxTimeWindow(), model.Demand{})

	solver := NewSolver(feature.NewManager())
	result, err := solver.Solve(context.Background(), &Problem{
		Jobs:      model.NewJobs([]model.Job{a, b}),
		Actors:    []*model.Actor{newActor("v1", 1000)},
		Transport: lineTransport{scale: 1},
	})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	if result.Assigned != 2 || result.Unassigned != 0 {
		t.Errorf("Assigned/Unassigned = %d/%d, want 2/0", result.Assigned, result.Unassigned)
	}
	got := locations(result.Solution.Routes[0])
	if want := []model.Location{0, 2, 5}; !equalLocations(got, want) {
		t.Errorf("路线 = %v, want %v", got, want)
	}
	if len(result.Solution.Required) != 0 {
		t.Errorf("Required = %d, want 0", len(result.Solution.Required))
	}
	if result.RunID.String() == "" {
		t.Error("RunID 不应为空")
	}
}

func TestSolver_Solve_TimeWindowUnassigned(t *testing.T) {
	late := newSingle("late", 50, 0, model.NewTimeWindow(0, 10), model.Demand{})

	result, err := NewSolver(feature.NewManager()).Solve(context.Background(), &Problem{
		Jobs:      model.NewJobs([]model.Job{late}),
		Actors:    []*model.Actor{newActor("v1", 1000)},
		Transport: lineTransport{scale: 1},
	})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Unassigned != 1 || result.Assigned != 0 {
		t.Errorf("Assigned/Unassigned = %d/%d, want 0/1", result.Assigned, result.Unassigned)
	}
	if code, ok := result.Reasons["late"]; !ok || code != 0 {
		t.Errorf("Reasons = %v, 时间窗不可行不带特性违反码", result.Reasons)
	}
}

func TestSolver_Solve_RideDurationRecordsCode(t *testing.T) {
	transport := lineTransport{scale: 1}
	ride, err := builtin.NewMaxRideDurationFeature(builtin.RideDurationFeatureName, 17, transport)
	if err != nil {
		t.Fatalf("NewMaxRideDurationFeature() error = %v", err)
	}
	manager := feature.NewManager()
	manager.Register(ride)

	near := newPickupDelivery("near", 10, 20)
	far := newPickupDelivery("far", 10, 90)
	for _, m := range []*model.Multi{near, far} {
		builtin.MaxRideDurationKey.Set(m.Attributes(), 20)
	}

	result, err := NewSolver(manager).Solve(context.Background(), &Problem{
		Jobs:      model.NewJobs([]model.Job{near, far}),
		Actors:    []*model.Actor{newActor("v1", 1000)},
		Transport: transport,
	})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	if result.Assigned != 1 || result.Unassigned != 1 {
		t.Fatalf("Assigned/Unassigned = %d/%d, want 1/1", result.Assigned, result.Unassigned)
	}
	if code := result.Solution.Unassigned[far]; code != 17 {
		t.Errorf("far 违反码 = %d, want 17", code)
	}
	if got := locations(result.Solution.Routes[0]); !equalLocations(got, []model.Location{0, 10, 20}) {
		t.Errorf("路线 = %v", got)
	}
}

func TestSolver_Solve_Lifo(t *testing.T) {
	tests := []struct {
		name     string
		withLifo bool
		want     []model.Location
	}{
		{
			name:     "无约束时交叉取送",
			withLifo: false,
			want:     []model.Location{0, 10, 20, 30, 40},
		},
		{
			name:     "后进先出时不与未完成的取送交叉",
			withLifo: true,
			want:     []model.Location{0, 10, 30, 20, 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := feature.NewManager()
			actor := newActor("v1", 1000)
			if tt.withLifo {
				lifo, err := builtin.NewLifoOrderingFeature(16)
				if err != nil {
					t.Fatalf("NewLifoOrderingFeature() error = %v", err)
				}
				manager.Register(lifo)
				builtin.SetVehicleLifoTags(actor.Vehicle, "wheelchair")
			}

			first := newPickupDelivery("first", 10, 30)
			second := newPickupDelivery("second", 20, 40)
			builtin.TagMulti(first, "wheelchair", builtin.LifoGroupID("first"))
			builtin.TagMulti(second, "wheelchair", builtin.LifoGroupID("second"))

			result, err := NewSolver(manager).Solve(context.Background(), &Problem{
				Jobs:      model.NewJobs([]model.Job{first, second}),
				Actors:    []*model.Actor{actor},
				Transport: lineTransport{scale: 1},
			})
			if err != nil {
				t.Fatalf("Solve() error = %v", err)
			}
			if got := locations(result.Solution.Routes[0]); !equalLocations(got, tt.want) {
				t.Errorf("路线 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSolver_Solve_StateHooks(t *testing.T) {
	state := &countingState{}
	f, err := feature.NewBuilder().
		WithName("hooks").
		WithObjective(constObjective{cost: 7}).
		WithState(state).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	manager := feature.NewManager()
	manager.Register(f)

	a := newSingle("a", 5, 0, model.MaxTimeWindow(), model.Demand{})
	b := newSingle("b", 8, 0, model.MaxTimeWindow(), model.Demand{})

	result, err := NewSolver(manager).Solve(context.Background(), &Problem{
		Jobs:      model.NewJobs([]model.Job{a, b}),
		Actors:    []*model.Actor{newActor("v1", 1000)},
		Transport: lineTransport{scale: 1},
	})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	if state.insertions != 2 {
		t.Errorf("AcceptInsertion 调用 %d 次, want 2", state.insertions)
	}
	// 初始化 1 次 + 每次提交 1 次
	if state.routes != 3 {
		t.Errorf("AcceptRouteState 调用 %d 次, want 3", state.routes)
	}
	if state.solutions != 1 {
		t.Errorf("AcceptSolutionState 调用 %d 次, want 1", state.solutions)
	}
	if result.Fitness != 7 || result.Breakdown["hooks"] != 7 {
		t.Errorf("Fitness = %v, Breakdown = %v", result.Fitness, result.Breakdown)
	}
	for _, rc := range result.Solution.Routes {
		if rc.IsStale() {
			t.Error("求解完成后路线不应过期")
		}
	}
}

func TestSolver_Solve_InvalidProblem(t *testing.T) {
	jobs := model.NewJobs(nil)
	actors := []*model.Actor{newActor("v1", 1000)}

	tests := []struct {
		name    string
		problem *Problem
		want    apperrors.Code
	}{
		{"空问题", nil, apperrors.CodeInvalidInput},
		{"无车辆", &Problem{Jobs: jobs, Transport: lineTransport{scale: 1}}, apperrors.CodeInvalidInput},
		{"无行程能力", &Problem{Jobs: jobs, Actors: actors}, apperrors.CodeMissingCapability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSolver(feature.NewManager()).Solve(context.Background(), tt.problem)
			if !apperrors.Is(err, tt.want) {
				t.Errorf("Solve() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestSolver_Solve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newSingle("a", 5, 0, model.MaxTimeWindow(), model.Demand{})
	_, err := NewSolver(feature.NewManager()).Solve(ctx, &Problem{
		Jobs:      model.NewJobs([]model.Job{a}),
		Actors:    []*model.Actor{newActor("v1", 1000)},
		Transport: lineTransport{scale: 1},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Solve() error = %v, want context.Canceled", err)
	}
}

func TestSolver_Solve_ObservesInsertions(t *testing.T) {
	observer := &insertionCounter{}
	solver := NewSolver(feature.NewManager())
	solver.SetObserver(observer)

	a := newSingle("a", 5, 0, model.MaxTimeWindow(), model.Demand{})
	b := newSingle("b", 50, 0, model.NewTimeWindow(0, 1), model.Demand{})
	_, err := solver.Solve(context.Background(), &Problem{
		Jobs:      model.NewJobs([]model.Job{a, b}),
		Actors:    []*model.Actor{newActor("v1", 1000)},
		Transport: lineTransport{scale: 1},
	})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if observer.count != 2 {
		t.Errorf("ObserveInsertion 调用 %d 次, want 2", observer.count)
	}
}
