package main

import (
	"context"
	"testing"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/feature/builtin"
	"github.com/paiban/vrpcore/pkg/solver"
)

func TestBuildDemoProblem_Solves(t *testing.T) {
	problem, err := buildDemoProblem()
	if err != nil {
		t.Fatalf("buildDemoProblem() error = %v", err)
	}
	if problem.Jobs.Size() != 4 || len(problem.Actors) != 2 {
		t.Fatalf("jobs/actors = %d/%d", problem.Jobs.Size(), len(problem.Actors))
	}

	manager := feature.NewManager()
	if err := builtin.RegisterDefaultFeatures(manager, builtin.DefaultConfig(), problem.Transport); err != nil {
		t.Fatalf("RegisterDefaultFeatures() error = %v", err)
	}

	s := solver.NewSolver(manager)
	s.SetMaxIterations(3)
	result, err := s.SolveBest(context.Background(), problem)
	if err != nil {
		t.Fatalf("SolveBest() error = %v", err)
	}
	if result.Unassigned != 0 {
		t.Errorf("Unassigned = %d, reasons = %v", result.Unassigned, result.Reasons)
	}

	views := routeViews(result.Solution)
	stops := 0
	for _, v := range views {
		stops += len(v.Stops)
	}
	// 3 次乘车各 2 站 + 1 个送件
	if stops != 7 {
		t.Errorf("停靠数 = %d, want 7", stops)
	}
}
