package solver

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/logger"
	"github.com/paiban/vrpcore/pkg/model"
)

// ParallelEvaluator 并行评估一批候选方案
type ParallelEvaluator struct {
	workers int
	manager *feature.Manager
}

// NewParallelEvaluator 创建并行评估器
func NewParallelEvaluator(workers int, manager *feature.Manager) *ParallelEvaluator {
	if workers <= 0 {
		workers = 4
	}
	return &ParallelEvaluator{
		workers: workers,
		manager: manager,
	}
}

// EvaluationResult 单个候选方案的评估结果
type EvaluationResult struct {
	Index      int
	Solution   *model.SolutionContext
	Fitness    model.Cost
	Unassigned int
}

// EvaluateBatch 并行评估一批方案，结果顺序与输入一致
// 每个方案先重建状态再计算成本，方案之间不得共享路线
func (p *ParallelEvaluator) EvaluateBatch(ctx context.Context, solutions []*model.SolutionContext) ([]EvaluationResult, error) {
	if len(solutions) == 0 {
		return nil, nil
	}

	results := make([]EvaluationResult, len(solutions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, sol := range solutions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.manager.AcceptSolutionState(sol)
			results[i] = EvaluationResult{
				Index:      i,
				Solution:   sol,
				Fitness:    p.manager.Fitness(sol),
				Unassigned: len(sol.Unassigned),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FindBest 返回最优方案：未分配任务最少，其次成本最低，再次下标最小
func (p *ParallelEvaluator) FindBest(ctx context.Context, solutions []*model.SolutionContext) (*EvaluationResult, error) {
	results, err := p.EvaluateBatch(ctx, solutions)
	if err != nil || len(results) == 0 {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return better(results[i], results[j])
	})
	return &results[0], nil
}

func better(a, b EvaluationResult) bool {
	if a.Unassigned != b.Unassigned {
		return a.Unassigned < b.Unassigned
	}
	if a.Fitness != b.Fitness {
		return a.Fitness < b.Fitness
	}
	return a.Index < b.Index
}

// SolveBest 以多个任务顺序并行构造方案，返回最优者
// 第一个顺序总是任务的原始顺序，其余由种子确定性打乱
func (s *Solver) SolveBest(ctx context.Context, problem *Problem) (*Result, error) {
	if err := validateProblem(problem); err != nil {
		return nil, err
	}
	s.manager.BindJobs(problem.Jobs)

	startTime := time.Now()
	runID := uuid.New()
	s.logger.SolveStarted(runID.String(), problem.Jobs.Size(), len(problem.Actors))

	orders := jobOrders(problem.Jobs.All(), s.maxIterations, s.seed)
	solutions := make([]*model.SolutionContext, len(orders))

	// 每个顺序内部串行扫描路线，并行度用在顺序之间
	worker := *s
	worker.workers = 1

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, order := range orders {
		g.Go(func() error {
			sol, err := worker.construct(gctx, problem, order)
			if err != nil {
				return err
			}
			solutions[i] = sol
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best, err := NewParallelEvaluator(s.workers, s.manager).FindBest(ctx, solutions)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("orders", len(orders)).
		Int("best", best.Index).
		Msg("多顺序构造完成")

	result := s.finish(runID, best.Solution, startTime)
	s.logger.SolveFinished(runID.String(), result.Duration, result.Assigned, result.Unassigned, float64(result.Fitness))
	return result, nil
}

// jobOrders 生成 count 个任务顺序
func jobOrders(jobs []model.Job, count int, seed int64) [][]model.Job {
	if count < 1 {
		count = 1
	}
	rng := rand.New(rand.NewSource(seed))

	orders := make([][]model.Job, count)
	for i := range orders {
		order := append([]model.Job(nil), jobs...)
		if i > 0 {
			rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		}
		orders[i] = order
	}
	return orders
}
