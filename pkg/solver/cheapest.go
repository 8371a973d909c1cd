// Package solver 提供基于特性管理器的参考插入求解器
package solver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/logger"
	"github.com/paiban/vrpcore/pkg/model"
)

// Problem 求解输入
type Problem struct {
	Jobs      *model.Jobs
	Actors    []*model.Actor
	Transport model.TransportCost
}

// Result 求解结果
type Result struct {
	RunID      uuid.UUID                      `json:"run_id"`
	Solution   *model.SolutionContext         `json:"-"`
	Fitness    model.Cost                     `json:"fitness"`
	Breakdown  map[string]model.Cost          `json:"breakdown"`
	Duration   time.Duration                  `json:"duration"`
	Assigned   int                            `json:"assigned"`
	Unassigned int                            `json:"unassigned"`
	Reasons    map[string]model.ViolationCode `json:"reasons,omitempty"` // 未分配任务ID -> 最后的违反码
}

// InsertionObserver 单个任务插入耗时观察者
type InsertionObserver interface {
	ObserveInsertion(elapsed time.Duration)
}

// Solver 最便宜插入求解器
type Solver struct {
	manager       *feature.Manager
	logger        *logger.EvaluationLogger
	workers       int
	maxIterations int
	seed          int64
	observer      InsertionObserver
}

// NewSolver 创建求解器
func NewSolver(manager *feature.Manager) *Solver {
	return &Solver{
		manager:       manager,
		logger:        logger.NewEvaluationLogger(),
		workers:       4,
		maxIterations: 1,
		seed:          1,
	}
}

// Name 返回求解器名称
func (s *Solver) Name() string {
	return "CheapestInsertion"
}

// SetWorkers 设置并行度
func (s *Solver) SetWorkers(workers int) {
	if workers > 0 {
		s.workers = workers
	}
}

// SetMaxIterations 设置 SolveBest 尝试的任务顺序数量
func (s *Solver) SetMaxIterations(max int) {
	if max > 0 {
		s.maxIterations = max
	}
}

// SetSeed 设置任务顺序打乱的随机种子
func (s *Solver) SetSeed(seed int64) {
	s.seed = seed
}

// SetObserver 设置插入观察者
func (s *Solver) SetObserver(o InsertionObserver) {
	s.observer = o
}

// Solve 按任务原始顺序逐个插入
func (s *Solver) Solve(ctx context.Context, problem *Problem) (*Result, error) {
	if err := validateProblem(problem); err != nil {
		return nil, err
	}
	s.manager.BindJobs(problem.Jobs)

	startTime := time.Now()
	runID := uuid.New()
	s.logger.SolveStarted(runID.String(), problem.Jobs.Size(), len(problem.Actors))

	solution, err := s.construct(ctx, problem, problem.Jobs.All())
	if err != nil {
		return nil, err
	}

	result := s.finish(runID, solution, startTime)
	s.logger.SolveFinished(runID.String(), result.Duration, result.Assigned, result.Unassigned, float64(result.Fitness))
	return result, nil
}

// construct 在空方案上按给定顺序插入任务
func (s *Solver) construct(ctx context.Context, problem *Problem, order []model.Job) (*model.SolutionContext, error) {
	solution := model.NewSolutionContext(problem.Jobs)
	solution.Required = append(solution.Required[:0], order...)
	for _, actor := range problem.Actors {
		rc := model.NewRouteContext(actor)
		UpdateSchedule(rc.Route(), problem.Transport)
		solution.AddRoute(rc)
		s.manager.AcceptRouteState(rc)
	}

	for _, job := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		insertion, code, err := s.findBest(ctx, solution, problem.Transport, job)
		if err != nil {
			return nil, err
		}
		if s.observer != nil {
			s.observer.ObserveInsertion(time.Since(start))
		}

		if insertion == nil {
			solution.MarkUnassigned(job, code)
			logger.Debug().
				Str("job", model.JobID(job)).
				Int("code", int(code)).
				Msg("任务无可行插入位置")
			continue
		}
		s.commit(solution, problem.Transport, insertion, job)
	}

	s.manager.AcceptSolutionState(solution)
	return solution, nil
}

// findBest 并行扫描全部路线，返回成本最低的插入方案
// 无可行方案时返回最后一条路线给出的违反码
func (s *Solver) findBest(ctx context.Context, solution *model.SolutionContext, transport model.TransportCost, job model.Job) (*Insertion, model.ViolationCode, error) {
	e := &evaluator{manager: s.manager, transport: transport, solution: solution}
	results := make([]routeResult, len(solution.Routes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range solution.Routes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.evaluateRoute(i, job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var (
		best *Insertion
		code model.ViolationCode
	)
	for _, r := range results {
		if r.violated {
			code = r.code
		}
		if r.insertion != nil && (best == nil || r.insertion.Cost < best.Cost) {
			best = r.insertion
		}
	}
	return best, code, nil
}

// commit 提交插入方案并触发状态钩子
func (s *Solver) commit(solution *model.SolutionContext, transport model.TransportCost, insertion *Insertion, job model.Job) {
	rc := solution.Routes[insertion.RouteIndex]
	for _, p := range insertion.Placements {
		rc.Route().Tour.InsertAt(p.Activity, job, p.Leg+1)
	}
	UpdateSchedule(rc.Route(), transport)
	rc.MarkStale(true)
	solution.RemoveRequired(job)

	s.manager.AcceptInsertion(solution, insertion.RouteIndex, job)
	s.manager.AcceptRouteState(rc)
}

// finish 汇总方案成本与统计
func (s *Solver) finish(runID uuid.UUID, solution *model.SolutionContext, startTime time.Time) *Result {
	breakdown := s.manager.FitnessBreakdown(solution)
	var total model.Cost
	for _, cost := range breakdown {
		total += cost
	}

	reasons := make(map[string]model.ViolationCode, len(solution.Unassigned))
	for job, code := range solution.Unassigned {
		reasons[model.JobID(job)] = code
	}

	return &Result{
		RunID:      runID,
		Solution:   solution,
		Fitness:    total,
		Breakdown:  breakdown,
		Duration:   time.Since(startTime),
		Assigned:   solution.AssignedJobs(),
		Unassigned: len(solution.Unassigned),
		Reasons:    reasons,
	}
}

func validateProblem(problem *Problem) error {
	if problem == nil || problem.Jobs == nil {
		return apperrors.New(apperrors.CodeInvalidInput, "缺少任务")
	}
	if len(problem.Actors) == 0 {
		return apperrors.New(apperrors.CodeInvalidInput, "没有可用车辆")
	}
	if problem.Transport == nil {
		return apperrors.New(apperrors.CodeMissingCapability, "求解器缺少行程能力")
	}
	return nil
}
