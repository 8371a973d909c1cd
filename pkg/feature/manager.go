package feature

import (
	"errors"
	"sort"
	"sync"

	"github.com/paiban/vrpcore/pkg/logger"
	"github.com/paiban/vrpcore/pkg/model"
)

// Observer 评估过程观察者（指标采集等）
type Observer interface {
	ObserveEvaluation(feature string, violation *Violation)
	ObserveMergeRefusal(feature string)
	ObserveFitness(feature string, cost model.Cost)
}

// Manager 特性管理器：把多个特性组合成一个约束、一个目标与一个状态
type Manager struct {
	features []*Feature
	mu       sync.RWMutex
	logger   *logger.EvaluationLogger
	observer Observer
}

// NewManager 创建特性管理器
func NewManager() *Manager {
	return &Manager{
		features: make([]*Feature, 0),
		logger:   logger.NewEvaluationLogger(),
	}
}

// SetObserver 设置观察者
func (m *Manager) SetObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = o
}

// Register 注册特性，同名特性被替换
func (m *Manager) Register(f *Feature) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.FeatureRegistered(f.Name, f.Constraint != nil, f.Objective != nil, f.State != nil)

	// 写时复制，评估过程持有的快照不受影响
	next := make([]*Feature, 0, len(m.features)+1)
	replaced := false
	for _, existing := range m.features {
		if existing.Name == f.Name {
			next = append(next, f)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, f)
	}

	// 带硬约束的特性在前
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Constraint != nil && next[j].Constraint == nil
	})
	m.features = next
}

// RegisterAll 批量注册
func (m *Manager) RegisterAll(features ...*Feature) {
	for _, f := range features {
		m.Register(f)
	}
}

// Unregister 注销特性
func (m *Manager) Unregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]*Feature, 0, len(m.features))
	for _, f := range m.features {
		if f.Name != name {
			next = append(next, f)
		}
	}
	m.features = next
}

// Get 按名称获取特性
func (m *Manager) Get(name string) *Feature {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.features {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// GetAll 获取所有特性
func (m *Manager) GetAll() []*Feature {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Feature, len(m.features))
	copy(result, m.features)
	return result
}

func (m *Manager) snapshot() ([]*Feature, Observer) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.features, m.observer
}

// Evaluate 依次评估所有硬约束
// 遇到停止型违反立即返回，否则返回第一个违反
func (m *Manager) Evaluate(move *MoveContext) *Violation {
	features, observer := m.snapshot()

	var first *Violation
	for _, f := range features {
		if f.Constraint == nil {
			continue
		}
		v := f.Constraint.Evaluate(move)
		if observer != nil {
			observer.ObserveEvaluation(f.Name, v)
		}
		if v == nil {
			continue
		}
		m.logger.Violation(f.Name, int(v.Code), v.Stopped)
		if v.Stopped {
			return v
		}
		if first == nil {
			first = v
		}
	}
	return first
}

// Estimate 汇总所有目标的移动成本
func (m *Manager) Estimate(move *MoveContext) model.Cost {
	features, _ := m.snapshot()

	var total model.Cost
	for _, f := range features {
		if f.Objective != nil {
			total += f.Objective.Estimate(move)
		}
	}
	return total
}

// Fitness 汇总所有目标的方案成本
func (m *Manager) Fitness(solution *model.SolutionContext) model.Cost {
	var total model.Cost
	for _, cost := range m.FitnessBreakdown(solution) {
		total += cost
	}
	return total
}

// FitnessBreakdown 按特性名返回方案成本
func (m *Manager) FitnessBreakdown(solution *model.SolutionContext) map[string]model.Cost {
	features, observer := m.snapshot()

	result := make(map[string]model.Cost)
	for _, f := range features {
		if f.Objective == nil {
			continue
		}
		cost := f.Objective.Fitness(solution)
		result[f.Name] = cost
		if observer != nil {
			observer.ObserveFitness(f.Name, cost)
		}
	}
	return result
}

// BindJobs 把任务索引交给需要它的硬约束
func (m *Manager) BindJobs(jobs *model.Jobs) {
	features, _ := m.snapshot()
	for _, f := range features {
		if binder, ok := f.Constraint.(JobsBinder); ok {
			binder.BindJobs(jobs)
		}
	}
}

// Merge 依次让每个硬约束合并任务，任一拒绝即返回错误
func (m *Manager) Merge(source, candidate model.Job) (model.Job, error) {
	features, observer := m.snapshot()

	merged := source
	for _, f := range features {
		if f.Constraint == nil {
			continue
		}
		next, err := f.Constraint.Merge(merged, candidate)
		if err != nil {
			var refused *MergeRefusedError
			if errors.As(err, &refused) {
				if refused.Feature == "" {
					refused.Feature = f.Name
				}
				m.logger.MergeRefused(f.Name, int(refused.Code))
				if observer != nil {
					observer.ObserveMergeRefusal(f.Name)
				}
			}
			return nil, err
		}
		merged = next
	}
	return merged, nil
}

// AcceptInsertion 通知所有状态钩子任务已插入
func (m *Manager) AcceptInsertion(solution *model.SolutionContext, routeIndex int, job model.Job) {
	features, _ := m.snapshot()
	for _, f := range features {
		if f.State != nil {
			f.State.AcceptInsertion(solution, routeIndex, job)
		}
	}
}

// AcceptRouteState 通知所有状态钩子路线已修改，完成后清除过期标记
func (m *Manager) AcceptRouteState(route *model.RouteContext) {
	features, _ := m.snapshot()
	for _, f := range features {
		if f.State != nil {
			f.State.AcceptRouteState(route)
		}
	}
	route.MarkStale(false)
}

// AcceptSolutionState 通知所有状态钩子方案已完成
func (m *Manager) AcceptSolutionState(solution *model.SolutionContext) {
	features, _ := m.snapshot()
	for _, rc := range solution.Routes {
		if rc.IsStale() {
			m.AcceptRouteState(rc)
		}
	}
	for _, f := range features {
		if f.State != nil {
			f.State.AcceptSolutionState(solution)
		}
	}
	m.logger.SolutionAccepted(len(solution.Routes), len(solution.Unassigned), float64(m.Fitness(solution)))
}

// Clear 清除所有特性
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = make([]*Feature, 0)
}

// Count 返回特性数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.features)
}

// Summary 返回特性摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	constraints, objectives, states := 0, 0, 0
	for _, f := range m.features {
		if f.Constraint != nil {
			constraints++
		}
		if f.Objective != nil {
			objectives++
		}
		if f.State != nil {
			states++
		}
	}

	return map[string]interface{}{
		"total":       len(m.features),
		"constraints": constraints,
		"objectives":  objectives,
		"states":      states,
	}
}
