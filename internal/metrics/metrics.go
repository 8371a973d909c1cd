// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// 评估结果标签
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultStopped  = "stopped"
)

// Registry 指标注册表
// 同时实现特性管理器与求解器的观察者接口
type Registry struct {
	registry *prometheus.Registry

	evaluations       *prometheus.CounterVec
	mergeRefusals     *prometheus.CounterVec
	fitness           *prometheus.GaugeVec
	insertionDuration prometheus.Histogram
	solveRuns         *prometheus.CounterVec
	solveDuration     prometheus.Histogram
	unassigned        prometheus.Gauge
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表（附带 Go/进程采集器）
func GetRegistry() *Registry {
	once.Do(func() {
		registry = NewRegistry()
		registry.registry.MustRegister(collectors.NewGoCollector())
		registry.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	return registry
}

// NewRegistry 创建独立的指标注册表
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "vrp_feature_evaluations_total", Help: "特性硬约束评估次数"},
			[]string{"feature", "result"},
		),
		mergeRefusals: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "vrp_feature_merge_refusals_total", Help: "特性拒绝任务合并次数"},
			[]string{"feature"},
		),
		fitness: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "vrp_solution_fitness", Help: "最近一次方案的特性成本"},
			[]string{"feature"},
		),
		insertionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vrp_insertion_duration_seconds",
			Help:    "单个任务寻找插入位置的耗时",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		solveRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "vrp_solve_runs_total", Help: "求解次数"},
			[]string{"status"},
		),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vrp_solve_duration_seconds",
			Help:    "求解耗时",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		unassigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vrp_unassigned_jobs",
			Help: "最近一次方案的未分配任务数",
		}),
	}

	r.registry.MustRegister(
		r.evaluations,
		r.mergeRefusals,
		r.fitness,
		r.insertionDuration,
		r.solveRuns,
		r.solveDuration,
		r.unassigned,
	)
	return r
}

// ObserveEvaluation 记录一次硬约束评估
func (r *Registry) ObserveEvaluation(featureName string, violation *feature.Violation) {
	result := ResultAccepted
	if violation != nil {
		result = ResultRejected
		if violation.Stopped {
			result = ResultStopped
		}
	}
	r.evaluations.WithLabelValues(featureName, result).Inc()
}

// ObserveMergeRefusal 记录一次合并拒绝
func (r *Registry) ObserveMergeRefusal(featureName string) {
	r.mergeRefusals.WithLabelValues(featureName).Inc()
}

// ObserveFitness 记录特性的方案成本
func (r *Registry) ObserveFitness(featureName string, cost model.Cost) {
	r.fitness.WithLabelValues(featureName).Set(cost)
}

// ObserveInsertion 记录单个任务的插入耗时
func (r *Registry) ObserveInsertion(elapsed time.Duration) {
	r.insertionDuration.Observe(elapsed.Seconds())
}

// RecordSolve 记录一次求解
func (r *Registry) RecordSolve(success bool, duration time.Duration, unassigned int) {
	status := "success"
	if !success {
		status = "failed"
	}
	r.solveRuns.WithLabelValues(status).Inc()
	r.solveDuration.Observe(duration.Seconds())
	if success {
		r.unassigned.Set(float64(unassigned))
	}
}

// Gatherer 返回底层采集器
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler 返回 /metrics 处理器
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Handler 返回全局注册表的 /metrics 处理器
func Handler() http.Handler {
	return GetRegistry().Handler()
}
