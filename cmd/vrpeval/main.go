// vrpeval 取送路线评估演示程序
// 构造演示实例，按配置启用特性求解，可选保存运行记录并暴露 /metrics

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paiban/vrpcore/internal/config"
	"github.com/paiban/vrpcore/internal/database"
	"github.com/paiban/vrpcore/internal/metrics"
	"github.com/paiban/vrpcore/internal/repository"
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/feature/builtin"
	"github.com/paiban/vrpcore/pkg/logger"
	"github.com/paiban/vrpcore/pkg/model"
	"github.com/paiban/vrpcore/pkg/solver"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	jsonOut := flag.Bool("json", false, "以 JSON 输出求解结果")
	serve := flag.Bool("serve", false, "求解后继续提供 /metrics 直到收到退出信号")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:      cfg.App.LogLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	})
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("vrpeval 启动")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *jsonOut, *serve); err != nil {
		logger.WithError(err).Msg("运行失败")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, jsonOut, serve bool) error {
	registry := metrics.GetRegistry()

	var server *http.Server
	if cfg.Metrics.Enabled {
		server = startMetricsServer(cfg.Metrics, registry)
	}

	problem, err := buildDemoProblem()
	if err != nil {
		return err
	}

	manager := feature.NewManager()
	manager.SetObserver(registry)
	if err := builtin.RegisterDefaultFeatures(manager, cfg.Features, problem.Transport); err != nil {
		return err
	}
	logger.Info().Interface("features", manager.Summary()).Msg("特性已注册")

	s := solver.NewSolver(manager)
	s.SetWorkers(cfg.Solver.Workers)
	s.SetMaxIterations(cfg.Solver.MaxIterations)
	s.SetSeed(cfg.Solver.Seed)
	s.SetObserver(registry)

	solveCtx, cancel := context.WithTimeout(ctx, cfg.Solver.Timeout)
	defer cancel()

	start := time.Now()
	result, err := s.SolveBest(solveCtx, problem)
	if err != nil {
		registry.RecordSolve(false, time.Since(start), 0)
		return err
	}
	registry.RecordSolve(true, result.Duration, result.Unassigned)

	if err := report(result, jsonOut); err != nil {
		return err
	}

	if cfg.Database.Enabled {
		if err := persist(ctx, cfg, s.Name(), result); err != nil {
			return err
		}
	}

	if server != nil {
		if serve {
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("等待退出信号")
			<-ctx.Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
	return nil
}

// startMetricsServer 在后台提供 /metrics 与 /health
func startMetricsServer(cfg config.MetricsConfig, registry *metrics.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, registry.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"vrpeval"}`))
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("path", cfg.Path).Msg("指标服务已启动")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Msg("指标服务异常退出")
		}
	}()
	return server
}

// report 输出求解结果
func report(result *solver.Result, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*solver.Result
			Routes []routeView `json:"routes"`
		}{result, routeViews(result.Solution)})
	}

	for _, r := range routeViews(result.Solution) {
		logger.Info().
			Str("vehicle", r.Vehicle).
			Strs("stops", r.Stops).
			Float64("end", r.End).
			Msg("路线")
	}
	for job, code := range result.Reasons {
		logger.Warn().Str("job", job).Int("code", int(code)).Msg("未分配任务")
	}
	logger.Info().
		Float64("fitness", result.Fitness).
		Interface("breakdown", result.Breakdown).
		Int("assigned", result.Assigned).
		Int("unassigned", result.Unassigned).
		Dur("duration", result.Duration).
		Msg("求解完成")
	return nil
}

// routeView 路线的可读视图
type routeView struct {
	Vehicle string          `json:"vehicle"`
	Stops   []string        `json:"stops"`
	End     model.Timestamp `json:"end"`
}

func routeViews(solution *model.SolutionContext) []routeView {
	var views []routeView
	for _, rc := range solution.Routes {
		route := rc.Route()
		if route.Tour.JobCount() == 0 {
			continue
		}
		view := routeView{Vehicle: route.Actor.Vehicle.ID}
		for _, a := range route.Tour.All() {
			if a.Job == nil {
				continue
			}
			view.Stops = append(view.Stops, fmt.Sprintf("%s@%.0f", a.Job.ID(), a.Schedule.Arrival))
		}
		all := route.Tour.All()
		view.End = all[len(all)-1].Schedule.Departure
		views = append(views, view)
	}
	return views
}

// persist 保存运行记录
func persist(ctx context.Context, cfg *config.Config, solverName string, result *solver.Result) error {
	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	run := repository.NewRunFromResult(solverName, result)
	if err := repo.Create(ctx, run); err != nil {
		return err
	}
	logger.Info().Str("run_id", run.ID.String()).Str("status", run.Status).Msg("运行记录已保存")
	return nil
}
