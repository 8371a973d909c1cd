package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/solver"
)

// 运行状态
const (
	RunStatusComplete = "complete" // 全部任务已分配
	RunStatusPartial  = "partial"  // 存在未分配任务
)

// Run 一次求解运行记录
type Run struct {
	ID         uuid.UUID          `json:"id"`
	Solver     string             `json:"solver"`
	Status     string             `json:"status"`
	Fitness    float64            `json:"fitness"`
	Breakdown  map[string]float64 `json:"breakdown"`
	Routes     int                `json:"routes"`
	Assigned   int                `json:"assigned"`
	Unassigned int                `json:"unassigned"`
	Reasons    map[string]int     `json:"reasons,omitempty"`
	DurationMs int64              `json:"duration_ms"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewRunFromResult 由求解结果生成运行记录
func NewRunFromResult(solverName string, result *solver.Result) *Run {
	run := &Run{
		ID:         result.RunID,
		Solver:     solverName,
		Status:     RunStatusComplete,
		Fitness:    result.Fitness,
		Breakdown:  make(map[string]float64, len(result.Breakdown)),
		Assigned:   result.Assigned,
		Unassigned: result.Unassigned,
		Reasons:    make(map[string]int, len(result.Reasons)),
		DurationMs: result.Duration.Milliseconds(),
	}
	if result.Solution != nil {
		run.Routes = len(result.Solution.Routes)
	}
	for name, cost := range result.Breakdown {
		run.Breakdown[name] = cost
	}
	for job, code := range result.Reasons {
		run.Reasons[job] = int(code)
	}
	if run.Unassigned > 0 {
		run.Status = RunStatusPartial
	}
	return run
}

// RunRepository 求解运行记录仓储
type RunRepository struct {
	db DB
}

var _ Repository[Run] = (*RunRepository)(nil)

// NewRunRepository 创建运行记录仓储
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, solver, status, fitness, breakdown, routes, assigned, unassigned, reasons, duration_ms, created_at`

// EnsureSchema 创建运行记录表
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS solve_runs (
			id UUID PRIMARY KEY,
			solver TEXT NOT NULL,
			status TEXT NOT NULL,
			fitness DOUBLE PRECISION NOT NULL,
			breakdown JSONB NOT NULL,
			routes INTEGER NOT NULL,
			assigned INTEGER NOT NULL,
			unassigned INTEGER NOT NULL,
			reasons JSONB NOT NULL,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建运行记录表失败")
	}
	return nil
}

// Create 保存运行记录
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()

	breakdownJSON, err := json.Marshal(run.Breakdown)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化成本明细失败")
	}
	reasonsJSON, err := json.Marshal(run.Reasons)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化未分配原因失败")
	}

	query := fmt.Sprintf(`INSERT INTO solve_runs (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, runColumns)
	_, err = r.db.ExecContext(ctx, query,
		run.ID, run.Solver, run.Status, run.Fitness, breakdownJSON,
		run.Routes, run.Assigned, run.Unassigned, reasonsJSON, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存运行记录失败")
	}
	return nil
}

// GetByID 根据ID获取运行记录
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := fmt.Sprintf(`SELECT %s FROM solve_runs WHERE id = $1`, runColumns)

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.CodeNotFound, "运行记录不存在").WithField("id", id.String())
	}
	return run, err
}

// Delete 删除运行记录
func (r *RunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM solve_runs WHERE id = $1", id); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除运行记录失败")
	}
	return nil
}

// List 列出运行记录
func (r *RunRepository) List(ctx context.Context, filter ListFilter) ([]*Run, int, error) {
	whereClause, args := buildRunFilter(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM solve_runs " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计运行记录失败")
	}

	query := fmt.Sprintf(`SELECT %s FROM solve_runs %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		runColumns, whereClause, orderClause(filter), len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询运行记录失败")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "遍历运行记录失败")
	}
	return runs, total, nil
}

// buildRunFilter 生成 WHERE 子句与参数
func buildRunFilter(filter ListFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Solver != "" {
		args = append(args, filter.Solver)
		conditions = append(conditions, fmt.Sprintf("solver = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause 只允许按已知列排序
func orderClause(filter ListFilter) string {
	column := "created_at"
	switch filter.OrderBy {
	case "fitness", "unassigned", "duration_ms", "created_at":
		column = filter.OrderBy
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}

func scanRun(s Scanner) (*Run, error) {
	var (
		run           Run
		breakdownJSON []byte
		reasonsJSON   []byte
	)
	err := s.Scan(
		&run.ID, &run.Solver, &run.Status, &run.Fitness, &breakdownJSON,
		&run.Routes, &run.Assigned, &run.Unassigned, &reasonsJSON, &run.DurationMs, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "读取运行记录失败")
	}

	if err := json.Unmarshal(breakdownJSON, &run.Breakdown); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "解析成本明细失败")
	}
	if err := json.Unmarshal(reasonsJSON, &run.Reasons); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "解析未分配原因失败")
	}
	return &run, nil
}
