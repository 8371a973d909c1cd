package model

// SolutionContext 方案上下文：全部路线、未分配任务与方案级缓存状态
type SolutionContext struct {
	Routes     []*RouteContext
	Required   []Job                 // 仍待分配的任务
	Unassigned map[Job]ViolationCode // 无法分配的任务及最后的违反码
	Ignored    []Job

	State *Attributes
	Jobs  *Jobs
}

// NewSolutionContext 创建方案上下文，全部任务初始为待分配
func NewSolutionContext(jobs *Jobs) *SolutionContext {
	var required []Job
	if jobs != nil {
		required = append(required, jobs.All()...)
	}
	return &SolutionContext{
		Routes:     make([]*RouteContext, 0),
		Required:   required,
		Unassigned: make(map[Job]ViolationCode),
		State:      NewAttributes(),
		Jobs:       jobs,
	}
}

// AddRoute 添加路线并返回其下标
func (s *SolutionContext) AddRoute(rc *RouteContext) int {
	s.Routes = append(s.Routes, rc)
	return len(s.Routes) - 1
}

// RemoveRequired 从待分配列表移除任务
func (s *SolutionContext) RemoveRequired(job Job) {
	for i, j := range s.Required {
		if j == job {
			s.Required = append(s.Required[:i], s.Required[i+1:]...)
			return
		}
	}
}

// MarkUnassigned 将任务记为无法分配
func (s *SolutionContext) MarkUnassigned(job Job, code ViolationCode) {
	s.RemoveRequired(job)
	s.Unassigned[job] = code
}

// AssignedJobs 返回所有路线上的任务数量
func (s *SolutionContext) AssignedJobs() int {
	total := 0
	for _, rc := range s.Routes {
		total += rc.Route().Tour.JobCount()
	}
	return total
}

// Clone 深拷贝方案上下文（问题数据共享）
func (s *SolutionContext) Clone() *SolutionContext {
	c := &SolutionContext{
		Routes:     make([]*RouteContext, len(s.Routes)),
		Required:   append([]Job(nil), s.Required...),
		Unassigned: make(map[Job]ViolationCode, len(s.Unassigned)),
		Ignored:    append([]Job(nil), s.Ignored...),
		State:      s.State.Clone(),
		Jobs:       s.Jobs,
	}
	for i, rc := range s.Routes {
		c.Routes[i] = rc.Clone()
	}
	for j, code := range s.Unassigned {
		c.Unassigned[j] = code
	}
	return c
}
