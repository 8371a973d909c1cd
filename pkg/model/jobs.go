package model

import "github.com/google/uuid"

// Jobs 问题中全部任务的只读索引
type Jobs struct {
	all    []Job
	multis map[uuid.UUID]*Multi
}

// NewJobs 创建任务索引
func NewJobs(jobs []Job) *Jobs {
	idx := &Jobs{
		all:    jobs,
		multis: make(map[uuid.UUID]*Multi),
	}
	for _, job := range jobs {
		if m, ok := job.(*Multi); ok {
			idx.multis[m.ID] = m
		}
	}
	return idx
}

// All 返回全部任务
func (j *Jobs) All() []Job {
	return j.all
}

// Size 返回任务数量
func (j *Jobs) Size() int {
	return len(j.all)
}

// Parent 查找 Single 所属的 Multi
func (j *Jobs) Parent(s *Single) (*Multi, bool) {
	if j == nil || s == nil {
		return nil, false
	}
	id, ok := s.ParentID()
	if !ok {
		return nil, false
	}
	m, ok := j.multis[id]
	return m, ok
}

// Root 返回 Single 对应的顶层任务（有父任务时返回 Multi）
func (j *Jobs) Root(s *Single) Job {
	if m, ok := j.Parent(s); ok {
		return m
	}
	return s
}
