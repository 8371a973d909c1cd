package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Job 任务：Single（单次访问）或 Multi（多次访问组合）
type Job interface {
	// Attributes 返回任务自身的属性集合
	Attributes() *Attributes

	sealed()
}

// Place 候选服务地点
type Place struct {
	Location Location     `json:"location"`
	Duration Duration     `json:"duration"`
	Times    []TimeWindow `json:"times"`
}

// Single 单次访问任务
type Single struct {
	Places []Place

	attrs  *Attributes
	parent uuid.UUID // 所属 Multi 的标识，仅用于查找
}

// NewSingle 创建单次访问任务
func NewSingle(places []Place, attrs *Attributes) *Single {
	if attrs == nil {
		attrs = NewAttributes()
	}
	for i := range places {
		if len(places[i].Times) == 0 {
			places[i].Times = []TimeWindow{MaxTimeWindow()}
		}
	}
	return &Single{Places: places, attrs: attrs}
}

// Attributes 返回属性集合
func (s *Single) Attributes() *Attributes { return s.attrs }

func (s *Single) sealed() {}

// ParentID 返回所属 Multi 的标识
func (s *Single) ParentID() (uuid.UUID, bool) {
	return s.parent, s.parent != uuid.Nil
}

// SameParent 检查两个 Single 是否属于同一个 Multi
func (s *Single) SameParent(other *Single) bool {
	if s == nil || other == nil || s.parent == uuid.Nil {
		return false
	}
	return s.parent == other.parent
}

// Demand 返回任务需求
func (s *Single) Demand() (Demand, bool) {
	return JobDemandKey.Get(s.attrs)
}

// ID 返回业务ID（未设置时为空）
func (s *Single) ID() string {
	id, _ := JobIDKey.Get(s.attrs)
	return id
}

// Multi 多次访问组合任务（如取件+送件）
type Multi struct {
	ID   uuid.UUID
	Jobs []*Single

	attrs      *Attributes
	permutator Permutator
}

// NewMulti 创建组合任务，子任务按给定顺序访问
func NewMulti(jobs []*Single, attrs *Attributes) *Multi {
	return NewMultiWithPermutator(jobs, attrs, NewFixedPermutator(len(jobs)))
}

// NewMultiWithPermutator 创建带自定义排列生成器的组合任务
func NewMultiWithPermutator(jobs []*Single, attrs *Attributes, permutator Permutator) *Multi {
	if attrs == nil {
		attrs = NewAttributes()
	}
	m := &Multi{
		ID:         uuid.New(),
		Jobs:       jobs,
		attrs:      attrs,
		permutator: permutator,
	}
	for _, s := range jobs {
		if s.parent != uuid.Nil {
			panic(fmt.Sprintf("子任务已属于组合任务 %s", s.parent))
		}
		s.parent = m.ID
	}
	return m
}

// Attributes 返回属性集合
func (m *Multi) Attributes() *Attributes { return m.attrs }

func (m *Multi) sealed() {}

// Permutations 返回允许尝试的子任务访问顺序
func (m *Multi) Permutations() [][]int {
	return m.permutator.Permutations()
}

// Validate 检查访问顺序是否合法
func (m *Multi) Validate(permutation []int) bool {
	return m.permutator.Validate(permutation)
}

// Contains 检查 Single 是否为该组合任务的子任务
func (m *Multi) Contains(s *Single) bool {
	return s != nil && s.parent == m.ID
}

// JobID 返回任务业务ID
func JobID(job Job) string {
	id, _ := JobIDKey.Get(job.Attributes())
	return id
}

// Singles 返回任务包含的全部 Single
func Singles(job Job) []*Single {
	switch j := job.(type) {
	case *Single:
		return []*Single{j}
	case *Multi:
		return j.Jobs
	}
	return nil
}
