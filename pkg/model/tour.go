package model

import "fmt"

// Tour 车辆路线中的有序活动序列
// 下标 0 固定为起点；闭合路线的最后一个活动为终点
type Tour struct {
	activities []*Activity
	jobs       []Job
	hasEnd     bool
}

// NewTour 为执行者创建仅包含起点（及终点）的路线
func NewTour(actor *Actor) *Tour {
	v := actor.Vehicle
	t := &Tour{
		activities: []*Activity{NewDepotActivity(v.Start, v.Shift)},
	}
	if v.End != nil {
		end := NewDepotActivity(*v.End, v.Shift)
		end.Schedule = Schedule{Arrival: v.Shift.End, Departure: v.Shift.End}
		t.activities = append(t.activities, end)
		t.hasEnd = true
	}
	return t
}

// Get 按下标获取活动
func (t *Tour) Get(index int) (*Activity, bool) {
	if index < 0 || index >= len(t.activities) {
		return nil, false
	}
	return t.activities[index], true
}

// MustGet 按下标获取活动，越界视为调用方错误
func (t *Tour) MustGet(index int) *Activity {
	a, ok := t.Get(index)
	if !ok {
		panic(fmt.Sprintf("活动下标 %d 超出路线范围 [0, %d)", index, len(t.activities)))
	}
	return a
}

// Start 返回起点
func (t *Tour) Start() *Activity {
	return t.activities[0]
}

// End 返回终点（开放式路线返回 false）
func (t *Tour) End() (*Activity, bool) {
	if !t.hasEnd {
		return nil, false
	}
	return t.activities[len(t.activities)-1], true
}

// HasEnd 是否为闭合路线
func (t *Tour) HasEnd() bool {
	return t.hasEnd
}

// Total 返回活动总数（含起点/终点）
func (t *Tour) Total() int {
	return len(t.activities)
}

// All 返回全部活动，调用方不得修改返回的切片
func (t *Tour) All() []*Activity {
	return t.activities
}

// JobActivities 返回全部任务活动
func (t *Tour) JobActivities() []*Activity {
	result := make([]*Activity, 0, len(t.activities))
	for _, a := range t.activities {
		if a.Job != nil {
			result = append(result, a)
		}
	}
	return result
}

// Jobs 返回路线上访问的不同任务（Multi 只计一次）
func (t *Tour) Jobs() []Job {
	return t.jobs
}

// JobCount 返回任务数量
func (t *Tour) JobCount() int {
	return len(t.jobs)
}

// HasJob 检查路线是否包含任务
func (t *Tour) HasJob(job Job) bool {
	for _, j := range t.jobs {
		if j == job {
			return true
		}
	}
	return false
}

// InsertAt 在位置 position 插入活动，原位置及其后的活动后移
// position 必须位于起点之后、终点之前
func (t *Tour) InsertAt(a *Activity, job Job, position int) {
	last := len(t.activities)
	if t.hasEnd {
		last--
	}
	if position < 1 || position > last {
		panic(fmt.Sprintf("插入位置 %d 超出范围 [1, %d]", position, last))
	}

	t.activities = append(t.activities, nil)
	copy(t.activities[position+1:], t.activities[position:])
	t.activities[position] = a

	if job != nil && !t.HasJob(job) {
		t.jobs = append(t.jobs, job)
	}
}

// InsertLast 在终点之前追加活动
func (t *Tour) InsertLast(a *Activity, job Job) {
	position := len(t.activities)
	if t.hasEnd {
		position--
	}
	t.InsertAt(a, job, position)
}

// RemoveJob 移除任务的全部活动
func (t *Tour) RemoveJob(job Job) bool {
	found := false
	kept := t.activities[:0]
	for _, a := range t.activities {
		if a.BelongsTo(job) {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(t.activities); i++ {
		t.activities[i] = nil
	}
	t.activities = kept

	for i, j := range t.jobs {
		if j == job {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			break
		}
	}
	return found
}

// Index 返回活动在路线中的下标
func (t *Tour) Index(a *Activity) (int, bool) {
	for i, existing := range t.activities {
		if existing == a {
			return i, true
		}
	}
	return -1, false
}

// Clone 深拷贝路线（活动被复制，任务引用共享）
func (t *Tour) Clone() *Tour {
	c := &Tour{
		activities: make([]*Activity, len(t.activities)),
		jobs:       make([]Job, len(t.jobs)),
		hasEnd:     t.hasEnd,
	}
	for i, a := range t.activities {
		c.activities[i] = a.Clone()
	}
	copy(c.jobs, t.jobs)
	return c
}
