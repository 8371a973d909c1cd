package model

// ActivityPlace 活动选定的地点与时间窗
type ActivityPlace struct {
	Index    int        `json:"index"` // 在 Single.Places 中的下标
	Location Location   `json:"location"`
	Duration Duration   `json:"duration"`
	Time     TimeWindow `json:"time"`
}

// Activity 路线中的一次访问
type Activity struct {
	Place    ActivityPlace
	Schedule Schedule
	Job      *Single // 起点/终点等结构性站点为 nil
}

// NewDepotActivity 创建结构性站点（起点/终点）
func NewDepotActivity(location Location, tw TimeWindow) *Activity {
	return &Activity{
		Place:    ActivityPlace{Location: location, Time: tw},
		Schedule: Schedule{Arrival: tw.Start, Departure: tw.Start},
	}
}

// NewJobActivities 为 Single 的每个地点与时间窗组合创建候选活动
func NewJobActivities(s *Single) []*Activity {
	var activities []*Activity
	for idx, place := range s.Places {
		for _, tw := range place.Times {
			activities = append(activities, &Activity{
				Place: ActivityPlace{
					Index:    idx,
					Location: place.Location,
					Duration: place.Duration,
					Time:     tw,
				},
				Schedule: Schedule{Arrival: tw.Start, Departure: tw.Start},
				Job:      s,
			})
		}
	}
	return activities
}

// Clone 复制活动
func (a *Activity) Clone() *Activity {
	c := *a
	return &c
}

// HasJob 检查是否为任务活动
func (a *Activity) HasJob() bool {
	return a.Job != nil
}

// BelongsTo 检查活动是否属于给定任务
func (a *Activity) BelongsTo(job Job) bool {
	if a.Job == nil || job == nil {
		return false
	}
	switch j := job.(type) {
	case *Single:
		return a.Job == j
	case *Multi:
		return j.Contains(a.Job)
	}
	return false
}
