package builtin

import (
	"math"

	apperrors "github.com/paiban/vrpcore/pkg/errors"
	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// PreferencesFeatureName 偏好特性默认名称
const PreferencesFeatureName = "preferences"

// 偏好相关属性键
var (
	// JobPreferencesKey 任务对车辆属性的偏好
	JobPreferencesKey = model.NewKey[*JobPreferences]("job_preferences")
	// VehicleAttributesKey 车辆具备的属性集合
	VehicleAttributesKey = model.NewKey[map[string]struct{}]("vehicle_attributes")
	// PreferencesFitnessKey 方案级偏好惩罚缓存
	PreferencesFitnessKey = model.NewKey[model.Cost]("preferences_fitness")
)

// JobPreferences 任务偏好
// 空集合表示未设置
type JobPreferences struct {
	Preferred  map[string]struct{} // 任一匹配即满足
	Acceptable map[string]struct{} // 首选均未匹配时的备选
	Avoid      map[string]struct{} // 每出现一个计一次惩罚
	Weight     float64
}

// NewJobPreferences 创建任务偏好，空列表视为未设置，非正权重按 1.0 处理
func NewJobPreferences(preferred, acceptable, avoid []string, weight float64) *JobPreferences {
	if weight <= 0 {
		weight = 1.0
	}
	return &JobPreferences{
		Preferred:  toSet(preferred),
		Acceptable: toSet(acceptable),
		Avoid:      toSet(avoid),
		Weight:     weight,
	}
}

// HasPreferredMatch 车辆是否具备任一首选属性
func (p *JobPreferences) HasPreferredMatch(attrs map[string]struct{}) bool {
	return anyPresent(p.Preferred, attrs)
}

// HasAcceptableMatch 车辆是否具备任一备选属性
func (p *JobPreferences) HasAcceptableMatch(attrs map[string]struct{}) bool {
	return anyPresent(p.Acceptable, attrs)
}

// CountAvoided 车辆具备的回避属性数量
func (p *JobPreferences) CountAvoided(attrs map[string]struct{}) int {
	count := 0
	for a := range p.Avoid {
		if _, ok := attrs[a]; ok {
			count++
		}
	}
	return count
}

// SetVehicleAttributes 设置车辆属性集合
func SetVehicleAttributes(v *model.Vehicle, attrs ...string) {
	VehicleAttributesKey.Set(v.Attributes(), toSet(attrs))
}

// PreferencePenalty 偏好惩罚配置
type PreferencePenalty struct {
	NoPreferredMatch  model.Cost `yaml:"no_preferred_match" json:"no_preferred_match"`
	NoAcceptableMatch model.Cost `yaml:"no_acceptable_match" json:"no_acceptable_match"`
	PerAvoidedPresent model.Cost `yaml:"per_avoided_present" json:"per_avoided_present"`
}

// DefaultPreferencePenalty 默认惩罚配置
func DefaultPreferencePenalty() PreferencePenalty {
	return PreferencePenalty{
		NoPreferredMatch:  100,
		NoAcceptableMatch: 30,
		PerAvoidedPresent: 75,
	}
}

// NewPreferencesFeature 创建偏好软目标
func NewPreferencesFeature(name string, penalty PreferencePenalty) (*feature.Feature, error) {
	for _, v := range []model.Cost{penalty.NoPreferredMatch, penalty.NoAcceptableMatch, penalty.PerAvoidedPresent} {
		if v < 0 || math.IsNaN(v) {
			return nil, apperrors.InvalidConfig(name, "惩罚值不能为负数")
		}
	}
	return feature.NewBuilder().
		WithName(name).
		WithObjective(&preferencesObjective{penalty: penalty}).
		WithState(&preferencesState{penalty: penalty}).
		Build()
}

type preferencesObjective struct {
	penalty PreferencePenalty
}

func (o *preferencesObjective) Fitness(solution *model.SolutionContext) model.Cost {
	if cached, ok := PreferencesFitnessKey.Get(solution.State); ok {
		return cached
	}
	return solutionPenalty(o.penalty, solution)
}

func (o *preferencesObjective) Estimate(move *feature.MoveContext) model.Cost {
	if !move.IsRoute() {
		return 0
	}
	return jobPenalty(o.penalty, move.Job, move.Route.Route())
}

// preferencesState 只维护方案级缓存，路线级不缓存
type preferencesState struct {
	feature.BaseState
	penalty PreferencePenalty
}

// AcceptInsertion 插入后重算方案级缓存，保证与全量计算一致
func (s *preferencesState) AcceptInsertion(solution *model.SolutionContext, _ int, _ model.Job) {
	PreferencesFitnessKey.Set(solution.State, solutionPenalty(s.penalty, solution))
}

func (s *preferencesState) AcceptSolutionState(solution *model.SolutionContext) {
	PreferencesFitnessKey.Set(solution.State, solutionPenalty(s.penalty, solution))
}

func jobPenalty(penalty PreferencePenalty, job model.Job, route *model.Route) model.Cost {
	if job == nil {
		return 0
	}
	prefs, ok := JobPreferencesKey.Get(job.Attributes())
	if !ok || prefs == nil {
		return 0
	}

	attrs, _ := VehicleAttributesKey.Get(route.Actor.Vehicle.Attributes())

	var total model.Cost
	if prefs.Preferred != nil && !prefs.HasPreferredMatch(attrs) {
		total += penalty.NoPreferredMatch
		if prefs.Acceptable != nil && !prefs.HasAcceptableMatch(attrs) {
			total += penalty.NoAcceptableMatch
		}
	}
	total += model.Cost(prefs.CountAvoided(attrs)) * penalty.PerAvoidedPresent

	return total * prefs.Weight
}

func routePenalty(penalty PreferencePenalty, route *model.Route) model.Cost {
	var total model.Cost
	for _, job := range route.Tour.Jobs() {
		total += jobPenalty(penalty, job, route)
	}
	return total
}

func solutionPenalty(penalty PreferencePenalty, solution *model.SolutionContext) model.Cost {
	var total model.Cost
	for _, rc := range solution.Routes {
		total += routePenalty(penalty, rc.Route())
	}
	return total
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func anyPresent(want, have map[string]struct{}) bool {
	for a := range want {
		if _, ok := have[a]; ok {
			return true
		}
	}
	return false
}
