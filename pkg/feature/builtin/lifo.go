package builtin

import (
	"hash/fnv"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

// LifoFeatureName LIFO 特性默认名称
const LifoFeatureName = "lifo_ordering"

// LIFO 相关属性键
var (
	// LifoTagKey 任务的装载类别（如轮椅位、婴儿车位）
	LifoTagKey = model.NewKey[string]("lifo_tag")
	// LifoGroupKey 同一取送对共享的分组标识
	LifoGroupKey = model.NewKey[uint64]("lifo_group")
	// VehicleLifoTagsKey 车辆强制后进先出的类别集合
	VehicleLifoTagsKey = model.NewKey[map[string]struct{}]("vehicle_lifo_tags")
)

// LifoGroupID 由任务ID派生稳定的分组标识
func LifoGroupID(jobID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(jobID))
	return h.Sum64()
}

// TagMulti 为组合任务的全部子任务设置相同的类别与分组
func TagMulti(m *model.Multi, tag string, group uint64) {
	for _, s := range m.Jobs {
		LifoTagKey.Set(s.Attributes(), tag)
		LifoGroupKey.Set(s.Attributes(), group)
	}
}

// SetVehicleLifoTags 设置车辆强制的类别集合
func SetVehicleLifoTags(v *model.Vehicle, tags ...string) {
	VehicleLifoTagsKey.Set(v.Attributes(), toSet(tags))
}

// NewLifoOrderingFeature 创建 LIFO 装卸顺序硬约束
func NewLifoOrderingFeature(code feature.ViolationCode) (*feature.Feature, error) {
	return NewLifoOrderingFeatureNamed(LifoFeatureName, code)
}

// NewLifoOrderingFeatureNamed 创建指定名称的 LIFO 装卸顺序硬约束
func NewLifoOrderingFeatureNamed(name string, code feature.ViolationCode) (*feature.Feature, error) {
	return feature.NewBuilder().
		WithName(name).
		WithConstraint(&lifoConstraint{name: name, code: code}).
		Build()
}

type lifoConstraint struct {
	name string
	code feature.ViolationCode
}

func (c *lifoConstraint) Evaluate(move *feature.MoveContext) *feature.Violation {
	if !move.IsActivity() {
		return nil
	}

	tags, ok := VehicleLifoTagsKey.Get(move.Route.Route().Actor.Vehicle.Attributes())
	if !ok || len(tags) == 0 {
		return nil
	}

	actx := move.Activity
	activities := move.Route.Route().Tour.All()
	stacks := make(map[string][]uint64, len(tags))

	for i := 0; i <= actx.Index && i < len(activities); i++ {
		if !pushPop(stacks, tags, activities[i]) {
			return c.violation()
		}
	}
	if !pushPop(stacks, tags, actx.Target) {
		return c.violation()
	}
	for i := actx.Index + 1; i < len(activities); i++ {
		if !pushPop(stacks, tags, activities[i]) {
			return c.violation()
		}
	}
	return nil
}

func (c *lifoConstraint) violation() *feature.Violation {
	return &feature.Violation{Code: c.code, Stopped: false}
}

// Merge 源任务或其子任务带类别时拒绝合并
func (c *lifoConstraint) Merge(source, _ model.Job) (model.Job, error) {
	if carriedBy(LifoTagKey, source) {
		return nil, &feature.MergeRefusedError{Feature: c.name, Code: c.code}
	}
	return source, nil
}

// pushPop 处理单个活动对栈的影响，送件与栈顶不匹配时返回 false
func pushPop(stacks map[string][]uint64, enforced map[string]struct{}, a *model.Activity) bool {
	if a == nil || a.Job == nil {
		return true
	}
	attrs := a.Job.Attributes()
	tag, ok := LifoTagKey.Get(attrs)
	if !ok {
		return true
	}
	if _, ok := enforced[tag]; !ok {
		return true
	}
	group, ok := LifoGroupKey.Get(attrs)
	if !ok {
		return true
	}

	switch {
	case isPickup(a):
		stacks[tag] = append(stacks[tag], group)
	case isDelivery(a):
		stack := stacks[tag]
		if len(stack) == 0 || stack[len(stack)-1] != group {
			return false
		}
		stacks[tag] = stack[:len(stack)-1]
	}
	return true
}
