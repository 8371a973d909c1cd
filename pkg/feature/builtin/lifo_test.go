package builtin

import (
	"errors"
	"testing"

	"github.com/paiban/vrpcore/pkg/feature"
	"github.com/paiban/vrpcore/pkg/model"
)

const lifoCode feature.ViolationCode = 1100

func lifoActivity(location model.Location, tag string, group uint64, pickup bool) *model.Activity {
	demand := model.DeliveryDemand(1)
	if pickup {
		demand = model.PickupDemand(1)
	}
	s := testSingle(location, demand)
	LifoTagKey.Set(s.Attributes(), tag)
	LifoGroupKey.Set(s.Attributes(), group)
	return activityOf(s, 0, 0)
}

func pick(loc model.Location, tag string, group uint64) *model.Activity {
	return lifoActivity(loc, tag, group, true)
}

func drop(loc model.Location, tag string, group uint64) *model.Activity {
	return lifoActivity(loc, tag, group, false)
}

func lifoVehicle(tags ...string) *model.Vehicle {
	v := testVehicle()
	if tags != nil {
		SetVehicleLifoTags(v, tags...)
	}
	return v
}

func TestLifoOrdering_Evaluate(t *testing.T) {
	tests := []struct {
		name   string
		tags   []string
		tour   []*model.Activity
		index  int
		target *model.Activity
		want   bool // 是否违反
	}{
		{
			name:   "后取先送",
			tags:   []string{"wheelchair"},
			tour:   []*model.Activity{pick(10, "wheelchair", 1), pick(20, "wheelchair", 2), drop(30, "wheelchair", 2)},
			index:  3,
			target: drop(40, "wheelchair", 1),
			want:   false,
		},
		{
			name:   "送件与栈顶不匹配",
			tags:   []string{"wheelchair"},
			tour:   []*model.Activity{pick(10, "wheelchair", 1), pick(20, "wheelchair", 2)},
			index:  2,
			target: drop(30, "wheelchair", 1),
			want:   true,
		},
		{
			name:   "空栈送件",
			tags:   []string{"wheelchair"},
			tour:   nil,
			index:  0,
			target: drop(30, "wheelchair", 1),
			want:   true,
		},
		{
			name:   "插入取件破坏后续送件顺序",
			tags:   []string{"wheelchair"},
			tour:   []*model.Activity{pick(10, "wheelchair", 1), drop(30, "wheelchair", 1)},
			index:  1,
			target: pick(20, "wheelchair", 2),
			want:   true,
		},
		{
			name:   "在外层插入取件",
			tags:   []string{"wheelchair"},
			tour:   []*model.Activity{pick(10, "wheelchair", 1), drop(30, "wheelchair", 1)},
			index:  0,
			target: pick(5, "wheelchair", 2),
			want:   false,
		},
		{
			name:   "不同类别各自独立",
			tags:   []string{"wheelchair", "stroller"},
			tour:   []*model.Activity{pick(10, "wheelchair", 1), pick(20, "stroller", 5)},
			index:  2,
			target: drop(30, "wheelchair", 1),
			want:   false,
		},
		{
			name:   "车辆未强制的类别不受约束",
			tags:   []string{"wheelchair"},
			tour:   []*model.Activity{pick(10, "stroller", 1), pick(20, "stroller", 2)},
			index:  2,
			target: drop(30, "stroller", 1),
			want:   false,
		},
		{
			name:   "车辆无类别",
			tags:   nil,
			tour:   []*model.Activity{pick(10, "wheelchair", 1), pick(20, "wheelchair", 2)},
			index:  2,
			target: drop(30, "wheelchair", 1),
			want:   false,
		},
		{
			name:   "车辆类别为空集",
			tags:   []string{},
			tour:   []*model.Activity{pick(10, "wheelchair", 1), pick(20, "wheelchair", 2)},
			index:  2,
			target: drop(30, "wheelchair", 1),
			want:   false,
		},
	}

	f, err := NewLifoOrderingFeature(lifoCode)
	if err != nil {
		t.Fatalf("NewLifoOrderingFeature() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := testRoute(lifoVehicle(tt.tags...), nil, tt.tour...)
			v := f.Constraint.Evaluate(activityMove(nil, rc, tt.index, tt.target))

			if (v != nil) != tt.want {
				t.Fatalf("Evaluate() = %+v, want violation=%v", v, tt.want)
			}
			if v != nil && (v.Code != lifoCode || v.Stopped) {
				t.Errorf("Evaluate() = %+v, want code=%d stopped=false", *v, lifoCode)
			}
		})
	}
}

func TestLifoOrdering_PairNeverViolates(t *testing.T) {
	// 其他类别的合法取送序列任意穿插，紧跟取件之后送件总是合法
	others := [][]*model.Activity{
		{pick(1, "stroller", 7), pick(2, "stroller", 8), drop(3, "stroller", 8), drop(4, "stroller", 7)},
		{pick(1, "stroller", 7), drop(2, "stroller", 7)},
		{pick(1, "luggage", 3), pick(2, "stroller", 9)},
		{},
	}

	f, _ := NewLifoOrderingFeature(lifoCode)

	for i, other := range others {
		for at := 0; at <= len(other); at++ {
			tour := append([]*model.Activity{}, other[:at]...)
			tour = append(tour, pick(50, "wheelchair", 1))
			tour = append(tour, other[at:]...)

			rc := testRoute(lifoVehicle("wheelchair", "stroller", "luggage"), nil, tour...)
			// 取件位于下标 at+1，送件插入其后的路段
			v := f.Constraint.Evaluate(activityMove(nil, rc, at+1, drop(60, "wheelchair", 1)))
			if v != nil {
				t.Errorf("序列 %d 位置 %d: 不应违反, got %+v", i, at, *v)
			}
		}
	}
}

func TestLifoOrdering_RouteMoveIgnored(t *testing.T) {
	f, _ := NewLifoOrderingFeature(lifoCode)
	rc := testRoute(lifoVehicle("wheelchair"), nil, pick(10, "wheelchair", 1))

	if v := f.Constraint.Evaluate(feature.NewRouteMove(nil, rc, nil)); v != nil {
		t.Errorf("路线级移动不应违反, got %+v", *v)
	}
}

func TestLifoOrdering_Merge(t *testing.T) {
	f, _ := NewLifoOrderingFeature(lifoCode)

	tagged := testSingle(1, model.PickupDemand(1))
	LifoTagKey.Set(tagged.Attributes(), "wheelchair")
	plain := testSingle(2, model.PickupDemand(1))

	_, err := f.Constraint.Merge(tagged, plain)
	var refused *feature.MergeRefusedError
	if !errors.As(err, &refused) || refused.Code != lifoCode {
		t.Errorf("带类别的任务应拒绝合并, got %v", err)
	}

	merged, err := f.Constraint.Merge(plain, tagged)
	if err != nil || merged != model.Job(plain) {
		t.Errorf("无类别的任务应返回源任务, got %v, %v", merged, err)
	}
}

func TestLifoOrdering_MergeTaggedMulti(t *testing.T) {
	f, _ := NewLifoOrderingFeature(lifoCode)

	m := model.NewMulti([]*model.Single{
		testSingle(1, model.PickupDemand(1)),
		testSingle(2, model.DeliveryDemand(1)),
	}, nil)
	TagMulti(m, "wheelchair", LifoGroupID("j1"))

	_, err := f.Constraint.Merge(m, testSingle(3, model.PickupDemand(1)))
	var refused *feature.MergeRefusedError
	if !errors.As(err, &refused) || refused.Code != lifoCode {
		t.Errorf("子任务带类别的组合任务应拒绝合并, got %v", err)
	}
}

func TestLifoGroupAndTagMulti(t *testing.T) {
	if LifoGroupID("job-1") != LifoGroupID("job-1") {
		t.Error("相同任务ID应得到相同分组")
	}
	if LifoGroupID("job-1") == LifoGroupID("job-2") {
		t.Error("不同任务ID应得到不同分组")
	}

	p := testSingle(1, model.PickupDemand(1))
	d := testSingle(2, model.DeliveryDemand(1))
	m := model.NewMulti([]*model.Single{p, d}, nil)
	TagMulti(m, "wheelchair", LifoGroupID("job-1"))

	for _, s := range m.Jobs {
		tag, _ := LifoTagKey.Get(s.Attributes())
		group, _ := LifoGroupKey.Get(s.Attributes())
		if tag != "wheelchair" || group != LifoGroupID("job-1") {
			t.Errorf("子任务 tag=%s group=%d", tag, group)
		}
	}
}

func TestFeatureName(t *testing.T) {
	f, _ := NewLifoOrderingFeature(lifoCode)
	if f.Name != "lifo_ordering" || f.Objective != nil {
		t.Errorf("feature = %+v", f)
	}
}
