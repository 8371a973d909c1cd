package model

import (
	"testing"
)

var testSharedDurationKey = NewKey[Duration]("test_shared_duration")

func newTestSingle(location Location, demand Demand) *Single {
	attrs := NewAttributes()
	JobDemandKey.Set(attrs, demand)
	return NewSingle([]Place{{Location: location, Duration: 60}}, attrs)
}

func TestNewMulti_BindsChildren(t *testing.T) {
	pickup := newTestSingle(10, PickupDemand(1))
	delivery := newTestSingle(20, DeliveryDemand(1))

	attrs := NewAttributes()
	testSharedDurationKey.Set(attrs, 600)
	multi := NewMulti([]*Single{pickup, delivery}, attrs)

	if !multi.Contains(pickup) || !multi.Contains(delivery) {
		t.Fatal("子任务应绑定到组合任务")
	}
	if !pickup.SameParent(delivery) {
		t.Error("取件与送件应属于同一组合任务")
	}

	other := newTestSingle(30, PickupDemand(1))
	if pickup.SameParent(other) || other.SameParent(other) {
		t.Error("独立任务不应有共同父任务")
	}
}

func TestJobs_ParentLookupRoundTrip(t *testing.T) {
	pickup := newTestSingle(10, PickupDemand(1))
	delivery := newTestSingle(20, DeliveryDemand(1))

	attrs := NewAttributes()
	testSharedDurationKey.Set(attrs, 600)

	var job Job = NewMulti([]*Single{pickup, delivery}, attrs)
	jobs := NewJobs([]Job{job})

	multi, ok := job.(*Multi)
	if !ok {
		t.Fatal("Job 应可还原为 *Multi")
	}

	for _, child := range multi.Jobs {
		parent, ok := jobs.Parent(child)
		if !ok {
			t.Fatal("应能通过索引找到父任务")
		}
		if v, ok := testSharedDurationKey.Get(parent.Attributes()); !ok || v != 600 {
			t.Errorf("父任务共享属性 = %v, %v, want 600, true", v, ok)
		}
		if jobs.Root(child) != job {
			t.Error("Root() 应返回组合任务")
		}
	}

	standalone := newTestSingle(5, Demand{})
	if _, ok := jobs.Parent(standalone); ok {
		t.Error("独立任务不应有父任务")
	}
	if jobs.Root(standalone) != Job(standalone) {
		t.Error("独立任务的 Root() 应返回自身")
	}
}

func TestNewMulti_RebindPanics(t *testing.T) {
	s := newTestSingle(1, PickupDemand(1))
	NewMulti([]*Single{s}, nil)

	defer func() {
		if recover() == nil {
			t.Error("子任务重复绑定应 panic")
		}
	}()
	NewMulti([]*Single{s}, nil)
}

func TestDemand_Classification(t *testing.T) {
	tests := []struct {
		name         string
		demand       Demand
		wantPickup   bool
		wantDelivery bool
	}{
		{"动态取件", PickupDemand(1), true, false},
		{"动态送件", DeliveryDemand(1), false, true},
		{"静态送件", StaticDeliveryDemand(1), false, false},
		{"无需求", Demand{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.demand.IsDynamicPickup(); got != tt.wantPickup {
				t.Errorf("IsDynamicPickup() = %v, want %v", got, tt.wantPickup)
			}
			if got := tt.demand.IsDynamicDelivery(); got != tt.wantDelivery {
				t.Errorf("IsDynamicDelivery() = %v, want %v", got, tt.wantDelivery)
			}
		})
	}
}

func TestSingles(t *testing.T) {
	a := newTestSingle(1, PickupDemand(1))
	b := newTestSingle(2, DeliveryDemand(1))
	m := NewMulti([]*Single{a, b}, nil)

	if got := Singles(m); len(got) != 2 {
		t.Errorf("Singles(multi) 长度 = %d, want 2", len(got))
	}
	c := newTestSingle(3, Demand{})
	if got := Singles(c); len(got) != 1 || got[0] != c {
		t.Error("Singles(single) 应返回自身")
	}
}
