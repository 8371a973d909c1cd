package main

import (
	"github.com/paiban/vrpcore/pkg/feature/builtin"
	"github.com/paiban/vrpcore/pkg/model"
	"github.com/paiban/vrpcore/pkg/solver"
	"github.com/paiban/vrpcore/pkg/transport"
)

// 演示实例的坐标（米），下标即位置
var demoPoints = []transport.Point{
	{X: 0, Y: 0},       // 0 车场
	{X: 1000, Y: 0},    // 1 A 上车
	{X: 4000, Y: 500},  // 2 A 下车
	{X: 1500, Y: 1500}, // 3 B 上车
	{X: 3500, Y: 2500}, // 4 B 下车
	{X: 500, Y: 3000},  // 5 C 上车
	{X: 3000, Y: 3000}, // 6 C 下车
	{X: 2000, Y: -500}, // 7 D 送件
}

// demoSpeed 平均车速（米/秒）
const demoSpeed = 10.0

// buildDemoProblem 构造取送演示实例
// 两辆车：v1 配有升降台并强制轮椅位后进先出，v2 为普通厢式车
func buildDemoProblem() (*solver.Problem, error) {
	matrix, err := transport.FromPoints(demoPoints, demoSpeed)
	if err != nil {
		return nil, err
	}

	depot := model.Location(0)
	shift := model.NewTimeWindow(0, 8*3600)

	v1 := model.NewVehicle("v1", depot, &depot, shift, nil)
	builtin.SetVehicleLifoTags(v1, "wheelchair")
	builtin.SetVehicleAttributes(v1, "lift", "female_driver")

	v2 := model.NewVehicle("v2", depot, &depot, shift, nil)
	v2.Profile = model.Profile{Index: 0, Scale: 1.2}
	builtin.SetVehicleAttributes(v2, "van")

	a := demoRide("A", 1, 2, 900)
	builtin.TagMulti(a, "wheelchair", builtin.LifoGroupID("A"))
	builtin.JobPreferencesKey.Set(a.Attributes(), builtin.NewJobPreferences([]string{"lift"}, nil, nil, 2))

	b := demoRide("B", 3, 4, 900)
	builtin.TagMulti(b, "wheelchair", builtin.LifoGroupID("B"))

	c := demoRide("C", 5, 6, 1200)
	builtin.RequestedTimesKey.Set(c.Jobs[0].Attributes(), builtin.RequestedTimes{0: 1200})
	builtin.JobPreferencesKey.Set(c.Attributes(), builtin.NewJobPreferences(nil, nil, []string{"van"}, 1))

	d := model.NewSingle([]model.Place{{
		Location: 7,
		Duration: 120,
		Times:    []model.TimeWindow{model.NewTimeWindow(0, 4*3600)},
	}}, nil)
	model.JobIDKey.Set(d.Attributes(), "D")
	model.JobDemandKey.Set(d.Attributes(), model.StaticDeliveryDemand(1))
	builtin.RequestedTimesKey.Set(d.Attributes(), builtin.RequestedTimes{0: 600})
	builtin.JobPreferencesKey.Set(d.Attributes(),
		builtin.NewJobPreferences([]string{"female_driver"}, []string{"van"}, nil, 1))

	return &solver.Problem{
		Jobs: model.NewJobs([]model.Job{a, b, c, d}),
		Actors: []*model.Actor{
			model.NewActor(v1, model.NewDriver("d1")),
			model.NewActor(v2, model.NewDriver("d2")),
		},
		Transport: matrix,
	}, nil
}

// demoRide 创建一次乘车（上车 + 下车），乘车时长上限挂在组合任务上
func demoRide(id string, from, to model.Location, maxRide model.Duration) *model.Multi {
	pickup := model.NewSingle([]model.Place{{Location: from, Duration: 60}}, nil)
	model.JobIDKey.Set(pickup.Attributes(), id+"-pickup")
	model.JobDemandKey.Set(pickup.Attributes(), model.PickupDemand(1))

	delivery := model.NewSingle([]model.Place{{Location: to, Duration: 60}}, nil)
	model.JobIDKey.Set(delivery.Attributes(), id+"-delivery")
	model.JobDemandKey.Set(delivery.Attributes(), model.DeliveryDemand(1))

	m := model.NewMulti([]*model.Single{pickup, delivery}, nil)
	model.JobIDKey.Set(m.Attributes(), id)
	builtin.MaxRideDurationKey.Set(m.Attributes(), maxRide)
	return m
}
