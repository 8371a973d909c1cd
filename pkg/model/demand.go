package model

// DemandPair 静态/动态需求量
// 静态需求在路线起点装载或终点卸载，动态需求在途中取送
type DemandPair struct {
	Static  int `json:"static"`
	Dynamic int `json:"dynamic"`
}

// IsEmpty 检查是否无需求
func (p DemandPair) IsEmpty() bool {
	return p.Static == 0 && p.Dynamic == 0
}

// Demand 任务需求
type Demand struct {
	Pickup   DemandPair `json:"pickup"`
	Delivery DemandPair `json:"delivery"`
}

// PickupDemand 取件（途中上车）需求
func PickupDemand(amount int) Demand {
	return Demand{Pickup: DemandPair{Dynamic: amount}}
}

// DeliveryDemand 送件（途中下车）需求
func DeliveryDemand(amount int) Demand {
	return Demand{Delivery: DemandPair{Dynamic: amount}}
}

// StaticDeliveryDemand 从起点装载的送件需求
func StaticDeliveryDemand(amount int) Demand {
	return Demand{Delivery: DemandPair{Static: amount}}
}

// StaticPickupDemand 运回终点的取件需求
func StaticPickupDemand(amount int) Demand {
	return Demand{Pickup: DemandPair{Static: amount}}
}

// IsDynamicPickup 是否为取送配对中的取件
func (d Demand) IsDynamicPickup() bool {
	return d.Pickup.Dynamic != 0
}

// IsDynamicDelivery 是否为取送配对中的送件
func (d Demand) IsDynamicDelivery() bool {
	return d.Delivery.Dynamic != 0
}

// Change 返回该需求对车辆载荷的净变化
func (d Demand) Change() int {
	return d.Pickup.Static + d.Pickup.Dynamic - d.Delivery.Static - d.Delivery.Dynamic
}
