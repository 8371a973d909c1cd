package model

// TravelTimeKind 行程时间基准类型
type TravelTimeKind int

const (
	// TravelDeparture 以出发时刻为基准
	TravelDeparture TravelTimeKind = iota
	// TravelArrival 以到达时刻为基准
	TravelArrival
)

// TravelTime 行程时间基准
type TravelTime struct {
	Kind TravelTimeKind
	Time Timestamp
}

// DepartureAt 以出发时刻为基准
func DepartureAt(t Timestamp) TravelTime {
	return TravelTime{Kind: TravelDeparture, Time: t}
}

// ArrivalAt 以到达时刻为基准
func ArrivalAt(t Timestamp) TravelTime {
	return TravelTime{Kind: TravelArrival, Time: t}
}

// TransportCost 行程时长/距离能力
// 对相同的 (路线, 起点, 终点, 时间基准) 必须返回确定结果
type TransportCost interface {
	// Duration 返回行程时长
	Duration(route *Route, from, to Location, basis TravelTime) Duration

	// Distance 返回行程距离
	Distance(route *Route, from, to Location, basis TravelTime) Distance
}
