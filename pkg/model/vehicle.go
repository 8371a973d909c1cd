package model

// Vehicle 车辆
type Vehicle struct {
	ID      string     `json:"id"`
	Profile Profile    `json:"profile"`
	Start   Location   `json:"start"`
	End     *Location  `json:"end,omitempty"` // nil 表示开放式路线
	Shift   TimeWindow `json:"shift"`

	attrs *Attributes
}

// NewVehicle 创建车辆
func NewVehicle(id string, start Location, end *Location, shift TimeWindow, attrs *Attributes) *Vehicle {
	if attrs == nil {
		attrs = NewAttributes()
	}
	return &Vehicle{
		ID:      id,
		Profile: DefaultProfile(),
		Start:   start,
		End:     end,
		Shift:   shift,
		attrs:   attrs,
	}
}

// Attributes 返回车辆属性集合
func (v *Vehicle) Attributes() *Attributes { return v.attrs }

// Driver 司机
type Driver struct {
	ID    string `json:"id"`
	attrs *Attributes
}

// NewDriver 创建司机
func NewDriver(id string) *Driver {
	return &Driver{ID: id, attrs: NewAttributes()}
}

// Attributes 返回司机属性集合
func (d *Driver) Attributes() *Attributes { return d.attrs }

// Actor 车辆与司机的组合
type Actor struct {
	Vehicle *Vehicle
	Driver  *Driver
}

// NewActor 创建执行者
func NewActor(vehicle *Vehicle, driver *Driver) *Actor {
	return &Actor{Vehicle: vehicle, Driver: driver}
}
