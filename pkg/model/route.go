package model

// Route 已提交的路线及其执行者
type Route struct {
	Actor *Actor
	Tour  *Tour
}

// RouteContext 路线上下文：路线本身与路线级缓存状态
type RouteContext struct {
	route *Route
	state *Attributes
	stale bool
}

// NewRouteContext 为执行者创建空路线上下文
func NewRouteContext(actor *Actor) *RouteContext {
	return NewRouteContextFromRoute(&Route{Actor: actor, Tour: NewTour(actor)})
}

// NewRouteContextFromRoute 包装已有路线
func NewRouteContextFromRoute(route *Route) *RouteContext {
	return &RouteContext{
		route: route,
		state: NewAttributes(),
		stale: true,
	}
}

// Route 返回路线
func (rc *RouteContext) Route() *Route { return rc.route }

// State 返回路线级缓存状态
func (rc *RouteContext) State() *Attributes { return rc.state }

// IsStale 路线在上次状态重建后是否被修改
func (rc *RouteContext) IsStale() bool { return rc.stale }

// MarkStale 标记路线状态是否需要重建
func (rc *RouteContext) MarkStale(stale bool) { rc.stale = stale }

// Clone 深拷贝路线上下文
func (rc *RouteContext) Clone() *RouteContext {
	return &RouteContext{
		route: &Route{Actor: rc.route.Actor, Tour: rc.route.Tour.Clone()},
		state: rc.state.Clone(),
		stale: rc.stale,
	}
}
