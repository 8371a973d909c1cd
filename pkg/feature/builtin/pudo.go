// Package builtin 提供内置特性实现
package builtin

import (
	"github.com/paiban/vrpcore/pkg/model"
)

// isPickup 活动是否为动态取件
func isPickup(a *model.Activity) bool {
	if a == nil || a.Job == nil {
		return false
	}
	d, ok := a.Job.Demand()
	return ok && d.IsDynamicPickup()
}

// isDelivery 活动是否为动态送件
func isDelivery(a *model.Activity) bool {
	if a == nil || a.Job == nil {
		return false
	}
	d, ok := a.Job.Demand()
	return ok && d.IsDynamicDelivery()
}

// singleAttr 先查 Single 自身属性，再查所属 Multi
func singleAttr[T any](key model.Key[T], jobs *model.Jobs, s *model.Single) (T, bool) {
	if v, ok := key.Get(s.Attributes()); ok {
		return v, true
	}
	if parent, ok := jobs.Parent(s); ok {
		return key.Get(parent.Attributes())
	}
	var zero T
	return zero, false
}

// carriedBy 任务自身或任一子任务带有该键
func carriedBy[T any](key model.Key[T], job model.Job) bool {
	if key.Has(job.Attributes()) {
		return true
	}
	for _, s := range model.Singles(job) {
		if key.Has(s.Attributes()) {
			return true
		}
	}
	return false
}

// inheritedBy 同 carriedBy，Single 还会继承所属 Multi 的属性
// 有父任务但无法解析时视为带有
func inheritedBy[T any](key model.Key[T], jobs *model.Jobs, job model.Job) bool {
	if carriedBy(key, job) {
		return true
	}
	s, ok := job.(*model.Single)
	if !ok {
		return false
	}
	if _, hasParent := s.ParentID(); !hasParent {
		return false
	}
	parent, found := jobs.Parent(s)
	return !found || key.Has(parent.Attributes())
}
