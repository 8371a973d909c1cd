// Package model 定义路径规划评估核心的数据模型
package model

import (
	"fmt"
	"reflect"
	"sync"
)

// Key 类型化属性键
// 同一名称的键在整个模块内绑定唯一的值类型
type Key[T any] struct {
	id   uint32
	name string
}

type keyEntry struct {
	id  uint32
	typ reflect.Type
}

var (
	keyMu     sync.Mutex
	keyIndex  = make(map[string]keyEntry)
	nextKeyID uint32
)

// NewKey 定义属性键
// 同名键重复定义返回相同标识；若值类型不同则视为编程错误直接 panic
func NewKey[T any](name string) Key[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	keyMu.Lock()
	defer keyMu.Unlock()

	if e, ok := keyIndex[name]; ok {
		if e.typ != typ {
			panic(fmt.Sprintf("属性键 %q 已定义为 %s，不能重新定义为 %s", name, e.typ, typ))
		}
		return Key[T]{id: e.id, name: name}
	}

	nextKeyID++
	keyIndex[name] = keyEntry{id: nextKeyID, typ: typ}
	return Key[T]{id: nextKeyID, name: name}
}

// Name 返回键名称
func (k Key[T]) Name() string { return k.name }

// Get 读取属性值，未设置时返回 false
func (k Key[T]) Get(a *Attributes) (T, bool) {
	var zero T
	if a == nil || a.values == nil {
		return zero, false
	}
	v, ok := a.values[k.id]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Set 写入属性值（覆盖已有值），nil 集合上不做任何操作
func (k Key[T]) Set(a *Attributes, value T) {
	if a == nil {
		return
	}
	if a.values == nil {
		a.values = make(map[uint32]any)
	}
	a.values[k.id] = value
}

// Has 检查属性是否已设置
func (k Key[T]) Has(a *Attributes) bool {
	if a == nil {
		return false
	}
	_, ok := a.values[k.id]
	return ok
}

// Attributes 实体（任务/车辆/方案）上的可扩展属性集合
type Attributes struct {
	values map[uint32]any
}

// NewAttributes 创建空属性集合
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[uint32]any)}
}

// Len 返回已设置属性数量
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// Clone 浅拷贝属性集合
func (a *Attributes) Clone() *Attributes {
	c := &Attributes{values: make(map[uint32]any, a.Len())}
	if a == nil {
		return c
	}
	for k, v := range a.values {
		c.values[k] = v
	}
	return c
}

// 通用属性键
var (
	// JobIDKey 任务业务ID
	JobIDKey = NewKey[string]("job_id")
	// JobDemandKey 任务需求
	JobDemandKey = NewKey[Demand]("job_demand")
)
