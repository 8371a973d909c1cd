package model

import (
	"math/rand"
	"sync"
)

// Permutator 组合任务子任务访问顺序生成器
type Permutator interface {
	// Permutations 返回候选访问顺序（子任务下标序列）
	Permutations() [][]int

	// Validate 检查访问顺序是否合法
	Validate(permutation []int) bool
}

// FixedPermutator 只允许原始顺序
type FixedPermutator struct {
	size int
}

// NewFixedPermutator 创建固定顺序生成器
func NewFixedPermutator(size int) *FixedPermutator {
	return &FixedPermutator{size: size}
}

// Permutations 返回唯一的原始顺序
func (p *FixedPermutator) Permutations() [][]int {
	return [][]int{identity(0, p.size)}
}

// Validate 仅原始顺序合法
func (p *FixedPermutator) Validate(permutation []int) bool {
	if len(permutation) != p.size {
		return false
	}
	for i, v := range permutation {
		if i != v {
			return false
		}
	}
	return true
}

// VariablePermutator 取件在前、送件在后的可变顺序生成器
// 下标 [0, deliveriesStart) 为取件，[deliveriesStart, size) 为送件
type VariablePermutator struct {
	size            int
	deliveriesStart int
	sampleSize      int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewVariablePermutator 创建可变顺序生成器
func NewVariablePermutator(size, deliveriesStart, sampleSize int, seed int64) *VariablePermutator {
	if deliveriesStart < 0 || deliveriesStart > size {
		deliveriesStart = size
	}
	if sampleSize <= 0 {
		sampleSize = 3
	}
	return &VariablePermutator{
		size:            size,
		deliveriesStart: deliveriesStart,
		sampleSize:      sampleSize,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

// Permutations 返回候选顺序；组合总数不超过采样数时返回全部
func (p *VariablePermutator) Permutations() [][]int {
	pickups := identity(0, p.deliveriesStart)
	deliveries := identity(p.deliveriesStart, p.size)

	total := factorial(len(pickups)) * factorial(len(deliveries))
	if total <= p.sampleSize {
		var result [][]int
		for _, pp := range permute(pickups) {
			for _, dp := range permute(deliveries) {
				perm := make([]int, 0, p.size)
				perm = append(perm, pp...)
				perm = append(perm, dp...)
				result = append(result, perm)
			}
		}
		return result
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([][]int, 0, p.sampleSize)
	for i := 0; i < p.sampleSize; i++ {
		perm := make([]int, 0, p.size)
		for _, idx := range p.rng.Perm(len(pickups)) {
			perm = append(perm, pickups[idx])
		}
		for _, idx := range p.rng.Perm(len(deliveries)) {
			perm = append(perm, deliveries[idx])
		}
		result = append(result, perm)
	}
	return result
}

// Validate 检查每个下标恰好出现一次且所有取件在送件之前
func (p *VariablePermutator) Validate(permutation []int) bool {
	if len(permutation) != p.size {
		return false
	}
	seen := make([]bool, p.size)
	for i, v := range permutation {
		if v < 0 || v >= p.size || seen[v] {
			return false
		}
		seen[v] = true
		if (i < p.deliveriesStart) != (v < p.deliveriesStart) {
			return false
		}
	}
	return true
}

func identity(from, to int) []int {
	result := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		result = append(result, i)
	}
	return result
}

func factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
		if result > 1<<20 {
			return result
		}
	}
	return result
}

// permute 返回所有排列（仅用于小规模输入）
func permute(values []int) [][]int {
	if len(values) <= 1 {
		return [][]int{append([]int(nil), values...)}
	}
	var result [][]int
	for i := range values {
		rest := make([]int, 0, len(values)-1)
		rest = append(rest, values[:i]...)
		rest = append(rest, values[i+1:]...)
		for _, tail := range permute(rest) {
			result = append(result, append([]int{values[i]}, tail...))
		}
	}
	return result
}
