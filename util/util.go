package util

import (
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetKeysSorted[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

// SortedUnique returns the distinct values of nums in ascending order.
// nums is not modified.
func SortedUnique[A constraints.Ordered](nums []A) []A {
	seen := make(map[A]bool, len(nums))
	for _, v := range nums {
		seen[v] = true
	}
	return GetKeysSorted(seen)
}

func Clamp[A constraints.Integer | constraints.Float](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

// AppendUnique appends s unless it is already present
func AppendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
