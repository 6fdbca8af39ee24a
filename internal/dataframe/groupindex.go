package dataframe

import (
	xxhash "github.com/cespare/xxhash/v2"
)

const (
	groupIndexCapacityFactor = 1.5
	groupIndexLoadFactor     = 0.75
	groupIndexGrowthFactor   = 2
	hashSignBitMask          = uint64(1)<<63 - 1
)

// GroupIndex maps group keys to the row indices holding them, with
// xxhash bucketing. It backs the category index of the target encoder
// and the per-label buckets of the stratified splitter.
type GroupIndex struct {
	buckets    [][]groupEntry
	order      []string
	capacity   int
	size       int
	loadFactor float64
}

type groupEntry struct {
	key  string
	rows []int
}

// NewGroupIndex creates a GroupIndex sized for the estimated number of
// distinct keys.
func NewGroupIndex(estimatedSize int) *GroupIndex {
	capacity := nextPowerOfTwo(int(float64(estimatedSize)*groupIndexCapacityFactor) + 1)
	return &GroupIndex{
		buckets:    make([][]groupEntry, capacity),
		capacity:   capacity,
		loadFactor: groupIndexLoadFactor,
	}
}

// BuildGroupIndex groups the rows of a column by its rendered values.
func BuildGroupIndex(s ISeries) *GroupIndex {
	gi := NewGroupIndex(s.Len() / 4)
	for i := 0; i < s.Len(); i++ {
		gi.Add(s.GetAsString(i), i)
	}
	return gi
}

// Add records that row holds key.
func (gi *GroupIndex) Add(key string, row int) {
	bucketIdx := gi.bucketFor(key)

	for i := range gi.buckets[bucketIdx] {
		if gi.buckets[bucketIdx][i].key == key {
			gi.buckets[bucketIdx][i].rows = append(gi.buckets[bucketIdx][i].rows, row)
			return
		}
	}

	gi.buckets[bucketIdx] = append(gi.buckets[bucketIdx], groupEntry{
		key:  key,
		rows: []int{row},
	})
	gi.order = append(gi.order, key)
	gi.size++

	if float64(gi.size) > float64(gi.capacity)*gi.loadFactor {
		gi.resize()
	}
}

// Rows returns the row indices recorded for key.
func (gi *GroupIndex) Rows(key string) ([]int, bool) {
	bucketIdx := gi.bucketFor(key)
	for _, entry := range gi.buckets[bucketIdx] {
		if entry.key == key {
			return entry.rows, true
		}
	}
	return nil, false
}

// Keys returns the distinct keys in first-observation order.
func (gi *GroupIndex) Keys() []string {
	return append([]string(nil), gi.order...)
}

// Size returns the number of distinct keys.
func (gi *GroupIndex) Size() int {
	return gi.size
}

func (gi *GroupIndex) bucketFor(key string) int {
	hash := xxhash.Sum64String(key)
	return int((hash & hashSignBitMask) % uint64(gi.capacity))
}

// resize doubles the capacity and rehashes all entries.
func (gi *GroupIndex) resize() {
	newCapacity := gi.capacity * groupIndexGrowthFactor
	newBuckets := make([][]groupEntry, newCapacity)

	for _, bucket := range gi.buckets {
		for _, entry := range bucket {
			hash := xxhash.Sum64String(entry.key)
			newBucketIdx := int((hash & hashSignBitMask) % uint64(newCapacity))
			newBuckets[newBucketIdx] = append(newBuckets[newBucketIdx], entry)
		}
	}

	gi.buckets = newBuckets
	gi.capacity = newCapacity
}

// nextPowerOfTwo returns the next power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
