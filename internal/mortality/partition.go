package mortality

// PartitionCount is the number of positional sub-columns on a wide-format
// mortality or population row.
const PartitionCount = 26

// Partitions holds the nullable sub-column values of one wide-format row.
type Partitions [PartitionCount]*int64

// Sum adds every sub-column, counting nil as zero.
func (p Partitions) Sum() int64 {
	return SumPartitions(p[:]...)
}

// SumPartitions adds values, counting nil as zero. It is total: an empty or
// all-nil input sums to 0.
func SumPartitions(values ...*int64) int64 {
	var total int64
	for _, v := range values {
		if v != nil {
			total += *v
		}
	}
	return total
}

// PartitionsOf builds a row from leading sub-column values; the remaining
// columns stay nil.
func PartitionsOf(values ...int64) Partitions {
	var p Partitions
	for i, v := range values {
		if i >= PartitionCount {
			break
		}
		p[i] = &v
	}
	return p
}
