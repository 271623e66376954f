package executor

import (
	"iter"

	"github.com/aryankumar/batchrun/internal/util"
)

// DefaultBatchSize is the number of tasks submitted per wave when none is configured
const DefaultBatchSize = 1000

// Plan partitions items into contiguous chunks of at most size elements.
//
// The returned sequence yields (batch number, chunk) pairs and starts over from
// the first chunk every time it is ranged over. Chunks are sub-slices of items,
// not copies. Batching bounds the number of in-flight tasks; workers may idle
// briefly while the tail of a batch drains.
func Plan[T any](items []T, size int) (iter.Seq2[int, []T], error) {
	if size <= 0 {
		return nil, util.NewValidationError("batch_size", size, "must be a positive integer")
	}

	return func(yield func(int, []T) bool) {
		n := 0
		for start := 0; start < len(items); start += size {
			end := min(start+size, len(items))
			if !yield(n, items[start:end:end]) {
				return
			}
			n++
		}
	}, nil
}

// NumBatches returns ceil(total/size), or 0 if size is not positive
func NumBatches(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
