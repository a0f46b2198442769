package table

import (
	"fmt"

	"radix/column"
	"radix/ops"
	"radix/par"
)

// RepartitionPlan fixes the layout of a hash repartition before any data
// moves: how many partitions each worker chunk covers, the bucket count,
// the starting write offset of every (worker, bucket) pair, and the final
// size of every bucket.
type RepartitionPlan struct {
	TargetPartitionSize    int
	NumberOfBuckets        int
	BucketBits             int
	WriteOffsets           [][]int // [worker][bucket]
	BucketNumberOfElements []int   // [bucket]
}

// NewRepartitionPlan counts, per worker chunk, how many rows land in each
// of the 2^bucketBits buckets, then converts the counts into write
// offsets with a prefix scan across workers.
func NewRepartitionPlan(hash [][]uint64, workers, bucketBits int) *RepartitionPlan {
	numberOfBuckets := 1 << bucketBits
	bucketMask := uint64(numberOfBuckets - 1)
	chunkSize := par.ChunkSize(len(hash), workers)

	var counts [][]int
	for start := 0; start < len(hash); start += chunkSize {
		end := min(start+chunkSize, len(hash))
		v := make([]int, numberOfBuckets)
		for _, partition := range hash[start:end] {
			for _, h := range partition {
				v[h&bucketMask]++
			}
		}
		counts = append(counts, v)
	}

	running := make([]int, numberOfBuckets)
	for _, v := range counts {
		for b, c := range v {
			v[b] = running[b]
			running[b] += c
		}
	}

	return &RepartitionPlan{
		TargetPartitionSize:    chunkSize,
		NumberOfBuckets:        numberOfBuckets,
		BucketBits:             bucketBits,
		WriteOffsets:           counts,
		BucketNumberOfElements: running,
	}
}

// ColumnRepartition distributes one column's rows into hash-derived
// buckets and returns one owned column per bucket. Sized columns move in
// a single phase; binary columns use three phases so byte positions can
// be laid out globally before any byte is copied. Intra-bucket order
// follows worker chunks: rows from one chunk stay in their relative
// order, cross-chunk order is not defined.
func (t *Table) ColumnRepartition(d *ops.Dictionary, hash [][]uint64, plan *RepartitionPlan, colID int) ([]*column.Wrapper, error) {
	parts, err := t.partCol(colID)
	if err != nil {
		return nil, err
	}
	if len(hash) != len(t.partitionSizes) {
		return nil, fmt.Errorf("hash has %d partitions, the table has %d", len(hash), len(t.partitionSizes))
	}
	iop, err := d.Internal(parts[0].Data().ItemType())
	if err != nil {
		return nil, err
	}
	withBitmap := t.nullable[colID]
	isBinary := parts[0].IsBinary()
	slot, haveSlot := t.colIndexMap[colID]
	bucketMask := uint64(plan.NumberOfBuckets - 1)
	chunkSize := plan.TargetPartitionSize

	dst := make([]*column.Wrapper, plan.NumberOfBuckets)
	for b, n := range plan.BucketNumberOfElements {
		dst[b] = iop.NewUninit(n, 0, withBitmap)
	}

	// One goroutine per worker chunk of the plan; each writes disjoint
	// (bucket, offset) regions of the destination columns.
	runPhase := func(phase func(worker, start, end int) error) error {
		return par.Ranges(len(plan.WriteOffsets), len(plan.WriteOffsets), func(w, _ int) error {
			start := w * chunkSize
			end := min(start+chunkSize, len(t.partitionSizes))
			return phase(w, start, end)
		})
	}

	err = runPhase(func(worker, start, end int) error {
		_, err := iop.CopyToBucketsPart1(
			hash[start:end], bucketMask,
			t.columns[start:end], t.indexes[start:end],
			colID, slot, haveSlot,
			plan.WriteOffsets[worker], dst, withBitmap,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	if isBinary {
		for _, c := range dst {
			if _, err := iop.CopyToBucketsPart2(c); err != nil {
				return nil, err
			}
		}
		err = runPhase(func(worker, start, end int) error {
			_, err := iop.CopyToBucketsPart3(
				hash[start:end], bucketMask,
				t.columns[start:end], t.indexes[start:end],
				colID, slot, haveSlot,
				plan.WriteOffsets[worker], dst,
			)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	for _, c := range dst {
		if err := iop.AssumeInit(c); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
