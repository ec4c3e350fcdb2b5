package zdb

import "sync/atomic"

// ExportStat is a point-in-time snapshot of the pager's counters.
type ExportStat struct {
	TxCommitCount   uint64
	TxRollbackCount uint64
	PageAllocCount  uint64
	PageFreeCount   uint64
	GrowCount       uint64
}

type iStat struct {
	txCommitCount   atomic.Uint64
	txRollbackCount atomic.Uint64
	pageAllocCount  atomic.Uint64
	pageFreeCount   atomic.Uint64
	growCount       atomic.Uint64
}

func (s *iStat) export() ExportStat {
	return ExportStat{
		TxCommitCount:   s.txCommitCount.Load(),
		TxRollbackCount: s.txRollbackCount.Load(),
		PageAllocCount:  s.pageAllocCount.Load(),
		PageFreeCount:   s.pageFreeCount.Load(),
		GrowCount:       s.growCount.Load(),
	}
}
