package common

import (
	"errors"
	"math"
)

var (
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrQuotaCounterOverflow = errors.New("quota counter overflow")
)

// EraUsage captures how much of an era-scoped allowance has been consumed.
type EraUsage struct {
	Era  uint64
	Used uint32
}

// EraQuota defines the allowance granted per era. A zero Max disables the cap.
type EraQuota struct {
	Max uint32
}

// CheckEraQuota verifies whether add more units fit within the quota for era.
// Usage recorded for an earlier era is discarded before the check. The returned
// EraUsage reflects the updated counters when the quota is not exceeded; on
// denial prev is returned unchanged.
func CheckEraQuota(q EraQuota, era uint64, prev EraUsage, add uint32) (EraUsage, error) {
	next := prev
	if era > prev.Era {
		next = EraUsage{Era: era}
	}
	if add > 0 {
		if next.Used > math.MaxUint32-add {
			return prev, ErrQuotaCounterOverflow
		}
		next.Used += add
	}
	if q.Max > 0 && next.Used > q.Max {
		return prev, ErrQuotaExceeded
	}
	return next, nil
}
