package types

// SLABucket classifies how close a report is to its SLA deadline
type SLABucket string

const (
	SLABucketOK       SLABucket = "ok"
	SLABucketWarning  SLABucket = "warning"
	SLABucketCritical SLABucket = "critical"
	SLABucketOverdue  SLABucket = "overdue"
)

// AllSLABuckets returns buckets from the most relaxed to the most urgent
func AllSLABuckets() []SLABucket {
	return []SLABucket{
		SLABucketOK,
		SLABucketWarning,
		SLABucketCritical,
		SLABucketOverdue,
	}
}

func (b SLABucket) IsValid() bool {
	switch b {
	case SLABucketOK, SLABucketWarning, SLABucketCritical, SLABucketOverdue:
		return true
	default:
		return false
	}
}

// NeedsAttention reports whether the bucket should be escalated in digests
func (b SLABucket) NeedsAttention() bool {
	return b == SLABucketCritical || b == SLABucketOverdue
}

func (b SLABucket) String() string {
	return string(b)
}
