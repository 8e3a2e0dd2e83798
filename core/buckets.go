package core

import (
	"strings"
	"time"
)

// Date bucket labels, from newest to oldest. The five buckets are mutually
// exclusive and exhaustive: every document falls into exactly one.
const (
	BucketLastWeek    = "Last 7 days"
	BucketLastMonth   = "Last 30 days"
	BucketLastQuarter = "Last 3 months"
	BucketLastYear    = "Last year"
	BucketOlder       = "Older"
)

// DateBuckets lists the bucket labels in evaluation order.
var DateBuckets = []string{
	BucketLastWeek,
	BucketLastMonth,
	BucketLastQuarter,
	BucketLastYear,
	BucketOlder,
}

// DateBucketFor assigns a creation time to a date bucket relative to now.
// Buckets are evaluated ascending with the first match winning, so a
// document created 10 days ago lands in "Last 30 days", not "Last 7 days".
func DateBucketFor(createdAt, now time.Time) string {
	switch {
	case !createdAt.Before(now.AddDate(0, 0, -7)):
		return BucketLastWeek
	case !createdAt.Before(now.AddDate(0, 0, -30)):
		return BucketLastMonth
	case !createdAt.Before(now.AddDate(0, -3, 0)):
		return BucketLastQuarter
	case !createdAt.Before(now.AddDate(-1, 0, 0)):
		return BucketLastYear
	default:
		return BucketOlder
	}
}

// matchesAnyTag reports whether any tag appears in the content,
// case-insensitively.
func matchesAnyTag(content string, tags []string) bool {
	lowered := strings.ToLower(content)
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
