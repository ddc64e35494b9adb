// Package sla computes service-level deadline timestamps and compliance over
// resolution events. Targets are plain wall-clock offsets; there is no
// business-hour calendar and no timezone adjustment beyond what the base
// timestamp carries.
package sla

import "time"

// Target returns base plus the given number of hours.
func Target(base time.Time, hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

// IsCompliant reports whether a resolution at resolvedAt met the target.
// Exactly on time counts as compliant.
func IsCompliant(resolvedAt, target time.Time) bool {
	return !resolvedAt.After(target)
}

// ResolutionSample pairs a ticket's resolution deadline with the moment its
// status first became resolved. Tickets that were reopened and re-resolved
// are judged by the first resolution, measuring the originally promised
// response rather than a retried one.
type ResolutionSample struct {
	Target     time.Time
	ResolvedAt time.Time
	// HasResolution is false when no resolution event was found in the
	// ticket's history; such tickets count against compliance.
	HasResolution bool
}

// CompliancePercentage returns the share of samples resolved on or before
// their target, in percent. An empty sample set is 100% compliant.
func CompliancePercentage(samples []ResolutionSample) float64 {
	if len(samples) == 0 {
		return 100
	}
	compliant := 0
	for _, s := range samples {
		if s.HasResolution && IsCompliant(s.ResolvedAt, s.Target) {
			compliant++
		}
	}
	return float64(compliant) / float64(len(samples)) * 100
}
