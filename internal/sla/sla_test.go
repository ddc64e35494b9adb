package sla

import (
	"testing"
	"time"
)

func TestTarget(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		hours int
		want  time.Time
	}{
		{"eight hours", 8, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{"one hour", 1, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"crosses midnight", 30, time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)},
		{"zero hours", 0, base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Target(base, tt.hours); !got.Equal(tt.want) {
				t.Errorf("Target(%v, %d) = %v, want %v", base, tt.hours, got, tt.want)
			}
		})
	}
}

func TestIsCompliant_BoundaryInclusive(t *testing.T) {
	target := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		resolvedAt time.Time
		want       bool
	}{
		{"well before target", target.Add(-time.Hour), true},
		{"exactly on target", target, true},
		{"one second late", target.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCompliant(tt.resolvedAt, target); got != tt.want {
				t.Errorf("IsCompliant(%v, %v) = %v, want %v", tt.resolvedAt, target, got, tt.want)
			}
		})
	}
}

func TestCompliancePercentage(t *testing.T) {
	target := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		samples []ResolutionSample
		want    float64
	}{
		{
			name:    "no settled tickets is vacuous success",
			samples: nil,
			want:    100,
		},
		{
			name: "all compliant",
			samples: []ResolutionSample{
				{Target: target, ResolvedAt: target.Add(-time.Hour), HasResolution: true},
				{Target: target, ResolvedAt: target, HasResolution: true},
			},
			want: 100,
		},
		{
			name: "half compliant",
			samples: []ResolutionSample{
				{Target: target, ResolvedAt: target, HasResolution: true},
				{Target: target, ResolvedAt: target.Add(time.Second), HasResolution: true},
			},
			want: 50,
		},
		{
			name: "missing resolution event counts against",
			samples: []ResolutionSample{
				{Target: target, HasResolution: false},
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompliancePercentage(tt.samples); got != tt.want {
				t.Errorf("CompliancePercentage() = %v, want %v", got, tt.want)
			}
		})
	}
}
