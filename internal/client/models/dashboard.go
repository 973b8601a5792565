package models

import "time"

// MonthlySignupBucket is the number of signups in one calendar month
// (1..12). It is derived on demand and never persisted.
type MonthlySignupBucket struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

// Label returns the short English month name, e.g. "Jan".
func (b MonthlySignupBucket) Label() string {
	if b.Month < 1 || b.Month > 12 {
		return "?"
	}
	return time.Month(b.Month).String()[:3]
}

// DashboardSnapshot is the exported form of the dashboard.
type DashboardSnapshot struct {
	GeneratedAt time.Time             `json:"generated_at"`
	TimeZone    string                `json:"time_zone"`
	Total       int                   `json:"total"`
	Buckets     []MonthlySignupBucket `json:"buckets"`
}
