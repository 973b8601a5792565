package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/users"
	"github.com/dmitrijs2005/userdash/internal/logging"
)

// DashboardService derives the monthly-signup view from the local store.
type DashboardService interface {
	MonthlySignups(ctx context.Context, loc *time.Location) ([]models.MonthlySignupBucket, error)
	Snapshot(ctx context.Context, loc *time.Location) (*models.DashboardSnapshot, error)
}

type dashboardService struct {
	users users.Repository
	log   logging.Logger
	now   func() time.Time
}

func NewDashboardService(repo users.Repository, log logging.Logger) DashboardService {
	return &dashboardService{users: repo, log: log, now: time.Now}
}

// MonthlySignups counts rows per calendar month of SignupDate as seen in
// loc (time.Local when nil). Months without signups are omitted and the
// result is ordered by month. Years are merged.
func (s *dashboardService) MonthlySignups(ctx context.Context, loc *time.Location) ([]models.MonthlySignupBucket, error) {
	if loc == nil {
		loc = time.Local
	}

	recs, err := s.users.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly signups: %w", err)
	}

	var counts [13]int
	for _, r := range recs {
		t, err := ParseSignupDate(r.SignupDate, loc)
		if err != nil {
			s.log.Warn(ctx, "skipping user with unparseable signup date",
				"email", r.Email, "signup_date", r.SignupDate, "error", err)
			continue
		}
		counts[int(t.In(loc).Month())]++
	}

	buckets := []models.MonthlySignupBucket{}
	for m := 1; m <= 12; m++ {
		if counts[m] > 0 {
			buckets = append(buckets, models.MonthlySignupBucket{Month: m, Count: counts[m]})
		}
	}
	return buckets, nil
}

func (s *dashboardService) Snapshot(ctx context.Context, loc *time.Location) (*models.DashboardSnapshot, error) {
	if loc == nil {
		loc = time.Local
	}
	buckets, err := s.MonthlySignups(ctx, loc)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	return &models.DashboardSnapshot{
		GeneratedAt: s.now().UTC(),
		TimeZone:    loc.String(),
		Total:       total,
		Buckets:     buckets,
	}, nil
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSignupDate accepts RFC 3339 with or without fractional seconds. Values
// without a zone (a bare date, or date and time) are read in loc.
func ParseSignupDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized signup date %q", s)
}
