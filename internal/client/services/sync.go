// Package services contains application services for the UserDash client:
// reconciliation of the remote user collection into the local cache, the
// monthly-signup dashboard, authentication and profile updates.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/users"
	"github.com/dmitrijs2005/userdash/internal/common"
	"github.com/dmitrijs2005/userdash/internal/logging"
	"github.com/google/uuid"
)

// Outcome is the result of reconciling one remote record.
type Outcome int

const (
	Inserted Outcome = iota
	AlreadyExists
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	default:
		return "failed"
	}
}

type ItemResult struct {
	Email    string
	RemoteID string
	Outcome  Outcome
	Err      error
}

// SyncReport summarizes one reconciliation run. Items holds one entry per
// attempted record in snapshot order; under fail-fast the records after the
// first failure are absent and Aborted is set.
type SyncReport struct {
	RunID   string
	Fetched int
	Items   []ItemResult
	Aborted bool
}

func (r *SyncReport) count(o Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}

func (r *SyncReport) Inserted() int        { return r.count(Inserted) }
func (r *SyncReport) AlreadyExisting() int { return r.count(AlreadyExists) }
func (r *SyncReport) Failed() int          { return r.count(Failed) }

// Policy controls how reconciliation reacts to a failed record.
type Policy string

const (
	// PolicyBestEffort attempts every record.
	PolicyBestEffort Policy = "best-effort"
	// PolicyFailFast stops at the first failed record. Rows inserted
	// before it stay.
	PolicyFailFast Policy = "fail-fast"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyBestEffort:
		return PolicyBestEffort, nil
	case PolicyFailFast:
		return PolicyFailFast, nil
	}
	return "", fmt.Errorf("unknown reconcile policy %q: %w", s, common.ErrInvalidInput)
}

// SyncService merges the remote user collection into the local store.
type SyncService interface {
	Reconcile(ctx context.Context) (*SyncReport, error)
}

type syncService struct {
	remote     client.DocumentStore
	users      users.Repository
	collection string
	policy     Policy
	log        logging.Logger
}

func NewSyncService(remote client.DocumentStore, repo users.Repository, collection string, policy Policy, log logging.Logger) SyncService {
	if policy == "" {
		policy = PolicyBestEffort
	}
	return &syncService{
		remote:     remote,
		users:      repo,
		collection: collection,
		policy:     policy,
		log:        log,
	}
}

// Reconcile fetches every remote record and inserts the ones whose email is
// not cached yet. Inserts run one at a time in snapshot order. The returned
// error is the fetch error or the first per-record failure.
func (s *syncService) Reconcile(ctx context.Context) (*SyncReport, error) {
	report := &SyncReport{RunID: uuid.NewString()}
	log := s.log.With("run_id", report.RunID, "collection", s.collection, "policy", string(s.policy))

	records, err := s.remote.FetchAll(ctx, s.collection)
	if err != nil {
		if !errors.Is(err, common.ErrFetch) {
			err = fmt.Errorf("%w: %w", common.ErrFetch, err)
		}
		log.Error(ctx, "fetch remote users failed", "error", err)
		return report, fmt.Errorf("reconcile: %w", err)
	}
	report.Fetched = len(records)

	var firstErr error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reconcile: %w", err)
		}

		item := ItemResult{Email: rec.Email, RemoteID: rec.RemoteID}
		_, err := s.users.InsertIfAbsent(ctx, rec.ToUserRecord())
		switch {
		case err == nil:
			item.Outcome = Inserted
			log.Debug(ctx, "user inserted", "email", rec.Email)
		case errors.Is(err, common.ErrDuplicateUser):
			item.Outcome = AlreadyExists
		default:
			item.Outcome = Failed
			item.Err = err
			log.Warn(ctx, "user insert failed", "email", rec.Email, "uid", rec.RemoteID, "error", err)
		}
		report.Items = append(report.Items, item)

		if item.Outcome == Failed && firstErr == nil {
			firstErr = fmt.Errorf("reconcile %q: %w", rec.Email, err)
			if s.policy == PolicyFailFast {
				report.Aborted = len(report.Items) < len(records)
				break
			}
		}
	}

	log.Info(ctx, "reconcile finished",
		"fetched", report.Fetched,
		"inserted", report.Inserted(),
		"existing", report.AlreadyExisting(),
		"failed", report.Failed(),
		"aborted", report.Aborted,
	)
	return report, firstErr
}
