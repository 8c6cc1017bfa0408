package app

import (
	"context"

	"github.com/retreatworks/bandscan/internal/domain"
)

// ActivityQuery identifies one ledger lookup.
type ActivityQuery struct {
	TagID    string
	Activity string
	Category string
}

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Member   domain.MemberDetails
	Counters domain.ActivityCounters
	Message  string
}

// StatsField represents stats field data used by this package.
type StatsField struct {
	Key   string
	Value string
}

// StatsRow represents stats row data used by this package.
type StatsRow struct {
	ActivityName string
	Fields       []StatsField
}

// Gateway represents the remote activity ledger.
type Gateway interface {
	MemberActivity(context.Context, ActivityQuery) (Snapshot, error)
	SubmitActivity(context.Context, domain.UpdateRequest) error
	LoginScanner(context.Context, string, string, string) (domain.Session, error)
	RegisterTag(context.Context, domain.TagRegistration) (string, error)
	ActivityStats(context.Context, string, string) ([]StatsRow, error)
}

// SessionStore persists the operator session and cached service options.
type SessionStore interface {
	SaveSession(context.Context, domain.Session) error
	LoadSession(context.Context) (domain.Session, bool, error)
	ClearSession(context.Context) error
	SaveServiceOptions(context.Context, []domain.ServiceOption) error
	LoadServiceOptions(context.Context) ([]domain.ServiceOption, error)
}
