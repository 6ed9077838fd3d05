// Package notify implements the outbound notification port. Services
// fire notifications on state-changing success; delivery is best-effort
// and never affects the outcome of the mutation that triggered it.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies a notification event.
type Kind string

const (
	KindEnrollmentCreated Kind = "enrollment_created"
	KindHelpOrderAnswered Kind = "help_order_answered"
)

// EnrollmentCreated is the payload for a new enrollment notification.
type EnrollmentCreated struct {
	StudentName  string
	StudentEmail string
	PlanTitle    string
	TotalPrice   decimal.Decimal
	EndDate      time.Time
}

// HelpOrderAnswered is the payload for an answered help order.
type HelpOrderAnswered struct {
	StudentName  string
	StudentEmail string
	Question     string
	Answer       string
}

// Notifier is the outbound port. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, payload interface{}) error
}

// Nop discards every notification. Useful in tests and when mail is not
// configured.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Kind, interface{}) error { return nil }
