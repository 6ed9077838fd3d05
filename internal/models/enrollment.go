package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment is a student's paid subscription to a plan for a computed
// duration/price window. EndDate and Price are derived fields: they are
// recomputed from StartDate, Duration and PriceMonth at every save and
// are never trusted from the caller.
type Enrollment struct {
	ID        int64           `db:"id" json:"id"`
	StudentID int64           `db:"student_id" json:"student_id"`
	PlanID    int64           `db:"plan_id" json:"plan_id"`
	StartDate time.Time       `db:"start_date" json:"start_date"`
	EndDate   time.Time       `db:"end_date" json:"end_date"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`

	// Transient inputs for derivation, sourced from the plan at write
	// time. Not persisted as their own columns.
	Duration   int             `db:"-" json:"-"`
	PriceMonth decimal.Decimal `db:"-" json:"-"`
}

// EnrollmentDetail joins an enrollment with student and plan projections
// for the listing endpoint.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	PlanTitle    string `db:"plan_title" json:"plan_title"`
	PlanDuration int    `db:"plan_duration" json:"plan_duration"`
}

// EnrollmentDeletion is the payload returned by the delete endpoint.
// A missing enrollment id is reported inside the payload instead of
// failing the request; the legacy client depends on this.
type EnrollmentDeletion struct {
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}
