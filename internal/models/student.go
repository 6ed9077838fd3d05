package models

import "time"

// Student represents a gym member. Students do not authenticate; staff
// manage their records and enrollments on their behalf.
type Student struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Age       int       `db:"age" json:"age"`
	Weight    float64   `db:"weight" json:"weight"`
	Height    float64   `db:"height" json:"height"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures search parameters for listing students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}
