package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HelpOrder is a student-submitted question awaiting a staff answer.
// Stored in the document store, not in Postgres. AnswerAt is set if and
// only if Answer is non-nil.
type HelpOrder struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID int64              `bson:"student" json:"student"`
	Question  string             `bson:"question" json:"question"`
	Answer    *string            `bson:"answer" json:"answer"`
	AnswerAt  *time.Time         `bson:"answer_at,omitempty" json:"answer_at,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}
