// internal/models/audit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditRecord is a write-ahead note of a state-changing operation, kept in
// its own collection for staff review.
type AuditRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Entity      string             `bson:"entity" json:"entity"`
	Action      string             `bson:"action" json:"action"`
	PerformedBy string             `bson:"performed_by" json:"performedBy"`
	Data        any                `bson:"data" json:"data"`
}
