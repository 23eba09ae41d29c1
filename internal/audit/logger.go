// internal/audit/logger.go
// Package audit records state-changing operations in their own collection
// for staff review. Failures to write an audit record never fail the
// operation being recorded.
package audit

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"librekeep/internal/identity"
	"librekeep/internal/models"
)

// Audit actions.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionCheckOut = "checkout"
	ActionCheckIn  = "checkin"
	ActionBorrow   = "borrow"
	ActionReturn   = "return"
)

type Logger struct {
	col *mongo.Collection
}

// NewLogger writes audit records to the given collection. A nil collection
// (tests, dry runs) disables logging.
func NewLogger(col *mongo.Collection) *Logger {
	return &Logger{col: col}
}

// Log records an action against an entity. The acting principal is taken
// from the request context when present.
func (l *Logger) Log(ctx context.Context, entity, action string, data any) {
	if l == nil || l.col == nil {
		return
	}
	performedBy := "system"
	if claims, ok := identity.ClaimsFromContext(ctx); ok {
		performedBy = claims.Username
	}
	rec := models.AuditRecord{
		ID:          primitive.NewObjectID(),
		Timestamp:   time.Now(),
		Entity:      entity,
		Action:      action,
		PerformedBy: performedBy,
		Data:        data,
	}
	if _, err := l.col.InsertOne(ctx, rec); err != nil {
		log.Printf("audit: failed to record %s %s: %v", action, entity, err)
	}
}
