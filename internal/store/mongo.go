// internal/store/mongo.go
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
)

// Collection names.
const (
	booksCollection      = "books"
	authorsCollection    = "authors"
	borrowersCollection  = "borrowers"
	membersCollection    = "members"
	librariansCollection = "librarians"
	auditCollection      = "audit_logs"
)

// Connect dials Mongo and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewMongo builds a Store backed by the given database.
func NewMongo(db *mongo.Database) *Store {
	tracer := otel.Tracer("librekeep/store")
	return &Store{
		Books:      &mongoBooks{col: db.Collection(booksCollection), tracer: tracer},
		Authors:    &mongoAuthors{col: db.Collection(authorsCollection), tracer: tracer},
		Borrowers:  &mongoBorrowers{col: db.Collection(borrowersCollection), tracer: tracer},
		Members:    &mongoMembers{col: db.Collection(membersCollection), tracer: tracer},
		Librarians: &mongoLibrarians{col: db.Collection(librariansCollection), tracer: tracer},
	}
}

// AuditCollection returns the audit log collection of the given database.
func AuditCollection(db *mongo.Database) *mongo.Collection {
	return db.Collection(auditCollection)
}
