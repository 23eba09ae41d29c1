// internal/store/mongo_borrowers.go
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"librekeep/internal/models"
)

type mongoBorrowers struct {
	col    *mongo.Collection
	tracer trace.Tracer
}

func (s *mongoBorrowers) Insert(ctx context.Context, b *models.Borrower) (primitive.ObjectID, error) {
	ctx, span := s.tracer.Start(ctx, "store.borrowers.insert",
		trace.WithAttributes(attribute.String("borrower.email", b.BorrowerEmail)),
	)
	defer span.End()

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, b); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert borrower: %w", err)
	}
	return b.ID, nil
}

func (s *mongoBorrowers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Borrower, error) {
	ctx, span := s.tracer.Start(ctx, "store.borrowers.find_by_id",
		trace.WithAttributes(attribute.String("borrower.id", id.Hex())),
	)
	defer span.End()

	var b models.Borrower
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find borrower: %w", err)
	}
	return &b, nil
}

func (s *mongoBorrowers) FindByEmail(ctx context.Context, email string) (*models.Borrower, error) {
	ctx, span := s.tracer.Start(ctx, "store.borrowers.find_by_email")
	defer span.End()

	var b models.Borrower
	err := s.col.FindOne(ctx, bson.M{"borrower_email": email}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find borrower by email: %w", err)
	}
	return &b, nil
}

func (s *mongoBorrowers) List(ctx context.Context) ([]models.Borrower, error) {
	ctx, span := s.tracer.Start(ctx, "store.borrowers.list")
	defer span.End()

	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list borrowers: %w", err)
	}
	var borrowers []models.Borrower
	if err := cur.All(ctx, &borrowers); err != nil {
		return nil, fmt.Errorf("decode borrowers: %w", err)
	}
	return borrowers, nil
}

func (s *mongoBorrowers) Update(ctx context.Context, b *models.Borrower) error {
	ctx, span := s.tracer.Start(ctx, "store.borrowers.update",
		trace.WithAttributes(attribute.String("borrower.id", b.ID.Hex())),
	)
	defer span.End()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("update borrower: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoBorrowers) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "store.borrowers.delete",
		trace.WithAttributes(attribute.String("borrower.id", id.Hex())),
	)
	defer span.End()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete borrower: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoBorrowers) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "store.borrowers.count")
	defer span.End()

	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count borrowers: %w", err)
	}
	return n, nil
}
