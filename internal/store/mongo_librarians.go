// internal/store/mongo_librarians.go
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"librekeep/internal/models"
)

type mongoLibrarians struct {
	col    *mongo.Collection
	tracer trace.Tracer
}

func (s *mongoLibrarians) Insert(ctx context.Context, l *models.Librarian) (primitive.ObjectID, error) {
	ctx, span := s.tracer.Start(ctx, "store.librarians.insert",
		trace.WithAttributes(attribute.String("librarian.username", l.Username)),
	)
	defer span.End()

	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, l); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert librarian: %w", err)
	}
	return l.ID, nil
}

func (s *mongoLibrarians) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Librarian, error) {
	ctx, span := s.tracer.Start(ctx, "store.librarians.find_by_id",
		trace.WithAttributes(attribute.String("librarian.id", id.Hex())),
	)
	defer span.End()

	var l models.Librarian
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find librarian: %w", err)
	}
	return &l, nil
}

func (s *mongoLibrarians) FindByUsername(ctx context.Context, username string) (*models.Librarian, error) {
	ctx, span := s.tracer.Start(ctx, "store.librarians.find_by_username")
	defer span.End()

	var l models.Librarian
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find librarian by username: %w", err)
	}
	return &l, nil
}

func (s *mongoLibrarians) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Librarian, error) {
	ctx, span := s.tracer.Start(ctx, "store.librarians.find_by_username_or_email")
	defer span.End()

	var l models.Librarian
	err := s.col.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find librarian by username or email: %w", err)
	}
	return &l, nil
}

func (s *mongoLibrarians) List(ctx context.Context) ([]models.Librarian, error) {
	ctx, span := s.tracer.Start(ctx, "store.librarians.list")
	defer span.End()

	cur, err := s.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list librarians: %w", err)
	}
	var librarians []models.Librarian
	if err := cur.All(ctx, &librarians); err != nil {
		return nil, fmt.Errorf("decode librarians: %w", err)
	}
	return librarians, nil
}

func (s *mongoLibrarians) Update(ctx context.Context, l *models.Librarian) error {
	ctx, span := s.tracer.Start(ctx, "store.librarians.update",
		trace.WithAttributes(attribute.String("librarian.id", l.ID.Hex())),
	)
	defer span.End()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": l.ID}, l)
	if err != nil {
		return fmt.Errorf("update librarian: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoLibrarians) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "store.librarians.delete",
		trace.WithAttributes(attribute.String("librarian.id", id.Hex())),
	)
	defer span.End()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete librarian: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
