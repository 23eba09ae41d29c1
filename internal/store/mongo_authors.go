// internal/store/mongo_authors.go
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"librekeep/internal/models"
)

type mongoAuthors struct {
	col    *mongo.Collection
	tracer trace.Tracer
}

func (s *mongoAuthors) Insert(ctx context.Context, a *models.Author) (primitive.ObjectID, error) {
	ctx, span := s.tracer.Start(ctx, "store.authors.insert",
		trace.WithAttributes(attribute.String("author.name", a.AuthorName)),
	)
	defer span.End()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert author: %w", err)
	}
	return a.ID, nil
}

func (s *mongoAuthors) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	ctx, span := s.tracer.Start(ctx, "store.authors.find_by_id",
		trace.WithAttributes(attribute.String("author.id", id.Hex())),
	)
	defer span.End()

	var a models.Author
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find author: %w", err)
	}
	return &a, nil
}

func (s *mongoAuthors) List(ctx context.Context) ([]models.Author, error) {
	ctx, span := s.tracer.Start(ctx, "store.authors.list")
	defer span.End()

	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	var authors []models.Author
	if err := cur.All(ctx, &authors); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	return authors, nil
}

func (s *mongoAuthors) Search(ctx context.Context, query string) ([]models.Author, error) {
	ctx, span := s.tracer.Start(ctx, "store.authors.search",
		trace.WithAttributes(attribute.String("query", query)),
	)
	defer span.End()

	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	cur, err := s.col.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"author_name": re},
		bson.M{"author_email": re},
	}})
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	var authors []models.Author
	if err := cur.All(ctx, &authors); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	return authors, nil
}

func (s *mongoAuthors) Update(ctx context.Context, a *models.Author) error {
	ctx, span := s.tracer.Start(ctx, "store.authors.update",
		trace.WithAttributes(attribute.String("author.id", a.ID.Hex())),
	)
	defer span.End()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoAuthors) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "store.authors.delete",
		trace.WithAttributes(attribute.String("author.id", id.Hex())),
	)
	defer span.End()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoAuthors) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "store.authors.count")
	defer span.End()

	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count authors: %w", err)
	}
	return n, nil
}
