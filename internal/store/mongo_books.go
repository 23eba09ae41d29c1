// internal/store/mongo_books.go
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

type mongoBooks struct {
	col    *mongo.Collection
	tracer trace.Tracer
}

func (s *mongoBooks) Insert(ctx context.Context, b *models.Book) (primitive.ObjectID, error) {
	ctx, span := s.tracer.Start(ctx, "store.books.insert",
		trace.WithAttributes(attribute.String("book.title", b.Title)),
	)
	defer span.End()

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, b); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert book: %w", err)
	}
	return b.ID, nil
}

func (s *mongoBooks) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.books.find_by_id",
		trace.WithAttributes(attribute.String("book.id", id.Hex())),
	)
	defer span.End()

	var b models.Book
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &b, nil
}

func (s *mongoBooks) FindByTitle(ctx context.Context, title string) (*models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.books.find_by_title",
		trace.WithAttributes(attribute.String("book.title", title)),
	)
	defer span.End()

	var b models.Book
	err := s.col.FindOne(ctx, bson.M{"title": title}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book by title: %w", err)
	}
	return &b, nil
}

func (s *mongoBooks) List(ctx context.Context) ([]models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.books.list")
	defer span.End()

	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

func (s *mongoBooks) ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.books.list_by_author",
		trace.WithAttributes(attribute.String("author.id", authorID.Hex())),
	)
	defer span.End()

	cur, err := s.col.Find(ctx, bson.M{"author": authorID})
	if err != nil {
		return nil, fmt.Errorf("list books by author: %w", err)
	}
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

func (s *mongoBooks) Search(ctx context.Context, query, category string, availableOnly bool) ([]models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.books.search",
		trace.WithAttributes(attribute.String("query", query)),
	)
	defer span.End()

	filter := bson.M{}
	if query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"category": re},
		}
	}
	if category != "" {
		filter["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(category), Options: "i"}
	}
	if availableOnly {
		filter["borrower"] = nil
	}

	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

func (s *mongoBooks) Update(ctx context.Context, b *models.Book) error {
	ctx, span := s.tracer.Start(ctx, "store.books.update",
		trace.WithAttributes(attribute.String("book.id", b.ID.Hex())),
	)
	defer span.End()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoBooks) ClearAuthor(ctx context.Context, authorID primitive.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "store.books.clear_author",
		trace.WithAttributes(attribute.String("author.id", authorID.Hex())),
	)
	defer span.End()

	_, err := s.col.UpdateMany(ctx,
		bson.M{"author": authorID},
		bson.M{"$set": bson.M{"author": nil}},
	)
	if err != nil {
		return fmt.Errorf("clear author on books: %w", err)
	}
	return nil
}

func (s *mongoBooks) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "store.books.delete",
		trace.WithAttributes(attribute.String("book.id", id.Hex())),
	)
	defer span.End()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoBooks) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "store.books.count")
	defer span.End()

	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}
