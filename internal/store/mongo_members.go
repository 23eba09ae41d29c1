// internal/store/mongo_members.go
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

type mongoMembers struct {
	col    *mongo.Collection
	tracer trace.Tracer
}

func (s *mongoMembers) Insert(ctx context.Context, m *models.Member) (primitive.ObjectID, error) {
	ctx, span := s.tracer.Start(ctx, "store.members.insert",
		trace.WithAttributes(attribute.String("member.username", m.Username)),
	)
	defer span.End()

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, m); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert member: %w", err)
	}
	return m.ID, nil
}

func (s *mongoMembers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "store.members.find_by_id",
		trace.WithAttributes(attribute.String("member.id", id.Hex())),
	)
	defer span.End()

	var m models.Member
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &m, nil
}

func (s *mongoMembers) FindByUsername(ctx context.Context, username string) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "store.members.find_by_username")
	defer span.End()

	var m models.Member
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find member by username: %w", err)
	}
	return &m, nil
}

func (s *mongoMembers) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "store.members.find_by_username_or_email")
	defer span.End()

	var m models.Member
	err := s.col.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find member by username or email: %w", err)
	}
	return &m, nil
}

func (s *mongoMembers) List(ctx context.Context) ([]models.Member, error) {
	ctx, span := s.tracer.Start(ctx, "store.members.list")
	defer span.End()

	// Newest memberships first, matching the staff dashboard ordering.
	cur, err := s.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "membership_date", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	var members []models.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return members, nil
}

func (s *mongoMembers) Update(ctx context.Context, m *models.Member) error {
	ctx, span := s.tracer.Start(ctx, "store.members.update",
		trace.WithAttributes(attribute.String("member.id", m.ID.Hex())),
	)
	defer span.End()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoMembers) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "store.members.delete",
		trace.WithAttributes(attribute.String("member.id", id.Hex())),
	)
	defer span.End()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoMembers) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "store.members.count")
	defer span.End()

	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}
