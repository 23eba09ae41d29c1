// internal/store/mongo_test.go
package store

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"librekeep/internal/models"
)

var bookFixture = models.Book{
	ID:    primitive.NewObjectID(),
	Title: "Missing",
}

func TestMongoBooksFindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("found", func(mt *mtest.T) {
		st := NewMongo(mt.DB)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(1, "librekeep.books", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "The Dispossessed"},
			{Key: "category", Value: "SF"},
			{Key: "price", Value: 8.5},
		}))

		book, err := st.Books.FindByID(context.Background(), id)
		if err != nil {
			mt.Fatalf("FindByID returned error: %v", err)
		}
		if book.Title != "The Dispossessed" {
			mt.Errorf("unexpected title %q", book.Title)
		}
		if !book.Available() {
			mt.Errorf("expected an unborrowed book to be available")
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		st := NewMongo(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "librekeep.books", mtest.FirstBatch))

		_, err := st.Books.FindByID(context.Background(), primitive.NewObjectID())
		if err != ErrNotFound {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMongoBooksUpdateMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("no match", func(mt *mtest.T) {
		st := NewMongo(mt.DB)

		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 0},
			{Key: "nModified", Value: 0},
		})

		err := st.Books.Update(context.Background(), &bookFixture)
		if err != ErrNotFound {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMongoMembersFindByUsername(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}

	mt.Run("found", func(mt *mtest.T) {
		st := NewMongo(mt.DB)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(1, "librekeep.members", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "reader"},
			{Key: "is_active", Value: true},
		}))

		member, err := st.Members.FindByUsername(context.Background(), "reader")
		if err != nil {
			mt.Fatalf("FindByUsername returned error: %v", err)
		}
		if member.ID != id || !member.IsActive {
			mt.Errorf("unexpected member %+v", member)
		}
	})
}
