// internal/models/author.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const AuthorEntity = "author"

// Author owns an ordered list of book ids. Every listed book is expected to
// carry a back-reference in its author field, except placeholders that are
// still unassigned.
type Author struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AuthorName  string               `bson:"author_name" json:"authorName"`
	AuthorEmail string               `bson:"author_email" json:"authorEmail"`
	AuthorPhone string               `bson:"author_phone" json:"authorPhone"`
	Books       []primitive.ObjectID `bson:"books" json:"books"`
}
