// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fawa-io/filemanager/pkg/model"
)

const (
	usersCollection = "users"
	filesCollection = "files"
)

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{ID: d.ID.Hex(), Email: d.Email, PasswordHash: d.Password}
}

// fileDoc keeps the legacy layout: parentId is the string "0" for top-level
// nodes and an ObjectID otherwise.
type fileDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"userId"`
	Name       string             `bson:"name"`
	Type       string             `bson:"type"`
	IsPublic   bool               `bson:"isPublic"`
	ParentID   any                `bson:"parentId"`
	ContentRef string             `bson:"contentRef,omitempty"`
}

func (d *fileDoc) toModel() *model.FileNode {
	n := &model.FileNode{
		ID:         d.ID.Hex(),
		OwnerID:    d.UserID.Hex(),
		Name:       d.Name,
		Kind:       model.Kind(d.Type),
		Parent:     model.Root,
		IsPublic:   d.IsPublic,
		ContentRef: d.ContentRef,
	}
	switch p := d.ParentID.(type) {
	case primitive.ObjectID:
		n.Parent = model.ParentNode(p.Hex())
	case string:
		n.Parent = model.ParseParent(p)
	}
	return n
}

// MongoOptions selects the MongoDB deployment.
type MongoOptions struct {
	URI      string
	Database string
}

// MongoMetadataStore implements MetadataStore on MongoDB.
type MongoMetadataStore struct {
	client *mongo.Client
	users  *mongo.Collection
	files  *mongo.Collection
}

// NewMongoMetadataStore connects, pings the primary, and creates the
// indexes the store relies on.
func NewMongoMetadataStore(ctx context.Context, opts MongoOptions) (*MongoMetadataStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := newMongoMetadataStore(client, client.Database(opts.Database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func newMongoMetadataStore(client *mongo.Client, db *mongo.Database) *MongoMetadataStore {
	return &MongoMetadataStore{
		client: client,
		users:  db.Collection(usersCollection),
		files:  db.Collection(filesCollection),
	}
}

// EnsureIndexes makes email unique and backs the listing query.
func (s *MongoMetadataStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = s.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create files index: %w", err)
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%q: %w", id, ErrInvalidID)
	}
	return oid, nil
}

func parentValue(p model.ParentRef) (any, error) {
	if p.IsRoot() {
		return model.RootID, nil
	}
	return objectID(p.ID())
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo %s findOne: %w", coll.Name(), err)
	}
	return &doc, nil
}

func insertedHex(res *mongo.InsertOneResult) (string, error) {
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// FindUserByEmail implements the MetadataStore interface.
func (s *MongoMetadataStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	doc, err := findOne[userDoc](ctx, s.users, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// FindUserByID implements the MetadataStore interface.
func (s *MongoMetadataStore) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[userDoc](ctx, s.users, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// InsertUser implements the MetadataStore interface.
func (s *MongoMetadataStore) InsertUser(ctx context.Context, u *model.User) (string, error) {
	res, err := s.users.InsertOne(ctx, &userDoc{Email: u.Email, Password: u.PasswordHash})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
		}
		return "", fmt.Errorf("mongo users insertOne: %w", err)
	}
	return insertedHex(res)
}

// CountUsers implements the MetadataStore interface.
func (s *MongoMetadataStore) CountUsers(ctx context.Context) (int64, error) {
	return s.users.CountDocuments(ctx, bson.D{})
}

// FindFile implements the MetadataStore interface.
func (s *MongoMetadataStore) FindFile(ctx context.Context, id string) (*model.FileNode, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[fileDoc](ctx, s.files, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// InsertFile implements the MetadataStore interface.
func (s *MongoMetadataStore) InsertFile(ctx context.Context, n *model.FileNode) (string, error) {
	owner, err := objectID(n.OwnerID)
	if err != nil {
		return "", err
	}
	parent, err := parentValue(n.Parent)
	if err != nil {
		return "", err
	}
	res, err := s.files.InsertOne(ctx, &fileDoc{
		UserID:     owner,
		Name:       n.Name,
		Type:       string(n.Kind),
		IsPublic:   n.IsPublic,
		ParentID:   parent,
		ContentRef: n.ContentRef,
	})
	if err != nil {
		return "", fmt.Errorf("mongo files insertOne: %w", err)
	}
	return insertedHex(res)
}

// ListFiles implements the MetadataStore interface.
func (s *MongoMetadataStore) ListFiles(ctx context.Context, ownerID string, parent model.ParentRef, skip, limit int64) ([]*model.FileNode, error) {
	owner, err := objectID(ownerID)
	if err != nil {
		return nil, err
	}
	pv, err := parentValue(parent)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.files.Find(ctx, bson.D{{Key: "userId", Value: owner}, {Key: "parentId", Value: pv}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo files find: %w", err)
	}

	var docs []fileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo files cursor: %w", err)
	}
	nodes := make([]*model.FileNode, 0, len(docs))
	for i := range docs {
		nodes = append(nodes, docs[i].toModel())
	}
	return nodes, nil
}

// UpdateFileVisibility implements the MetadataStore interface.
func (s *MongoMetadataStore) UpdateFileVisibility(ctx context.Context, id string, public bool) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.files.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "isPublic", Value: public}}}},
	)
	if err != nil {
		return fmt.Errorf("mongo files updateOne: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountFiles implements the MetadataStore interface.
func (s *MongoMetadataStore) CountFiles(ctx context.Context) (int64, error) {
	return s.files.CountDocuments(ctx, bson.D{})
}

// Ping implements the MetadataStore interface.
func (s *MongoMetadataStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoMetadataStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
