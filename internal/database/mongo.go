package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"pulsechat/internal/model"
)

// MongoStore implements Store on MongoDB with users and messages collections
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	messages *mongo.Collection
}

// OpenMongo connects to MongoDB and ensures the indexes exist
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:   client,
		users:    db.Collection("users"),
		messages: db.Collection("messages"),
	}

	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uq_users_email"),
	}); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create users index: %w", err)
	}

	if _, err := s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("idx_messages_pair"),
	}); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create messages index: %w", err)
	}

	log.Printf("✅ MongoDB connection established (%s)", dbName)
	return s, nil
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// CreateUser inserts a user document
func (s *MongoStore) CreateUser(ctx context.Context, u *model.User) error {
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// UserByEmail finds a user by email
func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// UserByID finds a user by id
func (s *MongoStore) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// ListUsersExcept returns every user other than id without password hashes
func (s *MongoStore) ListUsersExcept(ctx context.Context, id string) ([]model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "fullName", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"password": 0})

	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$ne": id}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpdateProfilePic sets the picture URL and returns the document after the update
func (s *MongoStore) UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error) {
	update := bson.M{"$set": bson.M{"profilePic": url, "updatedAt": time.Now().UTC().Truncate(time.Millisecond)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u model.User
	if err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile pic: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// CreateMessage inserts a message document
func (s *MongoStore) CreateMessage(ctx context.Context, m *model.Message) error {
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Conversation returns the messages exchanged between userA and userB, oldest first
func (s *MongoStore) Conversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": userA, "receiverId": userB},
		bson.M{"senderId": userB, "receiverId": userA},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	messages := []model.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	for i := range messages {
		messages[i].CreatedAt = messages[i].CreatedAt.UTC()
	}
	return messages, nil
}
