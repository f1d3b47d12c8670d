package database

import (
	"context"
	"errors"
	"fmt"

	"pulsechat/internal/config"
	"pulsechat/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no record
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user with the same email already exists
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store persists users and messages
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	ListUsersExcept(ctx context.Context, id string) ([]model.User, error)
	UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error)

	CreateMessage(ctx context.Context, m *model.Message) error
	Conversation(ctx context.Context, userA, userB string) ([]model.Message, error)

	Close() error
}

// Init opens the store selected by cfg.DBDriver and prepares its schema
func Init(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return OpenSQL(ctx, "mysql", dsn)
	case "sqlite":
		return OpenSQL(ctx, "sqlite", cfg.SQLitePath)
	case "mongo":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}
