package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pulsechat/internal/model"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		profile_pic TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS messages (
		id VARCHAR(36) PRIMARY KEY,
		sender_id VARCHAR(36) NOT NULL,
		receiver_id VARCHAR(36) NOT NULL,
		text TEXT NOT NULL,
		image TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_messages_pair (sender_id, receiver_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		profile_pic TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		sender_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at)`,
}

// SQLStore implements Store on top of database/sql (mysql or sqlite)
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens a database/sql connection pool and creates the schema
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	schema := sqliteSchema
	if driver == "mysql" {
		schema = mysqlSchema
	} else if driver == "sqlite" {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	if driver == "sqlite" {
		// SQLite は単一ライターなので接続を1本に絞る
		db.SetMaxOpenConns(1)
	}

	// 接続テスト
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Printf("✅ Database connection established (%s)", driver)
	return &SQLStore{db: db, driver: driver}, nil
}

// Close closes the underlying pool
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user; the unique index on email decides duplicates
func (s *SQLStore) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, full_name, email, password_hash, profile_pic, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.FullName, u.Email, u.PasswordHash, u.ProfilePic, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = "id, full_name, email, password_hash, profile_pic, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// UserByEmail finds a user by email
func (s *SQLStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return u, err
}

// UserByID finds a user by id
func (s *SQLStore) UserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("select user by id: %w", err)
	}
	return u, err
}

// ListUsersExcept returns every user other than id, ordered by name
func (s *SQLStore) ListUsersExcept(ctx context.Context, id string) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE id <> ? ORDER BY full_name ASC, id ASC", id)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateProfilePic stores a new picture URL and returns the updated user
func (s *SQLStore) UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := s.db.ExecContext(ctx, "UPDATE users SET profile_pic = ?, updated_at = ? WHERE id = ?", url, now, id); err != nil {
		return nil, fmt.Errorf("update profile pic: %w", err)
	}
	return s.UserByID(ctx, id)
}

// CreateMessage inserts a message
func (s *SQLStore) CreateMessage(ctx context.Context, m *model.Message) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (id, sender_id, receiver_id, text, image, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		m.ID, m.SenderID, m.ReceiverID, m.Text, m.Image, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Conversation returns the messages exchanged between userA and userB in either direction, oldest first
func (s *SQLStore) Conversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, text, image, created_at FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC`,
		userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
