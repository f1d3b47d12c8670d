package service

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"pulsechat/internal/auth"
	"pulsechat/internal/database"
	"pulsechat/internal/model"
	"pulsechat/internal/storage"
)

const minPasswordLength = 6

// bcrypt only reads the first 72 bytes
const maxPasswordLength = 72

// AuthService implements signup, login, session checks and profile updates
type AuthService struct {
	store    database.Store
	uploader storage.Uploader
	signer   *auth.Signer
	maxPx    uint
}

// NewAuthService wires the auth façade to its collaborators
func NewAuthService(store database.Store, uploader storage.Uploader, signer *auth.Signer, profilePicMaxPx uint) *AuthService {
	return &AuthService{store: store, uploader: uploader, signer: signer, maxPx: profilePicMaxPx}
}

// Signup registers a user and issues a session token for it
func (s *AuthService) Signup(ctx context.Context, fullName, email, password string) (*model.User, string, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)

	if fullName == "" || email == "" || password == "" {
		return nil, "", validation("All fields are required")
	}
	if len(password) < minPasswordLength {
		return nil, "", validation("Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return nil, "", validation("Password must be at most 72 bytes")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", validation("Invalid email address")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", dependency(err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &model.User{
		ID:           model.NewID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, "", conflict("Email already exists")
		}
		return nil, "", dependency(err)
	}

	token, err := s.signer.Sign(user.ID)
	if err != nil {
		return nil, "", dependency(err)
	}
	return user, token, nil
}

// Login checks credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", unauthorized("Invalid credentials")
		}
		return nil, "", dependency(err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", unauthorized("Invalid credentials")
	}

	token, err := s.signer.Sign(user.ID)
	if err != nil {
		return nil, "", dependency(err)
	}
	return user, token, nil
}

// Authenticate resolves a session token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, unauthorized("Unauthorized - No Token Provided")
	}

	userID, err := s.signer.Verify(token)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Message: "Unauthorized - Invalid Token", Err: err}
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, dependency(err)
	}
	return user, nil
}

// UpdateProfile uploads a new profile picture and stores its URL
func (s *AuthService) UpdateProfile(ctx context.Context, userID, payload string) (*model.User, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, validation("Profile pic is required")
	}

	resized, err := storage.ProfilePicture(payload, s.maxPx)
	if err != nil {
		return nil, imageError(err)
	}

	url, err := s.uploader.Upload(ctx, resized)
	if err != nil {
		return nil, imageError(err)
	}

	user, err := s.store.UpdateProfilePic(ctx, userID, url)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, dependency(err)
	}

	log.Printf("[Auth] ✅ Updated profile picture for %s", userID)
	return user, nil
}

func imageError(err error) *Error {
	if errors.Is(err, storage.ErrInvalidPayload) {
		return &Error{Kind: KindValidation, Message: "Invalid image", Err: err}
	}
	return dependency(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
