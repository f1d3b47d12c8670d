package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"pulsechat/internal/database"
	"pulsechat/internal/model"
	"pulsechat/internal/storage"
)

// MaxTextLength bounds the text of a single message, in runes
const MaxTextLength = 2000

// Notifier pushes a persisted message to its recipient in real time
type Notifier interface {
	Deliver(msg model.Message) bool
}

// MessageService implements the message façade
type MessageService struct {
	store    database.Store
	uploader storage.Uploader
	notifier Notifier
}

// NewMessageService wires the message façade to its collaborators
func NewMessageService(store database.Store, uploader storage.Uploader, notifier Notifier) *MessageService {
	return &MessageService{store: store, uploader: uploader, notifier: notifier}
}

// UsersForSidebar lists every user except userID
func (s *MessageService) UsersForSidebar(ctx context.Context, userID string) ([]model.User, error) {
	users, err := s.store.ListUsersExcept(ctx, userID)
	if err != nil {
		return nil, dependency(err)
	}
	return users, nil
}

// Conversation returns the messages between userID and otherID, oldest first
func (s *MessageService) Conversation(ctx context.Context, userID, otherID string) ([]model.Message, error) {
	if err := s.requireUser(ctx, otherID, "User not found"); err != nil {
		return nil, err
	}

	messages, err := s.store.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, dependency(err)
	}
	return messages, nil
}

// Send persists a message and then attempts realtime delivery. The persisted
// message is returned whether or not the receiver is online.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text, image string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)

	if text == "" && image == "" {
		return nil, validation("Message must contain text or an image")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, validation("Message text is too long")
	}
	if err := s.requireUser(ctx, receiverID, "Receiver not found"); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:         model.NewID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	}

	if image != "" {
		url, err := s.uploader.Upload(ctx, image)
		if err != nil {
			return nil, imageError(err)
		}
		msg.Image = url
	}

	msg.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, dependency(err)
	}

	if s.notifier != nil {
		s.notifier.Deliver(*msg)
	}
	return msg, nil
}

func (s *MessageService) requireUser(ctx context.Context, id, missing string) error {
	if id == "" {
		return validation("User id is required")
	}
	if _, err := s.store.UserByID(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound(missing)
		}
		return dependency(err)
	}
	return nil
}
