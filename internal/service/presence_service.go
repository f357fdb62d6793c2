package service

import (
	"context"
	"errors"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/presence"
	"github.com/kicklink/social-backend/internal/repository"
)

// PresenceService is the ephemeral overlay on top of the durable stores:
// typing indicators, message reactions and online status. Everything here
// may be lost without corrupting conversations or comments.
type PresenceService interface {
	SetTyping(ctx context.Context, convID uint64, userID, username string, isTyping bool) error
	Typing(ctx context.Context, convID uint64, viewerID string) ([]model.TypingIndicator, error)
	// React toggles the (message, user, emoji) triple and reports whether
	// the reaction is now present.
	React(ctx context.Context, messageID uint64, userID, emoji string) (bool, error)
	// Unreact removes the triple if present. Idempotent.
	Unreact(ctx context.Context, messageID uint64, userID, emoji string) error
	Reactions(ctx context.Context, messageID uint64) ([]model.ReactionGroup, error)
	Subscribe(ctx context.Context, convID uint64, userID string) (<-chan presence.Event, func(), error)
	Heartbeat(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) bool
}

type presenceService struct {
	convRepo  repository.ConversationRepository
	msgRepo   repository.MessageRepository
	hub       *presence.Hub
	typing    *presence.TypingTracker
	reactions *presence.ReactionSet
	online    *presence.OnlineTracker
}

func NewPresenceService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	hub *presence.Hub,
	typing *presence.TypingTracker,
	reactions *presence.ReactionSet,
	online *presence.OnlineTracker,
) PresenceService {
	return &presenceService{
		convRepo:  convRepo,
		msgRepo:   msgRepo,
		hub:       hub,
		typing:    typing,
		reactions: reactions,
		online:    online,
	}
}

func (s *presenceService) SetTyping(ctx context.Context, convID uint64, userID, username string, isTyping bool) error {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return err
	}
	ind := model.TypingIndicator{
		ConversationID: convID,
		UserID:         userID,
		Username:       username,
		IsTyping:       isTyping,
	}
	s.typing.Set(ind)
	s.hub.Publish(presence.Event{
		Type:           presence.EventTyping,
		ConversationID: convID,
		Payload:        ind,
	})
	return nil
}

func (s *presenceService) Typing(ctx context.Context, convID uint64, viewerID string) ([]model.TypingIndicator, error) {
	if err := s.requireParticipant(ctx, convID, viewerID); err != nil {
		return nil, err
	}
	return s.typing.Active(convID), nil
}

func (s *presenceService) React(ctx context.Context, messageID uint64, userID, emoji string) (bool, error) {
	if emoji == "" {
		return false, ErrInvalidArgument
	}
	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return false, storageErr(err)
	}
	if err := s.requireParticipant(ctx, msg.ConversationID, userID); err != nil {
		return false, err
	}
	added := s.reactions.Toggle(messageID, userID, emoji)
	s.hub.Publish(presence.Event{
		Type:           presence.EventReaction,
		ConversationID: msg.ConversationID,
		Payload: model.MessageReaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
		},
	})
	return added, nil
}

func (s *presenceService) Unreact(ctx context.Context, messageID uint64, userID, emoji string) error {
	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return storageErr(err)
	}
	if err := s.requireParticipant(ctx, msg.ConversationID, userID); err != nil {
		return err
	}
	if s.reactions.Remove(messageID, userID, emoji) {
		s.hub.Publish(presence.Event{
			Type:           presence.EventReaction,
			ConversationID: msg.ConversationID,
			Payload: model.MessageReaction{
				MessageID: messageID,
				UserID:    userID,
				Emoji:     emoji,
			},
		})
	}
	return nil
}

func (s *presenceService) Reactions(ctx context.Context, messageID uint64) ([]model.ReactionGroup, error) {
	if _, err := s.msgRepo.FindByID(ctx, messageID); err != nil {
		return nil, storageErr(err)
	}
	return s.reactions.Groups(messageID), nil
}

func (s *presenceService) Subscribe(ctx context.Context, convID uint64, userID string) (<-chan presence.Event, func(), error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(convID)
	return ch, cancel, nil
}

func (s *presenceService) Heartbeat(ctx context.Context, userID string) error {
	if err := s.online.Heartbeat(ctx, userID); err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *presenceService) Offline(ctx context.Context, userID string) error {
	if err := s.online.MarkOffline(ctx, userID); err != nil {
		return storageErr(err)
	}
	return nil
}

// IsOnline is best-effort: a redis error reads as offline rather than
// failing the caller.
func (s *presenceService) IsOnline(ctx context.Context, userID string) bool {
	on, err := s.online.IsOnline(ctx, userID)
	if err != nil {
		return false
	}
	return on
}

func (s *presenceService) requireParticipant(ctx context.Context, convID uint64, userID string) error {
	if _, err := s.convRepo.Participant(ctx, convID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAParticipant
		}
		return storageErr(err)
	}
	return nil
}
