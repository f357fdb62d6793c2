package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/presence"
	"github.com/kicklink/social-backend/internal/repository"
)

type CreateConversationInput struct {
	Type           model.ConversationType
	ParticipantIDs []string
	Name           *string
	AvatarURL      *string
}

type PostMessageInput struct {
	Content          string
	Type             model.MessageType
	MediaURL         *string
	SneakerID        *uint64
	TradeProposalID  *uint64
	ReplyToMessageID *uint64
}

type ConversationService interface {
	Create(ctx context.Context, in CreateConversationInput, creatorID string) (*model.Conversation, error)
	Get(ctx context.Context, convID uint64, viewerID string) (*model.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]model.Conversation, error)
	PostMessage(ctx context.Context, convID uint64, senderID string, in PostMessageInput) (*model.Message, error)
	ListMessages(ctx context.Context, convID uint64, viewerID string, limit int) ([]model.Message, error)
	MarkRead(ctx context.Context, convID uint64, userID string, uptoMessageID uint64) error
	EditMessage(ctx context.Context, messageID uint64, editorID, newContent string) (*model.Message, error)
	DeleteMessage(ctx context.Context, convID, messageID uint64, requesterID string) error
	Participants(ctx context.Context, convID uint64, viewerID string) ([]model.ConversationParticipant, error)
	ReconcileUnread(ctx context.Context, convID uint64) error
}

type conversationService struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	sneakerRepo repository.SneakerRepository
	tradeRepo   repository.TradeRepository
	hub         *presence.Hub
	notifier    NotificationService
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	sneakerRepo repository.SneakerRepository,
	tradeRepo repository.TradeRepository,
	hub *presence.Hub,
	notifier NotificationService,
) ConversationService {
	return &conversationService{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		sneakerRepo: sneakerRepo,
		tradeRepo:   tradeRepo,
		hub:         hub,
		notifier:    notifier,
	}
}

func (s *conversationService) Create(ctx context.Context, in CreateConversationInput, creatorID string) (*model.Conversation, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("%w: creator is required", ErrInvalidArgument)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown conversation type %q", ErrInvalidArgument, in.Type)
	}

	ids := dedupe(append([]string{creatorID}, in.ParticipantIDs...))
	switch in.Type {
	case model.ConversationDirect:
		if len(ids) != 2 {
			return nil, ErrInvalidParticipants
		}
		if in.Name != nil {
			return nil, fmt.Errorf("%w: direct conversations have no name", ErrInvalidArgument)
		}
		// Reuse an existing direct conversation between the same pair
		// instead of erroring on the duplicate.
		existing, err := s.convRepo.FindDirectBetween(ctx, ids[0], ids[1])
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, storageErr(err)
		}
	case model.ConversationGroup:
		if len(ids) < 2 {
			return nil, ErrInvalidParticipants
		}
	}

	cv := &model.Conversation{
		Type:          in.Type,
		Name:          in.Name,
		AvatarURL:     in.AvatarURL,
		CreatedBy:     creatorID,
		LastMessageAt: time.Now(),
	}
	participants := make([]model.ConversationParticipant, 0, len(ids))
	for _, id := range ids {
		role := model.RoleMember
		// Direct conversations have no meaningful role split; both sides
		// are admins. In groups only the creator starts as admin, which
		// keeps the at-least-one-admin invariant from day one.
		if in.Type == model.ConversationDirect || id == creatorID {
			role = model.RoleAdmin
		}
		participants = append(participants, model.ConversationParticipant{
			UserID: id,
			Role:   role,
		})
	}
	if err := s.convRepo.Create(ctx, cv, participants); err != nil {
		return nil, storageErr(err)
	}
	return cv, nil
}

func (s *conversationService) Get(ctx context.Context, convID uint64, viewerID string) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		return nil, storageErr(err)
	}
	p, err := s.requireParticipant(ctx, convID, viewerID)
	if err != nil {
		return nil, err
	}
	cv.UnreadCount = p.UnreadCount
	return cv, nil
}

func (s *conversationService) ListForUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	list, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	for i := range list {
		if p, err := s.convRepo.Participant(ctx, list[i].ID, userID); err == nil {
			list[i].UnreadCount = p.UnreadCount
		}
	}
	return list, nil
}

func (s *conversationService) PostMessage(ctx context.Context, convID uint64, senderID string, in PostMessageInput) (*model.Message, error) {
	if _, err := s.convRepo.FindByID(ctx, convID); err != nil {
		return nil, storageErr(err)
	}
	if _, err := s.requireParticipant(ctx, convID, senderID); err != nil {
		return nil, err
	}

	msgType := in.Type
	if msgType == "" {
		msgType = model.MessageText
	}
	if err := s.validateMessage(ctx, convID, msgType, in); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID:   convID,
		SenderID:         senderID,
		Content:          in.Content,
		MessageType:      msgType,
		MediaURL:         in.MediaURL,
		SneakerID:        in.SneakerID,
		TradeProposalID:  in.TradeProposalID,
		ReplyToMessageID: in.ReplyToMessageID,
	}
	if err := s.msgRepo.Append(ctx, msg); err != nil {
		return nil, storageErr(err)
	}

	s.hub.Publish(presence.Event{
		Type:           presence.EventMessage,
		ConversationID: convID,
		Payload:        msg,
	})
	if s.notifier != nil {
		parts, err := s.convRepo.ListParticipants(ctx, convID)
		if err == nil {
			for _, p := range parts {
				if p.UserID != senderID && !p.IsMuted {
					s.notifier.Notify(ctx, p.UserID, "message", "New message", preview(msg), &convID, nil, nil)
				}
			}
		}
	}
	return msg, nil
}

func (s *conversationService) validateMessage(ctx context.Context, convID uint64, msgType model.MessageType, in PostMessageInput) error {
	if !msgType.Valid() {
		return fmt.Errorf("%w: unknown message type %q", ErrInvalidArgument, msgType)
	}
	switch {
	case msgType.RequiresMedia():
		if in.MediaURL == nil || *in.MediaURL == "" {
			return fmt.Errorf("%w: %s message requires media_url", ErrInvalidMessageRef, msgType)
		}
	case msgType.RequiresSneaker():
		if in.SneakerID == nil {
			return fmt.Errorf("%w: sneaker_card message requires sneaker_id", ErrInvalidMessageRef)
		}
		if _, err := s.sneakerRepo.FindByID(ctx, *in.SneakerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: sneaker %d does not exist", ErrInvalidMessageRef, *in.SneakerID)
			}
			return storageErr(err)
		}
	case msgType.RequiresTrade():
		if in.TradeProposalID == nil {
			return fmt.Errorf("%w: trade_proposal message requires trade_proposal_id", ErrInvalidMessageRef)
		}
		if _, err := s.tradeRepo.FindByID(ctx, *in.TradeProposalID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: trade proposal %d does not exist", ErrInvalidMessageRef, *in.TradeProposalID)
			}
			return storageErr(err)
		}
	default:
		if strings.TrimSpace(in.Content) == "" {
			return fmt.Errorf("%w: content is required", ErrInvalidArgument)
		}
	}
	if in.ReplyToMessageID != nil {
		parent, err := s.msgRepo.FindByID(ctx, *in.ReplyToMessageID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: reply target does not exist", ErrInvalidMessageRef)
			}
			return storageErr(err)
		}
		if parent.ConversationID != convID {
			return fmt.Errorf("%w: reply target is in another conversation", ErrInvalidMessageRef)
		}
	}
	return nil
}

func (s *conversationService) ListMessages(ctx context.Context, convID uint64, viewerID string, limit int) ([]model.Message, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		return nil, storageErr(err)
	}
	if _, err := s.requireParticipant(ctx, convID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := s.msgRepo.ListByConversation(ctx, convID, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	// is_read projects the counterpart's read position; only a direct
	// conversation has a single counterpart to project from.
	if cv.Type == model.ConversationDirect {
		parts, err := s.convRepo.ListParticipants(ctx, convID)
		if err != nil {
			return nil, storageErr(err)
		}
		for i := range msgs {
			for _, p := range parts {
				if p.UserID != msgs[i].SenderID && !p.LastReadAt.Before(msgs[i].CreatedAt) {
					msgs[i].IsRead = true
				}
			}
		}
	}
	return msgs, nil
}

// MarkRead advances the caller's read position to the referenced message.
// Idempotent: replaying it, or passing an older message id, changes nothing.
func (s *conversationService) MarkRead(ctx context.Context, convID uint64, userID string, uptoMessageID uint64) error {
	msg, err := s.msgRepo.FindByID(ctx, uptoMessageID)
	if err != nil {
		return storageErr(err)
	}
	if msg.ConversationID != convID {
		return fmt.Errorf("%w: message is in another conversation", ErrInvalidArgument)
	}
	if _, err := s.requireParticipant(ctx, convID, userID); err != nil {
		return err
	}
	if err := s.convRepo.MarkRead(ctx, convID, userID, msg.CreatedAt); err != nil {
		return storageErr(err)
	}
	// Reading the conversation also clears its pending notifications;
	// best-effort, like the fan-out on post.
	if s.notifier != nil {
		_ = s.notifier.MarkByConversation(ctx, userID, convID)
	}
	return nil
}

func (s *conversationService) EditMessage(ctx context.Context, messageID uint64, editorID, newContent string) (*model.Message, error) {
	if strings.TrimSpace(newContent) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}
	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, storageErr(err)
	}
	if msg.IsDeleted {
		return nil, ErrNotFound
	}
	if msg.SenderID != editorID {
		return nil, ErrForbidden
	}
	msg.Content = newContent
	msg.IsEdited = true
	if err := s.msgRepo.Update(ctx, msg); err != nil {
		return nil, storageErr(err)
	}
	return msg, nil
}

func (s *conversationService) DeleteMessage(ctx context.Context, convID, messageID uint64, requesterID string) error {
	msg, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return storageErr(err)
	}
	if msg.ConversationID != convID {
		return ErrNotFound
	}
	if msg.SenderID != requesterID {
		return ErrForbidden
	}
	if err := s.msgRepo.SoftDelete(ctx, messageID); err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *conversationService) Participants(ctx context.Context, convID uint64, viewerID string) ([]model.ConversationParticipant, error) {
	if _, err := s.requireParticipant(ctx, convID, viewerID); err != nil {
		return nil, err
	}
	list, err := s.convRepo.ListParticipants(ctx, convID)
	if err != nil {
		return nil, storageErr(err)
	}
	return list, nil
}

func (s *conversationService) ReconcileUnread(ctx context.Context, convID uint64) error {
	if err := s.convRepo.RecountUnread(ctx, convID); err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *conversationService) requireParticipant(ctx context.Context, convID uint64, userID string) (*model.ConversationParticipant, error) {
	p, err := s.convRepo.Participant(ctx, convID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAParticipant
		}
		return nil, storageErr(err)
	}
	return p, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func preview(msg *model.Message) string {
	if msg.MessageType == model.MessageText && msg.Content != "" {
		if len(msg.Content) > 80 {
			return msg.Content[:80]
		}
		return msg.Content
	}
	return string(msg.MessageType)
}
