// Package service is the authorization and orchestration layer between the
// REST/realtime surfaces and the storage layer. Every public operation
// resolves the acting principal and the target chat before touching state.
package service

import (
	"sort"
	"strings"

	"educhat/backend/internal/apperr"
	"educhat/backend/internal/models"
	"educhat/backend/internal/principal"
	"educhat/backend/internal/storage"
)

const errNotAdmin = "not an admin of this chat"

// MemberInput names a principal to be added to a chat, as it arrives from
// the REST surface.
type MemberInput struct {
	Email string               `json:"email" binding:"required,email"`
	Kind  models.PrincipalKind `json:"kind" binding:"required"`
}

type ChatService struct {
	Store storage.Storage
	Dir   principal.Directory
}

func NewChatService(store storage.Storage, dir principal.Directory) *ChatService {
	return &ChatService{Store: store, Dir: dir}
}

// GetChatSummaries returns every chat the principal belongs to, private
// chats first, each section ordered by latest activity.
func (s *ChatService) GetChatSummaries(p models.PrincipalRef) ([]models.ChatSummary, error) {
	chats, err := s.Store.ListChatsForPrincipal(p)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		member, err := s.Store.ParticipantOf(chat.ID, p)
		if err != nil {
			return nil, err
		}

		sum := models.ChatSummary{
			ChatID:       chat.ID,
			IsGroup:      chat.IsGroup,
			Name:         chat.Name,
			PictureURL:   chat.PictureURL,
			LastActivity: chat.CreatedAt,
		}

		if !chat.IsGroup {
			if err := s.fillPrivateDisplay(&sum, chat.ID, p); err != nil {
				return nil, err
			}
		}

		if latest, err := s.Store.LatestMessage(chat.ID); err != nil {
			return nil, err
		} else if latest != nil {
			sum.LastActivity = latest.Timestamp
		}

		if sum.UnreadCount, err = s.Store.UnreadCount(chat.ID, member.ID); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].IsGroup != summaries[j].IsGroup {
			return !summaries[i].IsGroup // private before group
		}
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries, nil
}

// fillPrivateDisplay names a private chat after the other member.
func (s *ChatService) fillPrivateDisplay(sum *models.ChatSummary, chatID string, self models.PrincipalRef) error {
	members, err := s.Store.ParticipantsOf(chatID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.Ref() == self {
			continue
		}
		info, err := s.Dir.Resolve(m.Ref())
		if err != nil {
			return err
		}
		sum.Name = info.Name
		sum.PictureURL = info.AvatarURL
		return nil
	}
	return nil
}

// GetChatDetail returns the full roster with resolved names and roles.
func (s *ChatService) GetChatDetail(p models.PrincipalRef, chatID string) (*models.ChatDetail, error) {
	chat, err := s.Store.GetChat(chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(chatID, p); err != nil {
		return nil, err
	}

	members, err := s.Store.ParticipantsOf(chatID)
	if err != nil {
		return nil, err
	}
	detail := &models.ChatDetail{Chat: *chat, Members: make([]models.ChatMember, 0, len(members))}
	for _, m := range members {
		name, err := s.Dir.DisplayName(m.Ref())
		if err != nil {
			return nil, err
		}
		detail.Members = append(detail.Members, models.ChatMember{
			ParticipantID: m.ID,
			PrincipalID:   m.PrincipalID,
			PrincipalKind: m.PrincipalKind,
			Name:          name,
			IsAdmin:       m.IsAdmin,
			JoinedAt:      m.JoinedAt,
		})
	}
	return detail, nil
}

// CreatePrivateChat opens (or returns) the private chat between the acting
// principal and the principal named by email.
func (s *ChatService) CreatePrivateChat(p models.PrincipalRef, otherEmail string, otherKind models.PrincipalKind) (*models.Chat, error) {
	if !otherKind.Valid() {
		return nil, apperr.InvalidArgument("unknown principal kind %q", otherKind)
	}
	other, err := s.Dir.ResolveByEmail(otherEmail, otherKind)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.InvalidArgument("member %s could not be resolved", otherEmail)
		}
		return nil, err
	}
	return s.Store.CreatePrivateChat(p, other.Ref)
}

// CreateGroupChat creates the chat with the acting principal as admin.
// Member resolution is all-or-nothing: one unknown email fails the whole
// call and no chat is created.
func (s *ChatService) CreateGroupChat(p models.PrincipalRef, name string, members []MemberInput) (*models.Chat, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidArgument("group chat name is required")
	}
	refs, err := s.resolveMembers(members)
	if err != nil {
		return nil, err
	}
	return s.Store.CreateGroupChat(name, p, refs)
}

func (s *ChatService) resolveMembers(members []MemberInput) ([]models.PrincipalRef, error) {
	refs := make([]models.PrincipalRef, 0, len(members))
	for _, m := range members {
		info, err := s.Dir.ResolveByEmail(m.Email, m.Kind)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.InvalidArgument("member %s could not be resolved", m.Email)
			}
			return nil, err
		}
		refs = append(refs, info.Ref)
	}
	return refs, nil
}

// RenameChat renames a group chat. Private chats reject the call outright.
func (s *ChatService) RenameChat(p models.PrincipalRef, chatID, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return apperr.InvalidArgument("group chat name is required")
	}
	if _, err := s.requireGroupAdmin(chatID, p); err != nil {
		return err
	}
	return s.Store.UpdateChatName(chatID, newName)
}

// AuthorizeChatEdit reports whether the principal may alter the chat's
// settings. Callers with side effects (file uploads) check this before
// acting.
func (s *ChatService) AuthorizeChatEdit(p models.PrincipalRef, chatID string) error {
	_, err := s.requireGroupAdmin(chatID, p)
	return err
}

// ChangePicture updates a group chat's picture URL (already stored by the
// file-storage collaborator).
func (s *ChatService) ChangePicture(p models.PrincipalRef, chatID, url string) error {
	if _, err := s.requireGroupAdmin(chatID, p); err != nil {
		return err
	}
	return s.Store.UpdateChatPicture(chatID, url)
}

// AddParticipants adds every named principal to a group chat. Resolution is
// all-or-nothing; a duplicate membership fails with InvalidArgument.
func (s *ChatService) AddParticipants(p models.PrincipalRef, chatID string, members []MemberInput) error {
	if _, err := s.requireGroupAdmin(chatID, p); err != nil {
		return err
	}
	refs, err := s.resolveMembers(members)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := s.Store.AddParticipant(chatID, ref, false); err != nil {
			return err
		}
	}
	return nil
}

// RemoveParticipant removes a member. Removing yourself never needs admin
// rights; removing anyone else does.
func (s *ChatService) RemoveParticipant(p models.PrincipalRef, chatID, participantID string) error {
	if _, err := s.Store.GetChat(chatID); err != nil {
		return err
	}
	target, err := s.Store.GetParticipant(participantID)
	if err != nil {
		return err
	}
	if target.ChatID != chatID {
		return apperr.NotFound("participant not found in this chat")
	}
	if target.Ref() != p {
		if err := s.requireAdmin(chatID, p); err != nil {
			return err
		}
	}
	return s.Store.RemoveParticipant(chatID, participantID)
}

// ElevateAdmin promotes a member of a group chat. Idempotent.
func (s *ChatService) ElevateAdmin(p models.PrincipalRef, chatID, participantID string) error {
	if _, err := s.requireGroupAdmin(chatID, p); err != nil {
		return err
	}
	return s.Store.SetAdmin(chatID, participantID)
}

// SendMessage validates membership, persists the message, and advances the
// sender's own read marker so their own message never counts as unread.
func (s *ChatService) SendMessage(p models.PrincipalRef, chatID, content string) (*models.Message, error) {
	if _, err := s.Store.GetChat(chatID); err != nil {
		return nil, err
	}
	if _, err := s.Dir.Resolve(p); err != nil {
		return nil, err
	}
	sender, err := s.requireMember(chatID, p)
	if err != nil {
		return nil, err
	}

	msg, err := s.Store.AppendMessage(chatID, sender.ID, content)
	if err != nil {
		return nil, err
	}
	if err := s.Store.AdvanceReadState(chatID, sender.ID); err != nil {
		// Message is already committed; a failed marker update only costs a
		// stale unread count for the sender.
		return msg, nil
	}
	return msg, nil
}

// MarkRead advances the principal's read marker and returns its membership.
func (s *ChatService) MarkRead(p models.PrincipalRef, chatID string) (*models.Participant, error) {
	if _, err := s.Store.GetChat(chatID); err != nil {
		return nil, err
	}
	member, err := s.requireMember(chatID, p)
	if err != nil {
		return nil, err
	}
	if err := s.Store.AdvanceReadState(chatID, member.ID); err != nil {
		return nil, err
	}
	return member, nil
}

// ListMessages pages the chat history newest-first for a member.
func (s *ChatService) ListMessages(p models.PrincipalRef, chatID string, page, pageSize int) ([]models.Message, error) {
	if _, err := s.Store.GetChat(chatID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(chatID, p); err != nil {
		return nil, err
	}
	return s.Store.ListMessages(chatID, page, pageSize)
}

// UnreadCount reports how many messages the principal has not read yet.
func (s *ChatService) UnreadCount(p models.PrincipalRef, chatID string) (int64, error) {
	member, err := s.requireMember(chatID, p)
	if err != nil {
		return 0, err
	}
	return s.Store.UnreadCount(chatID, member.ID)
}

// EditMessage lets a sender change the content of their own message.
func (s *ChatService) EditMessage(p models.PrincipalRef, chatID, messageID, content string) error {
	msg, member, err := s.ownMessage(p, chatID, messageID)
	if err != nil {
		return err
	}
	if msg.SenderParticipantID != member.ID {
		return apperr.Forbidden("you can only edit your own messages")
	}
	return s.Store.UpdateMessageContent(messageID, content)
}

// DeleteMessage lets a sender delete their own message.
func (s *ChatService) DeleteMessage(p models.PrincipalRef, chatID, messageID string) error {
	msg, member, err := s.ownMessage(p, chatID, messageID)
	if err != nil {
		return err
	}
	if msg.SenderParticipantID != member.ID {
		return apperr.Forbidden("you can only delete your own messages")
	}
	return s.Store.DeleteMessage(messageID)
}

// Notifications lists the principal's persisted alerts, newest first.
func (s *ChatService) Notifications(p models.PrincipalRef) ([]models.Notification, error) {
	return s.Store.ListNotifications(p)
}

func (s *ChatService) MarkNotificationRead(p models.PrincipalRef, id string) error {
	return s.Store.MarkNotificationRead(id, p)
}

func (s *ChatService) ownMessage(p models.PrincipalRef, chatID, messageID string) (*models.Message, *models.Participant, error) {
	if _, err := s.Store.GetChat(chatID); err != nil {
		return nil, nil, err
	}
	member, err := s.requireMember(chatID, p)
	if err != nil {
		return nil, nil, err
	}
	msg, err := s.Store.GetMessage(messageID)
	if err != nil {
		return nil, nil, err
	}
	if msg.ChatID != chatID {
		return nil, nil, apperr.NotFound("message not found")
	}
	return msg, member, nil
}

// requireMember fails Forbidden when the principal is not a participant.
func (s *ChatService) requireMember(chatID string, p models.PrincipalRef) (*models.Participant, error) {
	member, err := s.Store.ParticipantOf(chatID, p)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Forbidden("you are not a participant of this chat")
		}
		return nil, err
	}
	return member, nil
}

// requireAdmin fails Forbidden with the canonical message unless the
// principal is an admin member of the chat.
func (s *ChatService) requireAdmin(chatID string, p models.PrincipalRef) error {
	member, err := s.Store.ParticipantOf(chatID, p)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Forbidden(errNotAdmin)
		}
		return err
	}
	if !member.IsAdmin {
		return apperr.Forbidden(errNotAdmin)
	}
	return nil
}

// requireGroupAdmin additionally rejects the call outright for private
// chats, before any admin check.
func (s *ChatService) requireGroupAdmin(chatID string, p models.PrincipalRef) (*models.Chat, error) {
	chat, err := s.Store.GetChat(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroup {
		return nil, apperr.InvalidArgument("private chats cannot be modified")
	}
	if err := s.requireAdmin(chatID, p); err != nil {
		return nil, err
	}
	return chat, nil
}
