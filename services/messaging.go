package services

import (
	"log"
	"strings"

	"school-portal-server/models"
)

// Subject used when a compose request leaves the subject blank.
const DefaultSubject = "(no subject)"

// Compose modes accepted over the wire.
const (
	ModeDirect    = "direct"
	ModeBroadcast = "broadcast"
)

// Viewer identifies the user an inbox, thread or read flip is computed for.
type Viewer struct {
	ID   uint
	Role string
}

// MessagingService implements the portal messaging core: composing direct and
// broadcast messages, replying within a thread, assembling inbox/sent/thread
// views and tracking read state. All persistence goes through the
// MessageStore; cache may be nil.
type MessagingService struct {
	store MessageStore
	cache *UnreadCache
}

func NewMessagingService(store MessageStore, cache *UnreadCache) *MessagingService {
	return &MessagingService{store: store, cache: cache}
}

// ComposeRequest is a new top-level message before addressing resolution.
type ComposeRequest struct {
	Mode        string
	RecipientID *uint
	Audience    *string
	Subject     string
	Body        string
}

// InboxView is a viewer's inbox plus their unread badge.
type InboxView struct {
	Messages    []models.Message `json:"messages"`
	UnreadCount int64            `json:"unreadCount"`
}

// MessageView annotates a message with whether the viewer authored it.
type MessageView struct {
	models.Message
	Mine bool `json:"mine"`
}

// ThreadView is a root message with its ordered replies. OtherPartyID is the
// identity a reply from the viewer would be addressed to; nil when the viewer
// authored an unaddressed broadcast and no reply target exists.
type ThreadView struct {
	Root         MessageView   `json:"root"`
	Replies      []MessageView `json:"replies"`
	OtherPartyID *uint         `json:"otherPartyID,omitempty"`
}

// Compose validates and persists a new top-level message. Only admins may
// originate broadcasts; every validation failure is raised before the store
// is touched.
func (s *MessagingService) Compose(sender Viewer, req ComposeRequest) (*models.Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	var to Addressee
	switch req.Mode {
	case ModeDirect:
		if req.RecipientID == nil {
			return nil, ErrMissingRecipient
		}
		to = Direct(*req.RecipientID)
	case ModeBroadcast:
		if req.Audience == nil || strings.TrimSpace(*req.Audience) == "" {
			return nil, ErrMissingAudience
		}
		if sender.Role != models.RoleAdmin {
			return nil, ErrBroadcastForbidden
		}
		if *req.Audience == models.AudienceAll {
			to = Everyone()
		} else {
			to = RoleBroadcast(*req.Audience)
		}
	default:
		return nil, ErrInvalidAddressee
	}

	recipientID, targetRole, err := to.Resolve(sender.ID)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = DefaultSubject
	}

	msg := models.Message{
		SenderID:    sender.ID,
		RecipientID: recipientID,
		TargetRole:  targetRole,
		Subject:     subject,
		Body:        body,
	}
	if err := s.store.Insert(&msg); err != nil {
		return nil, err
	}

	if recipientID != nil {
		s.cache.Invalidate(*recipientID)
	}
	return &msg, nil
}

// Reply creates a direct message back to the thread's other party and links
// it under the root.
func (s *MessagingService) Reply(sender Viewer, rootID uint, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	root, err := s.store.Get(rootID)
	if err != nil {
		return nil, err
	}
	if root.IsReply() {
		return nil, ErrNotThreadRoot
	}
	if !visibleTo(root, sender) {
		return nil, ErrNotVisible
	}

	target := otherParty(root, sender.ID)
	if target == nil {
		return nil, ErrNoReplyTarget
	}

	reply := models.Message{
		SenderID:        sender.ID,
		RecipientID:     target,
		Subject:         "Re: " + root.Subject,
		Body:            body,
		ParentMessageID: &root.ID,
	}
	if err := s.store.Insert(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Inbox assembles the top-level messages a viewer can see together with
// their unread badge.
func (s *MessagingService) Inbox(viewer Viewer) (*InboxView, error) {
	msgs, err := s.store.Inbox(viewer.ID, viewer.Role)
	if err != nil {
		return nil, err
	}
	unread, err := s.UnreadCount(viewer)
	if err != nil {
		return nil, err
	}
	return &InboxView{Messages: msgs, UnreadCount: unread}, nil
}

// Sent assembles the viewer's outbox. A sender's own messages carry no read
// state.
func (s *MessagingService) Sent(viewer Viewer) ([]models.Message, error) {
	return s.store.Sent(viewer.ID)
}

// Message returns a single message by id.
func (s *MessagingService) Message(id uint) (*models.Message, error) {
	return s.store.Get(id)
}

// OpenThread returns the thread rooted at rootID as seen by the viewer,
// marking the root read when the viewer is its direct recipient. Viewers
// with no claim on the root (not a party, no role match) get ErrNotVisible.
func (s *MessagingService) OpenThread(rootID uint, viewer Viewer) (*ThreadView, error) {
	root, err := s.store.Get(rootID)
	if err != nil {
		return nil, err
	}
	if root.IsReply() {
		return nil, ErrNotThreadRoot
	}
	if !visibleTo(root, viewer) {
		return nil, ErrNotVisible
	}

	// A failed read flip must not block viewing the thread.
	if updated, err := s.MarkRead(root.ID, viewer); err != nil {
		log.Println("messaging: mark read on thread open failed:", err)
	} else {
		root = updated
	}

	replies, err := s.store.Replies(root.ID)
	if err != nil {
		return nil, err
	}

	view := &ThreadView{
		Root:         MessageView{Message: *root, Mine: root.SenderID == viewer.ID},
		Replies:      make([]MessageView, 0, len(replies)),
		OtherPartyID: otherParty(root, viewer.ID),
	}
	for _, r := range replies {
		view.Replies = append(view.Replies, MessageView{Message: r, Mine: r.SenderID == viewer.ID})
	}
	return view, nil
}

// MarkRead flips a direct message's read flag the first time its recipient
// opens it. It is a no-op for broadcasts, for parties other than the
// recipient, and for messages already read. Viewers with no claim on the
// message at all get ErrNotVisible rather than the message back.
func (s *MessagingService) MarkRead(messageID uint, viewer Viewer) (*models.Message, error) {
	msg, err := s.store.Get(messageID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(msg, viewer) {
		return nil, ErrNotVisible
	}
	if msg.RecipientID == nil || *msg.RecipientID != viewer.ID || msg.IsRead {
		return msg, nil
	}
	if err := s.store.MarkRead(msg.ID); err != nil {
		return nil, err
	}
	msg.IsRead = true
	s.cache.Invalidate(viewer.ID)
	return msg, nil
}

// UnreadCount returns the viewer's unread badge, served from the cache when
// warm.
func (s *MessagingService) UnreadCount(viewer Viewer) (int64, error) {
	if n, ok := s.cache.Get(viewer.ID); ok {
		return n, nil
	}
	n, err := s.store.CountUnread(viewer.ID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(viewer.ID, n)
	return n, nil
}

// otherParty computes who a reply from viewerID within the thread rooted at
// root would address: the root's recipient when the viewer started the
// thread, otherwise the root's sender. Nil when the viewer authored a
// broadcast, which has no single counterpart.
func otherParty(root *models.Message, viewerID uint) *uint {
	if root.SenderID == viewerID {
		if root.RecipientID == nil {
			return nil
		}
		id := *root.RecipientID
		return &id
	}
	id := root.SenderID
	return &id
}

// visibleTo reports whether a top-level message belongs in the viewer's
// inbox or outbox: they sent it, it is addressed to them, or its audience
// covers their role.
func visibleTo(root *models.Message, viewer Viewer) bool {
	if root.SenderID == viewer.ID {
		return true
	}
	if root.RecipientID != nil && *root.RecipientID == viewer.ID {
		return true
	}
	if root.TargetRole != nil && (*root.TargetRole == viewer.Role || *root.TargetRole == models.AudienceAll) {
		return true
	}
	return false
}
