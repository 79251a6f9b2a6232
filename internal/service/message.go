package service

import (
	"net/http"
	"strings"

	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
	"github.com/microcosm-cc/bluemonday"
)

type MessageService interface {
	Create(actor *domain.AuthContext, data domain.MessageCreationData) (*domain.Message, error)
	List(actor *domain.AuthContext, forum domain.ForumId, page int) ([]*domain.Message, error)
	Delete(actor *domain.AuthContext, id domain.MsgId) error
	CastVote(actor *domain.AuthContext, id domain.MsgId, optionIndex int) (*domain.Message, error)
}

type MessageStorage interface {
	CreateMessage(data domain.MessageCreationData) (*domain.Message, error)
	GetMessage(id domain.MsgId) (*domain.Message, error)
	ListMessages(forum domain.ForumId, page, pageSize int) ([]*domain.Message, error)
	DeleteMessage(id domain.MsgId) error
	UpdatePollVotes(id domain.MsgId, user domain.UserId, remove, add []int) (*domain.Message, error)
	GetForum(id domain.ForumId) (*domain.Forum, error)
	IsMember(forum domain.ForumId, user domain.UserId) (bool, error)
	BumpForumViews(id domain.ForumId) error
}

type MessageValidator interface {
	Text(text string) error
	Poll(poll *domain.PollCreationData) error
}

// Publisher pushes a store-mutation event to the forum's realtime room.
type Publisher interface {
	Emit(ev domain.Event)
}

type Message struct {
	storage   MessageStorage
	validator MessageValidator
	events    Publisher
	sanitizer *bluemonday.Policy
	pageSize  int
}

func NewMessage(storage MessageStorage, validator MessageValidator, events Publisher, pageSize int) *Message {
	return &Message{
		storage:   storage,
		validator: validator,
		events:    events,
		sanitizer: bluemonday.StrictPolicy(),
		pageSize:  pageSize,
	}
}

// Classify maps a declared mime type to a rendering hint. Attribute-only: the
// bytes are never inspected, so the result must not drive security decisions.
func Classify(mimeType string) domain.AttachmentKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return domain.AttachmentImage
	case strings.HasPrefix(mimeType, "video/"):
		return domain.AttachmentVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return domain.AttachmentAudio
	default:
		return domain.AttachmentDocument
	}
}

// Create persists a message or reply and emits the matching room event.
//
// Reply-depth policy: a parent id referencing a reply is flattened to that
// reply's root, keeping the tree at two levels. Rejecting instead would turn
// every "reply arrived while I was replying to it" desync into a user-visible
// error, so flattening is the friendlier of the two documented options.
func (s *Message) Create(actor *domain.AuthContext, data domain.MessageCreationData) (*domain.Message, error) {
	if data.Text == "" && data.Attachment == nil && data.Poll == nil {
		return nil, &internal_errors.ValidationError{Message: "message needs text, an attachment or a poll"}
	}
	if data.Text != "" {
		if err := s.validator.Text(data.Text); err != nil {
			return nil, err
		}
	}
	if data.Poll != nil {
		if err := s.validator.Poll(data.Poll); err != nil {
			return nil, err
		}
	}

	forum, err := s.storage.GetForum(data.Forum)
	if err != nil {
		return nil, err
	}
	if err := s.checkCanPost(actor, forum); err != nil {
		return nil, err
	}

	data.Author = actor.UserId
	data.Text = s.sanitizer.Sanitize(data.Text)
	if data.Attachment != nil && data.Attachment.Kind == "" {
		data.Attachment.Kind = Classify(data.Attachment.MimeType)
	}

	if data.ParentId != nil {
		parent, err := s.storage.GetMessage(*data.ParentId)
		if err != nil {
			return nil, err
		}
		if parent.Forum != data.Forum {
			return nil, &internal_errors.ValidationError{Message: "parent message belongs to a different forum"}
		}
		if parent.IsReply() {
			data.ParentId = parent.ParentId
		}
	}

	msg, err := s.storage.CreateMessage(data)
	if err != nil {
		return nil, err
	}

	s.events.Emit(domain.NewMessageEvent(msg))
	return msg, nil
}

// List returns one page of root messages, replies populated. The first page
// counts as a forum view.
func (s *Message) List(actor *domain.AuthContext, forum domain.ForumId, page int) ([]*domain.Message, error) {
	f, err := s.storage.GetForum(forum)
	if err != nil {
		return nil, err
	}
	if err := s.checkCanPost(actor, f); err != nil {
		return nil, err
	}

	msgs, err := s.storage.ListMessages(forum, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	if page <= 1 {
		// lost bumps are invisible, ignore the error
		_ = s.storage.BumpForumViews(forum)
	}
	return msgs, nil
}

// Delete removes a message (cascading to replies for roots) and emits the
// deletion to the room. Allowed for the author and forum moderators.
func (s *Message) Delete(actor *domain.AuthContext, id domain.MsgId) error {
	msg, err := s.storage.GetMessage(id)
	if err != nil {
		return err
	}
	if msg.Author != actor.UserId {
		forum, err := s.storage.GetForum(msg.Forum)
		if err != nil {
			return err
		}
		if !actor.CanModerate(forum) {
			return internal_errors.PermissionDenied
		}
	}

	if err := s.storage.DeleteMessage(id); err != nil {
		return err
	}

	s.events.Emit(domain.DeleteMessageEvent(msg.Forum, id))
	return nil
}

// CastVote toggles the actor's vote on one poll option.
//
// Single-choice: voting the held option removes it; voting another option
// moves the vote there. Multi-choice: each option toggles independently.
func (s *Message) CastVote(actor *domain.AuthContext, id domain.MsgId, optionIndex int) (*domain.Message, error) {
	msg, err := s.storage.GetMessage(id)
	if err != nil {
		return nil, err
	}
	if msg.Poll == nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Message has no poll", StatusCode: http.StatusNotFound}
	}
	if optionIndex < 0 || optionIndex >= len(msg.Poll.Options) {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Poll option not found", StatusCode: http.StatusNotFound}
	}

	var remove, add []int
	switch msg.Poll.Type {
	case domain.PollSingleChoice:
		if msg.Poll.HasVote(actor.UserId, optionIndex) {
			remove = []int{optionIndex}
		} else {
			remove = msg.Poll.UserVotes(actor.UserId)
			add = []int{optionIndex}
		}
	default: // multi
		if msg.Poll.HasVote(actor.UserId, optionIndex) {
			remove = []int{optionIndex}
		} else {
			add = []int{optionIndex}
		}
	}

	updated, err := s.storage.UpdatePollVotes(id, actor.UserId, remove, add)
	if err != nil {
		return nil, err
	}

	s.events.Emit(domain.UpdatePollEvent(updated))
	return updated, nil
}

// checkCanPost gates reading and writing alike: public forums are open,
// private forums need membership or moderation rights.
func (s *Message) checkCanPost(actor *domain.AuthContext, forum *domain.Forum) error {
	if !forum.IsPrivate() || actor.CanModerate(forum) {
		return nil
	}
	member, err := s.storage.IsMember(forum.Id, actor.UserId)
	if err != nil {
		return err
	}
	if !member {
		return internal_errors.PermissionDenied
	}
	return nil
}
