package service

import (
	"testing"

	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock structs
type MockMessageStorage struct {
	CreateMessageFunc   func(data domain.MessageCreationData) (*domain.Message, error)
	GetMessageFunc      func(id domain.MsgId) (*domain.Message, error)
	ListMessagesFunc    func(forum domain.ForumId, page, pageSize int) ([]*domain.Message, error)
	DeleteMessageFunc   func(id domain.MsgId) error
	UpdatePollVotesFunc func(id domain.MsgId, user domain.UserId, remove, add []int) (*domain.Message, error)
	GetForumFunc        func(id domain.ForumId) (*domain.Forum, error)
	IsMemberFunc        func(forum domain.ForumId, user domain.UserId) (bool, error)

	ViewBumps int
}

func (m *MockMessageStorage) CreateMessage(data domain.MessageCreationData) (*domain.Message, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(data)
	}
	return &domain.Message{Id: 1, Forum: data.Forum, Author: data.Author, Text: data.Text, ParentId: data.ParentId, Replies: []*domain.Message{}}, nil
}

func (m *MockMessageStorage) GetMessage(id domain.MsgId) (*domain.Message, error) {
	if m.GetMessageFunc != nil {
		return m.GetMessageFunc(id)
	}
	return &domain.Message{Id: id}, nil
}

func (m *MockMessageStorage) ListMessages(forum domain.ForumId, page, pageSize int) ([]*domain.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(forum, page, pageSize)
	}
	return []*domain.Message{}, nil
}

func (m *MockMessageStorage) DeleteMessage(id domain.MsgId) error {
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(id)
	}
	return nil
}

func (m *MockMessageStorage) UpdatePollVotes(id domain.MsgId, user domain.UserId, remove, add []int) (*domain.Message, error) {
	if m.UpdatePollVotesFunc != nil {
		return m.UpdatePollVotesFunc(id, user, remove, add)
	}
	return &domain.Message{Id: id}, nil
}

func (m *MockMessageStorage) GetForum(id domain.ForumId) (*domain.Forum, error) {
	if m.GetForumFunc != nil {
		return m.GetForumFunc(id)
	}
	return &domain.Forum{Id: id, Visibility: domain.VisibilityPublic}, nil
}

func (m *MockMessageStorage) IsMember(forum domain.ForumId, user domain.UserId) (bool, error) {
	if m.IsMemberFunc != nil {
		return m.IsMemberFunc(forum, user)
	}
	return false, nil
}

func (m *MockMessageStorage) BumpForumViews(id domain.ForumId) error {
	m.ViewBumps++
	return nil
}

type MockValidator struct {
	TextFunc func(text string) error
	PollFunc func(poll *domain.PollCreationData) error
}

func (m *MockValidator) Text(text string) error {
	if m.TextFunc != nil {
		return m.TextFunc(text)
	}
	return nil
}

func (m *MockValidator) Poll(poll *domain.PollCreationData) error {
	if m.PollFunc != nil {
		return m.PollFunc(poll)
	}
	return nil
}

type MockPublisher struct {
	Events []domain.Event
}

func (m *MockPublisher) Emit(ev domain.Event) {
	m.Events = append(m.Events, ev)
}

func newTestService(storage *MockMessageStorage) (*Message, *MockPublisher) {
	events := &MockPublisher{}
	return NewMessage(storage, &MockValidator{}, events, 20), events
}

func actor(id domain.UserId) *domain.AuthContext {
	return &domain.AuthContext{UserId: id}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, domain.AttachmentImage, Classify("image/png"))
	assert.Equal(t, domain.AttachmentVideo, Classify("video/mp4"))
	assert.Equal(t, domain.AttachmentAudio, Classify("audio/webm"))
	assert.Equal(t, domain.AttachmentDocument, Classify("application/pdf"))
	assert.Equal(t, domain.AttachmentDocument, Classify(""))
}

func TestMessageCreate(t *testing.T) {
	storage := &MockMessageStorage{}
	service, events := newTestService(storage)

	msg, err := service.Create(actor(7), domain.MessageCreationData{Forum: 1, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserId(7), msg.Author)
	require.Len(t, events.Events, 1)
	assert.Equal(t, domain.EventNewMessage, events.Events[0].Type)
	assert.Equal(t, domain.ForumId(1), events.Events[0].Forum)

	// empty message: no text, attachment or poll
	_, err = service.Create(actor(7), domain.MessageCreationData{Forum: 1})
	var validationErr *internal_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Len(t, events.Events, 1, "no event for rejected create")

	// attachment-only messages are fine and get classified
	var created domain.MessageCreationData
	storage.CreateMessageFunc = func(data domain.MessageCreationData) (*domain.Message, error) {
		created = data
		return &domain.Message{Id: 2, Forum: data.Forum, Attachment: data.Attachment}, nil
	}
	_, err = service.Create(actor(7), domain.MessageCreationData{
		Forum:      1,
		Attachment: &domain.Attachment{Filename: "clip.webm", MimeType: "audio/webm"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AttachmentAudio, created.Attachment.Kind)
}

func TestMessageCreateSanitizesText(t *testing.T) {
	storage := &MockMessageStorage{}
	service, _ := newTestService(storage)

	var created domain.MessageCreationData
	storage.CreateMessageFunc = func(data domain.MessageCreationData) (*domain.Message, error) {
		created = data
		return &domain.Message{Id: 1, Forum: data.Forum, Text: data.Text}, nil
	}

	_, err := service.Create(actor(1), domain.MessageCreationData{Forum: 1, Text: `hi<script>alert("x")</script>`})
	require.NoError(t, err)
	assert.Equal(t, "hi", created.Text)
}

func TestMessageCreateReply(t *testing.T) {
	storage := &MockMessageStorage{}
	service, events := newTestService(storage)

	rootId := domain.MsgId(10)
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return &domain.Message{Id: id, Forum: 1}, nil
	}

	msg, err := service.Create(actor(7), domain.MessageCreationData{Forum: 1, Text: "re", ParentId: &rootId})
	require.NoError(t, err)
	require.NotNil(t, msg.ParentId)
	assert.Equal(t, rootId, *msg.ParentId)
	require.Len(t, events.Events, 1)
	assert.Equal(t, domain.EventNewReply, events.Events[0].Type)

	// parent in a different forum is rejected
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return &domain.Message{Id: id, Forum: 99}, nil
	}
	_, err = service.Create(actor(7), domain.MessageCreationData{Forum: 1, Text: "re", ParentId: &rootId})
	var validationErr *internal_errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestMessageCreateFlattensNestedReply(t *testing.T) {
	storage := &MockMessageStorage{}
	service, _ := newTestService(storage)

	rootId := domain.MsgId(10)
	replyId := domain.MsgId(11)
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		if id == replyId {
			return &domain.Message{Id: replyId, Forum: 1, ParentId: &rootId}, nil
		}
		return &domain.Message{Id: id, Forum: 1}, nil
	}

	var created domain.MessageCreationData
	storage.CreateMessageFunc = func(data domain.MessageCreationData) (*domain.Message, error) {
		created = data
		return &domain.Message{Id: 12, Forum: data.Forum, ParentId: data.ParentId}, nil
	}

	// replying to a reply attaches to the root instead
	_, err := service.Create(actor(7), domain.MessageCreationData{Forum: 1, Text: "re", ParentId: &replyId})
	require.NoError(t, err)
	require.NotNil(t, created.ParentId)
	assert.Equal(t, rootId, *created.ParentId)
}

func TestMessageCreatePrivateForum(t *testing.T) {
	storage := &MockMessageStorage{}
	service, _ := newTestService(storage)

	storage.GetForumFunc = func(id domain.ForumId) (*domain.Forum, error) {
		return &domain.Forum{Id: id, Visibility: domain.VisibilityPrivate}, nil
	}

	// non-member
	_, err := service.Create(actor(7), domain.MessageCreationData{Forum: 1, Text: "hi"})
	assert.ErrorIs(t, err, internal_errors.PermissionDenied)

	// member
	storage.IsMemberFunc = func(forum domain.ForumId, user domain.UserId) (bool, error) { return true, nil }
	_, err = service.Create(actor(7), domain.MessageCreationData{Forum: 1, Text: "hi"})
	assert.NoError(t, err)

	// admin bypasses membership
	storage.IsMemberFunc = func(forum domain.ForumId, user domain.UserId) (bool, error) { return false, nil }
	_, err = service.Create(&domain.AuthContext{UserId: 8, IsSuperAdmin: true}, domain.MessageCreationData{Forum: 1, Text: "hi"})
	assert.NoError(t, err)
}

func TestMessageList(t *testing.T) {
	storage := &MockMessageStorage{}
	service, _ := newTestService(storage)

	var gotPage, gotPageSize int
	storage.ListMessagesFunc = func(forum domain.ForumId, page, pageSize int) ([]*domain.Message, error) {
		gotPage, gotPageSize = page, pageSize
		return []*domain.Message{{Id: 1, Forum: forum}}, nil
	}

	msgs, err := service.List(actor(7), 1, 1)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 20, gotPageSize)
	assert.Equal(t, 1, storage.ViewBumps, "first page counts as a view")

	_, err = service.List(actor(7), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, storage.ViewBumps, "later pages dont bump views")
}

func TestMessageDelete(t *testing.T) {
	storage := &MockMessageStorage{}
	service, events := newTestService(storage)

	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return &domain.Message{Id: id, Forum: 3, Author: 7}, nil
	}

	// author may delete
	require.NoError(t, service.Delete(actor(7), 1))
	require.Len(t, events.Events, 1)
	assert.Equal(t, domain.EventDeleteMessage, events.Events[0].Type)
	assert.Equal(t, domain.MsgId(1), events.Events[0].MessageId)
	assert.Equal(t, domain.ForumId(3), events.Events[0].Forum)

	// stranger may not
	err := service.Delete(actor(8), 1)
	assert.ErrorIs(t, err, internal_errors.PermissionDenied)
	assert.Len(t, events.Events, 1)

	// admin may
	require.NoError(t, service.Delete(&domain.AuthContext{UserId: 8, IsSuperAdmin: true}, 1))
	assert.Len(t, events.Events, 2)
}

func pollMessage(pollType domain.PollType, votes ...domain.PollVote) *domain.Message {
	return &domain.Message{
		Id:    1,
		Forum: 1,
		Poll: &domain.Poll{
			Question: "Pick one",
			Type:     pollType,
			Options:  []domain.PollOption{{Text: "A"}, {Text: "B"}},
			Votes:    votes,
		},
	}
}

func TestCastVoteSingleChoice(t *testing.T) {
	storage := &MockMessageStorage{}
	service, events := newTestService(storage)

	var gotRemove, gotAdd []int
	storage.UpdatePollVotesFunc = func(id domain.MsgId, user domain.UserId, remove, add []int) (*domain.Message, error) {
		gotRemove, gotAdd = remove, add
		return pollMessage(domain.PollSingleChoice), nil
	}

	// no existing vote: plain add
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return pollMessage(domain.PollSingleChoice), nil
	}
	_, err := service.CastVote(actor(7), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, gotRemove)
	assert.Equal(t, []int{0}, gotAdd)
	require.Len(t, events.Events, 1)
	assert.Equal(t, domain.EventUpdatePoll, events.Events[0].Type)

	// same option again: unvote
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return pollMessage(domain.PollSingleChoice, domain.PollVote{User: 7, OptionIndex: 0}), nil
	}
	_, err = service.CastVote(actor(7), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, gotRemove)
	assert.Empty(t, gotAdd)

	// different option: the old vote moves
	_, err = service.CastVote(actor(7), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, gotRemove)
	assert.Equal(t, []int{1}, gotAdd)
}

func TestCastVoteMultiChoice(t *testing.T) {
	storage := &MockMessageStorage{}
	service, _ := newTestService(storage)

	var gotRemove, gotAdd []int
	storage.UpdatePollVotesFunc = func(id domain.MsgId, user domain.UserId, remove, add []int) (*domain.Message, error) {
		gotRemove, gotAdd = remove, add
		return pollMessage(domain.PollMultiChoice), nil
	}

	// vote on B does not touch the existing vote on A
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return pollMessage(domain.PollMultiChoice, domain.PollVote{User: 7, OptionIndex: 0}), nil
	}
	_, err := service.CastVote(actor(7), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, gotRemove)
	assert.Equal(t, []int{1}, gotAdd)

	// voting A again toggles only A
	_, err = service.CastVote(actor(7), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, gotRemove)
	assert.Empty(t, gotAdd)
}

func TestCastVoteErrors(t *testing.T) {
	storage := &MockMessageStorage{}
	service, events := newTestService(storage)

	// message without a poll
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return &domain.Message{Id: id, Forum: 1}, nil
	}
	_, err := service.CastVote(actor(7), 1, 0)
	require.Error(t, err)
	assert.Equal(t, 404, internal_errors.StatusCode(err))

	// option index out of range
	storage.GetMessageFunc = func(id domain.MsgId) (*domain.Message, error) {
		return pollMessage(domain.PollSingleChoice), nil
	}
	_, err = service.CastVote(actor(7), 1, 2)
	require.Error(t, err)
	assert.Equal(t, 404, internal_errors.StatusCode(err))

	_, err = service.CastVote(actor(7), 1, -1)
	require.Error(t, err)
	assert.Equal(t, 404, internal_errors.StatusCode(err))

	assert.Empty(t, events.Events)
}
