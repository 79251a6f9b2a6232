package service

import (
	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
)

type ForumService interface {
	Create(actor *domain.AuthContext, data domain.ForumCreationData) (domain.ForumId, error)
	Get(actor *domain.AuthContext, id domain.ForumId) (*domain.Forum, error)
	List(actor *domain.AuthContext) ([]*domain.Forum, error)
	Delete(actor *domain.AuthContext, id domain.ForumId) error
	Join(actor *domain.AuthContext, id domain.ForumId) error
	Leave(actor *domain.AuthContext, id domain.ForumId) error
}

type ForumStorage interface {
	CreateForum(data domain.ForumCreationData) (domain.ForumId, error)
	GetForum(id domain.ForumId) (*domain.Forum, error)
	ListForums() ([]*domain.Forum, error)
	DeleteForum(id domain.ForumId) error
	AddMember(forum domain.ForumId, user domain.UserId) error
	RemoveMember(forum domain.ForumId, user domain.UserId) error
	IsMember(forum domain.ForumId, user domain.UserId) (bool, error)
}

type ForumValidator interface {
	Title(title string) error
}

type Forum struct {
	storage   ForumStorage
	validator ForumValidator
}

func NewForum(storage ForumStorage, validator ForumValidator) *Forum {
	return &Forum{storage, validator}
}

func (s *Forum) Create(actor *domain.AuthContext, data domain.ForumCreationData) (domain.ForumId, error) {
	if err := s.validator.Title(data.Title); err != nil {
		return -1, err
	}
	if data.Visibility == "" {
		data.Visibility = domain.VisibilityPublic
	}
	if data.Visibility != domain.VisibilityPublic && data.Visibility != domain.VisibilityPrivate {
		return -1, &internal_errors.ValidationError{Message: "visibility must be public or private"}
	}

	// creating a forum needs moderation rights over its owning club/board
	prospective := &domain.Forum{ClubId: data.ClubId, BoardId: data.BoardId}
	if !actor.CanModerate(prospective) {
		return -1, internal_errors.PermissionDenied
	}

	data.CreatedBy = actor.UserId
	return s.storage.CreateForum(data)
}

func (s *Forum) Get(actor *domain.AuthContext, id domain.ForumId) (*domain.Forum, error) {
	forum, err := s.storage.GetForum(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(actor, forum); err != nil {
		return nil, err
	}
	return forum, nil
}

// List returns every forum the actor may see: all public ones plus the
// private ones they belong to or moderate.
func (s *Forum) List(actor *domain.AuthContext) ([]*domain.Forum, error) {
	forums, err := s.storage.ListForums()
	if err != nil {
		return nil, err
	}
	visible := forums[:0]
	for _, forum := range forums {
		if err := s.checkVisible(actor, forum); err == nil {
			visible = append(visible, forum)
		}
	}
	return visible, nil
}

func (s *Forum) Delete(actor *domain.AuthContext, id domain.ForumId) error {
	forum, err := s.storage.GetForum(id)
	if err != nil {
		return err
	}
	if !actor.CanModerate(forum) {
		return internal_errors.PermissionDenied
	}
	return s.storage.DeleteForum(id)
}

func (s *Forum) Join(actor *domain.AuthContext, id domain.ForumId) error {
	forum, err := s.storage.GetForum(id)
	if err != nil {
		return err
	}
	// joining a private forum is by moderator invitation only
	if forum.IsPrivate() && !actor.CanModerate(forum) {
		return internal_errors.PermissionDenied
	}
	return s.storage.AddMember(id, actor.UserId)
}

func (s *Forum) Leave(actor *domain.AuthContext, id domain.ForumId) error {
	return s.storage.RemoveMember(id, actor.UserId)
}

func (s *Forum) checkVisible(actor *domain.AuthContext, forum *domain.Forum) error {
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
