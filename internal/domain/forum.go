package domain

import (
	"time"

	"github.com/lib/pq"
)

// Tags is stored as a postgres text array.
type Tags = pq.StringArray

// to iterate thru layers: handler -> service -> storage
type ForumCreationData struct {
	Title       ForumTitle
	Description string
	Visibility  Visibility
	ClubId      *int64
	BoardId     *int64
	Tags        Tags
	ImageName   string
	CreatedBy   UserId
}

type Forum struct {
	Id          ForumId
	Title       ForumTitle
	Description string
	Visibility  Visibility
	ClubId      *int64
	BoardId     *int64
	Tags        Tags
	Views       int64
	ReplyCount  int64
	ImageName   string
	CreatedAt   time.Time
}

func (f *Forum) IsPrivate() bool {
	return f.Visibility == VisibilityPrivate
}

type ForumMember struct {
	Forum    ForumId
	User     UserId
	JoinedAt time.Time
}
