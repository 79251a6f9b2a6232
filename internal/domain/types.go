package domain

type (
	UserId  = int64
	ForumId = int64
	MsgId   = int64

	MsgText    = string
	ForumTitle = string
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentDocument AttachmentKind = "document"
)

type PollType string

const (
	PollSingleChoice PollType = "single"
	PollMultiChoice  PollType = "multi"
)
