package domain

import (
	"fmt"
	"time"
)

// Attachment describes a stored blob. Filename is the identifier returned by
// the blob store; the raw bytes are never embedded in a message.
type Attachment struct {
	Kind     AttachmentKind `json:"kind"`
	Filename string         `json:"filename"`
	MimeType string         `json:"mime_type"`
}

// Message is a forum post. ParentId == nil marks a root message; a non-nil
// ParentId always references a root (two-level tree, replies are not
// themselves repliable). Replies is populated on reads, ordered by creation.
type Message struct {
	Id         MsgId       `json:"id"`
	Forum      ForumId     `json:"forum_id"`
	Author     UserId      `json:"author_id"`
	Text       MsgText     `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Poll       *Poll       `json:"poll,omitempty"`
	ParentId   *MsgId      `json:"parent_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	Replies    []*Message  `json:"replies"`
}

func (m *Message) IsReply() bool {
	return m.ParentId != nil
}

// to iterate thru layers: handler -> service -> storage
type MessageCreationData struct {
	Forum      ForumId
	Author     UserId
	Text       MsgText
	Attachment *Attachment
	Poll       *PollCreationData
	ParentId   *MsgId
}

// for debug
func (m *Message) String() string {
	parent := "root"
	if m.ParentId != nil {
		parent = fmt.Sprintf("reply_to:%d", *m.ParentId)
	}
	return fmt.Sprintf("[id:%d, forum:%d, author:%d, %s, text:%q, replies:%d]",
		m.Id, m.Forum, m.Author, parent, m.Text, len(m.Replies))
}
