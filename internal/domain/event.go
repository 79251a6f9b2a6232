package domain

type EventType string

const (
	EventNewMessage    EventType = "new_message"
	EventNewReply      EventType = "new_reply"
	EventUpdatePoll    EventType = "update_poll"
	EventDeleteMessage EventType = "delete_message"
)

// Event is the realtime payload fanned out to a forum room. Creations and
// poll updates carry the full message so clients can merge without a refetch;
// deletions carry only the id.
type Event struct {
	Type      EventType `json:"type"`
	Forum     ForumId   `json:"forum_id"`
	Message   *Message  `json:"message,omitempty"`
	ParentId  *MsgId    `json:"parent_id,omitempty"`
	MessageId MsgId     `json:"message_id,omitempty"`
}

func NewMessageEvent(msg *Message) Event {
	if msg.IsReply() {
		return Event{Type: EventNewReply, Forum: msg.Forum, Message: msg, ParentId: msg.ParentId}
	}
	return Event{Type: EventNewMessage, Forum: msg.Forum, Message: msg}
}

func UpdatePollEvent(msg *Message) Event {
	return Event{Type: EventUpdatePoll, Forum: msg.Forum, Message: msg}
}

func DeleteMessageEvent(forum ForumId, id MsgId) Event {
	return Event{Type: EventDeleteMessage, Forum: forum, MessageId: id}
}
