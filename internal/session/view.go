// Package session implements the client side of a live forum view: an HTTP
// API client, a room subscription, and a state machine that folds realtime
// events into an ordered local projection of the message tree.
//
// The projection is never authoritative. It can be dropped at any time and
// rebuilt from ListMessages.
package session

import (
	"errors"

	"github.com/clubhub-dev/clubhub/internal/domain"
)

// ErrUnknownParent signals a reply event whose parent is not in the view, a
// desync between this client and the store. The caller logs and drops it.
var ErrUnknownParent = errors.New("reply references unknown parent message")

// Apply folds one realtime event into the root-message list and returns the
// updated list. Pure: the input slice is not mutated, so it can be unit
// tested without a UI or network and snapshots stay valid.
//
// The merge is idempotent by message id: re-applying the echo of an action
// this client already performed optimistically is a no-op.
func Apply(roots []*domain.Message, ev domain.Event) ([]*domain.Message, error) {
	switch ev.Type {
	case domain.EventNewMessage:
		if ev.Message == nil || findRoot(roots, ev.Message.Id) >= 0 {
			return roots, nil
		}
		out := make([]*domain.Message, 0, len(roots)+1)
		out = append(out, roots...)
		return append(out, ev.Message), nil

	case domain.EventNewReply:
		if ev.Message == nil || ev.ParentId == nil {
			return roots, nil
		}
		i := findRoot(roots, *ev.ParentId)
		if i < 0 {
			return roots, ErrUnknownParent
		}
		parent := roots[i]
		for _, reply := range parent.Replies {
			if reply.Id == ev.Message.Id {
				return roots, nil
			}
		}
		updated := *parent
		updated.Replies = append(append([]*domain.Message{}, parent.Replies...), ev.Message)
		return replaceRoot(roots, i, &updated), nil

	case domain.EventUpdatePoll:
		if ev.Message == nil {
			return roots, nil
		}
		if i := findRoot(roots, ev.Message.Id); i >= 0 {
			// keep the local reply list; the poll payload carries the
			// message as the store sees it, replies included
			return replaceRoot(roots, i, ev.Message), nil
		}
		// not a root: search the reply lists
		for i, root := range roots {
			for j, reply := range root.Replies {
				if reply.Id != ev.Message.Id {
					continue
				}
				updated := *root
				updated.Replies = append([]*domain.Message{}, root.Replies...)
				updated.Replies[j] = ev.Message
				return replaceRoot(roots, i, &updated), nil
			}
		}
		return roots, nil

	case domain.EventDeleteMessage:
		if i := findRoot(roots, ev.MessageId); i >= 0 {
			out := make([]*domain.Message, 0, len(roots)-1)
			out = append(out, roots[:i]...)
			return append(out, roots[i+1:]...), nil
		}
		for i, root := range roots {
			for j, reply := range root.Replies {
				if reply.Id != ev.MessageId {
					continue
				}
				updated := *root
				updated.Replies = append([]*domain.Message{}, root.Replies[:j]...)
				updated.Replies = append(updated.Replies, root.Replies[j+1:]...)
				return replaceRoot(roots, i, &updated), nil
			}
		}
		return roots, nil
	}
	return roots, nil
}

func findRoot(roots []*domain.Message, id domain.MsgId) int {
	for i, root := range roots {
		if root.Id == id {
			return i
		}
	}
	return -1
}

func replaceRoot(roots []*domain.Message, i int, msg *domain.Message) []*domain.Message {
	out := append([]*domain.Message{}, roots...)
	out[i] = msg
	return out
}
