package pg

import (
	"fmt"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/lib/pq"
)

// attachReplies populates Replies (creation order) for the given root messages.
func (s *Storage) attachReplies(roots []*domain.Message) error {
	if len(roots) == 0 {
		return nil
	}
	ids := make([]int64, len(roots))
	byId := make(map[domain.MsgId]*domain.Message, len(roots))
	for i, root := range roots {
		ids[i] = root.Id
		byId[root.Id] = root
		root.Replies = []*domain.Message{} // empty, not null, in JSON
	}

	rows, err := s.db.Query(`
        SELECT `+messageColumns+`
        FROM messages
        WHERE parent_id = ANY($1)
        ORDER BY created
    `, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		reply, err := scanMessage(rows)
		if err != nil {
			return fmt.Errorf("failed to scan reply: %w", err)
		}
		if parent, ok := byId[*reply.ParentId]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}
	return rows.Err()
}

// attachPolls populates Poll (options in index order, votes, derived counts)
// for every message in the slice that owns one.
func (s *Storage) attachPolls(msgs []*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]int64, len(msgs))
	byId := make(map[domain.MsgId]*domain.Message, len(msgs))
	for i, msg := range msgs {
		ids[i] = msg.Id
		byId[msg.Id] = msg
	}

	rows, err := s.db.Query(
		"SELECT message_id, question, type FROM polls WHERE message_id = ANY($1)", pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch polls: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id domain.MsgId
		var poll domain.Poll
		if err := rows.Scan(&id, &poll.Question, &poll.Type); err != nil {
			return fmt.Errorf("failed to scan poll: %w", err)
		}
		poll.Votes = []domain.PollVote{}
		if msg, ok := byId[id]; ok {
			msg.Poll = &poll
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	optionRows, err := s.db.Query(`
        SELECT message_id, idx, text FROM poll_options
        WHERE message_id = ANY($1) ORDER BY message_id, idx
    `, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch poll options: %w", err)
	}
	defer optionRows.Close()
	for optionRows.Next() {
		var id domain.MsgId
		var idx int
		var text string
		if err := optionRows.Scan(&id, &idx, &text); err != nil {
			return fmt.Errorf("failed to scan poll option: %w", err)
		}
		if msg, ok := byId[id]; ok && msg.Poll != nil {
			msg.Poll.Options = append(msg.Poll.Options, domain.PollOption{Text: text})
		}
	}
	if err := optionRows.Err(); err != nil {
		return err
	}

	voteRows, err := s.db.Query(`
        SELECT message_id, user_id, option_idx FROM poll_votes
        WHERE message_id = ANY($1) ORDER BY created
    `, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch poll votes: %w", err)
	}
	defer voteRows.Close()
	for voteRows.Next() {
		var id domain.MsgId
		var vote domain.PollVote
		if err := voteRows.Scan(&id, &vote.User, &vote.OptionIndex); err != nil {
			return fmt.Errorf("failed to scan poll vote: %w", err)
		}
		msg, ok := byId[id]
		if !ok || msg.Poll == nil || vote.OptionIndex >= len(msg.Poll.Options) {
			continue
		}
		msg.Poll.Votes = append(msg.Poll.Votes, vote)
		msg.Poll.Options[vote.OptionIndex].Votes++
		msg.Poll.TotalVotes++
	}
	return voteRows.Err()
}
