package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
)

const messageColumns = "id, forum_id, author_id, text, attachment_kind, attachment_name, attachment_mime, parent_id, created"

func scanMessage(row interface{ Scan(...any) error }) (*domain.Message, error) {
	var msg domain.Message
	var kind, name, mime sql.NullString
	err := row.Scan(&msg.Id, &msg.Forum, &msg.Author, &msg.Text, &kind, &name, &mime, &msg.ParentId, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	if kind.Valid {
		msg.Attachment = &domain.Attachment{
			Kind:     domain.AttachmentKind(kind.String),
			Filename: name.String,
			MimeType: mime.String,
		}
	}
	return &msg, nil
}

// CreateMessage persists a message (root or reply) together with its optional
// poll and returns it fully populated. The caller is responsible for the
// reply-depth policy; the storage only enforces referential integrity: the
// forum must exist and a parent must be a root message of the same forum.
func (s *Storage) CreateMessage(creationData domain.MessageCreationData) (*domain.Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	// Verify forum exists and bump its reply counter in one go
	var forumId domain.ForumId
	err = tx.QueryRow(`
        UPDATE forums SET reply_count = reply_count + 1 WHERE id = $1 RETURNING id
    `, creationData.Forum).Scan(&forumId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Forum not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to validate forum: %w", err)
	}

	if creationData.ParentId != nil {
		var parentForum domain.ForumId
		var parentParent *domain.MsgId
		err = tx.QueryRow(
			"SELECT forum_id, parent_id FROM messages WHERE id = $1", *creationData.ParentId,
		).Scan(&parentForum, &parentParent)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &internal_errors.ErrorWithStatusCode{Message: "Parent message not found", StatusCode: http.StatusNotFound}
			}
			return nil, fmt.Errorf("failed to validate parent: %w", err)
		}
		if parentForum != creationData.Forum {
			return nil, &internal_errors.ValidationError{Message: "parent message belongs to a different forum"}
		}
		if parentParent != nil {
			return nil, &internal_errors.ValidationError{Message: "parent message is not a root message"}
		}
	}

	var attachKind, attachName, attachMime *string
	if a := creationData.Attachment; a != nil {
		kind := string(a.Kind)
		attachKind, attachName, attachMime = &kind, &a.Filename, &a.MimeType
	}

	createdTs := time.Now().UTC().Round(time.Microsecond) // database anyway round to microsecond
	var id domain.MsgId
	err = tx.QueryRow(`
        INSERT INTO messages (forum_id, author_id, text, attachment_kind, attachment_name, attachment_mime, parent_id, created)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, creationData.Forum, creationData.Author, creationData.Text,
		attachKind, attachName, attachMime, creationData.ParentId, createdTs).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	if p := creationData.Poll; p != nil {
		if _, err = tx.Exec(
			"INSERT INTO polls (message_id, question, type) VALUES ($1, $2, $3)",
			id, p.Question, p.Type); err != nil {
			return nil, fmt.Errorf("failed to insert poll: %w", err)
		}
		for i, option := range p.Options {
			if _, err = tx.Exec(
				"INSERT INTO poll_options (message_id, idx, text) VALUES ($1, $2, $3)",
				id, i, option); err != nil {
				return nil, fmt.Errorf("failed to insert poll option: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetMessage(id)
}

// GetMessage returns a single message with its poll; replies are populated
// when the message is a root.
func (s *Storage) GetMessage(id domain.MsgId) (*domain.Message, error) {
	msg, err := scanMessage(s.db.QueryRow(
		"SELECT "+messageColumns+" FROM messages WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Message not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}

	msgs := []*domain.Message{msg}
	if !msg.IsReply() {
		if err := s.attachReplies(msgs); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg.Replies...)
	}
	if err := s.attachPolls(msgs); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns root messages of a forum ordered by creation time
// ascending, paginated, each with its replies and poll populated. Page is
// 1-based.
func (s *Storage) ListMessages(forum domain.ForumId, page, pageSize int) ([]*domain.Message, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.db.Query(`
        SELECT `+messageColumns+`
        FROM messages
        WHERE forum_id = $1 AND parent_id IS NULL
        ORDER BY created
        LIMIT $2 OFFSET $3
    `, forum, pageSize, pageSize*(page-1))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	roots := []*domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		roots = append(roots, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachReplies(roots); err != nil {
		return nil, err
	}
	all := make([]*domain.Message, 0, len(roots)*2)
	all = append(all, roots...)
	for _, root := range roots {
		all = append(all, root.Replies...)
	}
	if err := s.attachPolls(all); err != nil {
		return nil, err
	}
	return roots, nil
}

// DeleteMessage removes a message. Root deletion cascades to replies (and
// their polls) via FK; reply deletion only detaches it from its parent.
// Idempotency: a second delete of the same id reports NotFound.
func (s *Storage) DeleteMessage(id domain.MsgId) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// removed rows = the message plus, for a root, its replies
	var forumId domain.ForumId
	var removed int64
	err = tx.QueryRow(`
        SELECT forum_id, 1 + (SELECT count(*) FROM messages r WHERE r.parent_id = m.id)
        FROM messages m WHERE m.id = $1
    `, id).Scan(&forumId, &removed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &internal_errors.ErrorWithStatusCode{Message: "Message not found", StatusCode: http.StatusNotFound}
		}
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	if _, err = tx.Exec("DELETE FROM messages WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	if _, err = tx.Exec(`
        UPDATE forums SET reply_count = GREATEST(reply_count - $1, 0) WHERE id = $2
    `, removed, forumId); err != nil {
		return fmt.Errorf("failed to update forum counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdatePollVotes applies a computed vote delta (option indexes to remove and
// to add for one user) in a single transaction and returns the refreshed
// message. Concurrent casts serialize on the row locks; the last delta wins.
func (s *Storage) UpdatePollVotes(id domain.MsgId, user domain.UserId, remove, add []int) (*domain.Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pollExists bool
	if err = tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM polls WHERE message_id = $1)", id).Scan(&pollExists); err != nil {
		return nil, fmt.Errorf("failed to check poll: %w", err)
	}
	if !pollExists {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Poll not found", StatusCode: http.StatusNotFound}
	}

	for _, idx := range remove {
		if _, err = tx.Exec(
			"DELETE FROM poll_votes WHERE message_id = $1 AND user_id = $2 AND option_idx = $3",
			id, user, idx); err != nil {
			return nil, fmt.Errorf("failed to remove vote: %w", err)
		}
	}
	for _, idx := range add {
		// ON CONFLICT: two racing casts of the same vote collapse into one row
		if _, err = tx.Exec(`
            INSERT INTO poll_votes (message_id, user_id, option_idx) VALUES ($1, $2, $3)
            ON CONFLICT (message_id, user_id, option_idx) DO NOTHING
        `, id, user, idx); err != nil {
			return nil, fmt.Errorf("failed to add vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetMessage(id)
}
