package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
)

const forumColumns = "id, title, description, visibility, club_id, board_id, tags, views, reply_count, image_name, created"

func scanForum(row interface{ Scan(...any) error }) (*domain.Forum, error) {
	var f domain.Forum
	err := row.Scan(&f.Id, &f.Title, &f.Description, &f.Visibility, &f.ClubId, &f.BoardId,
		&f.Tags, &f.Views, &f.ReplyCount, &f.ImageName, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Storage) CreateForum(creationData domain.ForumCreationData) (domain.ForumId, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return -1, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	var id domain.ForumId
	err = tx.QueryRow(`
        INSERT INTO forums (title, description, visibility, club_id, board_id, tags, image_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, creationData.Title, creationData.Description, creationData.Visibility,
		creationData.ClubId, creationData.BoardId, creationData.Tags, creationData.ImageName).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert forum: %w", err)
	}

	// creator joins automatically
	if _, err = tx.Exec(`
        INSERT INTO forum_members (forum_id, user_id) VALUES ($1, $2)
    `, id, creationData.CreatedBy); err != nil {
		return -1, fmt.Errorf("failed to add creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return -1, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func (s *Storage) GetForum(id domain.ForumId) (*domain.Forum, error) {
	forum, err := scanForum(s.db.QueryRow(
		"SELECT "+forumColumns+" FROM forums WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Forum not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch forum: %w", err)
	}
	return forum, nil
}

func (s *Storage) ListForums() ([]*domain.Forum, error) {
	rows, err := s.db.Query("SELECT " + forumColumns + " FROM forums ORDER BY created")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forums: %w", err)
	}
	defer rows.Close()

	var forums []*domain.Forum
	for rows.Next() {
		forum, err := scanForum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forum: %w", err)
		}
		forums = append(forums, forum)
	}
	return forums, rows.Err()
}

// DeleteForum removes the forum; members and messages go with it via FK cascade.
func (s *Storage) DeleteForum(id domain.ForumId) error {
	result, err := s.db.Exec("DELETE FROM forums WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete forum: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Forum not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) AddMember(forum domain.ForumId, user domain.UserId) error {
	// ON CONFLICT keeps (forum, user) unique and joining twice idempotent
	result, err := s.db.Exec(`
        INSERT INTO forum_members (forum_id, user_id) VALUES ($1, $2)
        ON CONFLICT (forum_id, user_id) DO NOTHING
    `, forum, user)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &internal_errors.ErrorWithStatusCode{Message: "Forum not found", StatusCode: http.StatusNotFound}
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	_, err = result.RowsAffected()
	return err
}

func (s *Storage) RemoveMember(forum domain.ForumId, user domain.UserId) error {
	result, err := s.db.Exec(
		"DELETE FROM forum_members WHERE forum_id = $1 AND user_id = $2", forum, user)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Membership not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) IsMember(forum domain.ForumId, user domain.UserId) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
        SELECT EXISTS(SELECT 1 FROM forum_members WHERE forum_id = $1 AND user_id = $2)
    `, forum, user).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// BumpForumViews increments the view counter. Best-effort: callers ignore the
// error since a lost bump is not user-visible.
func (s *Storage) BumpForumViews(id domain.ForumId) error {
	_, err := s.db.Exec("UPDATE forums SET views = views + 1 WHERE id = $1", id)
	return err
}
