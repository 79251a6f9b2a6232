package utils

import (
	"unicode/utf8"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/clubhub-dev/clubhub/internal/errors"
)

type ForumTitleValidator struct{}

func (e *ForumTitleValidator) Title(title string) error {
	if utf8.RuneCountInString(title) > 120 {
		return &errors.ErrorWithStatusCode{Message: "Title is too long", StatusCode: 400}
	}
	if title == "" {
		return &errors.ErrorWithStatusCode{Message: "Title is required", StatusCode: 400}
	}
	return nil
}

type MessageValidator struct {
	MaxTextLen int
}

func (e *MessageValidator) Text(text string) error {
	max := e.MaxTextLen
	if max == 0 {
		max = 10_000
	}
	if utf8.RuneCountInString(text) > max {
		return &errors.ErrorWithStatusCode{Message: "Text is too long", StatusCode: 400}
	}
	return nil
}

func (e *MessageValidator) Poll(poll *domain.PollCreationData) error {
	if poll.Question == "" {
		return &errors.ErrorWithStatusCode{Message: "Poll question is required", StatusCode: 400}
	}
	if len(poll.Options) < 2 {
		return &errors.ErrorWithStatusCode{Message: "Poll needs at least two options", StatusCode: 400}
	}
	for _, option := range poll.Options {
		if option == "" {
			return &errors.ErrorWithStatusCode{Message: "Poll options must not be empty", StatusCode: 400}
		}
	}
	if poll.Type != domain.PollSingleChoice && poll.Type != domain.PollMultiChoice {
		return &errors.ErrorWithStatusCode{Message: "Poll type must be single or multi", StatusCode: 400}
	}
	return nil
}
