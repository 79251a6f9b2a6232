package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clubhub-dev/clubhub/internal/domain"
	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
)

func TestForumTitleValidator(t *testing.T) {
	v := &ForumTitleValidator{}

	assert.NoError(t, v.Title("General"))
	assert.NoError(t, v.Title(strings.Repeat("я", 120)), "length is counted in runes")

	assert.Error(t, v.Title(""))
	assert.Error(t, v.Title(strings.Repeat("a", 121)))
}

func TestMessageValidatorText(t *testing.T) {
	v := &MessageValidator{MaxTextLen: 10}

	assert.NoError(t, v.Text("short"))
	assert.NoError(t, v.Text(""))
	err := v.Text("way too long for ten")
	assert.Error(t, err)
	assert.Equal(t, 400, internal_errors.StatusCode(err))

	// zero config falls back to the default cap
	fallback := &MessageValidator{}
	assert.NoError(t, fallback.Text(strings.Repeat("a", 10_000)))
	assert.Error(t, fallback.Text(strings.Repeat("a", 10_001)))
}

func TestMessageValidatorPoll(t *testing.T) {
	v := &MessageValidator{}

	valid := &domain.PollCreationData{
		Question: "Pick",
		Options:  []string{"A", "B"},
		Type:     domain.PollSingleChoice,
	}
	assert.NoError(t, v.Poll(valid))

	cases := []struct {
		name string
		poll domain.PollCreationData
	}{
		{"missing question", domain.PollCreationData{Options: []string{"A", "B"}, Type: domain.PollSingleChoice}},
		{"one option", domain.PollCreationData{Question: "?", Options: []string{"A"}, Type: domain.PollSingleChoice}},
		{"empty option", domain.PollCreationData{Question: "?", Options: []string{"A", ""}, Type: domain.PollSingleChoice}},
		{"bad type", domain.PollCreationData{Question: "?", Options: []string{"A", "B"}, Type: "ranked"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Poll(&tc.poll)
			assert.Error(t, err)
			assert.Equal(t, 400, internal_errors.StatusCode(err))
		})
	}
}
