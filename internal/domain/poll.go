package domain

type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type PollVote struct {
	User        UserId `json:"user_id"`
	OptionIndex int    `json:"option_index"`
}

// Poll is embedded in a message. Per-option counts and TotalVotes are derived
// from Votes and recomputed on every read; they are never updated in place.
type Poll struct {
	Question   string       `json:"question"`
	Type       PollType     `json:"type"`
	Options    []PollOption `json:"options"`
	Votes      []PollVote   `json:"votes"`
	TotalVotes int          `json:"total_votes"`
}

// HasVote reports whether user currently holds a vote on the given option.
func (p *Poll) HasVote(user UserId, optionIndex int) bool {
	for _, v := range p.Votes {
		if v.User == user && v.OptionIndex == optionIndex {
			return true
		}
	}
	return false
}

// UserVotes returns the option indexes user currently holds votes on.
func (p *Poll) UserVotes(user UserId) []int {
	var indexes []int
	for _, v := range p.Votes {
		if v.User == user {
			indexes = append(indexes, v.OptionIndex)
		}
	}
	return indexes
}

type PollCreationData struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"required,min=2"`
	Type     PollType `json:"type" validate:"required,oneof=single multi"`
}
