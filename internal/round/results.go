// internal/round/results.go
package round

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// BallotEntry is one anonymized answer on the voting ballot.
type BallotEntry struct {
	Letter string `json:"letter"`
	Answer string `json:"answer"`
}

// ResultEntry is one answer on the results page, de-anonymized and annotated
// with everyone who voted for it.
type ResultEntry struct {
	Letter string   `json:"letter"`
	Answer string   `json:"answer"`
	Author string   `json:"author"`
	Voters []string `json:"voters"`
}

// RoundResults is the full reveal shown after voting closes.
type RoundResults struct {
	CorrectLetter string        `json:"correct_letter,omitempty"`
	Entries       []ResultEntry `json:"entries"`
}

// VotingBallot returns the lettered answers of a game sorted ascending by
// letter, ready for the voting page.
func (s *Service) VotingBallot(ctx context.Context, gameID uuid.UUID) ([]BallotEntry, error) {
	return s.sessions.FindBallot(ctx, gameID)
}

// Results assembles the results view: every lettered answer with its author
// and voters, plus the letter considered correct if the moderator's session
// carries one.
func (s *Service) Results(ctx context.Context, gameID uuid.UUID) (*RoundResults, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	records, err := s.sessions.ListRoundRecords(ctx, gameID)
	if err != nil {
		return nil, err
	}

	byLetter := make(map[string]*ResultEntry)
	res := &RoundResults{}
	for _, sess := range records {
		if sess.AnswerLetter == nil {
			continue
		}
		entry := &ResultEntry{
			Letter: *sess.AnswerLetter,
			Author: sess.Name,
			Voters: []string{},
		}
		if sess.Answer != nil {
			entry.Answer = *sess.Answer
		}
		byLetter[entry.Letter] = entry
		if sess.IsModeratorOf(g) {
			res.CorrectLetter = entry.Letter
		}
	}
	for _, sess := range records {
		if sess.Vote == nil {
			continue
		}
		if entry, ok := byLetter[*sess.Vote]; ok {
			entry.Voters = append(entry.Voters, sess.Name)
		}
	}

	res.Entries = make([]ResultEntry, 0, len(byLetter))
	for _, entry := range byLetter {
		res.Entries = append(res.Entries, *entry)
	}
	sort.Slice(res.Entries, func(i, j int) bool {
		return res.Entries[i].Letter < res.Entries[j].Letter
	})
	return res, nil
}
