// internal/round/letters.go
package round

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/overtinction/server/internal/models"
)

// maxLetters caps the number of answers in a single round; the ballot
// alphabet only has 26 letters.
const maxLetters = 26

// AssignLetters produces a random bijection from the given sessions onto the
// first len(sessions) capital letters. The shuffle deliberately carries no
// relation to join order so the ballot does not leak authorship.
func AssignLetters(sessions []*models.PlayerSession) (map[uuid.UUID]string, error) {
	if len(sessions) > maxLetters {
		return nil, ErrTooManyAnswers
	}

	letters := make([]string, len(sessions))
	for i := range letters {
		letters[i] = string(rune('A' + i))
	}
	rand.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})

	assigned := make(map[uuid.UUID]string, len(sessions))
	for i, sess := range sessions {
		assigned[sess.ID] = letters[i]
	}
	return assigned, nil
}
