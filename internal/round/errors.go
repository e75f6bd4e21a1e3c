// internal/round/errors.go
package round

import "errors"

// ErrGameNotFound indicates that the referenced game row does not exist.
var ErrGameNotFound = errors.New("game not found")

// ErrSessionNotFound indicates that the referenced player session is absent,
// typically because it expired or the player quit mid-round.
var ErrSessionNotFound = errors.New("player session not found")

// ErrInvalidPhase indicates a game row whose phase is not one of the known
// states. This is never expected and is surfaced as a server error.
var ErrInvalidPhase = errors.New("invalid game phase")

// ErrTooManyAnswers indicates more answering players than assignable letters.
var ErrTooManyAnswers = errors.New("more than 26 answering players")
