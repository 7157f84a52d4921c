// Package bracket runs a single-elimination bracket over a fixed pool of movies.
//
// An Engine pairs the survivors of each round two at a time, in order. Each
// selection advances to the next pair; when a round's pairs are exhausted the
// winners become the next round's survivors in the order they were picked.
// The engine finishes when a round produces a single winner.
//
// Engines are not safe for concurrent use.
package bracket

import (
	"errors"
	"fmt"

	"github.com/abrezinsky/moviecup/internal/models"
)

// Sizes lists the bracket sizes a tournament can be played at
var Sizes = []int{4, 8, 16, 32, 64}

var (
	// ErrInvalidSelection is returned when a selection names no live match or
	// a movie outside the current pair. The engine state is left untouched.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidPool is returned when a pool cannot seed a bracket
	ErrInvalidPool = errors.New("invalid bracket pool")
)

// ValidSize reports whether n is a playable bracket size
func ValidSize(n int) bool {
	for _, s := range Sizes {
		if s == n {
			return true
		}
	}
	return false
}

// Round is one generation of the bracket
type Round struct {
	Size      int            `json:"size"`
	Survivors []models.Movie `json:"survivors"`
}

// State is a snapshot of the bracket's progress
type State struct {
	Round      Round          `json:"round"`
	MatchIndex int            `json:"match_index"`
	Winners    []models.Movie `json:"winners"`
}

// Match is the pair currently being decided
type Match struct {
	Index     int          `json:"index"`
	Left      models.Movie `json:"left"`
	Right     models.Movie `json:"right"`
	RoundSize int          `json:"round_size"`
	Number    int          `json:"number"` // 1-based position within the round
	Total     int          `json:"total"`  // matches in the round
}

// Label returns the human-facing name of the match's round
func (m Match) Label() string {
	return RoundLabel(m.RoundSize)
}

// RoundLabel names a round by its size
func RoundLabel(size int) string {
	if size == 2 {
		return "Final"
	}
	return fmt.Sprintf("Round of %d", size)
}

// Engine holds the state of one tournament run
type Engine struct {
	state           State
	finished        bool
	winner          models.Movie
	roundsCompleted int
}

// New creates an engine seeded with pool in its delivered order.
// The pool must be a valid bracket size and hold distinct movies.
func New(pool []models.Movie) (*Engine, error) {
	if !ValidSize(len(pool)) {
		return nil, fmt.Errorf("%w: %d movies is not a bracket size", ErrInvalidPool, len(pool))
	}
	seen := make(map[int]bool, len(pool))
	for _, m := range pool {
		if seen[m.ID] {
			return nil, fmt.Errorf("%w: movie %d appears twice", ErrInvalidPool, m.ID)
		}
		seen[m.ID] = true
	}

	survivors := make([]models.Movie, len(pool))
	copy(survivors, pool)

	return &Engine{
		state: State{
			Round: Round{Size: len(survivors), Survivors: survivors},
		},
	}, nil
}

// CurrentMatch returns the live pair, or false once the bracket is finished
func (e *Engine) CurrentMatch() (Match, bool) {
	if !e.hasLiveMatch() {
		return Match{}, false
	}
	i := e.state.MatchIndex
	survivors := e.state.Round.Survivors
	return Match{
		Index:     i,
		Left:      survivors[i*2],
		Right:     survivors[i*2+1],
		RoundSize: e.state.Round.Size,
		Number:    i + 1,
		Total:     len(survivors) / 2,
	}, true
}

// SelectWinner records movieID as the winner of the current match
func (e *Engine) SelectWinner(movieID int) error {
	match, ok := e.CurrentMatch()
	if !ok {
		return fmt.Errorf("%w: no match in progress", ErrInvalidSelection)
	}

	var picked models.Movie
	switch movieID {
	case match.Left.ID:
		picked = match.Left
	case match.Right.ID:
		picked = match.Right
	default:
		return fmt.Errorf("%w: movie %d is not in match %d", ErrInvalidSelection, movieID, match.Number)
	}

	e.state.Winners = append(e.state.Winners, picked)
	e.state.MatchIndex++
	e.advance()
	return nil
}

// advance closes the round once every pair in it has been decided
func (e *Engine) advance() {
	if e.state.MatchIndex*2 < len(e.state.Round.Survivors) {
		return
	}

	winners := e.state.Winners
	switch {
	case len(winners) == 1:
		e.roundsCompleted++
		e.finished = true
		e.winner = winners[0]
		e.state.Winners = nil
	case len(winners) > 1:
		e.roundsCompleted++
		e.state = State{
			Round: Round{Size: len(winners), Survivors: winners},
		}
	}
}

func (e *Engine) hasLiveMatch() bool {
	if e.finished {
		return false
	}
	return e.state.MatchIndex*2+1 < len(e.state.Round.Survivors)
}

// Finished reports whether the bracket has produced its winner
func (e *Engine) Finished() bool {
	return e.finished
}

// Winner returns the champion once the bracket is finished
func (e *Engine) Winner() (models.Movie, bool) {
	return e.winner, e.finished
}

// RoundsCompleted returns how many rounds have been fully decided
func (e *Engine) RoundsCompleted() int {
	return e.roundsCompleted
}

// State returns a copy of the current bracket state
func (e *Engine) State() State {
	s := State{
		Round: Round{
			Size:      e.state.Round.Size,
			Survivors: append([]models.Movie(nil), e.state.Round.Survivors...),
		},
		MatchIndex: e.state.MatchIndex,
		Winners:    append([]models.Movie(nil), e.state.Winners...),
	}
	return s
}
