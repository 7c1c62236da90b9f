package models

import "errors"

var (
	// ErrUnknownTeam is returned when a team code is not part of the team directory.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrInvalidMatchup is returned for matchups that cannot be scored, such as a team playing itself.
	ErrInvalidMatchup = errors.New("invalid matchup")
	// ErrInvalidRecord is returned when a ledger record fails validation.
	ErrInvalidRecord = errors.New("invalid prediction record")
)
