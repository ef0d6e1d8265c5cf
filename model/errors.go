package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Domain failures that are surfaced to clients over the reply channel.
// The messages are part of the protocol, clients match on them.
var (
	ErrMaxPlayersReached = errors.New("Max players reached.")
	ErrMaxMatchesReached = errors.New("Max matches reached.")
	ErrPlayerExists      = errors.New("Player already exists.")
	ErrMatchExists       = errors.New("Match already exists.")
	ErrMatchNameRequired = errors.New("Match name is required.")
	ErrMatchNameTaken    = errors.New("Match name is already taken.")
	ErrMatchNotFound     = errors.New("Match not found.")
	ErrPasswordMismatch  = errors.New("Match password mismatch.")
	ErrMatchFull         = errors.New("Match full.")
	ErrPlayerBlocked     = errors.New("Player blocked.")
	ErrAlreadyInMatch    = errors.New("Player already joined a match.")
	ErrInvalidPayload    = errors.New("Invalid data received.")
)

func ErrPlayerNameLength(min, max int) error {
	return errors.New(fmt.Sprintf("Player name must be between %d and %d characters.", min, max))
}

func ErrMatchNameLength(min, max int) error {
	return errors.New(fmt.Sprintf("Match name must be between %d and %d characters.", min, max))
}

func ErrMatchPasswordLength(min, max int) error {
	return errors.New(fmt.Sprintf("Match password must be between %d and %d characters.", min, max))
}
