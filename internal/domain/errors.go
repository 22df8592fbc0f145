package domain

import "errors"

// Domain errors. All expected rejections are reported as values; none
// aborts a session.
var (
	// Validation errors
	ErrActorNotEligible  = errors.New("actor is dead or not in this game")
	ErrActionNotAllowed  = errors.New("action not allowed in current phase")
	ErrAbilityNotGranted = errors.New("role does not grant this action")
	ErrTargetNotFound    = errors.New("target not found")
	ErrTargetDead        = errors.New("target is already dead")
	ErrCannotTargetSelf  = errors.New("cannot target yourself")
	ErrMafiaTargetsMafia = errors.New("mafia cannot target mafia")
	ErrVoterNotEligible  = errors.New("voter not eligible for this round")
	ErrTargetNotEligible = errors.New("target not eligible for this round")

	// State conflicts
	ErrVotingAlreadyActive = errors.New("voting already active")
	ErrVotingClosed        = errors.New("voting round is closed")
	ErrNoActiveVoting      = errors.New("no active voting round")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionFinished     = errors.New("session already finished")
	ErrInvalidDistribution = errors.New("invalid role distribution")
	ErrUnbalanceableCount  = errors.New("no balanced distribution for player count")
	ErrInvalidTransition   = errors.New("invalid phase transition")

	// Configuration errors
	ErrPlayerCountRange = errors.New("player count must be between 4 and 20")
)
