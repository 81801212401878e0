package game

import "errors"

// Rejections. Every one leaves the session unchanged.
var (
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrIllegalDestination = errors.New("illegal destination")
	ErrNothingSelected    = errors.New("nothing selected")
	ErrPromotionPending   = errors.New("promotion pending")
	ErrNoPromotionPending = errors.New("no promotion pending")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")
	ErrGameOver           = errors.New("game over")
	ErrOpponentThinking   = errors.New("opponent is thinking")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrStaleResult        = errors.New("stale opponent result")
	ErrNoOpponent         = errors.New("no opponent configured")
	ErrNoSearch           = errors.New("opponent is not searching")
)
