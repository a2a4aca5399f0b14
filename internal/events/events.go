// Package events defines the room event catalogue and the publisher contract
// the round engine emits through. Delivery is fire-and-forget: consumers must
// tolerate out-of-order and duplicate delivery.
package events

import "context"

const (
	TypeRoomCreated      = "room.created"
	TypeRoomJoined       = "room.joined"
	TypeRoomLeft         = "room.left"
	TypeRoomClosed       = "room.closed"
	TypeRoomExpired      = "room.expired"
	TypeRoomReadyUpdated = "room.ready_updated"

	TypeRoundStarted        = "round.started"
	TypeRoundQuestionTurn   = "round.question_turn"
	TypeRoundQuestion       = "round.question"
	TypeRoundAnswer         = "round.answer"
	TypeRoundPhase          = "round.phase"
	TypeRoundVotesUpdated   = "round.votes_updated"
	TypeRoundReadyForVoting = "round.ready_for_voting"
	TypeRoundImposterGuess  = "round.imposter_guess"
	TypeRoundImposterSkip   = "round.imposter_skip"
	TypeRoundResults        = "round.results"
)

type Publisher interface {
	Publish(ctx context.Context, eventType, roomCode string, payload Payload)
}

// QuestionTurn identifies the active question within a round.
type QuestionTurn struct {
	QuestionID uint `json:"question_id"`
	AskerID    uint `json:"asker_id"`
	TargetID   uint `json:"target_id"`
	Order      int  `json:"order"`
}

type VoteTotal struct {
	ParticipantID uint `json:"participant_id"`
	Votes         int  `json:"votes"`
}

// Payload is the union of fields carried by room events. Unused fields are
// omitted from the wire format.
type Payload struct {
	RoundID          uint          `json:"round_id,omitempty"`
	RoundNumber      int           `json:"round_number,omitempty"`
	Duration         int           `json:"duration,omitempty"`
	CountdownSeconds int           `json:"countdown_seconds,omitempty"`
	Category         string        `json:"category,omitempty"`
	StartedAt        string        `json:"started_at,omitempty"`
	FirstQuestion    *QuestionTurn `json:"first_question,omitempty"`
	QuestionID       uint          `json:"question_id,omitempty"`
	AskerID          uint          `json:"asker_id,omitempty"`
	AskerNickname    string        `json:"asker_nickname,omitempty"`
	TargetID         uint          `json:"target_id,omitempty"`
	TargetNickname   string        `json:"target_nickname,omitempty"`
	ResponderID      uint          `json:"responder_id,omitempty"`
	ResponderName    string        `json:"responder_nickname,omitempty"`
	Order            int           `json:"order,omitempty"`
	Text             string        `json:"text,omitempty"`
	Phase            string        `json:"phase,omitempty"`
	Totals           []VoteTotal   `json:"totals,omitempty"`
	ParticipantID    uint          `json:"participant_id,omitempty"`
	Nickname         string        `json:"nickname,omitempty"`
	ReadyCount       int           `json:"ready_count,omitempty"`
	TotalCount       int           `json:"total_count,omitempty"`
	WordID           *uint         `json:"word_id,omitempty"`
	WordText         string        `json:"word_text,omitempty"`
	Correct          *bool         `json:"correct,omitempty"`
	UserID           *uint         `json:"user_id,omitempty"`
	GuestToken       string        `json:"guest_token,omitempty"`
	ReadyAt          string        `json:"ready_at,omitempty"`
	Reason           string        `json:"reason,omitempty"`
}
