package game

import (
	"context"
	"strings"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

type AskResult struct {
	QuestionID     uint   `json:"id"`
	AskerID        uint   `json:"asker_id"`
	AskerNickname  string `json:"asker_nickname"`
	TargetID       uint   `json:"target_id"`
	TargetNickname string `json:"target_nickname"`
	Text           string `json:"text"`
	Order          int    `json:"order"`
	Status         string `json:"status"`
}

type AnswerResult struct {
	AnswerID uint `json:"id"`
}

// AskQuestion records the active question for the actor's turn. A timed-out
// turn (sentinel text) is marked answered on the spot and the rotation
// advances without waiting for an answer.
func (e *Engine) AskQuestion(ctx context.Context, roundID uint, actor Actor, targetID uint, text string) (*AskResult, error) {
	var result AskResult
	var emits []emission
	var room *db.Room

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, r, err := roundByID(tx, roundID)
		if err != nil {
			return err
		}
		room = r
		participant, err := participantFor(tx, room.ID, actor)
		if err != nil {
			return err
		}
		if err := touchRoom(tx, room); err != nil {
			return err
		}
		if round.Status != db.RoundStatusInProgress {
			return invalidPhase("Round not accepting questions")
		}

		trimmed := strings.TrimSpace(text)
		timedOut := trimmed == TimeoutSentinel
		if len(trimmed) < 3 && !timedOut {
			return invalid("Question must be at least 3 characters")
		}

		var current db.Question
		err = tx.Where("round_id = ? AND status = ?", round.ID, db.QuestionStatusInProgress).
			First(&current).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return invalidPhase("Not your turn to ask")
			}
			return err
		}
		if current.AskerParticipantID != participant.ID {
			return invalidPhase("Not your turn to ask")
		}

		var target db.Participant
		err = tx.Where("id = ? AND room_id = ?", targetID, room.ID).First(&target).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return invalid("Target not found")
			}
			return err
		}
		if target.ID == participant.ID {
			return invalid("Cannot target yourself")
		}

		now := time.Now().UTC()
		current.TargetParticipantID = target.ID
		current.Text = text
		current.AskedAt = &now
		if timedOut {
			current.Status = db.QuestionStatusAnswered
		}
		if err := tx.Save(&current).Error; err != nil {
			return translate(err)
		}

		emits = append(emits, emission{events.TypeRoundQuestion, events.Payload{
			RoundID:        round.ID,
			QuestionID:     current.ID,
			AskerID:        participant.ID,
			AskerNickname:  participant.Nickname,
			TargetID:       target.ID,
			TargetNickname: target.Nickname,
			Text:           text,
		}})

		if timedOut {
			more, err := advanceTurn(tx, round)
			if err != nil {
				return err
			}
			emits = append(emits, more...)
		}

		result = AskResult{
			QuestionID:     current.ID,
			AskerID:        participant.ID,
			AskerNickname:  participant.Nickname,
			TargetID:       target.ID,
			TargetNickname: target.Nickname,
			Text:           text,
			Order:          current.Order,
			Status:         current.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishAll(ctx, room.Code, emits)
	return &result, nil
}

// AnswerQuestion records the target's answer and advances the rotation:
// the next pending question activates, or the round moves to voting once
// every turn is answered.
func (e *Engine) AnswerQuestion(ctx context.Context, roundID uint, actor Actor, questionID uint, text string) (*AnswerResult, error) {
	var result AnswerResult
	var emits []emission
	var room *db.Room

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, r, err := roundByID(tx, roundID)
		if err != nil {
			return err
		}
		room = r
		participant, err := participantFor(tx, room.ID, actor)
		if err != nil {
			return err
		}
		if err := touchRoom(tx, room); err != nil {
			return err
		}
		if round.Status != db.RoundStatusInProgress {
			return invalidPhase("Round not in progress")
		}

		trimmed := strings.TrimSpace(text)
		if len(trimmed) < 2 && trimmed != TimeoutSentinel {
			return invalid("Answer must be at least 2 characters")
		}

		var question db.Question
		err = tx.Where("id = ? AND round_id = ?", questionID, round.ID).First(&question).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFound("Question not found")
			}
			return err
		}
		if question.TargetParticipantID != participant.ID {
			return forbidden("Not your question to answer")
		}
		switch question.Status {
		case db.QuestionStatusInProgress:
		case db.QuestionStatusAnswered:
			return alreadyDone("Already answered")
		default:
			return invalidPhase("Question is not awaiting an answer")
		}

		var answered int64
		if err := tx.Model(&db.Answer{}).Where("question_id = ?", question.ID).Count(&answered).Error; err != nil {
			return err
		}
		if answered > 0 {
			return alreadyDone("Already answered")
		}

		answer := db.Answer{
			QuestionID:             question.ID,
			ResponderParticipantID: participant.ID,
			Text:                   text,
			AnsweredAt:             time.Now().UTC(),
		}
		if err := tx.Create(&answer).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&question).Update("status", db.QuestionStatusAnswered).Error; err != nil {
			return err
		}

		more, err := advanceTurn(tx, round)
		if err != nil {
			return err
		}
		emits = append(emits, more...)
		emits = append(emits, emission{events.TypeRoundAnswer, events.Payload{
			RoundID:       round.ID,
			QuestionID:    question.ID,
			ResponderID:   participant.ID,
			ResponderName: participant.Nickname,
			Text:          text,
		}})

		result = AnswerResult{AnswerID: answer.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishAll(ctx, room.Code, emits)
	return &result, nil
}

// advanceTurn activates the next pending question by ask order, or
// transitions the round to voting when none remain.
func advanceTurn(tx *gorm.DB, round *db.Round) ([]emission, error) {
	var next db.Question
	err := tx.Where("round_id = ? AND status = ?", round.ID, db.QuestionStatusPending).
		Order("ask_order").First(&next).Error
	if err == nil {
		if err := tx.Model(&next).Update("status", db.QuestionStatusInProgress).Error; err != nil {
			return nil, err
		}
		return []emission{{events.TypeRoundQuestionTurn, events.Payload{
			RoundID:    round.ID,
			QuestionID: next.ID,
			AskerID:    next.AskerParticipantID,
			TargetID:   next.TargetParticipantID,
			Order:      next.Order,
		}}}, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := tx.Model(round).Update("status", db.RoundStatusVoting).Error; err != nil {
		return nil, err
	}
	round.Status = db.RoundStatusVoting
	return []emission{{events.TypeRoundPhase, events.Payload{
		RoundID: round.ID,
		Phase:   db.RoundStatusVoting,
	}}}, nil
}
