package game

import (
	"context"
	"testing"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

func startedRound(t *testing.T, e *Engine, conn *gorm.DB, names ...string) (db.Round, map[uint]Actor) {
	t.Helper()
	code, actors := lobby(t, e, names...)
	result, err := e.StartRound(context.Background(), code, actors[names[0]])
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	round := fetchRound(t, conn, result.RoundID)
	return round, participantActors(t, conn, round.RoomID)
}

func activeQuestion(t *testing.T, conn *gorm.DB, roundID uint) db.Question {
	t.Helper()
	var question db.Question
	err := conn.Where("round_id = ? AND status = ?", roundID, db.QuestionStatusInProgress).
		First(&question).Error
	if err != nil {
		t.Fatalf("fetch active question: %v", err)
	}
	return question
}

func TestQuestionRotationAdvances(t *testing.T) {
	e, rec, conn := testEngine(t)
	round, byID := startedRound(t, e, conn, "Ada", "Ben", "Cleo")

	for turn := 1; turn <= len(byID); turn++ {
		question := activeQuestion(t, conn, round.ID)
		if question.Order != turn {
			t.Fatalf("turn %d activated question order %d", turn, question.Order)
		}

		var active int64
		err := conn.Model(&db.Question{}).
			Where("round_id = ? AND status = ?", round.ID, db.QuestionStatusInProgress).
			Count(&active).Error
		if err != nil {
			t.Fatalf("count active questions: %v", err)
		}
		if active != 1 {
			t.Fatalf("turn %d has %d active questions", turn, active)
		}

		targetID := anyOther(byID, question.AskerParticipantID)
		if _, err := e.AskQuestion(context.Background(), round.ID, byID[question.AskerParticipantID], targetID, "What would you pack for it?"); err != nil {
			t.Fatalf("ask turn %d: %v", turn, err)
		}
		if _, err := e.AnswerQuestion(context.Background(), round.ID, byID[targetID], question.ID, "A raincoat."); err != nil {
			t.Fatalf("answer turn %d: %v", turn, err)
		}
	}

	if got := fetchRound(t, conn, round.ID).Status; got != db.RoundStatusVoting {
		t.Fatalf("round status = %s, want voting", got)
	}
	if rec.count(events.TypeRoundPhase) != 1 {
		t.Fatalf("round.phase emitted %d times, want 1", rec.count(events.TypeRoundPhase))
	}
	if rec.count(events.TypeRoundQuestionTurn) != len(byID) {
		t.Fatalf("round.question_turn emitted %d times, want %d", rec.count(events.TypeRoundQuestionTurn), len(byID))
	}
}

func TestAskQuestionOutOfTurn(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID := startedRound(t, e, conn, "Ada", "Ben", "Cleo")

	question := activeQuestion(t, conn, round.ID)
	for id, actor := range byID {
		if id == question.AskerParticipantID {
			continue
		}
		_, err := e.AskQuestion(context.Background(), round.ID, actor, anyOther(byID, id), "Is it my turn yet?")
		if KindOf(err) != KindInvalidPhase {
			t.Fatalf("out-of-turn ask by %d: got %v, want invalid phase", id, err)
		}
		break
	}
}

func TestAskQuestionValidation(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID := startedRound(t, e, conn, "Ada", "Ben", "Cleo")

	question := activeQuestion(t, conn, round.ID)
	asker := byID[question.AskerParticipantID]
	targetID := anyOther(byID, question.AskerParticipantID)

	_, err := e.AskQuestion(context.Background(), round.ID, asker, targetID, "ab")
	if KindOf(err) != KindValidation {
		t.Fatalf("short question: got %v, want validation error", err)
	}
	_, err = e.AskQuestion(context.Background(), round.ID, asker, question.AskerParticipantID, "Why would I ask myself?")
	if KindOf(err) != KindValidation {
		t.Fatalf("self target: got %v, want validation error", err)
	}
}

func TestAskQuestionTimeoutSkipsAnswer(t *testing.T) {
	e, rec, conn := testEngine(t)
	round, byID := startedRound(t, e, conn, "Ada", "Ben", "Cleo")

	question := activeQuestion(t, conn, round.ID)
	asker := byID[question.AskerParticipantID]
	targetID := anyOther(byID, question.AskerParticipantID)

	result, err := e.AskQuestion(context.Background(), round.ID, asker, targetID, TimeoutSentinel)
	if err != nil {
		t.Fatalf("timed-out ask: %v", err)
	}
	if result.Status != db.QuestionStatusAnswered {
		t.Fatalf("timed-out question status = %s, want answered", result.Status)
	}

	var answers int64
	if err := conn.Model(&db.Answer{}).Where("question_id = ?", question.ID).Count(&answers).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answers != 0 {
		t.Fatalf("timed-out question recorded %d answers", answers)
	}

	next := activeQuestion(t, conn, round.ID)
	if next.Order != question.Order+1 {
		t.Fatalf("rotation did not advance past timed-out turn, active order %d", next.Order)
	}
	if rec.count(events.TypeRoundQuestionTurn) != 2 {
		t.Fatalf("round.question_turn emitted %d times, want 2", rec.count(events.TypeRoundQuestionTurn))
	}
}

func TestAnswerQuestionWrongResponder(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID := startedRound(t, e, conn, "Ada", "Ben", "Cleo")

	question := activeQuestion(t, conn, round.ID)
	targetID := anyOther(byID, question.AskerParticipantID)
	if _, err := e.AskQuestion(context.Background(), round.ID, byID[question.AskerParticipantID], targetID, "Have you been there?"); err != nil {
		t.Fatalf("ask: %v", err)
	}

	_, err := e.AnswerQuestion(context.Background(), round.ID, byID[question.AskerParticipantID], question.ID, "Let me answer my own question.")
	if KindOf(err) != KindForbidden {
		t.Fatalf("wrong responder: got %v, want forbidden", err)
	}
}

func TestAnswerPendingQuestionRejected(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID := startedRound(t, e, conn, "Ada", "Ben", "Cleo")

	var pending db.Question
	err := conn.Where("round_id = ? AND status = ?", round.ID, db.QuestionStatusPending).
		Order("ask_order").First(&pending).Error
	if err != nil {
		t.Fatalf("fetch pending question: %v", err)
	}

	// The pre-assigned target jumps the queue and answers a turn that has
	// not been asked yet.
	_, err = e.AnswerQuestion(context.Background(), round.ID, byID[pending.TargetParticipantID], pending.ID, "Answering ahead of time.")
	if KindOf(err) != KindInvalidPhase {
		t.Fatalf("answer pending question: got %v, want invalid phase", err)
	}

	var active int64
	err = conn.Model(&db.Question{}).
		Where("round_id = ? AND status = ?", round.ID, db.QuestionStatusInProgress).
		Count(&active).Error
	if err != nil {
		t.Fatalf("count active questions: %v", err)
	}
	if active != 1 {
		t.Fatalf("active questions = %d, want exactly 1", active)
	}
	if got := fetchRound(t, conn, round.ID).Status; got != db.RoundStatusInProgress {
		t.Fatalf("round status = %s, want in_progress", got)
	}
}

func TestAnswerQuestionTwice(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID := startedRound(t, e, conn, "Ada", "Ben", "Cleo")

	question := activeQuestion(t, conn, round.ID)
	targetID := anyOther(byID, question.AskerParticipantID)
	if _, err := e.AskQuestion(context.Background(), round.ID, byID[question.AskerParticipantID], targetID, "Have you been there?"); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if _, err := e.AnswerQuestion(context.Background(), round.ID, byID[targetID], question.ID, "Twice, actually."); err != nil {
		t.Fatalf("answer: %v", err)
	}

	_, err := e.AnswerQuestion(context.Background(), round.ID, byID[targetID], question.ID, "Let me repeat that.")
	if KindOf(err) != KindAlreadyDone {
		t.Fatalf("double answer: got %v, want already done", err)
	}
}
