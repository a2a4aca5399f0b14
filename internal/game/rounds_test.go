package game

import (
	"context"
	"testing"

	"word-imposter/internal/db"
	"word-imposter/internal/events"
)

func TestStartRoundRequiresHost(t *testing.T) {
	e, _, _ := testEngine(t)
	code, actors := lobby(t, e, "Ada", "Ben", "Cleo")

	_, err := e.StartRound(context.Background(), code, actors["Ben"])
	if KindOf(err) != KindForbidden {
		t.Fatalf("non-host start: got %v, want forbidden", err)
	}
}

func TestStartRoundNeedsThreePlayers(t *testing.T) {
	e, _, conn := testEngine(t)
	code, actors := lobby(t, e, "Ada", "Ben")

	_, err := e.StartRound(context.Background(), code, actors["Ada"])
	if KindOf(err) != KindValidation {
		t.Fatalf("start with 2 players: got %v, want validation error", err)
	}

	room := fetchRoom(t, conn, code)
	if room.Status != db.RoomStatusLobby {
		t.Fatalf("failed start mutated room status to %s", room.Status)
	}
	var rounds int64
	if err := conn.Model(&db.Round{}).Where("room_id = ?", room.ID).Count(&rounds).Error; err != nil {
		t.Fatalf("count rounds: %v", err)
	}
	if rounds != 0 {
		t.Fatalf("failed start created %d rounds", rounds)
	}
}

func TestStartRoundAllMustBeReady(t *testing.T) {
	e, _, conn := testEngine(t)
	code, actors := lobby(t, e, "Ada", "Ben", "Cleo")
	if _, err := e.SetReady(context.Background(), code, actors["Cleo"], false); err != nil {
		t.Fatalf("unready Cleo: %v", err)
	}

	_, err := e.StartRound(context.Background(), code, actors["Ada"])
	if KindOf(err) != KindValidation {
		t.Fatalf("start with unready player: got %v, want validation error", err)
	}

	room := fetchRoom(t, conn, code)
	if room.Status != db.RoomStatusLobby {
		t.Fatalf("failed start mutated room status to %s", room.Status)
	}
	var rounds int64
	if err := conn.Model(&db.Round{}).Where("room_id = ?", room.ID).Count(&rounds).Error; err != nil {
		t.Fatalf("count rounds: %v", err)
	}
	if rounds != 0 {
		t.Fatalf("failed start created %d rounds", rounds)
	}
}

func TestStartRoundCastsAndSeedsRotation(t *testing.T) {
	e, rec, conn := testEngine(t)
	code, actors := lobby(t, e, "Ada", "Ben", "Cleo")

	result, err := e.StartRound(context.Background(), code, actors["Ada"])
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	if result.RoundNumber != 1 || result.CountdownSeconds != CountdownSeconds {
		t.Fatalf("unexpected start result: %+v", result)
	}
	if result.FirstQuestion == nil || result.FirstQuestion.Order != 1 {
		t.Fatalf("first question missing from start result: %+v", result.FirstQuestion)
	}

	room := fetchRoom(t, conn, code)
	if room.Status != db.RoomStatusInRound {
		t.Fatalf("room status = %s, want in_round", room.Status)
	}
	round := fetchRound(t, conn, result.RoundID)
	if round.Status != db.RoundStatusInProgress || round.StartedAt == nil {
		t.Fatalf("round not started: %+v", round)
	}
	if round.WordID == nil {
		t.Fatalf("round has no secret word")
	}

	byID := participantActors(t, conn, room.ID)
	if _, ok := byID[round.ImposterParticipantID]; !ok {
		t.Fatalf("imposter %d is not a participant", round.ImposterParticipantID)
	}

	var questions []db.Question
	if err := conn.Where("round_id = ?", round.ID).Order("ask_order").Find(&questions).Error; err != nil {
		t.Fatalf("fetch questions: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("questions = %d, want one per participant", len(questions))
	}
	askers := map[uint]bool{}
	for i, question := range questions {
		if question.Order != i+1 {
			t.Fatalf("ask order %d at position %d", question.Order, i)
		}
		want := db.QuestionStatusPending
		if i == 0 {
			want = db.QuestionStatusInProgress
		}
		if question.Status != want {
			t.Fatalf("question %d status = %s, want %s", question.Order, question.Status, want)
		}
		if askers[question.AskerParticipantID] {
			t.Fatalf("participant %d asks twice", question.AskerParticipantID)
		}
		askers[question.AskerParticipantID] = true
		if question.TargetParticipantID == question.AskerParticipantID {
			t.Fatalf("question %d targets its own asker", question.Order)
		}
	}

	if rec.count(events.TypeRoundStarted) != 1 {
		t.Fatalf("round.started emitted %d times", rec.count(events.TypeRoundStarted))
	}
	if rec.count(events.TypeRoundQuestionTurn) != 1 {
		t.Fatalf("round.question_turn emitted %d times", rec.count(events.TypeRoundQuestionTurn))
	}
}

func TestStartRoundWhileRoundOpen(t *testing.T) {
	e, _, _ := testEngine(t)
	code, actors := lobby(t, e, "Ada", "Ben", "Cleo")

	if _, err := e.StartRound(context.Background(), code, actors["Ada"]); err != nil {
		t.Fatalf("start round: %v", err)
	}
	_, err := e.StartRound(context.Background(), code, actors["Ada"])
	if KindOf(err) != KindInvalidPhase {
		t.Fatalf("second start: got %v, want invalid phase", err)
	}
}

func TestRoleViews(t *testing.T) {
	e, _, conn := testEngine(t)
	code, actors := lobby(t, e, "Ada", "Ben", "Cleo")

	result, err := e.StartRound(context.Background(), code, actors["Ada"])
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	round := fetchRound(t, conn, result.RoundID)
	byID := participantActors(t, conn, round.RoomID)

	var secret db.Word
	if err := conn.First(&secret, *round.WordID).Error; err != nil {
		t.Fatalf("fetch secret word: %v", err)
	}

	for id, actor := range byID {
		role, err := e.Role(context.Background(), round.ID, actor)
		if err != nil {
			t.Fatalf("role for %d: %v", id, err)
		}
		if id == round.ImposterParticipantID {
			if role.Role != "imposter" || role.Word != nil {
				t.Fatalf("imposter role view leaked the word: %+v", role)
			}
			if len(role.WordList) == 0 {
				t.Fatalf("imposter got no word list")
			}
			found := false
			for _, option := range role.WordList {
				if option.ID == secret.ID {
					found = true
				}
			}
			if !found {
				t.Fatalf("secret word missing from imposter word list")
			}
			continue
		}
		if role.Role != "civilian" || role.Word == nil || *role.Word != secret.Text {
			t.Fatalf("civilian role view: %+v, want word %q", role, secret.Text)
		}
		if len(role.WordList) != 0 {
			t.Fatalf("civilian got a word list")
		}
	}
}

func TestRoleRequiresMembership(t *testing.T) {
	e, _, _ := testEngine(t)
	code, actors := lobby(t, e, "Ada", "Ben", "Cleo")

	result, err := e.StartRound(context.Background(), code, actors["Ada"])
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	_, err = e.Role(context.Background(), result.RoundID, guest("Mallory"))
	if KindOf(err) != KindForbidden {
		t.Fatalf("outsider role: got %v, want forbidden", err)
	}
}
