package game

import (
	"context"
	"testing"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

func scoresByParticipant(t *testing.T, conn *gorm.DB, roundID uint) map[uint]db.Score {
	t.Helper()
	var scores []db.Score
	if err := conn.Where("round_id = ?", roundID).Find(&scores).Error; err != nil {
		t.Fatalf("fetch scores: %v", err)
	}
	byID := make(map[uint]db.Score, len(scores))
	for _, score := range scores {
		byID[score.ParticipantID] = score
	}
	return byID
}

func TestRoundCompletionScoresEveryone(t *testing.T) {
	e, rec, conn := testEngine(t)
	round, byID, imposter, civilians := votingRound(t, e, conn)

	for _, voter := range civilians {
		if _, err := e.Vote(context.Background(), round.ID, byID[voter], imposter); err != nil {
			t.Fatalf("vote by %d: %v", voter, err)
		}
	}
	if _, err := e.Guess(context.Background(), round.ID, byID[imposter], *round.WordID); err != nil {
		t.Fatalf("guess: %v", err)
	}

	settled := fetchRound(t, conn, round.ID)
	if settled.Status != db.RoundStatusEnded || settled.EndedAt == nil {
		t.Fatalf("round not settled: %+v", settled)
	}
	var room db.Room
	if err := conn.First(&room, round.RoomID).Error; err != nil {
		t.Fatalf("fetch room: %v", err)
	}
	if room.Status != db.RoomStatusLobby {
		t.Fatalf("room status = %s, want lobby after settlement", room.Status)
	}

	scores := scoresByParticipant(t, conn, round.ID)
	if len(scores) != len(byID) {
		t.Fatalf("score rows = %d, want one per participant", len(scores))
	}
	for _, voter := range civilians {
		if scores[voter].Points != pointsCorrectVote {
			t.Fatalf("civilian %d scored %d, want %d", voter, scores[voter].Points, pointsCorrectVote)
		}
		if scores[voter].Reason != db.ScoreReasonCivilian {
			t.Fatalf("civilian %d reason = %s", voter, scores[voter].Reason)
		}
	}
	if scores[imposter].Points != pointsCorrectGuess {
		t.Fatalf("imposter scored %d, want %d", scores[imposter].Points, pointsCorrectGuess)
	}
	if scores[imposter].Reason != db.ScoreReasonImposter {
		t.Fatalf("imposter reason = %s", scores[imposter].Reason)
	}

	if rec.count(events.TypeRoundResults) != 1 {
		t.Fatalf("round.results emitted %d times, want 1", rec.count(events.TypeRoundResults))
	}
}

func TestIncorrectVotesFavorImposter(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID, imposter, civilians := votingRound(t, e, conn)

	// civilians[0] accuses an innocent, civilians[1] finds the imposter.
	if _, err := e.Vote(context.Background(), round.ID, byID[civilians[0]], civilians[1]); err != nil {
		t.Fatalf("incorrect vote: %v", err)
	}
	if _, err := e.Vote(context.Background(), round.ID, byID[civilians[1]], imposter); err != nil {
		t.Fatalf("correct vote: %v", err)
	}
	if _, err := e.SkipGuess(context.Background(), round.ID, byID[imposter]); err != nil {
		t.Fatalf("skip: %v", err)
	}

	scores := scoresByParticipant(t, conn, round.ID)
	if scores[civilians[0]].Points != pointsIncorrectVote {
		t.Fatalf("mistaken voter scored %d, want %d", scores[civilians[0]].Points, pointsIncorrectVote)
	}
	if scores[civilians[1]].Points != pointsCorrectVote {
		t.Fatalf("correct voter scored %d, want %d", scores[civilians[1]].Points, pointsCorrectVote)
	}
	if scores[imposter].Points != pointsImposterDodge {
		t.Fatalf("imposter scored %d, want %d", scores[imposter].Points, pointsImposterDodge)
	}
}

func TestWrongGuessEarnsNothing(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID, imposter, civilians := votingRound(t, e, conn)

	var decoy db.Word
	err := conn.Where("category_id = (?) AND id <> ?",
		conn.Model(&db.Word{}).Select("category_id").Where("id = ?", *round.WordID),
		*round.WordID,
	).First(&decoy).Error
	if err != nil {
		t.Fatalf("fetch decoy word: %v", err)
	}
	if _, err := e.Guess(context.Background(), round.ID, byID[imposter], decoy.ID); err != nil {
		t.Fatalf("guess: %v", err)
	}
	for _, voter := range civilians {
		if _, err := e.Vote(context.Background(), round.ID, byID[voter], imposter); err != nil {
			t.Fatalf("vote by %d: %v", voter, err)
		}
	}

	scores := scoresByParticipant(t, conn, round.ID)
	if scores[imposter].Points != 0 {
		t.Fatalf("imposter scored %d on a wrong guess, want 0", scores[imposter].Points)
	}
	if got := fetchRound(t, conn, round.ID).Status; got != db.RoundStatusEnded {
		t.Fatalf("round status = %s, want ended", got)
	}
}

func TestResultsSettlesEarly(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID, imposter, civilians := votingRound(t, e, conn)

	if _, err := e.Vote(context.Background(), round.ID, byID[civilians[0]], imposter); err != nil {
		t.Fatalf("vote: %v", err)
	}

	view, err := e.Results(context.Background(), round.ID, byID[civilians[0]])
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if view.Status != db.RoundStatusEnded {
		t.Fatalf("results status = %s, want ended", view.Status)
	}
	if len(view.Scores) != len(byID) {
		t.Fatalf("score lines = %d, want one per participant", len(view.Scores))
	}
	if view.ImposterParticipantID != imposter {
		t.Fatalf("results named imposter %d, want %d", view.ImposterParticipantID, imposter)
	}
	if view.ImposterGuessedCorrectly {
		t.Fatalf("no guess was made, yet results report a correct one")
	}
}

func TestScoringIsIdempotent(t *testing.T) {
	e, rec, conn := testEngine(t)
	round, byID, imposter, civilians := votingRound(t, e, conn)

	for _, voter := range civilians {
		if _, err := e.Vote(context.Background(), round.ID, byID[voter], imposter); err != nil {
			t.Fatalf("vote by %d: %v", voter, err)
		}
	}
	if _, err := e.Guess(context.Background(), round.ID, byID[imposter], *round.WordID); err != nil {
		t.Fatalf("guess: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.Results(context.Background(), round.ID, byID[civilians[0]]); err != nil {
			t.Fatalf("results: %v", err)
		}
	}

	var rows int64
	if err := conn.Model(&db.Score{}).Where("round_id = ?", round.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count scores: %v", err)
	}
	if rows != int64(len(byID)) {
		t.Fatalf("score rows = %d after repeated results, want %d", rows, len(byID))
	}
	if rec.count(events.TypeRoundResults) != 1 {
		t.Fatalf("round.results emitted %d times, want 1", rec.count(events.TypeRoundResults))
	}
}

func TestCumulativeTotalsSpanRounds(t *testing.T) {
	e, _, conn := testEngine(t)
	round, byID, imposter, civilians := votingRound(t, e, conn)

	for _, voter := range civilians {
		if _, err := e.Vote(context.Background(), round.ID, byID[voter], imposter); err != nil {
			t.Fatalf("vote by %d: %v", voter, err)
		}
	}
	if _, err := e.Guess(context.Background(), round.ID, byID[imposter], *round.WordID); err != nil {
		t.Fatalf("guess: %v", err)
	}

	var room db.Room
	if err := conn.First(&room, round.RoomID).Error; err != nil {
		t.Fatalf("fetch room: %v", err)
	}
	if room.Status != db.RoomStatusLobby {
		t.Fatalf("room status = %s, want lobby before round two", room.Status)
	}

	// The room is back in the lobby; every seat re-readies for round two.
	for id, actor := range byID {
		if _, err := e.SetReady(context.Background(), room.Code, actor, true); err != nil {
			t.Fatalf("re-ready %d: %v", id, err)
		}
	}
	host := Actor{Type: ActorGuest, GuestToken: *room.HostGuestToken}
	second, err := e.StartRound(context.Background(), room.Code, host)
	if err != nil {
		t.Fatalf("start second round: %v", err)
	}
	if second.RoundNumber != 2 {
		t.Fatalf("second round numbered %d", second.RoundNumber)
	}
	playToVoting(t, e, conn, second.RoundID)

	round2 := fetchRound(t, conn, second.RoundID)
	for id := range byID {
		if id == round2.ImposterParticipantID {
			continue
		}
		if _, err := e.Vote(context.Background(), round2.ID, byID[id], round2.ImposterParticipantID); err != nil {
			t.Fatalf("second-round vote by %d: %v", id, err)
		}
	}
	if _, err := e.SkipGuess(context.Background(), round2.ID, byID[round2.ImposterParticipantID]); err != nil {
		t.Fatalf("second-round skip: %v", err)
	}

	view, err := e.Results(context.Background(), round2.ID, byID[civilians[0]])
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	for id := range byID {
		want := 0
		if id != imposter {
			want += pointsCorrectVote
		} else {
			want += pointsCorrectGuess
		}
		if id != round2.ImposterParticipantID {
			want += pointsCorrectVote
		}
		if got := view.CumulativeScores[id]; got != want {
			t.Fatalf("cumulative for %d = %d, want %d", id, got, want)
		}
	}
}
