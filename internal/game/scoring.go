package game

import (
	"context"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

// Vote-based point deltas. A correct vote names the imposter.
const (
	pointsCorrectVote   = 5
	pointsIncorrectVote = -1
	pointsImposterDodge = 1
	pointsCorrectGuess  = 2
)

type ScoreLine struct {
	ParticipantID uint   `json:"participant_id"`
	Nickname      string `json:"nickname"`
	Points        int    `json:"points"`
	Reason        string `json:"reason"`
}

type ResultsView struct {
	RoundID                  uint         `json:"round_id"`
	Status                   string       `json:"status"`
	Scores                   []ScoreLine  `json:"scores"`
	CumulativeScores         map[uint]int `json:"cumulative_scores"`
	ImposterParticipantID    uint         `json:"imposter_participant_id"`
	ImposterGuessedCorrectly bool         `json:"imposter_guessed_correctly"`
}

// scoreRound settles a completed round exactly once. The status re-read
// inside the caller's transaction makes a second invocation a no-op, and the
// unique (round, participant) score constraint backstops any race that
// slips past it.
//
// Deltas, aggregated per participant in one pass over the votes:
// a correct vote earns the voter +5; an incorrect vote costs the voter 1 and
// earns the imposter +1; a correct word guess earns the imposter +2 (a skip
// or wrong guess earns nothing, never a penalty).
func (e *Engine) scoreRound(tx *gorm.DB, round *db.Round) ([]emission, error) {
	var fresh db.Round
	if err := tx.First(&fresh, round.ID).Error; err != nil {
		return nil, err
	}
	if fresh.Status == db.RoundStatusScoring || fresh.Status == db.RoundStatusEnded {
		return nil, nil
	}
	if err := tx.Model(round).Update("status", db.RoundStatusScoring).Error; err != nil {
		return nil, err
	}

	participants, err := participantsOf(tx, round.RoomID)
	if err != nil {
		return nil, err
	}
	var votes []db.Vote
	if err := tx.Where("round_id = ?", round.ID).Find(&votes).Error; err != nil {
		return nil, err
	}

	imposterID := round.ImposterParticipantID
	points := make(map[uint]int, len(participants))
	for _, p := range participants {
		points[p.ID] = 0
	}
	for _, vote := range votes {
		if vote.TargetParticipantID == imposterID {
			points[vote.VoterParticipantID] += pointsCorrectVote
		} else {
			points[vote.VoterParticipantID] += pointsIncorrectVote
			points[imposterID] += pointsImposterDodge
		}
	}

	var guess db.ImposterGuess
	err = tx.Where("round_id = ?", round.ID).First(&guess).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err == nil && guess.WordID != nil && guess.Correct {
		points[imposterID] += pointsCorrectGuess
	}

	for _, p := range participants {
		reason := db.ScoreReasonCivilian
		if p.ID == imposterID {
			reason = db.ScoreReasonImposter
		}
		score := db.Score{
			RoundID:       round.ID,
			ParticipantID: p.ID,
			Points:        points[p.ID],
			Reason:        reason,
		}
		if err := tx.Create(&score).Error; err != nil {
			return nil, translate(err)
		}
	}

	now := time.Now().UTC()
	err = tx.Model(round).Updates(map[string]any{
		"status":   db.RoundStatusEnded,
		"ended_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	round.Status = db.RoundStatusEnded
	err = tx.Model(&db.Room{}).Where("id = ?", round.RoomID).
		Update("status", db.RoomStatusLobby).Error
	if err != nil {
		return nil, err
	}

	return []emission{{events.TypeRoundResults, events.Payload{RoundID: round.ID}}}, nil
}

// Results returns the settled scores for a round, settling it first if the
// completion check has not fired yet. Cumulative totals span every round of
// the room.
func (e *Engine) Results(ctx context.Context, roundID uint, actor Actor) (*ResultsView, error) {
	var emits []emission
	var view ResultsView
	var roomCode string

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, room, err := roundByID(tx, roundID)
		if err != nil {
			return err
		}
		roomCode = room.Code
		if _, err := participantFor(tx, room.ID, actor); err != nil {
			return err
		}

		if round.Status != db.RoundStatusEnded && round.Status != db.RoundStatusScoring {
			more, err := e.scoreRound(tx, round)
			if err != nil {
				return err
			}
			emits = append(emits, more...)
		}

		participants, err := participantsOf(tx, room.ID)
		if err != nil {
			return err
		}
		names := make(map[uint]string, len(participants))
		for _, p := range participants {
			names[p.ID] = p.Nickname
		}

		var scores []db.Score
		if err := tx.Where("round_id = ?", round.ID).Order("participant_id").Find(&scores).Error; err != nil {
			return err
		}
		lines := make([]ScoreLine, 0, len(scores))
		for _, score := range scores {
			lines = append(lines, ScoreLine{
				ParticipantID: score.ParticipantID,
				Nickname:      names[score.ParticipantID],
				Points:        score.Points,
				Reason:        score.Reason,
			})
		}

		totals, err := cumulativePoints(tx, room.ID)
		if err != nil {
			return err
		}

		guessedCorrectly := false
		var guess db.ImposterGuess
		err = tx.Where("round_id = ?", round.ID).First(&guess).Error
		if err == nil {
			guessedCorrectly = guess.WordID != nil && guess.Correct
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		view = ResultsView{
			RoundID:                  round.ID,
			Status:                   round.Status,
			Scores:                   lines,
			CumulativeScores:         totals,
			ImposterParticipantID:    round.ImposterParticipantID,
			ImposterGuessedCorrectly: guessedCorrectly,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishAll(ctx, roomCode, emits)
	return &view, nil
}
