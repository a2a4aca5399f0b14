package game

import (
	"context"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

type VoteResult struct {
	VoteID uint `json:"id"`
}

type GuessResult struct {
	GuessID uint `json:"id"`
	Correct bool `json:"correct"`
}

type ReadyForVotingResult struct {
	AllReady bool `json:"all_ready"`
}

// Vote records a civilian's suspicion. The imposter may not vote, nobody may
// vote for themselves, and each participant votes at most once per round.
// Every vote republishes the full tally snapshot.
func (e *Engine) Vote(ctx context.Context, roundID uint, actor Actor, targetID uint) (*VoteResult, error) {
	var result VoteResult
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
		if round.Status != db.RoundStatusVoting {
			return invalidPhase("Not in voting phase")
		}
		if round.ImposterParticipantID == participant.ID {
			return forbidden("Imposter cannot vote")
		}
		if participant.ID == targetID {
			return invalid("Cannot vote yourself")
		}
		var target int64
		if err := tx.Model(&db.Participant{}).Where("id = ? AND room_id = ?", targetID, room.ID).Count(&target).Error; err != nil {
			return err
		}
		if target == 0 {
			return invalid("Target not found")
		}

		var existing int64
		err = tx.Model(&db.Vote{}).
			Where("round_id = ? AND voter_participant_id = ?", round.ID, participant.ID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return alreadyDone("Already voted")
		}

		vote := db.Vote{
			RoundID:             round.ID,
			VoterParticipantID:  participant.ID,
			TargetParticipantID: targetID,
			CastAt:              time.Now().UTC(),
		}
		if err := tx.Create(&vote).Error; err != nil {
			return translate(err)
		}

		totals, err := voteTotals(tx, round.ID)
		if err != nil {
			return err
		}
		emits = append(emits, emission{events.TypeRoundVotesUpdated, events.Payload{
			RoundID: round.ID,
			Totals:  totals,
		}})

		more, err := e.maybeScore(tx, round)
		if err != nil {
			return err
		}
		emits = append(emits, more...)

		result = VoteResult{VoteID: vote.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishAll(ctx, room.Code, emits)
	return &result, nil
}

// Guess records the imposter's attempt at the secret word. Correctness is
// computed at creation time against the round's word.
func (e *Engine) Guess(ctx context.Context, roundID uint, actor Actor, wordID uint) (*GuessResult, error) {
	return e.recordGuess(ctx, roundID, actor, &wordID)
}

// SkipGuess records a skip: a guess row with no word, always incorrect.
func (e *Engine) SkipGuess(ctx context.Context, roundID uint, actor Actor) (*GuessResult, error) {
	return e.recordGuess(ctx, roundID, actor, nil)
}

func (e *Engine) recordGuess(ctx context.Context, roundID uint, actor Actor, wordID *uint) (*GuessResult, error) {
	var result GuessResult
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
		if round.Status != db.RoundStatusVoting {
			return invalidPhase("Not in voting phase")
		}
		if round.ImposterParticipantID != participant.ID {
			return forbidden("Only imposter can guess")
		}

		var existing int64
		if err := tx.Model(&db.ImposterGuess{}).Where("round_id = ?", round.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return alreadyDone("Guess already made this round")
		}

		correct := false
		var wordText string
		if wordID != nil {
			var word db.Word
			if err := tx.First(&word, *wordID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return invalid("Word not found")
				}
				return err
			}
			wordText = word.Text
			correct = round.WordID != nil && *round.WordID == *wordID
		}

		guess := db.ImposterGuess{
			RoundID:               round.ID,
			ImposterParticipantID: participant.ID,
			WordID:                wordID,
			Correct:               correct,
			GuessedAt:             time.Now().UTC(),
		}
		if err := tx.Create(&guess).Error; err != nil {
			return translate(err)
		}

		if wordID != nil {
			emits = append(emits, emission{events.TypeRoundImposterGuess, events.Payload{
				RoundID:  round.ID,
				WordID:   wordID,
				WordText: wordText,
				Correct:  &correct,
			}})
		} else {
			emits = append(emits, emission{events.TypeRoundImposterSkip, events.Payload{
				RoundID: round.ID,
			}})
		}

		more, err := e.maybeScore(tx, round)
		if err != nil {
			return err
		}
		emits = append(emits, more...)

		result = GuessResult{GuessID: guess.ID, Correct: correct}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishAll(ctx, room.Code, emits)
	return &result, nil
}

// ReadyForVoting is the explicit convergence path: each participant opts in,
// and once everyone has, the readiness flags reset and the round is forced
// into voting.
func (e *Engine) ReadyForVoting(ctx context.Context, roundID uint, actor Actor) (*ReadyForVotingResult, error) {
	var result ReadyForVotingResult
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

		now := time.Now().UTC()
		if err := tx.Model(participant).Update("ready_for_voting_at", now).Error; err != nil {
			return err
		}

		participants, err := participantsOf(tx, room.ID)
		if err != nil {
			return err
		}
		readyCount := 0
		for _, p := range participants {
			if p.ReadyForVotingAt != nil {
				readyCount++
			}
		}
		emits = append(emits, emission{events.TypeRoundReadyForVoting, events.Payload{
			RoundID:       round.ID,
			ParticipantID: participant.ID,
			Nickname:      participant.Nickname,
			ReadyCount:    readyCount,
			TotalCount:    len(participants),
		}})

		if readyCount == len(participants) {
			err := tx.Model(&db.Participant{}).
				Where("room_id = ?", room.ID).
				Update("ready_for_voting_at", nil).Error
			if err != nil {
				return err
			}
			if err := tx.Model(round).Update("status", db.RoundStatusVoting).Error; err != nil {
				return err
			}
			emits = append(emits, emission{events.TypeRoundPhase, events.Payload{
				RoundID: round.ID,
				Phase:   db.RoundStatusVoting,
			}})
			result.AllReady = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishAll(ctx, room.Code, emits)
	return &result, nil
}

func voteTotals(tx *gorm.DB, roundID uint) ([]events.VoteTotal, error) {
	var totals []events.VoteTotal
	err := tx.Model(&db.Vote{}).
		Select("target_participant_id AS participant_id, COUNT(*) AS votes").
		Where("round_id = ?", roundID).
		Group("target_participant_id").
		Order("target_participant_id").
		Scan(&totals).Error
	return totals, err
}

// maybeScore runs the completion check: the round completes once every
// non-imposter participant has voted and a guess record exists.
func (e *Engine) maybeScore(tx *gorm.DB, round *db.Round) ([]emission, error) {
	var civilians int64
	err := tx.Model(&db.Participant{}).
		Where("room_id = ? AND id <> ?", round.RoomID, round.ImposterParticipantID).
		Count(&civilians).Error
	if err != nil {
		return nil, err
	}
	var votes int64
	if err := tx.Model(&db.Vote{}).Where("round_id = ?", round.ID).Count(&votes).Error; err != nil {
		return nil, err
	}
	var guesses int64
	if err := tx.Model(&db.ImposterGuess{}).Where("round_id = ?", round.ID).Count(&guesses).Error; err != nil {
		return nil, err
	}
	if votes < civilians || guesses == 0 {
		return nil, nil
	}
	return e.scoreRound(tx, round)
}
