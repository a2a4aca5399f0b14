package game

import (
	"context"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

// CountdownSeconds is how long clients display the pre-round countdown
// before the first question turn begins.
const CountdownSeconds = 5

type StartResult struct {
	RoundID              uint                 `json:"round_id"`
	RoundNumber          int                  `json:"round_number"`
	StartedAt            time.Time            `json:"started_at"`
	CountdownSeconds     int                  `json:"countdown_seconds"`
	RoundDurationSeconds int                  `json:"round_duration_seconds"`
	FirstQuestion        *events.QuestionTurn `json:"first_question"`
}

type WordOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type RoleResult struct {
	RoundID     uint         `json:"round_id"`
	RoundNumber int          `json:"round_number"`
	Role        string       `json:"role"`
	Category    string       `json:"category"`
	Word        *string      `json:"word"`
	WordList    []WordOption `json:"word_list,omitempty"`
}

// StartRound moves a ready lobby into a new round: it picks the category and
// a uniformly random secret word, casts one participant as the imposter, and
// seeds the question rotation with a random ask-order permutation. Only the
// host may start, and only from a lobby where every participant is ready.
func (e *Engine) StartRound(ctx context.Context, roomCode string, actor Actor) (*StartResult, error) {
	var result StartResult
	var emits []emission
	var room *db.Room

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = roomByCode(tx, roomCode)
		if err != nil {
			return err
		}
		if !isHost(room, actor) {
			return forbidden("Only host can perform this action")
		}
		if room.Status != db.RoomStatusLobby {
			return invalidPhase("Room not in lobby state")
		}

		participants, err := participantsOf(tx, room.ID)
		if err != nil {
			return err
		}
		if len(participants) < minPlayers {
			return invalid("Need at least 3 players")
		}
		for _, p := range participants {
			if p.ReadyAt == nil {
				return invalid("All players must be ready")
			}
		}

		// One non-ended round per room; the status check above already
		// implies this, but a racing start must not slip through.
		var open int64
		err = tx.Model(&db.Round{}).
			Where("room_id = ? AND status <> ?", room.ID, db.RoundStatusEnded).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return invalidPhase("Room not in lobby state")
		}

		category, err := pickCategory(tx, room.Category)
		if err != nil {
			return err
		}
		var wordIDs []uint
		if err := tx.Model(&db.Word{}).Where("category_id = ?", category.ID).Pluck("id", &wordIDs).Error; err != nil {
			return err
		}
		if len(wordIDs) == 0 {
			return invalid("No category available to start a round")
		}
		wordID := randomWordID(wordIDs)

		var roundCount int64
		if err := tx.Model(&db.Round{}).Where("room_id = ?", room.ID).Count(&roundCount).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		imposter := randomParticipant(participants)
		round := db.Round{
			RoomID:                room.ID,
			RoundNumber:           int(roundCount) + 1,
			CategoryID:            category.ID,
			WordID:                &wordID,
			ImposterParticipantID: imposter.ID,
			Status:                db.RoundStatusInProgress,
			RoundDurationSeconds:  room.RoundDurationSeconds,
			StartedAt:             &now,
		}
		if err := tx.Create(&round).Error; err != nil {
			return translate(err)
		}

		err = tx.Model(room).Updates(map[string]any{
			"status":         db.RoomStatusInRound,
			"last_active_at": now,
		}).Error
		if err != nil {
			return err
		}

		var first *events.QuestionTurn
		for index, asker := range shuffledParticipants(participants) {
			status := db.QuestionStatusPending
			if index == 0 {
				status = db.QuestionStatusInProgress
			}
			question := db.Question{
				RoundID:             round.ID,
				AskerParticipantID:  asker.ID,
				TargetParticipantID: pickTarget(participants, asker).ID,
				Text:                "",
				Order:               index + 1,
				Status:              status,
			}
			if err := tx.Create(&question).Error; err != nil {
				return translate(err)
			}
			if index == 0 {
				first = &events.QuestionTurn{
					QuestionID: question.ID,
					AskerID:    question.AskerParticipantID,
					TargetID:   question.TargetParticipantID,
					Order:      question.Order,
				}
			}
		}

		result = StartResult{
			RoundID:              round.ID,
			RoundNumber:          round.RoundNumber,
			StartedAt:            now,
			CountdownSeconds:     CountdownSeconds,
			RoundDurationSeconds: round.RoundDurationSeconds,
			FirstQuestion:        first,
		}
		emits = append(emits, emission{events.TypeRoundStarted, events.Payload{
			RoundID:          round.ID,
			RoundNumber:      round.RoundNumber,
			Duration:         round.RoundDurationSeconds,
			Category:         room.Category,
			StartedAt:        now.Format(time.RFC3339),
			CountdownSeconds: CountdownSeconds,
			FirstQuestion:    first,
		}})
		if first != nil {
			emits = append(emits, emission{events.TypeRoundQuestionTurn, events.Payload{
				RoundID:    round.ID,
				QuestionID: first.QuestionID,
				AskerID:    first.AskerID,
				TargetID:   first.TargetID,
				Order:      first.Order,
			}})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishAll(ctx, room.Code, emits)
	return &result, nil
}

// Role reveals the actor's casting for a round: civilians see the secret
// word, the imposter instead gets the full word list of the category.
func (e *Engine) Role(ctx context.Context, roundID uint, actor Actor) (*RoleResult, error) {
	tx := e.db.WithContext(ctx)
	round, room, err := roundByID(tx, roundID)
	if err != nil {
		return nil, err
	}
	participant, err := participantFor(tx, room.ID, actor)
	if err != nil {
		return nil, err
	}

	var category db.Category
	if err := tx.First(&category, round.CategoryID).Error; err != nil {
		return nil, err
	}

	result := RoleResult{
		RoundID:     round.ID,
		RoundNumber: round.RoundNumber,
		Category:    category.Name,
	}
	if round.ImposterParticipantID == participant.ID {
		result.Role = "imposter"
		var options []WordOption
		err := tx.Model(&db.Word{}).
			Select("id, text").
			Where("category_id = ?", round.CategoryID).
			Order("id").
			Scan(&options).Error
		if err != nil {
			return nil, err
		}
		result.WordList = options
		return &result, nil
	}

	result.Role = "civilian"
	if round.WordID != nil {
		var word db.Word
		if err := tx.First(&word, *round.WordID).Error; err != nil {
			return nil, err
		}
		result.Word = &word.Text
	}
	return &result, nil
}

// pickCategory prefers the room's configured category and falls back to any
// seeded one.
func pickCategory(tx *gorm.DB, slug string) (*db.Category, error) {
	var category db.Category
	err := tx.Where("slug = ?", slug).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err := tx.Order("id").First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, invalid("No category available to start a round")
		}
		return nil, err
	}
	return &category, nil
}
