// Package game implements the round engine for the word imposter party game:
// room lifecycle, role and word assignment, the question/answer rotation,
// voting, imposter-guess resolution and idempotent scoring. Every
// state-mutating operation runs inside one transaction, re-reads the
// authoritative status before mutating, and leans on unique constraints as
// the final correctness backstop.
package game

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

// TimeoutSentinel is the literal text clients submit when a turn timer
// expires. It bypasses length validation and, for questions, skips the
// answer step entirely.
const TimeoutSentinel = "[Timed out]"

const minPlayers = 3

type Engine struct {
	db  *gorm.DB
	pub events.Publisher
	log *slog.Logger
}

func New(conn *gorm.DB, pub events.Publisher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{db: conn, pub: pub, log: logger}
}

// emission is an event recorded during a transaction and published only
// after it commits, so a rollback never leaks phantom events.
type emission struct {
	eventType string
	payload   events.Payload
}

func (e *Engine) publishAll(ctx context.Context, roomCode string, emits []emission) {
	for _, m := range emits {
		e.pub.Publish(ctx, m.eventType, roomCode, m.payload)
	}
}

func roomByCode(tx *gorm.DB, code string) (*db.Room, error) {
	var room db.Room
	err := tx.Where("code = ?", strings.ToUpper(code)).First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("Room not found")
		}
		return nil, err
	}
	return &room, nil
}

func roundByID(tx *gorm.DB, roundID uint) (*db.Round, *db.Room, error) {
	var round db.Round
	if err := tx.First(&round, roundID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, notFound("Round not found")
		}
		return nil, nil, err
	}
	var room db.Room
	if err := tx.First(&room, round.RoomID).Error; err != nil {
		return nil, nil, err
	}
	return &round, &room, nil
}

// participantFor resolves the acting participant inside a room. Users and
// guests are matched on their respective identity column.
func participantFor(tx *gorm.DB, roomID uint, actor Actor) (*db.Participant, error) {
	query := tx.Where("room_id = ?", roomID)
	if actor.IsUser() {
		query = query.Where("user_id = ?", actor.UserID)
	} else {
		query = query.Where("guest_token = ?", actor.GuestToken)
	}
	var participant db.Participant
	if err := query.First(&participant).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, forbidden("Not in this room")
		}
		return nil, err
	}
	return &participant, nil
}

func isHost(room *db.Room, actor Actor) bool {
	if actor.IsUser() {
		return room.HostUserID != nil && *room.HostUserID == actor.UserID
	}
	return room.HostGuestToken != nil && *room.HostGuestToken == actor.GuestToken
}

func touchRoom(tx *gorm.DB, room *db.Room) error {
	return tx.Model(room).Update("last_active_at", time.Now().UTC()).Error
}

func participantsOf(tx *gorm.DB, roomID uint) ([]db.Participant, error) {
	var participants []db.Participant
	err := tx.Where("room_id = ?", roomID).Order("id").Find(&participants).Error
	return participants, err
}
