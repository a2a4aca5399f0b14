package game

import (
	"context"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

// RoomSettings carries the host-chosen configuration for a new room. Zero
// values fall back to the defaults the game shipped with.
type RoomSettings struct {
	Rounds               int
	DiscussionSeconds    int
	VotingSeconds        int
	MaxPlayers           int
	Category             string
	RoundDurationSeconds int
}

func (s RoomSettings) withDefaults() RoomSettings {
	if s.Rounds == 0 {
		s.Rounds = 4
	}
	if s.DiscussionSeconds == 0 {
		s.DiscussionSeconds = 300
	}
	if s.VotingSeconds == 0 {
		s.VotingSeconds = 60
	}
	if s.MaxPlayers == 0 {
		s.MaxPlayers = 10
	}
	if s.Category == "" {
		s.Category = "countries"
	}
	if s.RoundDurationSeconds == 0 {
		s.RoundDurationSeconds = 300
	}
	return s
}

type ParticipantView struct {
	ID          uint   `json:"id"`
	Nickname    string `json:"nickname"`
	IsHost      bool   `json:"is_host"`
	Ready       bool   `json:"ready"`
	UserID      *uint  `json:"user_id,omitempty"`
	Guest       bool   `json:"guest"`
	TotalPoints int    `json:"total_points"`
}

type RoomView struct {
	Code                 string            `json:"code"`
	Status               string            `json:"status"`
	MaxPlayers           int               `json:"max_players"`
	Rounds               int               `json:"rounds"`
	DiscussionSeconds    int               `json:"discussion_seconds"`
	VotingSeconds        int               `json:"voting_seconds"`
	RoundDurationSeconds int               `json:"round_duration_seconds"`
	Category             string            `json:"category"`
	CurrentRoundID       *uint             `json:"current_round_id,omitempty"`
	Participants         []ParticipantView `json:"participants"`
}

type JoinResult struct {
	Room        RoomView        `json:"room"`
	Participant ParticipantView `json:"participant"`
}

// CreateRoom opens a lobby with a fresh unique code and auto-joins the actor
// as its ready host.
func (e *Engine) CreateRoom(ctx context.Context, actor Actor, nickname string, settings RoomSettings) (*JoinResult, error) {
	settings = settings.withDefaults()

	var room db.Room
	var participant db.Participant
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := uniqueRoomCode(tx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		room = db.Room{
			Code:                 code,
			Status:               db.RoomStatusLobby,
			HostUserID:           actorUserID(actor),
			HostGuestToken:       actorGuestToken(actor),
			MaxPlayers:           settings.MaxPlayers,
			RoundLimit:           settings.Rounds,
			DiscussionSeconds:    settings.DiscussionSeconds,
			VotingSeconds:        settings.VotingSeconds,
			RoundDurationSeconds: settings.RoundDurationSeconds,
			Category:             settings.Category,
			LastActiveAt:         now,
		}
		if err := tx.Create(&room).Error; err != nil {
			return translate(err)
		}
		ready := now
		participant = db.Participant{
			RoomID:     room.ID,
			UserID:     actorUserID(actor),
			GuestToken: actorGuestToken(actor),
			Nickname:   nickname,
			IsHost:     true,
			ReadyAt:    &ready,
		}
		return translate(tx.Create(&participant).Error)
	})
	if err != nil {
		return nil, err
	}

	e.pub.Publish(ctx, events.TypeRoomCreated, room.Code, events.Payload{
		UserID:     participant.UserID,
		GuestToken: deref(participant.GuestToken),
	})
	return e.joinResult(ctx, room.ID, participant.ID)
}

// GetRoom returns the room snapshot for a member (or the host).
func (e *Engine) GetRoom(ctx context.Context, code string, actor Actor) (*RoomView, error) {
	tx := e.db.WithContext(ctx)
	room, err := roomByCode(tx, code)
	if err != nil {
		return nil, err
	}
	if _, err := participantFor(tx, room.ID, actor); err != nil {
		if !isHost(room, actor) {
			return nil, forbidden("You are not a member of this room")
		}
	}
	return e.roomView(tx, room)
}

// JoinRoom adds the actor to a lobby. Re-joining is idempotent and only
// refreshes the nickname.
func (e *Engine) JoinRoom(ctx context.Context, code string, actor Actor, nickname string) (*JoinResult, error) {
	var roomID, participantID uint
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := roomByCode(tx, code)
		if err != nil {
			return err
		}
		if room.Status != db.RoomStatusLobby {
			return invalidPhase("Room is not accepting players")
		}

		existing, err := participantFor(tx, room.ID, actor)
		if err != nil && KindOf(err) != KindForbidden {
			return err
		}
		if existing != nil {
			existing.Nickname = nickname
			existing.IsHost = isHost(room, actor)
			if err := tx.Save(existing).Error; err != nil {
				return translate(err)
			}
			roomID, participantID = room.ID, existing.ID
			return touchRoom(tx, room)
		}

		var count int64
		if err := tx.Model(&db.Participant{}).Where("room_id = ?", room.ID).Count(&count).Error; err != nil {
			return err
		}
		if int(count) >= room.MaxPlayers {
			return invalid("Lobby is full")
		}
		participant := db.Participant{
			RoomID:     room.ID,
			UserID:     actorUserID(actor),
			GuestToken: actorGuestToken(actor),
			Nickname:   nickname,
			IsHost:     isHost(room, actor),
		}
		if err := tx.Create(&participant).Error; err != nil {
			return translate(err)
		}
		roomID, participantID = room.ID, participant.ID
		return touchRoom(tx, room)
	})
	if err != nil {
		return nil, err
	}

	result, err := e.joinResult(ctx, roomID, participantID)
	if err != nil {
		return nil, err
	}
	e.pub.Publish(ctx, events.TypeRoomJoined, result.Room.Code, events.Payload{
		UserID:     actorUserID(actor),
		GuestToken: actor.GuestToken,
	})
	return result, nil
}

// LeaveRoom removes the actor's participant. A leaving host force-ends the
// room and cascades participant deletion; round data is never deleted so
// historical scores stay intact.
func (e *Engine) LeaveRoom(ctx context.Context, code string, actor Actor) (*RoomView, error) {
	var room *db.Room
	var hostLeft bool
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = roomByCode(tx, code)
		if err != nil {
			return err
		}
		participant, err := participantFor(tx, room.ID, actor)
		if err != nil {
			return notFound("You are not in this room")
		}
		if err := tx.Delete(participant).Error; err != nil {
			return err
		}
		if isHost(room, actor) {
			hostLeft = true
			if err := tx.Model(room).Update("status", db.RoomStatusEnded).Error; err != nil {
				return err
			}
			return tx.Where("room_id = ?", room.ID).Delete(&db.Participant{}).Error
		}
		return touchRoom(tx, room)
	})
	if err != nil {
		return nil, err
	}

	if hostLeft {
		e.pub.Publish(ctx, events.TypeRoomClosed, room.Code, events.Payload{Reason: "host_left"})
		return nil, nil
	}
	e.pub.Publish(ctx, events.TypeRoomLeft, room.Code, events.Payload{
		UserID:     actorUserID(actor),
		GuestToken: actor.GuestToken,
	})
	return e.roomView(e.db.WithContext(ctx), room)
}

// SetReady toggles the lobby readiness flag for the acting participant.
func (e *Engine) SetReady(ctx context.Context, code string, actor Actor, ready bool) (*JoinResult, error) {
	var roomID, participantID uint
	var readyAt *time.Time
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := roomByCode(tx, code)
		if err != nil {
			return err
		}
		if room.Status != db.RoomStatusLobby {
			return invalidPhase("Cannot toggle ready outside lobby")
		}
		participant, err := participantFor(tx, room.ID, actor)
		if err != nil {
			return err
		}
		if ready {
			now := time.Now().UTC()
			readyAt = &now
		}
		participant.ReadyAt = readyAt
		if err := tx.Model(participant).Update("ready_at", readyAt).Error; err != nil {
			return err
		}
		roomID, participantID = room.ID, participant.ID
		return touchRoom(tx, room)
	})
	if err != nil {
		return nil, err
	}

	result, err := e.joinResult(ctx, roomID, participantID)
	if err != nil {
		return nil, err
	}
	payload := events.Payload{
		UserID:     actorUserID(actor),
		GuestToken: actor.GuestToken,
	}
	if readyAt != nil {
		payload.ReadyAt = readyAt.Format(time.RFC3339)
	}
	e.pub.Publish(ctx, events.TypeRoomReadyUpdated, result.Room.Code, payload)
	return result, nil
}

func (e *Engine) joinResult(ctx context.Context, roomID, participantID uint) (*JoinResult, error) {
	tx := e.db.WithContext(ctx)
	var room db.Room
	if err := tx.First(&room, roomID).Error; err != nil {
		return nil, err
	}
	view, err := e.roomView(tx, &room)
	if err != nil {
		return nil, err
	}
	for _, p := range view.Participants {
		if p.ID == participantID {
			return &JoinResult{Room: *view, Participant: p}, nil
		}
	}
	return &JoinResult{Room: *view}, nil
}

func (e *Engine) roomView(tx *gorm.DB, room *db.Room) (*RoomView, error) {
	participants, err := participantsOf(tx, room.ID)
	if err != nil {
		return nil, err
	}
	totals, err := cumulativePoints(tx, room.ID)
	if err != nil {
		return nil, err
	}

	view := RoomView{
		Code:                 room.Code,
		Status:               room.Status,
		MaxPlayers:           room.MaxPlayers,
		Rounds:               room.RoundLimit,
		DiscussionSeconds:    room.DiscussionSeconds,
		VotingSeconds:        room.VotingSeconds,
		RoundDurationSeconds: room.RoundDurationSeconds,
		Category:             room.Category,
		Participants:         make([]ParticipantView, 0, len(participants)),
	}
	for _, p := range participants {
		view.Participants = append(view.Participants, ParticipantView{
			ID:          p.ID,
			Nickname:    p.Nickname,
			IsHost:      p.IsHost,
			Ready:       p.ReadyAt != nil,
			UserID:      p.UserID,
			Guest:       p.GuestToken != nil,
			TotalPoints: totals[p.ID],
		})
	}

	var current db.Round
	err = tx.Where("room_id = ? AND status <> ?", room.ID, db.RoundStatusEnded).
		Order("id DESC").First(&current).Error
	if err == nil {
		id := current.ID
		view.CurrentRoundID = &id
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return &view, nil
}

// cumulativePoints sums every score row across the room's rounds, keyed by
// participant.
func cumulativePoints(tx *gorm.DB, roomID uint) (map[uint]int, error) {
	type row struct {
		ParticipantID uint
		Total         int
	}
	var rows []row
	err := tx.Model(&db.Score{}).
		Select("scores.participant_id AS participant_id, SUM(scores.points) AS total").
		Joins("JOIN rounds ON rounds.id = scores.round_id").
		Where("rounds.room_id = ?", roomID).
		Group("scores.participant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[uint]int, len(rows))
	for _, r := range rows {
		totals[r.ParticipantID] = r.Total
	}
	return totals, nil
}

func uniqueRoomCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code := newRoomCode()
		var count int64
		if err := tx.Model(&db.Room{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", invalid("Could not allocate a room code")
}

func actorUserID(actor Actor) *uint {
	if actor.IsUser() {
		id := actor.UserID
		return &id
	}
	return nil
}

func actorGuestToken(actor Actor) *string {
	if actor.IsUser() {
		return nil
	}
	token := actor.GuestToken
	return &token
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
