package game

import (
	"context"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/events"

	"gorm.io/gorm"
)

// ExpireStaleRooms ends every non-ended room whose last activity predates the
// idle window, along with any round still open in it, and removes its
// participants. Round data and scores stay intact. One room.expired event is
// published per room after the sweep commits.
func (e *Engine) ExpireStaleRooms(ctx context.Context, idleFor time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-idleFor)

	var expired []db.Room
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("status <> ? AND last_active_at < ?", db.RoomStatusEnded, cutoff).
			Find(&expired).Error
		if err != nil {
			return err
		}
		for _, room := range expired {
			err := tx.Model(&db.Round{}).
				Where("room_id = ? AND status <> ?", room.ID, db.RoundStatusEnded).
				Update("status", db.RoundStatusEnded).Error
			if err != nil {
				return err
			}
			if err := tx.Model(&db.Room{}).Where("id = ?", room.ID).Update("status", db.RoomStatusEnded).Error; err != nil {
				return err
			}
			if err := tx.Where("room_id = ?", room.ID).Delete(&db.Participant{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, room := range expired {
		e.pub.Publish(ctx, events.TypeRoomExpired, room.Code, events.Payload{Reason: "inactive"})
	}
	if len(expired) > 0 {
		e.log.Info("expired stale rooms", "count", len(expired))
	}
	return len(expired), nil
}

// SweepStaleRooms runs ExpireStaleRooms on a ticker until the context is
// cancelled.
func (e *Engine) SweepStaleRooms(ctx context.Context, interval, idleFor time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.ExpireStaleRooms(ctx, idleFor); err != nil {
				e.log.Error("room cleanup failed", "error", err)
			}
		}
	}
}
