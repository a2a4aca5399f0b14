package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoomStatusLobby   = "lobby"
	RoomStatusInRound = "in_round"
	RoomStatusEnded   = "ended"
)

const (
	RoundStatusPending    = "pending"
	RoundStatusCountdown  = "countdown"
	RoundStatusInProgress = "in_progress"
	RoundStatusVoting     = "voting"
	RoundStatusScoring    = "scoring"
	RoundStatusEnded      = "ended"
)

const (
	QuestionStatusPending    = "pending"
	QuestionStatusInProgress = "in_progress"
	QuestionStatusAnswered   = "answered"
)

const (
	ScoreReasonImposter = "imposter_total"
	ScoreReasonCivilian = "civilian_total"
)

type Room struct {
	ID                   uint      `gorm:"primaryKey"`
	Code                 string    `gorm:"size:5;uniqueIndex;not null"`
	Status               string    `gorm:"size:16;not null;default:lobby"`
	HostUserID           *uint     `gorm:"index"`
	HostGuestToken       *string   `gorm:"size:64;index"`
	MaxPlayers           int       `gorm:"not null;default:10"`
	RoundLimit           int       `gorm:"not null;default:4"`
	DiscussionSeconds    int       `gorm:"not null;default:300"`
	VotingSeconds        int       `gorm:"not null;default:60"`
	RoundDurationSeconds int       `gorm:"not null;default:300"`
	Category             string    `gorm:"size:50;not null;default:countries"`
	LastActiveAt         time.Time `gorm:"not null;index"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
	Participants         []Participant
	Rounds               []Round
}

type Participant struct {
	ID               uint    `gorm:"primaryKey"`
	RoomID           uint    `gorm:"index;not null;uniqueIndex:idx_participants_room_user;uniqueIndex:idx_participants_room_guest"`
	UserID           *uint   `gorm:"uniqueIndex:idx_participants_room_user"`
	GuestToken       *string `gorm:"size:64;uniqueIndex:idx_participants_room_guest"`
	Nickname         string  `gorm:"size:20;not null"`
	IsHost           bool    `gorm:"not null;default:false"`
	ReadyAt          *time.Time
	ReadyForVotingAt *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

type Round struct {
	ID                    uint   `gorm:"primaryKey"`
	RoomID                uint   `gorm:"index;not null;uniqueIndex:idx_rounds_room_number"`
	RoundNumber           int    `gorm:"not null;uniqueIndex:idx_rounds_room_number"`
	CategoryID            uint   `gorm:"index;not null"`
	WordID                *uint  `gorm:"index"`
	ImposterParticipantID uint   `gorm:"index;not null"`
	Status                string `gorm:"size:16;not null;default:pending"`
	RoundDurationSeconds  int    `gorm:"not null;default:300"`
	StartedAt             *time.Time
	EndedAt               *time.Time
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
	Questions             []Question
	Votes                 []Vote
	Scores                []Score
}

type Question struct {
	ID                  uint   `gorm:"primaryKey"`
	RoundID             uint   `gorm:"index;not null;uniqueIndex:idx_questions_round_order"`
	AskerParticipantID  uint   `gorm:"index;not null"`
	TargetParticipantID uint   `gorm:"index;not null"`
	Text                string `gorm:"size:500;not null"`
	Order               int    `gorm:"column:ask_order;not null;uniqueIndex:idx_questions_round_order"`
	Status              string `gorm:"size:16;not null;default:pending"`
	AskedAt             *time.Time
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
	Answer              *Answer
}

type Answer struct {
	ID                     uint      `gorm:"primaryKey"`
	QuestionID             uint      `gorm:"uniqueIndex;not null"`
	ResponderParticipantID uint      `gorm:"index;not null"`
	Text                   string    `gorm:"size:500;not null"`
	AnsweredAt             time.Time `gorm:"not null"`
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time `gorm:"not null"`
}

type Vote struct {
	ID                  uint      `gorm:"primaryKey"`
	RoundID             uint      `gorm:"index;not null;uniqueIndex:idx_votes_round_voter"`
	VoterParticipantID  uint      `gorm:"not null;uniqueIndex:idx_votes_round_voter"`
	TargetParticipantID uint      `gorm:"index;not null"`
	CastAt              time.Time `gorm:"not null"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

type ImposterGuess struct {
	ID                    uint      `gorm:"primaryKey"`
	RoundID               uint      `gorm:"uniqueIndex;not null"`
	ImposterParticipantID uint      `gorm:"index;not null"`
	WordID                *uint     `gorm:"index"`
	Correct               bool      `gorm:"not null;default:false"`
	GuessedAt             time.Time `gorm:"not null"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
}

type Score struct {
	ID            uint      `gorm:"primaryKey"`
	RoundID       uint      `gorm:"index;not null;uniqueIndex:idx_scores_round_participant"`
	ParticipantID uint      `gorm:"not null;uniqueIndex:idx_scores_round_participant"`
	Points        int       `gorm:"not null"`
	Reason        string    `gorm:"size:32;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Slug      string    `gorm:"size:50;uniqueIndex;not null"`
	Name      string    `gorm:"size:50;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Words     []Word
}

type Word struct {
	ID         uint      `gorm:"primaryKey"`
	CategoryID uint      `gorm:"index;not null;uniqueIndex:idx_words_category_text"`
	Text       string    `gorm:"size:64;not null;uniqueIndex:idx_words_category_text"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:50;not null"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type GuestToken struct {
	ID         uint      `gorm:"primaryKey"`
	Token      string    `gorm:"size:64;uniqueIndex;not null"`
	Nickname   string    `gorm:"size:20;not null"`
	LastUsedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// Event journals published room events for debugging and replay. Rows are
// written best-effort; the engine never reads them back.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomCode  string         `gorm:"size:5;index;not null"`
	RoundID   *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
