// Package auth issues guest tokens and user sessions and resolves inbound
// credentials into the single actor identity the engine consumes.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"word-imposter/internal/db"
	"word-imposter/internal/game"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func New(conn *gorm.DB, secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{db: conn, secret: []byte(secret), ttl: ttl}
}

type Session struct {
	Token string   `json:"token"`
	User  *db.User `json:"user,omitempty"`
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, err
	}
	user := db.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, game.NewError(game.KindValidation, "Email already registered")
		}
		return nil, err
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: &user}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	var user db.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.NewError(game.KindUnauthenticated, "Invalid credentials")
		}
		return nil, err
	}
	match, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, game.NewError(game.KindUnauthenticated, "Invalid credentials")
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: &user}, nil
}

// CreateGuest mints an anonymous identity good for joining rooms without an
// account.
func (s *Service) CreateGuest(ctx context.Context, nickname string) (*db.GuestToken, error) {
	guest := db.GuestToken{
		Token:      uuid.NewString(),
		Nickname:   nickname,
		LastUsedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// Identity is the public view of an authenticated caller.
type Identity struct {
	Type   string `json:"type"`
	UserID *uint  `json:"user_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// Identify returns the profile behind an already-resolved actor.
func (s *Service) Identify(ctx context.Context, actor game.Actor) (*Identity, error) {
	if actor.IsUser() {
		var user db.User
		if err := s.db.WithContext(ctx).First(&user, actor.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, game.NewError(game.KindUnauthenticated, "Unauthenticated")
			}
			return nil, err
		}
		id := user.ID
		return &Identity{Type: "user", UserID: &id, Name: user.Name, Email: user.Email}, nil
	}
	return &Identity{Type: "guest", Name: actor.Name}, nil
}

// Logout revokes a guest token. User sessions are stateless JWTs, so for
// users this is a no-op and the client discards the token.
func (s *Service) Logout(ctx context.Context, actor game.Actor) error {
	if actor.IsUser() {
		return nil
	}
	return s.db.WithContext(ctx).Where("token = ?", actor.GuestToken).Delete(&db.GuestToken{}).Error
}

// Resolve turns inbound credentials into an actor. A bearer token is tried
// as a user session first, then as a guest token; the dedicated guest header
// wins when both are absent. Guests get their last_used_at refreshed.
func (s *Service) Resolve(ctx context.Context, bearer, guestHeader string) (game.Actor, error) {
	if bearer != "" {
		if userID, ok := s.parseToken(bearer); ok {
			var user db.User
			if err := s.db.WithContext(ctx).First(&user, userID).Error; err == nil {
				return game.Actor{Type: game.ActorUser, UserID: user.ID, Name: user.Name}, nil
			}
		}
		if actor, ok := s.resolveGuest(ctx, bearer); ok {
			return actor, nil
		}
	}
	if guestHeader != "" {
		if actor, ok := s.resolveGuest(ctx, guestHeader); ok {
			return actor, nil
		}
	}
	return game.Actor{}, game.NewError(game.KindUnauthenticated, "Unauthenticated")
}

func (s *Service) resolveGuest(ctx context.Context, token string) (game.Actor, bool) {
	var guest db.GuestToken
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&guest).Error
	if err != nil {
		return game.Actor{}, false
	}
	s.db.WithContext(ctx).Model(&guest).Update("last_used_at", time.Now().UTC())
	return game.Actor{Type: game.ActorGuest, GuestToken: guest.Token, Name: guest.Nickname}, true
}

func (s *Service) issueToken(userID uint) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parseToken(raw string) (uint, bool) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
