package invite

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

// Invite errors.
var (
	ErrNoRoom        = errors.New("no room to describe")
	ErrUnknownCode   = errors.New("unknown invite code")
	ErrBadSignature  = errors.New("invite signature mismatch")
	ErrInviteExpired = errors.New("invite expired")
)

const (
	// DefaultTTL is how long an invite link stays valid.
	DefaultTTL = 24 * time.Hour

	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8080"

	keySize = 32
	sigSize = 16
	keyInfo = "roomwatch-invite-v1"
)

// Config configures a Service.
type Config struct {
	// BaseURL is prepended to /invite/<code>.
	BaseURL string

	// Secret is the master key. If empty, a random secret is generated and
	// links do not survive a restart.
	Secret []byte

	// TTL is the invite lifetime. Zero means DefaultTTL.
	TTL time.Duration

	// Logger is the optional logger for debug output.
	Logger *slog.Logger
}

// Invite is one issued invite link.
type Invite struct {
	Code      uuid.UUID
	Room      presence.Room
	ExpiresAt time.Time
	Signature string
}

// Path returns the link path and query, without the base URL.
func (i Invite) Path() string {
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(i.ExpiresAt.Unix(), 10))
	q.Set("sig", i.Signature)
	return "/invite/" + i.Code.String() + "?" + q.Encode()
}

// Service issues and verifies invite links. It implements the location
// lookup used by the subscription engine.
type Service struct {
	mu      sync.Mutex
	baseURL string
	secret  []byte
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	byCode map[uuid.UUID]Invite
	byRoom map[presence.RoomID]uuid.UUID
}

// NewService creates an invite service.
func NewService(cfg Config) (*Service, error) {
	secret := cfg.Secret
	if len(secret) == 0 {
		secret = make([]byte, keySize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate invite secret: %w", err)
		}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Service{
		baseURL: base,
		secret:  secret,
		ttl:     ttl,
		logger:  cfg.Logger,
		now:     time.Now,
		byCode:  make(map[uuid.UUID]Invite),
		byRoom:  make(map[presence.RoomID]uuid.UUID),
	}, nil
}

// SetClock replaces the clock used for expiry.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Describe returns "<room name>: <invite link>". A room keeps its link until
// the link expires.
func (s *Service) Describe(ctx context.Context, room presence.Room) (string, error) {
	inv, err := s.Issue(ctx, room)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s%s", room, s.baseURL, inv.Path()), nil
}

// Issue returns the current invite for room, creating one if needed.
func (s *Service) Issue(ctx context.Context, room presence.Room) (Invite, error) {
	if err := ctx.Err(); err != nil {
		return Invite{}, err
	}
	if room.IsZero() {
		return Invite{}, ErrNoRoom
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if code, ok := s.byRoom[room.ID]; ok {
		inv := s.byCode[code]
		if now.Before(inv.ExpiresAt) {
			return inv, nil
		}
		delete(s.byCode, code)
	}

	key, err := s.roomKey(room.ID)
	if err != nil {
		return Invite{}, err
	}
	inv := Invite{
		Code:      uuid.New(),
		Room:      room,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}
	inv.Signature = sign(key, inv.Code, inv.ExpiresAt)

	s.byCode[inv.Code] = inv
	s.byRoom[room.ID] = inv.Code
	s.debugLog("invite issued", "room", room.ID, "code", inv.Code, "expires", inv.ExpiresAt)
	return inv, nil
}

// Verify checks an invite link's code, expiry and signature and returns the
// invite.
func (s *Service) Verify(code, exp, sig string) (Invite, error) {
	id, err := uuid.Parse(code)
	if err != nil {
		return Invite{}, fmt.Errorf("%w: %v", ErrUnknownCode, err)
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return Invite{}, fmt.Errorf("%w: bad expiry", ErrBadSignature)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byCode[id]
	if !ok {
		return Invite{}, ErrUnknownCode
	}
	key, err := s.roomKey(inv.Room.ID)
	if err != nil {
		return Invite{}, err
	}
	want := sign(key, id, time.Unix(unix, 0))
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return Invite{}, ErrBadSignature
	}
	if !s.now().Before(inv.ExpiresAt) {
		return Invite{}, ErrInviteExpired
	}
	return inv, nil
}

// roomKey derives the signing key of a room.
func (s *Service) roomKey(room presence.RoomID) ([]byte, error) {
	r := hkdf.New(sha256.New, s.secret, []byte(room), []byte(keyInfo))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive room key: %w", err)
	}
	return key, nil
}

func sign(key []byte, code uuid.UUID, expires time.Time) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(code[:])
	mac.Write([]byte(strconv.FormatInt(expires.Unix(), 10)))
	return hex.EncodeToString(mac.Sum(nil)[:sigSize])
}

func (s *Service) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
