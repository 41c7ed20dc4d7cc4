package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "pka/internal/models/db_models"
	"pka/internal/repositories"
	"pka/pkg/utils"
)

// ClientMeta is the caller's network identity as seen at the edge.
type ClientMeta struct {
	IP        string
	UserAgent string
}

type TokenPair struct {
	SessionID    string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type SessionServiceInterface interface {
	Issue(ctx context.Context, user *dbm.User, meta ClientMeta) (*TokenPair, error)
	ValidateSession(ctx context.Context, sessionID string) (bool, error)
	Invalidate(ctx context.Context, sessionID string) error
	Rotate(ctx context.Context, refreshToken string) (*TokenPair, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type SessionTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

type SessionService struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	jwt      *utils.JWTManager
	ttl      SessionTTLs
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionService(
	sessions repositories.SessionRepository,
	users repositories.UserRepository,
	jwt *utils.JWTManager,
	ttl SessionTTLs,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		jwt:      jwt,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SessionService) sign(user *dbm.User, sessionID uuid.UUID) (*TokenPair, error) {
	base := utils.Claims{
		UserID:    user.ID.String(),
		Username:  user.Username,
		SessionID: sessionID.String(),
		Role:      utils.RoleUser,
	}

	access := base
	access.Type = utils.TokenTypeAccess
	accessToken, err := s.jwt.CreateToken(access, s.ttl.Access)
	if err != nil {
		return nil, err
	}

	refresh := base
	refresh.Type = utils.TokenTypeRefresh
	// jti keeps rotated refresh tokens distinct within the same second.
	refresh.ID = uuid.NewString()
	refreshToken, err := s.jwt.CreateToken(refresh, s.ttl.Refresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		SessionID:    sessionID.String(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.ttl.Access.Seconds()),
	}, nil
}

func (s *SessionService) Issue(ctx context.Context, user *dbm.User, meta ClientMeta) (*TokenPair, error) {
	sessionID := uuid.New()
	pair, err := s.sign(user, sessionID)
	if err != nil {
		return nil, err
	}

	session := &dbm.Session{
		BaseModel:        dbm.BaseModel{ID: sessionID},
		UserID:           user.ID,
		RefreshTokenHash: utils.HashToken(pair.RefreshToken),
		IPAddress:        meta.IP,
		UserAgent:        meta.UserAgent,
		ExpiresAt:        s.now().Add(s.ttl.Refresh).Unix(),
		IsActive:         true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *SessionService) ValidateSession(ctx context.Context, sessionID string) (bool, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return false, nil
	}

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if session == nil || !session.IsActive {
		return false, nil
	}

	if session.ExpiresAt <= s.now().Unix() {
		if err := s.sessions.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete expired session", zap.String("session_id", sessionID), zap.Error(err))
		}
		return false, nil
	}
	return true, nil
}

func (s *SessionService) Invalidate(ctx context.Context, sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return utils.ErrSessionInvalid
	}
	return s.sessions.Deactivate(ctx, id)
}

// Rotate exchanges a refresh token for a new pair. A token whose hash no
// longer matches the session was already used, so the session is revoked.
func (s *SessionService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateTokenOfType(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}

	valid, err := s.ValidateSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, utils.ErrSessionInvalid
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, utils.ErrSessionInvalid
	}

	presented := utils.HashToken(refreshToken)
	if !utils.SecureCompare(session.RefreshTokenHash, presented) {
		return nil, s.revokeReused(ctx, sessionID, claims)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}
	if user.IsBanned {
		return nil, utils.ErrAccountBanned
	}

	pair, err := s.sign(user, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rotated, err := s.sessions.RotateRefresh(ctx, sessionID, presented, utils.HashToken(pair.RefreshToken),
		now.Unix(), now.Add(s.ttl.Refresh).Unix())
	if err != nil {
		return nil, err
	}
	if !rotated {
		// another request spent the same token between the check and the swap
		return nil, s.revokeReused(ctx, sessionID, claims)
	}
	return pair, nil
}

func (s *SessionService) revokeReused(ctx context.Context, sessionID uuid.UUID, claims *utils.Claims) error {
	s.logger.Warn("refresh token reuse detected",
		zap.String("session_id", claims.SessionID),
		zap.String("user_id", claims.UserID))
	if err := s.sessions.Deactivate(ctx, sessionID); err != nil {
		return err
	}
	return utils.ErrSessionInvalid
}

func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now().Unix())
}
