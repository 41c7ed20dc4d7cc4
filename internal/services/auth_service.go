package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
	"pka/internal/models/request_models"
	"pka/internal/models/response_models"
	"pka/internal/repositories"
	"pka/pkg/utils"
)

const (
	minPasswordLength  = 6
	telegramCodeLength = 6
)

// CaptchaVerifier checks a solved captcha; it is nil when captcha is disabled.
type CaptchaVerifier func(id, value string) bool

type AuthServiceInterface interface {
	Register(ctx context.Context, req request_models.RegisterRequest, meta ClientMeta) (*response_models.RegisterResponse, error)
	Login(ctx context.Context, req request_models.LoginRequest, meta ClientMeta) (*response_models.LoginResponse, error)
	Logout(ctx context.Context, accessToken string, meta ClientMeta) error
	Refresh(ctx context.Context, refreshToken string) (*response_models.RefreshResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*response_models.ProfileResponse, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, password string) error
}

type AuthService struct {
	users        repositories.UserRepository
	sessions     SessionServiceInterface
	fingerprints FingerprintServiceInterface
	badges       BadgeServiceInterface
	activity     ActivityServiceInterface
	jwt          *utils.JWTManager
	captcha      CaptchaVerifier
	logger       *zap.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	sessions SessionServiceInterface,
	fingerprints FingerprintServiceInterface,
	badges BadgeServiceInterface,
	activity ActivityServiceInterface,
	jwt *utils.JWTManager,
	captcha CaptchaVerifier,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		fingerprints: fingerprints,
		badges:       badges,
		activity:     activity,
		jwt:          jwt,
		captcha:      captcha,
		logger:       logger,
	}
}

func (a *AuthService) Register(ctx context.Context, req request_models.RegisterRequest, meta ClientMeta) (*response_models.RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, utils.ErrBadRequest
	}
	if len(req.Password) < minPasswordLength {
		return nil, utils.ErrWeakPassword
	}
	if a.captcha != nil && !a.captcha(req.CaptchaID, req.CaptchaValue) {
		return nil, utils.ErrInvalidCaptcha
	}

	existing, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil {
		return nil, utils.ErrUsernameTaken
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	telegramCode, err := utils.GenerateCode(telegramCodeLength)
	if err != nil {
		return nil, err
	}
	referralCode, err := utils.GenerateReferralCode()
	if err != nil {
		return nil, err
	}

	user := &dbm.User{
		Username:         username,
		PasswordHash:     passwordHash,
		APIKey:           apiKey,
		TelegramCode:     telegramCode,
		ReferralCode:     referralCode,
		SubscriptionPlan: dbm.PlanFree,
		DailySearchLimit: dbm.FreeDailySearchLimit,
		LastSearchReset:  utils.DayStartUnix(nowUTC()),
		IsActive:         true,
	}

	var referrer *dbm.User
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		referrer, err = a.users.FindByReferralCode(ctx, code)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if referrer != nil {
			user.ReferredBy = &referrer.ID
		}
	}

	if err := a.users.CreateWithReferral(ctx, user, referrer); err != nil {
		// the name was claimed between the lookup and the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrUsernameTaken
		}
		a.logger.Error("failed to create user", zap.String("username", username), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	a.activity.Log(ctx, ActivityEntry{
		UserID:   userRef(user.ID),
		Action:   ActionAccountCreated,
		Meta:     meta,
		Metadata: map[string]interface{}{"username": username, "referred": referrer != nil},
	})
	refreshBadges(ctx, a.badges, a.logger, user.ID)

	return &response_models.RegisterResponse{
		UserID: user.ID.String(),
		APIKey: apiKey,
		Token:  apiKey,
	}, nil
}

// checkStanding enforces the banned, then inactive ordering of login refusals.
func (a *AuthService) checkStanding(ctx context.Context, user *dbm.User, meta ClientMeta) error {
	if user.IsBanned {
		a.activity.Log(ctx, ActivityEntry{UserID: userRef(user.ID), Action: ActionLoginBanned, Meta: meta})
		return utils.ErrAccountBanned
	}
	if !user.IsActive {
		a.activity.Log(ctx, ActivityEntry{UserID: userRef(user.ID), Action: ActionLoginInactive, Meta: meta})
		return utils.ErrAccountInactive
	}
	return nil
}

func (a *AuthService) Login(ctx context.Context, req request_models.LoginRequest, meta ClientMeta) (*response_models.LoginResponse, error) {
	var (
		user   *dbm.User
		err    error
		action = ActionLoginSuccess
	)

	if req.APIKey != "" {
		user, err = a.users.FindByAPIKey(ctx, req.APIKey)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if user == nil {
			return nil, utils.ErrInvalidAPIKey
		}
		if err := a.checkStanding(ctx, user, meta); err != nil {
			return nil, err
		}
		action = ActionLoginSuccessAPIKey
	} else {
		if req.Username == "" || req.Password == "" {
			return nil, utils.ErrBadRequest
		}
		user, err = a.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if user == nil {
			return nil, utils.ErrInvalidCredentials
		}
		if err := a.checkStanding(ctx, user, meta); err != nil {
			return nil, err
		}
		if err := utils.ComparePasswords(user.PasswordHash, req.Password); err != nil {
			a.activity.Log(ctx, ActivityEntry{UserID: userRef(user.ID), Action: ActionLoginFailed, Meta: meta})
			return nil, utils.ErrInvalidCredentials
		}
	}

	pair, err := a.sessions.Issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	a.activity.Log(ctx, ActivityEntry{UserID: userRef(user.ID), Action: action, Meta: meta})
	a.inspectDevice(ctx, user.ID, req.Fingerprint, meta)

	return &response_models.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Token:        pair.AccessToken,
		UserID:       user.ID.String(),
		Username:     user.Username,
		ExpiresIn:    pair.ExpiresIn,
		SessionID:    pair.SessionID,
	}, nil
}

// inspectDevice feeds the multi-account heuristic. It never fails a login.
func (a *AuthService) inspectDevice(ctx context.Context, userID uuid.UUID, fp *request_models.FingerprintPayload, meta ClientMeta) {
	if a.fingerprints == nil {
		return
	}

	hash := ""
	if fp != nil {
		var err error
		hash, err = a.fingerprints.Record(ctx, userID, *fp)
		if err != nil {
			a.logger.Warn("failed to record fingerprint", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	if _, err := a.fingerprints.DetectMultiAccount(ctx, userID, meta.IP, hash); err != nil {
		a.logger.Warn("multi-account detection failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (a *AuthService) Logout(ctx context.Context, accessToken string, meta ClientMeta) error {
	if accessToken == "" {
		return utils.ErrUnauthorized
	}

	claims, err := a.jwt.ValidateToken(accessToken)
	if err != nil {
		// Cookies are already cleared; an unusable token has nothing left to revoke.
		return nil
	}

	if err := a.sessions.Invalidate(ctx, claims.SessionID); err != nil && !errors.Is(err, utils.ErrSessionInvalid) {
		return err
	}

	if id, err := uuid.Parse(claims.UserID); err == nil {
		a.activity.Log(ctx, ActivityEntry{UserID: userRef(id), Action: ActionLogout, Meta: meta})
	}
	return nil
}

func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (*response_models.RefreshResponse, error) {
	if refreshToken == "" {
		return nil, utils.ErrBadRequest
	}
	pair, err := a.sessions.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &response_models.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		SessionID:    pair.SessionID,
	}, nil
}

func (a *AuthService) Me(ctx context.Context, userID uuid.UUID) (*response_models.ProfileResponse, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}

	badges := []string{}
	if a.badges != nil {
		if badges, err = a.badges.List(ctx, userID); err != nil {
			return nil, err
		}
	}

	usage := quotaView(user, nowUTC())
	return &response_models.ProfileResponse{
		ID:                    user.ID.String(),
		Username:              user.Username,
		SearchesUsed:          usage.Used,
		SearchesLimit:         usage.Limit,
		PlanType:              string(user.SubscriptionPlan),
		TelegramCode:          user.TelegramCode,
		APIKey:                user.APIKey,
		SubscriptionStartedAt: utils.FormatUnixRFC3339(user.SubscriptionStartedAt),
		SubscriptionEndsAt:    utils.FormatUnixRFC3339(user.SubscriptionEndsAt),
		TelegramID:            user.TelegramID,
		IsActive:              user.IsActive,
		ReferralCode:          user.ReferralCode,
		TotalReferrals:        user.TotalReferrals,
		ReferralEarnings:      user.ReferralEarnings,
		BadgeLevel:            user.BadgeLevel,
		Badges:                badges,
		CreatedAt:             utils.FormatRFC3339(utils.FromUnixSeconds(user.CreatedAt)),
	}, nil
}

func (a *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, password string) error {
	if len(password) < minPasswordLength {
		return utils.ErrWeakPassword
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := a.users.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrUserNotFound
		}
		return err
	}
	a.activity.Log(ctx, ActivityEntry{UserID: userRef(userID), Action: ActionPasswordUpdated})
	return nil
}
