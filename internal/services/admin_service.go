package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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
	defaultPageSize      = 20
	maxPageSize          = 100
	defaultRateLimit     = 100
	defaultMinConfidence = 50
	defaultBanReason     = "Banned by admin"
)

type AdminServiceInterface interface {
	Login(ctx context.Context, password string) (*response_models.AdminLoginResponse, error)
	Stats(ctx context.Context) (*response_models.AdminStatsResponse, error)
	ListUsers(ctx context.Context, q request_models.AdminUserListQuery) (*response_models.AdminUserListResponse, error)
	UpdateUser(ctx context.Context, req request_models.AdminUserActionRequest, ip string) error
	BulkUpdateUsers(ctx context.Context, req request_models.AdminBulkActionRequest, ip string) (*response_models.BulkActionResponse, error)
	ListApiConfigs(ctx context.Context) ([]response_models.ApiConfigResponse, error)
	CreateApiConfig(ctx context.Context, req request_models.CreateApiConfigRequest, ip string) (*response_models.ApiConfigResponse, error)
	DeleteApiConfig(ctx context.Context, id string, ip string) error
	ListSuspicious(ctx context.Context, q request_models.SuspiciousListQuery) (*response_models.SuspiciousListResponse, error)
	ResolveSuspicious(ctx context.Context, req request_models.ResolveSuspiciousRequest, ip string) error
	ListMultiAccounts(ctx context.Context, q request_models.MultiAccountListQuery) (*response_models.MultiAccountListResponse, error)
	ReviewMultiAccount(ctx context.Context, req request_models.ReviewMultiAccountRequest, ip string) error
	ListActivity(ctx context.Context, q request_models.ActivityListQuery) (*response_models.ActivityListResponse, error)
}

type AdminService struct {
	users    repositories.UserRepository
	payments repositories.PaymentRepository
	security repositories.SecurityRepository
	configs  repositories.ApiConfigRepository
	activity repositories.ActivityRepository
	sessions repositories.SessionRepository
	jwt      *utils.JWTManager
	password string
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewAdminService(
	users repositories.UserRepository,
	payments repositories.PaymentRepository,
	security repositories.SecurityRepository,
	configs repositories.ApiConfigRepository,
	activity repositories.ActivityRepository,
	sessions repositories.SessionRepository,
	jwt *utils.JWTManager,
	password string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		users:    users,
		payments: payments,
		security: security,
		configs:  configs,
		activity: activity,
		sessions: sessions,
		jwt:      jwt,
		password: password,
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func (s *AdminService) Login(ctx context.Context, password string) (*response_models.AdminLoginResponse, error) {
	if s.password == "" || !utils.SecureCompare(password, s.password) {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := s.jwt.CreateToken(utils.Claims{
		Type: utils.TokenTypeAdmin,
		Role: utils.RoleAdmin,
	}, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "ADMIN_LOGIN", "admin", "", nil, nil, "")
	return &response_models.AdminLoginResponse{Token: token, ExpiresIn: int64(s.tokenTTL.Seconds())}, nil
}

func (s *AdminService) audit(ctx context.Context, action, targetType, targetID string, oldValues, newValues interface{}, ip string) {
	entry := &dbm.AdminAuditLog{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		OldValues:  toJSON(oldValues),
		NewValues:  toJSON(newValues),
		IPAddress:  ip,
	}
	if err := s.activity.Audit(ctx, entry); err != nil {
		s.logger.Warn("failed to write admin audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *AdminService) Stats(ctx context.Context) (*response_models.AdminStatsResponse, error) {
	now := s.now().UTC()
	stats := &response_models.AdminStatsResponse{}

	var err error
	if stats.TotalUsers, err = s.users.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.users.CountByStatus(ctx, repositories.UserStatusActive); err != nil {
		return nil, err
	}
	if stats.BannedUsers, err = s.users.CountByStatus(ctx, repositories.UserStatusBanned); err != nil {
		return nil, err
	}
	if stats.TotalSearches, err = s.activity.CountSearches(ctx, 0); err != nil {
		return nil, err
	}
	if stats.SearchesToday, err = s.activity.CountSearches(ctx, utils.DayStartUnix(now)); err != nil {
		return nil, err
	}
	if stats.SuspiciousAlerts, err = s.security.CountUnresolved(ctx); err != nil {
		return nil, err
	}
	if stats.Revenue, err = s.payments.SumRevenue(ctx); err != nil {
		return nil, err
	}

	if stats.Traffic, err = s.hourlyTraffic(ctx, now); err != nil {
		return nil, err
	}
	if stats.ApiConfigs, err = s.ListApiConfigs(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// hourlyTraffic buckets the last 24 hours of searches, oldest first.
func (s *AdminService) hourlyTraffic(ctx context.Context, now time.Time) ([]response_models.HourlyTraffic, error) {
	const buckets = 24
	first := now.Truncate(time.Hour).Add(-(buckets - 1) * time.Hour)

	stamps, err := s.activity.SearchTimestamps(ctx, first.Unix())
	if err != nil {
		return nil, err
	}

	counts := make([]int64, buckets)
	for _, ts := range stamps {
		idx := int((ts - first.Unix()) / 3600)
		if idx >= 0 && idx < buckets {
			counts[idx]++
		}
	}

	traffic := make([]response_models.HourlyTraffic, buckets)
	for i := range traffic {
		traffic[i] = response_models.HourlyTraffic{
			Hour:     first.Add(time.Duration(i) * time.Hour).Format("15:04"),
			Searches: counts[i],
		}
	}
	return traffic, nil
}

func toAdminUser(u dbm.User) response_models.AdminUserResponse {
	return response_models.AdminUserResponse{
		ID:                 u.ID.String(),
		Username:           u.Username,
		SubscriptionPlan:   string(u.SubscriptionPlan),
		SubscriptionEndsAt: utils.FormatUnixRFC3339(u.SubscriptionEndsAt),
		DailySearchLimit:   u.DailySearchLimit,
		DailySearchesUsed:  u.DailySearchesUsed,
		IsActive:           u.IsActive,
		IsBanned:           u.IsBanned,
		BanReason:          u.BanReason,
		TelegramLinked:     u.TelegramID != nil && *u.TelegramID != "",
		TotalReferrals:     u.TotalReferrals,
		RiskScore:          u.RiskScore,
		CreatedAt:          utils.FormatRFC3339(utils.FromUnixSeconds(u.CreatedAt)),
	}
}

// userSnapshot is the audited view of a user; secrets are left out.
func userSnapshot(u *dbm.User) map[string]interface{} {
	return map[string]interface{}{
		"username":             u.Username,
		"subscription_plan":    u.SubscriptionPlan,
		"subscription_ends_at": u.SubscriptionEndsAt,
		"daily_search_limit":   u.DailySearchLimit,
		"daily_searches_used":  u.DailySearchesUsed,
		"is_active":            u.IsActive,
		"is_banned":            u.IsBanned,
		"ban_reason":           u.BanReason,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, q request_models.AdminUserListQuery) (*response_models.AdminUserListResponse, error) {
	page, limit := normalizePage(q.Page, q.Limit, defaultPageSize)
	status := repositories.UserStatusFilter(q.Status)
	if status == "" {
		status = repositories.UserStatusAll
	}

	users, total, err := s.users.List(ctx, repositories.UserListFilter{
		Page:      page,
		Limit:     limit,
		Search:    q.Search,
		Status:    status,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	out := make([]response_models.AdminUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUser(u))
	}
	return &response_models.AdminUserListResponse{
		Users:      out,
		Pagination: response_models.NewPagination(page, limit, total),
	}, nil
}

func banReason(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return defaultBanReason
	}
	return reason
}

func (s *AdminService) UpdateUser(ctx context.Context, req request_models.AdminUserActionRequest, ip string) error {
	id, err := uuid.Parse(req.UserID)
	if err != nil {
		return utils.ErrBadRequest
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.ErrUserNotFound
	}

	var (
		fields      map[string]interface{}
		auditAction string
	)
	switch req.Action {
	case "ban":
		fields = map[string]interface{}{"is_banned": true, "ban_reason": banReason(req.Data.Reason)}
		auditAction = "USER_BANNED"
	case "unban":
		fields = map[string]interface{}{"is_banned": false, "ban_reason": nil}
		auditAction = "USER_UNBANNED"
	case "activate":
		fields = map[string]interface{}{"is_active": true}
		auditAction = "USER_ACTIVATED"
	case "deactivate":
		fields = map[string]interface{}{"is_active": false}
		auditAction = "USER_DEACTIVATED"
	case "update_plan":
		plan := dbm.SubscriptionPlan(req.Data.Plan)
		if _, ok := subscriptionPlans[plan]; !ok && plan != dbm.PlanFree {
			return utils.ErrInvalidPlan
		}
		fields = map[string]interface{}{"subscription_plan": plan}
		if req.Data.SearchLimit != nil {
			fields["daily_search_limit"] = *req.Data.SearchLimit
		}
		if req.Data.EndsAt != nil {
			fields["subscription_ends_at"] = *req.Data.EndsAt
		}
		auditAction = "USER_PLAN_UPDATED"
	case "update_limits":
		if req.Data.DailyLimit == nil || *req.Data.DailyLimit < 0 {
			return utils.ErrBadRequest
		}
		fields = map[string]interface{}{"daily_search_limit": *req.Data.DailyLimit}
		if req.Data.ResetUsage {
			fields["daily_searches_used"] = 0
		}
		auditAction = "USER_LIMITS_UPDATED"
	case "reset_password":
		auditAction = "USER_PASSWORD_RESET_REQUESTED"
	default:
		return utils.ErrInvalidAction
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
	}
	if req.Action == "ban" || req.Action == "deactivate" {
		if err := s.revokeSessions(ctx, id); err != nil {
			return err
		}
	}

	newValues := userSnapshot(user)
	for k, v := range fields {
		newValues[k] = v
	}
	s.audit(ctx, auditAction, "user", id.String(), userSnapshot(user), newValues, ip)
	return nil
}

// revokeSessions ends the live sessions of users who can no longer sign in,
// so their outstanding access tokens stop passing the auth middleware.
func (s *AdminService) revokeSessions(ctx context.Context, ids ...uuid.UUID) error {
	for _, id := range ids {
		n, err := s.sessions.DeactivateByUser(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info("sessions revoked", zap.String("user_id", id.String()), zap.Int64("count", n))
		}
	}
	return nil
}

func parseUserIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, utils.ErrBadRequest
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *AdminService) BulkUpdateUsers(ctx context.Context, req request_models.AdminBulkActionRequest, ip string) (*response_models.BulkActionResponse, error) {
	ids, err := parseUserIDs(req.UserIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, utils.ErrBadRequest
	}

	var (
		count       int64
		auditAction string
	)
	switch req.Action {
	case "ban":
		count, err = s.users.UpdateFieldsBulk(ctx, ids, map[string]interface{}{"is_banned": true, "ban_reason": banReason(req.Data.Reason)})
		if err == nil {
			err = s.revokeSessions(ctx, ids...)
		}
		auditAction = "BULK_USER_BANNED"
	case "unban":
		count, err = s.users.UpdateFieldsBulk(ctx, ids, map[string]interface{}{"is_banned": false, "ban_reason": nil})
		auditAction = "BULK_USER_UNBANNED"
	case "add_days":
		if req.Data.Days <= 0 {
			return nil, utils.ErrBadRequest
		}
		count, err = s.extendSubscriptions(ctx, ids, req.Data.Days)
		auditAction = "BULK_USER_DAYS_ADDED"
	default:
		return nil, utils.ErrInvalidAction
	}
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auditAction, "users", "", nil, map[string]interface{}{
		"userIds": req.UserIDs,
		"data":    req.Data,
	}, ip)
	return &response_models.BulkActionResponse{Count: count}, nil
}

// extendSubscriptions pushes each end date out from max(now, current end).
// Lifetime holders have no end date and are left alone.
func (s *AdminService) extendSubscriptions(ctx context.Context, ids []uuid.UUID, days int) (int64, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var count int64
	for _, u := range users {
		if u.SubscriptionPlan == dbm.PlanLifetime {
			continue
		}
		basis := now
		if u.SubscriptionEndsAt != nil {
			if end := time.Unix(*u.SubscriptionEndsAt, 0); end.After(now) {
				basis = end
			}
		}
		newEnd := basis.AddDate(0, 0, days).Unix()
		if err := s.users.UpdateFields(ctx, u.ID, map[string]interface{}{"subscription_ends_at": newEnd}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func toApiConfig(c dbm.ApiConfig) response_models.ApiConfigResponse {
	return response_models.ApiConfigResponse{
		ID:        c.ID.String(),
		ApiName:   c.ApiName,
		ApiURL:    c.ApiURL,
		RateLimit: c.RateLimit,
		IsActive:  c.IsActive,
		CreatedAt: utils.FormatRFC3339(utils.FromUnixSeconds(c.CreatedAt)),
	}
}

func (s *AdminService) ListApiConfigs(ctx context.Context) ([]response_models.ApiConfigResponse, error) {
	configs, err := s.configs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]response_models.ApiConfigResponse, 0, len(configs))
	for _, c := range configs {
		out = append(out, toApiConfig(c))
	}
	return out, nil
}

func (s *AdminService) CreateApiConfig(ctx context.Context, req request_models.CreateApiConfigRequest, ip string) (*response_models.ApiConfigResponse, error) {
	if strings.TrimSpace(req.ApiName) == "" || strings.TrimSpace(req.ApiURL) == "" {
		return nil, utils.ErrBadRequest
	}
	rateLimit := req.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	cfg := &dbm.ApiConfig{
		ApiName:   strings.TrimSpace(req.ApiName),
		ApiURL:    strings.TrimSpace(req.ApiURL),
		ApiKey:    req.ApiKey,
		RateLimit: rateLimit,
		IsActive:  true,
	}
	if err := s.configs.Create(ctx, cfg); err != nil {
		return nil, err
	}

	s.audit(ctx, "API_CONFIG_CREATED", "api_config", cfg.ID.String(), nil,
		map[string]interface{}{"apiName": cfg.ApiName, "apiUrl": cfg.ApiURL, "rateLimit": cfg.RateLimit}, ip)
	resp := toApiConfig(*cfg)
	return &resp, nil
}

func (s *AdminService) DeleteApiConfig(ctx context.Context, rawID string, ip string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return utils.ErrBadRequest
	}
	existing, err := s.configs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return utils.ErrNotFound
	}
	if err := s.configs.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		return err
	}
	s.audit(ctx, "API_CONFIG_DELETED", "api_config", id.String(),
		map[string]interface{}{"apiName": existing.ApiName, "apiUrl": existing.ApiURL}, nil, ip)
	return nil
}

func (s *AdminService) usernames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dbm.User, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]dbm.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (s *AdminService) ListSuspicious(ctx context.Context, q request_models.SuspiciousListQuery) (*response_models.SuspiciousListResponse, error) {
	page, limit := normalizePage(q.Page, q.Limit, defaultPageSize)
	rows, total, err := s.security.ListSuspicious(ctx, repositories.SuspiciousFilter{
		Page:     page,
		Limit:    limit,
		Status:   q.Status,
		Severity: q.Severity,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	users, err := s.usernames(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]response_models.SuspiciousActivityResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, response_models.SuspiciousActivityResponse{
			ID:              r.ID.String(),
			UserID:          r.UserID.String(),
			Username:        users[r.UserID].Username,
			ActivityType:    r.ActivityType,
			Severity:        string(r.Severity),
			Description:     r.Description,
			IPAddress:       r.IPAddress,
			Metadata:        r.Metadata,
			IsResolved:      r.IsResolved,
			ResolvedAt:      utils.FormatUnixRFC3339(r.ResolvedAt),
			ResolutionNotes: r.ResolutionNotes,
			CreatedAt:       utils.FormatRFC3339(utils.FromUnixSeconds(r.CreatedAt)),
		})
	}
	return &response_models.SuspiciousListResponse{
		Activities: out,
		Pagination: response_models.NewPagination(page, limit, total),
	}, nil
}

func (s *AdminService) ResolveSuspicious(ctx context.Context, req request_models.ResolveSuspiciousRequest, ip string) error {
	if req.Action != "" && req.Action != "resolve" {
		return utils.ErrInvalidAction
	}
	id, err := uuid.Parse(req.ActivityID)
	if err != nil {
		return utils.ErrBadRequest
	}
	if err := s.security.ResolveSuspicious(ctx, id, req.Notes, s.now().Unix()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		return err
	}
	s.audit(ctx, "SUSPICIOUS_RESOLVED", "suspicious_activity", id.String(), nil,
		map[string]interface{}{"notes": req.Notes}, ip)
	return nil
}

func linkedUser(users map[uuid.UUID]dbm.User, id uuid.UUID) *response_models.LinkedUser {
	u, ok := users[id]
	if !ok {
		return &response_models.LinkedUser{ID: id.String()}
	}
	return &response_models.LinkedUser{ID: u.ID.String(), Username: u.Username, IsBanned: u.IsBanned}
}

func (s *AdminService) ListMultiAccounts(ctx context.Context, q request_models.MultiAccountListQuery) (*response_models.MultiAccountListResponse, error) {
	page, limit := normalizePage(q.Page, q.Limit, defaultPageSize)
	minConfidence := defaultMinConfidence
	if q.MinConfidence != nil {
		minConfidence = *q.MinConfidence
	}

	links, total, err := s.security.ListLinks(ctx, minConfidence, page, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(links)*2)
	for _, l := range links {
		ids = append(ids, l.PrimaryUserID, l.LinkedUserID)
	}
	users, err := s.usernames(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]response_models.MultiAccountLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, response_models.MultiAccountLinkResponse{
			ID:              l.ID.String(),
			PrimaryUser:     linkedUser(users, l.PrimaryUserID),
			LinkedUser:      linkedUser(users, l.LinkedUserID),
			LinkType:        string(l.LinkType),
			ConfidenceScore: l.ConfidenceScore,
			Evidence:        l.Evidence,
			DetectedAt:      utils.FormatRFC3339(utils.FromUnixSeconds(l.DetectedAt)),
			ReviewedAt:      utils.FormatUnixRFC3339(l.ReviewedAt),
			IsConfirmed:     l.IsConfirmed,
		})
	}
	return &response_models.MultiAccountListResponse{
		Links:      out,
		Pagination: response_models.NewPagination(page, limit, total),
	}, nil
}

func (s *AdminService) ReviewMultiAccount(ctx context.Context, req request_models.ReviewMultiAccountRequest, ip string) error {
	id, err := uuid.Parse(req.LinkID)
	if err != nil {
		return utils.ErrBadRequest
	}
	link, err := s.security.FindLinkByID(ctx, id)
	if err != nil {
		return err
	}
	if link == nil {
		return utils.ErrNotFound
	}

	var confirmed bool
	switch req.Action {
	case "confirm":
		confirmed = true
	case "dismiss":
		confirmed = false
	default:
		return utils.ErrInvalidAction
	}

	if err := s.security.ReviewLink(ctx, id, confirmed, s.now().Unix()); err != nil {
		return err
	}

	if confirmed && req.BanBoth {
		if _, err := s.users.UpdateFieldsBulk(ctx, []uuid.UUID{link.PrimaryUserID, link.LinkedUserID}, map[string]interface{}{
			"is_banned":  true,
			"ban_reason": "Multi-account abuse",
		}); err != nil {
			return err
		}
		if err := s.revokeSessions(ctx, link.PrimaryUserID, link.LinkedUserID); err != nil {
			return err
		}
	}

	s.audit(ctx, fmt.Sprintf("MULTI_ACCOUNT_%s", strings.ToUpper(req.Action)), "multi_account_link", id.String(), nil,
		map[string]interface{}{"banBoth": req.BanBoth, "primaryUserId": link.PrimaryUserID, "linkedUserId": link.LinkedUserID}, ip)
	return nil
}

// parseDateBound accepts RFC 3339 or a bare date; bare end dates cover the whole day.
func parseDateBound(raw string, end bool) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Unix(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return 0, utils.ErrBadRequest
	}
	if end {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.Unix(), nil
}

func (s *AdminService) ListActivity(ctx context.Context, q request_models.ActivityListQuery) (*response_models.ActivityListResponse, error) {
	page, limit := normalizePage(q.Page, q.Limit, 50)
	filter := repositories.ActivityFilter{Page: page, Limit: limit, Action: strings.TrimSpace(q.Action)}

	if q.UserID != "" {
		id, err := uuid.Parse(q.UserID)
		if err != nil {
			return nil, utils.ErrBadRequest
		}
		filter.UserID = &id
	}

	var err error
	if filter.From, err = parseDateBound(q.StartDate, false); err != nil {
		return nil, err
	}
	if filter.To, err = parseDateBound(q.EndDate, true); err != nil {
		return nil, err
	}

	logs, total, err := s.activity.ListActivity(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]response_models.ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		var userID *string
		if l.UserID != nil {
			id := l.UserID.String()
			userID = &id
		}
		out = append(out, response_models.ActivityLogResponse{
			ID:             l.ID.String(),
			UserID:         userID,
			Action:         l.Action,
			IPAddress:      l.IPAddress,
			UserAgent:      l.UserAgent,
			Endpoint:       l.Endpoint,
			ResponseStatus: l.ResponseStatus,
			Metadata:       l.Metadata,
			CreatedAt:      utils.FormatRFC3339(utils.FromUnixSeconds(l.CreatedAt)),
		})
	}
	return &response_models.ActivityListResponse{
		Logs:       out,
		Pagination: response_models.NewPagination(page, limit, total),
	}, nil
}
