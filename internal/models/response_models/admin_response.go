package response_models

import "gorm.io/datatypes"

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type HourlyTraffic struct {
	Hour     string `json:"hour"`
	Searches int64  `json:"searches"`
}

type ApiConfigResponse struct {
	ID        string `json:"id"`
	ApiName   string `json:"apiName"`
	ApiURL    string `json:"apiUrl"`
	RateLimit int    `json:"rateLimit"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

type AdminStatsResponse struct {
	TotalUsers       int64               `json:"totalUsers"`
	ActiveUsers      int64               `json:"activeUsers"`
	BannedUsers      int64               `json:"bannedUsers"`
	TotalSearches    int64               `json:"totalSearches"`
	SearchesToday    int64               `json:"searchesToday"`
	SuspiciousAlerts int64               `json:"suspiciousAlerts"`
	Revenue          float64             `json:"revenue"`
	Traffic          []HourlyTraffic     `json:"traffic"`
	ApiConfigs       []ApiConfigResponse `json:"apiConfigs"`
}

type AdminUserResponse struct {
	ID                 string  `json:"id"`
	Username           string  `json:"username"`
	SubscriptionPlan   string  `json:"subscriptionPlan"`
	SubscriptionEndsAt *string `json:"subscriptionEndsAt"`
	DailySearchLimit   int     `json:"dailySearchLimit"`
	DailySearchesUsed  int     `json:"dailySearchesUsed"`
	IsActive           bool    `json:"isActive"`
	IsBanned           bool    `json:"isBanned"`
	BanReason          *string `json:"banReason"`
	TelegramLinked     bool    `json:"telegramLinked"`
	TotalReferrals     int     `json:"totalReferrals"`
	RiskScore          int     `json:"riskScore"`
	CreatedAt          string  `json:"createdAt"`
}

type AdminUserListResponse struct {
	Users      []AdminUserResponse `json:"users"`
	Pagination Pagination          `json:"pagination"`
}

type BulkActionResponse struct {
	Count int64 `json:"count"`
}

type SuspiciousActivityResponse struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Username        string         `json:"username,omitempty"`
	ActivityType    string         `json:"activityType"`
	Severity        string         `json:"severity"`
	Description     string         `json:"description"`
	IPAddress       string         `json:"ipAddress"`
	Metadata        datatypes.JSON `json:"metadata,omitempty"`
	IsResolved      bool           `json:"isResolved"`
	ResolvedAt      *string        `json:"resolvedAt"`
	ResolutionNotes *string        `json:"resolutionNotes"`
	CreatedAt       string         `json:"createdAt"`
}

type SuspiciousListResponse struct {
	Activities []SuspiciousActivityResponse `json:"activities"`
	Pagination Pagination                   `json:"pagination"`
}

type LinkedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsBanned bool   `json:"isBanned"`
}

type MultiAccountLinkResponse struct {
	ID              string         `json:"id"`
	PrimaryUser     *LinkedUser    `json:"primaryUser"`
	LinkedUser      *LinkedUser    `json:"linkedUser"`
	LinkType        string         `json:"linkType"`
	ConfidenceScore int            `json:"confidenceScore"`
	Evidence        datatypes.JSON `json:"evidence,omitempty"`
	DetectedAt      string         `json:"detectedAt"`
	ReviewedAt      *string        `json:"reviewedAt"`
	IsConfirmed     *bool          `json:"isConfirmed"`
}

type MultiAccountListResponse struct {
	Links      []MultiAccountLinkResponse `json:"links"`
	Pagination Pagination                 `json:"pagination"`
}

type ActivityLogResponse struct {
	ID             string         `json:"id"`
	UserID         *string        `json:"userId"`
	Action         string         `json:"action"`
	IPAddress      string         `json:"ipAddress"`
	UserAgent      string         `json:"userAgent"`
	Endpoint       string         `json:"endpoint,omitempty"`
	ResponseStatus int            `json:"responseStatus,omitempty"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt      string         `json:"createdAt"`
}

type ActivityListResponse struct {
	Logs       []ActivityLogResponse `json:"logs"`
	Pagination Pagination            `json:"pagination"`
}
