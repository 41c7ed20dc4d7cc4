package request_models

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// UserActionData carries the optional arguments of an admin user action.
type UserActionData struct {
	Reason      string `json:"reason"`
	Plan        string `json:"plan"`
	SearchLimit *int   `json:"searchLimit"`
	EndsAt      *int64 `json:"endsAt"`
	DailyLimit  *int   `json:"dailyLimit"`
	ResetUsage  bool   `json:"resetUsage"`
	Days        int    `json:"days"`
}

type AdminUserActionRequest struct {
	UserID string         `json:"userId" binding:"required"`
	Action string         `json:"action" binding:"required"`
	Data   UserActionData `json:"data"`
}

type AdminBulkActionRequest struct {
	UserIDs []string       `json:"userIds" binding:"required,min=1"`
	Action  string         `json:"action" binding:"required"`
	Data    UserActionData `json:"data"`
}

type AdminUserListQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Search    string `form:"search"`
	Status    string `form:"status"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

type CreateApiConfigRequest struct {
	ApiName   string `json:"apiName" binding:"required"`
	ApiURL    string `json:"apiUrl" binding:"required"`
	ApiKey    string `json:"apiKey"`
	RateLimit int    `json:"rateLimit"`
}

type SuspiciousListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Status   string `form:"status"`
	Severity string `form:"severity"`
}

type ResolveSuspiciousRequest struct {
	ActivityID string `json:"activityId" binding:"required"`
	Action     string `json:"action"`
	Notes      string `json:"notes"`
}

type MultiAccountListQuery struct {
	Page          int  `form:"page"`
	Limit         int  `form:"limit"`
	MinConfidence *int `form:"minConfidence"`
}

type ReviewMultiAccountRequest struct {
	LinkID  string `json:"linkId" binding:"required"`
	Action  string `json:"action" binding:"required"`
	BanBoth bool   `json:"banBoth"`
}

type ActivityListQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	UserID    string `form:"userId"`
	Action    string `form:"action"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}
