package response_models

type RegisterResponse struct {
	UserID string `json:"userId"`
	APIKey string `json:"apiKey"`
	Token  string `json:"token"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Token        string `json:"token"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	ExpiresIn    int64  `json:"expiresIn"`
	// SessionID is only used to build the session cookie.
	SessionID string `json:"-"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	SessionID    string `json:"-"`
}

type ProfileResponse struct {
	ID                    string   `json:"id"`
	Username              string   `json:"username"`
	SearchesUsed          int      `json:"searchesUsed"`
	SearchesLimit         int      `json:"searchesLimit"`
	PlanType              string   `json:"planType"`
	TelegramCode          string   `json:"telegramCode"`
	APIKey                string   `json:"apiKey"`
	SubscriptionStartedAt *string  `json:"subscriptionStartedAt"`
	SubscriptionEndsAt    *string  `json:"subscriptionEndsAt"`
	TelegramID            *string  `json:"telegramId"`
	IsActive              bool     `json:"isActive"`
	ReferralCode          string   `json:"referralCode"`
	TotalReferrals        int      `json:"totalReferrals"`
	ReferralEarnings      float64  `json:"referralEarnings"`
	BadgeLevel            string   `json:"badgeLevel,omitempty"`
	Badges                []string `json:"badges"`
	CreatedAt             string   `json:"createdAt"`
}

type CaptchaResponse struct {
	CaptchaID string `json:"captchaId"`
	ImageURL  string `json:"imageUrl"`
}

type QuotaUsage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

type MultiAccountResult struct {
	IsMultiAccount bool     `json:"isMultiAccount"`
	LinkedAccounts []string `json:"linkedAccounts"`
	Confidence     int      `json:"confidence"`
}
