package request_models

type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=32"`
	Password     string `json:"password" binding:"required"`
	ReferralCode string `json:"referralCode"`
	CaptchaID    string `json:"captchaId"`
	CaptchaValue string `json:"captchaValue"`
}

// LoginRequest accepts either username/password or a bare API key.
type LoginRequest struct {
	Username    string              `json:"username"`
	Password    string              `json:"password"`
	APIKey      string              `json:"apiKey"`
	Fingerprint *FingerprintPayload `json:"fingerprint"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type FingerprintPayload struct {
	FingerprintHash string       `json:"fingerprintHash"`
	BrowserInfo     BrowserInfo  `json:"browserInfo"`
	ScreenInfo      ScreenInfo   `json:"screenInfo"`
	HardwareInfo    HardwareInfo `json:"hardwareInfo"`
	Timezone        string       `json:"timezone"`
	Platform        string       `json:"platform"`
}

type BrowserInfo struct {
	UserAgent      string `json:"userAgent"`
	Language       string `json:"language"`
	CookiesEnabled bool   `json:"cookiesEnabled"`
	DoNotTrack     bool   `json:"doNotTrack"`
}

type ScreenInfo struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	ColorDepth int     `json:"colorDepth"`
	PixelRatio float64 `json:"pixelRatio"`
}

type HardwareInfo struct {
	CPUCores int     `json:"cpuCores"`
	Memory   float64 `json:"memory"`
	Platform string  `json:"platform"`
}
