package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "pka/internal/models/db_models"
	"pka/internal/models/request_models"
	"pka/internal/models/response_models"
	"pka/internal/repositories"
)

type FingerprintServiceInterface interface {
	Record(ctx context.Context, userID uuid.UUID, fp request_models.FingerprintPayload) (string, error)
	DetectMultiAccount(ctx context.Context, userID uuid.UUID, ip, fingerprintHash string) (*response_models.MultiAccountResult, error)
}

type FingerprintService struct {
	repo     repositories.SecurityRepository
	sessions repositories.SessionRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewFingerprintService(repo repositories.SecurityRepository, sessions repositories.SessionRepository, logger *zap.Logger) *FingerprintService {
	return &FingerprintService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// HashFingerprint digests the stable device attributes reported by the client.
func HashFingerprint(fp request_models.FingerprintPayload) string {
	parts := []string{
		fp.BrowserInfo.UserAgent,
		fp.BrowserInfo.Language,
		fmt.Sprint(fp.ScreenInfo.Width),
		fmt.Sprint(fp.ScreenInfo.Height),
		fmt.Sprint(fp.ScreenInfo.ColorDepth),
		fmt.Sprint(fp.HardwareInfo.CPUCores),
		fp.HardwareInfo.Platform,
		fp.Timezone,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func (f *FingerprintService) Record(ctx context.Context, userID uuid.UUID, fp request_models.FingerprintPayload) (string, error) {
	hash := fp.FingerprintHash
	if hash == "" {
		hash = HashFingerprint(fp)
	}

	owner, err := f.repo.FindFingerprintOwner(ctx, hash)
	if err != nil {
		return "", err
	}

	seenAt := f.now().Unix()
	row := &dbm.DeviceFingerprint{
		BaseModel:       dbm.BaseModel{CreatedAt: seenAt},
		FingerprintHash: hash,
		UserID:          userID,
		BrowserInfo:     toJSON(fp.BrowserInfo),
		ScreenInfo:      toJSON(fp.ScreenInfo),
		HardwareInfo:    toJSON(fp.HardwareInfo),
		Timezone:        fp.Timezone,
		Platform:        fp.Platform,
	}
	if err := f.repo.RecordFingerprint(ctx, row, seenAt); err != nil {
		return "", err
	}

	if owner != nil && owner.UserID != userID {
		if _, err := f.linkDevice(ctx, owner.UserID, userID, hash); err != nil {
			return "", err
		}
	}
	return hash, nil
}

func (f *FingerprintService) linkDevice(ctx context.Context, primary, linked uuid.UUID, hash string) (*dbm.MultiAccountLink, error) {
	if err := f.repo.MarkFingerprintsSuspicious(ctx, hash, []uuid.UUID{primary, linked}); err != nil {
		return nil, err
	}
	return f.upsertLink(ctx, primary, linked, dbm.LinkSameDevice, dbm.ConfidenceFingerprintMatch,
		map[string]interface{}{"fingerprintHash": hash})
}

// upsertLink reuses the direction of an existing pair so a pair is stored once.
func (f *FingerprintService) upsertLink(ctx context.Context, primary, linked uuid.UUID, linkType dbm.LinkType, confidence int, evidence map[string]interface{}) (*dbm.MultiAccountLink, error) {
	existing, err := f.repo.FindLinkBetween(ctx, primary, linked)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		primary, linked = existing.PrimaryUserID, existing.LinkedUserID
	}

	return f.repo.UpsertLink(ctx, &dbm.MultiAccountLink{
		PrimaryUserID:   primary,
		LinkedUserID:    linked,
		LinkType:        linkType,
		ConfidenceScore: confidence,
		Evidence:        toJSON(evidence),
		DetectedAt:      f.now().Unix(),
	})
}

func (f *FingerprintService) DetectMultiAccount(ctx context.Context, userID uuid.UUID, ip, fingerprintHash string) (*response_models.MultiAccountResult, error) {
	result := &response_models.MultiAccountResult{LinkedAccounts: []string{}}
	seen := map[uuid.UUID]bool{}

	note := func(other uuid.UUID, link *dbm.MultiAccountLink) {
		if link.ConfidenceScore > result.Confidence {
			result.Confidence = link.ConfidenceScore
		}
		if !seen[other] {
			seen[other] = true
			result.LinkedAccounts = append(result.LinkedAccounts, other.String())
		}
	}

	others, err := f.sessions.FindUsersSharingIP(ctx, ip, userID, f.now().Unix())
	if err != nil {
		return nil, err
	}
	for _, other := range others {
		link, err := f.upsertLink(ctx, other, userID, dbm.LinkSameIP, dbm.ConfidenceSharedIP,
			map[string]interface{}{"ipAddress": ip})
		if err != nil {
			return nil, err
		}
		note(other, link)
	}

	if fingerprintHash != "" {
		owners, err := f.repo.FindFingerprintUsers(ctx, fingerprintHash, userID)
		if err != nil {
			return nil, err
		}
		for _, owner := range owners {
			link, err := f.linkDevice(ctx, owner, userID, fingerprintHash)
			if err != nil {
				return nil, err
			}
			note(owner, link)
		}
	}

	if len(result.LinkedAccounts) == 0 {
		return result, nil
	}
	result.IsMultiAccount = true

	severity := dbm.SeverityMedium
	if result.Confidence >= dbm.ConfidenceFingerprintMatch {
		severity = dbm.SeverityHigh
	}
	if err := f.flag(ctx, userID, ip, severity, result); err != nil {
		return nil, err
	}

	f.logger.Info("multi-account activity flagged",
		zap.String("user_id", userID.String()),
		zap.Int("confidence", result.Confidence),
		zap.Int("linked", len(result.LinkedAccounts)))
	return result, nil
}

var severityRank = map[dbm.Severity]int{
	dbm.SeverityLow:      1,
	dbm.SeverityMedium:   2,
	dbm.SeverityHigh:     3,
	dbm.SeverityCritical: 4,
}

// flag keeps one open multi_account row per user, raising it when the evidence grows.
func (f *FingerprintService) flag(ctx context.Context, userID uuid.UUID, ip string, severity dbm.Severity, result *response_models.MultiAccountResult) error {
	description := fmt.Sprintf("Possible multi-account: linked to %d account(s)", len(result.LinkedAccounts))
	metadata := toJSON(map[string]interface{}{
		"linkedAccounts": result.LinkedAccounts,
		"confidence":     result.Confidence,
	})

	open, err := f.repo.FindOpenSuspicious(ctx, userID, "multi_account")
	if err != nil {
		return err
	}
	if open == nil {
		return f.repo.CreateSuspicious(ctx, &dbm.SuspiciousActivity{
			UserID:       userID,
			ActivityType: "multi_account",
			Severity:     severity,
			Description:  description,
			IPAddress:    ip,
			Metadata:     metadata,
		})
	}

	if severityRank[severity] <= severityRank[open.Severity] && description == open.Description {
		return nil
	}
	fields := map[string]interface{}{
		"description": description,
		"metadata":    metadata,
	}
	if severityRank[severity] > severityRank[open.Severity] {
		fields["severity"] = severity
	}
	return f.repo.UpdateSuspicious(ctx, open.ID, fields)
}
