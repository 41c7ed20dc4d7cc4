package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pka/internal/services"
)

type TelegramController struct {
	telegramService services.TelegramServiceInterface
	logger          *zap.Logger
}

func NewTelegramController(telegramService services.TelegramServiceInterface, logger *zap.Logger) *TelegramController {
	return &TelegramController{
		telegramService: telegramService,
		logger:          logger,
	}
}

// Webhook godoc
// @Summary Telegram bot webhook
// @Description Telegram retries non-2xx answers, so only an unreadable body is rejected.
// @Tags Telegram
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/telegram/webhook [post]
func (t *TelegramController) Webhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	if err := t.telegramService.HandleUpdate(c.Request.Context(), raw); err != nil {
		t.logger.Warn("telegram update rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
