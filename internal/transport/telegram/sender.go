package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	publishDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/publish/domain"
	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/lo"
)

// API is the part of *bot.Bot the sender uses.
type API interface {
	SendMediaGroup(ctx context.Context, params *bot.SendMediaGroupParams) ([]*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

// Sender delivers media groups to one chat.
type Sender struct {
	api    API
	chatID string
}

// NewSender creates a sender posting to chatID (@username or numeric id).
func NewSender(api API, chatID string) *Sender {
	return &Sender{api: api, chatID: chatID}
}

// SendGroup posts items silently. sendMediaGroup needs at least two items,
// so a single item goes through sendPhoto.
func (s *Sender) SendGroup(ctx context.Context, items []publishDomain.Item) error {
	switch len(items) {
	case 0:
		return nil
	case 1:
		_, err := s.api.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:              s.chatID,
			Photo:               &models.InputFileString{Data: items[0].MediaURL},
			Caption:             items[0].Caption,
			ParseMode:           models.ParseModeMarkdown,
			DisableNotification: true,
		})
		return mapError(err)
	}

	media := lo.Map(items, func(it publishDomain.Item, _ int) models.InputMedia {
		return &models.InputMediaPhoto{
			Media:     it.MediaURL,
			Caption:   it.Caption,
			ParseMode: models.ParseModeMarkdown,
		}
	})

	_, err := s.api.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
		ChatID:              s.chatID,
		Media:               media,
		DisableNotification: true,
	})
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return &apperrors.RateLimitError{RetryAfter: time.Duration(tooMany.RetryAfter) * time.Second}
	}
	return fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
}
