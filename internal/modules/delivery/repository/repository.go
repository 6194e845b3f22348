package repository

import (
	"time"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/domain"
)

// Repository defines the interface for delivery history persistence
type Repository interface {
	SaveDelivery(delivery *domain.Delivery) error
	GetDeliveries(limit int) ([]*domain.Delivery, error)
	DeleteBefore(cutoff time.Time) (int, error)
}
