package services

import (
	"context"
	"log"
	"time"

	"genpay/internal/models"
	"genpay/internal/repositories"
)

const defaultPaymentIDStart = 1000

type SettingsService struct {
	Repo *repositories.SettingsRepository
}

func NewSettingsService(repo *repositories.SettingsRepository) *SettingsService {
	return &SettingsService{Repo: repo}
}

// Get returns the instance settings, falling back to built-in defaults when
// the row is missing or unreadable. The settings screen must never 500 just
// because an instance was not fully seeded.
func (s *SettingsService) Get(ctx context.Context, instanceID int) *models.Settings {
	settings, err := s.Repo.Get(ctx, instanceID)
	if err != nil {
		log.Printf("[settings][get] falling back to defaults: %v", err)
	}
	if settings == nil {
		settings = &models.Settings{
			InstanceID:     instanceID,
			HeaderTitle:    "Generator Payments",
			ReceiptHeader:  time.Now().Format("2006-01-02"),
			PaymentIDStart: defaultPaymentIDStart,
		}
	}
	return settings
}
