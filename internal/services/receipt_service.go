package services

import (
	"context"
	"strconv"

	"genpay/internal/models"
	"genpay/internal/pdf"
	"genpay/internal/repositories"
)

// ReceiptService rebuilds receipts from the payment ledger, which is the
// source of truth once a transaction has committed.
type ReceiptService struct {
	paymentRepo  *repositories.PaymentRepository
	settingsRepo *repositories.SettingsRepository
	generator    *pdf.ReceiptGenerator
	email        EmailService
}

func NewReceiptService(
	paymentRepo *repositories.PaymentRepository,
	settingsRepo *repositories.SettingsRepository,
	generator *pdf.ReceiptGenerator,
	email EmailService,
) *ReceiptService {
	return &ReceiptService{
		paymentRepo:  paymentRepo,
		settingsRepo: settingsRepo,
		generator:    generator,
		email:        email,
	}
}

// GetByPaymentID returns the receipt for one ledger row, or nil when the
// payment does not exist.
func (s *ReceiptService) GetByPaymentID(ctx context.Context, instanceID, paymentID int) (*models.Receipt, error) {
	p, err := s.paymentRepo.GetByPaymentID(ctx, instanceID, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return receiptFromPayment(p), nil
}

// RenderPDF returns the printable receipt as a PDF document.
func (s *ReceiptService) RenderPDF(ctx context.Context, instanceID, paymentID int) ([]byte, error) {
	r, err := s.GetByPaymentID(ctx, instanceID, paymentID)
	if err != nil || r == nil {
		return nil, err
	}

	header := ""
	currency := ""
	if settings, err := s.settingsRepo.Get(ctx, instanceID); err == nil && settings != nil {
		header = settings.HeaderTitle
		currency = settings.CurrencySymbol
	}
	return s.generator.Generate(r, header, currency)
}

// EmailCopy sends the receipt to the given address. Returns (false, nil)
// when the payment does not exist.
func (s *ReceiptService) EmailCopy(ctx context.Context, instanceID, paymentID int, to string) (bool, error) {
	r, err := s.GetByPaymentID(ctx, instanceID, paymentID)
	if err != nil {
		return false, err
	}
	if r == nil {
		return false, nil
	}
	return true, s.email.SendReceiptEmail(to, r)
}

func receiptFromPayment(p *models.Payment) *models.Receipt {
	return &models.Receipt{
		ClientName:     p.ClientName,
		Date:           p.DateEntered.Format("2006-01-02 15:04"),
		PaymentID:      strconv.Itoa(p.PaymentID),
		MonthlyFee:     p.MonthlyFee,
		PrevCounter:    p.PrevCounter,
		CurrentCounter: p.CurrentCounter,
		TotalUsage:     p.TotalUsage,
		KilowattPrice:  p.KilowattPrice,
		AmountUsage:    p.AmountUsage,
		AmountDue:      p.MonthlyFee.Add(p.AmountUsage),
		PrevBalance:    p.PrevBalance,
		TotalDueBefore: p.TotalDueBefore,
		PaymentAmount:  p.PaymentAmount,
		NewBalance:     p.NewBalance,
		CustID:         p.CustomerID,
		IsFirstPayment: p.IsFirstPayment,
	}
}
