package services

import (
	"context"
	"strings"

	"genpay/internal/billing"
	"genpay/internal/models"
	"genpay/internal/repositories"
)

type ClientService struct {
	Repo *repositories.ClientRepository
}

func NewClientService(repo *repositories.ClientRepository) *ClientService {
	return &ClientService{Repo: repo}
}

// ClientView is the client row plus the derived billing figures the list and
// detail screens display.
type ClientView struct {
	Client  *models.Client
	Billing billing.Result
}

func view(c *models.Client) *ClientView {
	return &ClientView{
		Client: c,
		Billing: billing.Compute(billing.ClientState{
			MonthlyFee:     c.MonthlyFee,
			PrevCounter:    c.PrevCounter,
			CurrentCounter: c.CurrentCounter,
			KilowattPrice:  c.KilowattPrice,
			PrevBalance:    c.PrevBalance,
		}),
	}
}

// GetByName returns the active client with derived amounts, or nil when
// there is no such client.
func (s *ClientService) GetByName(ctx context.Context, instanceID int, name string) (*ClientView, error) {
	c, err := s.Repo.GetActiveByName(ctx, instanceID, name)
	if err != nil || c == nil {
		return nil, err
	}
	return view(c), nil
}

func (s *ClientService) ListActive(ctx context.Context, instanceID int) ([]*ClientView, error) {
	clients, err := s.Repo.ListActive(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	res := make([]*ClientView, 0, len(clients))
	for _, c := range clients {
		res = append(res, view(c))
	}
	return res, nil
}

// Search returns up to limit matches for the typeahead. Terms shorter than
// two characters return nothing rather than the whole table.
func (s *ClientService) Search(ctx context.Context, instanceID int, term string, limit int) ([]*models.ClientSearchRow, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return []*models.ClientSearchRow{}, nil
	}
	if limit < 1 {
		limit = 10
	}
	return s.Repo.Search(ctx, instanceID, term, limit)
}
