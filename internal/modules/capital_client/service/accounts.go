package service

import (
	"context"

	"daily_trader/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

func (c *Client) Accounts(ctx context.Context, sess models.Session) ([]models.Account, error) {
	var out struct {
		Accounts []struct {
			AccountID string `json:"accountId"`
			Currency  string `json:"currency"`
			Preferred bool   `json:"preferred"`
			Balance   struct {
				Balance    float64 `json:"balance"`
				Deposit    float64 `json:"deposit"`
				ProfitLoss float64 `json:"profitLoss"`
				Available  float64 `json:"available"`
			} `json:"balance"`
		} `json:"accounts"`
	}

	_, err := c.call(ctx, "Accounts", &sess, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/accounts")
	})
	if err != nil {
		return nil, err
	}

	res := make([]models.Account, 0, len(out.Accounts))
	for _, a := range out.Accounts {
		res = append(res, models.Account{
			AccountID:  a.AccountID,
			Currency:   a.Currency,
			Preferred:  a.Preferred,
			Balance:    a.Balance.Balance,
			Deposit:    a.Balance.Deposit,
			ProfitLoss: a.Balance.ProfitLoss,
			Available:  a.Balance.Available,
		})
	}
	return res, nil
}

// PreferredAccount аккаунт с preferred=true, иначе первый.
func (c *Client) PreferredAccount(ctx context.Context, sess models.Session) (models.Account, error) {
	accounts, err := c.Accounts(ctx, sess)
	if err != nil {
		return models.Account{}, err
	}
	if len(accounts) == 0 {
		return models.Account{}, errors.New("PreferredAccount: no accounts")
	}
	for _, a := range accounts {
		if a.Preferred {
			return a, nil
		}
	}
	return accounts[0], nil
}
