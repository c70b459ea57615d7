package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

// Login exchanges credentials for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp loginResponse
	err := c.Request(ctx, "/auth/token", http.MethodPost, loginRequest{Email: email, Password: password}, false, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, domain.NewAPIError(domain.APIErrorDecoding, "login response without token", nil)
	}

	if c.credentials != nil {
		if err := c.credentials.SaveToken(ctx, resp.Token); err != nil {
			return nil, domain.NewAPIError(domain.APIErrorUnknown, fmt.Sprintf("failed to store token: %v", err), err)
		}
	}

	return &domain.Session{
		Token:  resp.Token,
		UserID: string(resp.User.ID),
		Email:  resp.User.Email,
		Name:   resp.User.Nombre,
	}, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if c.credentials == nil {
		return nil
	}
	return c.credentials.DeleteToken(ctx)
}

// Dashboard returns nil (not empty) when the response carries no habit list.
func (c *Client) Dashboard(ctx context.Context) ([]domain.HabitStat, error) {
	var resp dashboardResponse
	if err := c.Request(ctx, "/dashboard", http.MethodGet, nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.Habits == nil {
		return nil, nil
	}

	habits := make([]domain.HabitStat, 0, len(resp.Habits))
	for _, h := range resp.Habits {
		stat, err := h.toDomain()
		if err != nil {
			return nil, domain.NewAPIError(domain.APIErrorDecoding, err.Error(), err)
		}
		habits = append(habits, stat)
	}
	return habits, nil
}

func (c *Client) UserStats(ctx context.Context, userID string) (*domain.DetailedStats, error) {
	if userID == "" {
		return nil, domain.NewAPIError(domain.APIErrorInvalidURL, domain.ErrUserIDEmpty.Error(), domain.ErrUserIDEmpty)
	}

	var resp userStatsResponse
	if err := c.Request(ctx, userPath(userID), http.MethodGet, nil, true, &resp); err != nil {
		return nil, err
	}

	stats, err := resp.toDomain()
	if err != nil {
		return nil, domain.NewAPIError(domain.APIErrorDecoding, err.Error(), err)
	}
	return stats, nil
}

func (c *Client) ActivityLog(ctx context.Context, year int, month int) (map[string]domain.ActivityDay, error) {
	if month < 1 || month > 12 {
		return nil, domain.NewAPIError(domain.APIErrorInvalidURL, fmt.Sprintf("invalid month %d", month), nil)
	}

	var resp map[string]activityDayWire
	endpoint := fmt.Sprintf("/activity-log?year=%d&month=%d", year, month)
	if err := c.Request(ctx, endpoint, http.MethodGet, nil, true, &resp); err != nil {
		return nil, err
	}

	days, err := activityToDomain(resp)
	if err != nil {
		return nil, domain.NewAPIError(domain.APIErrorDecoding, err.Error(), err)
	}
	return days, nil
}
