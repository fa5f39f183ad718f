package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

const (
	defaultBackendTimeout = 10 * time.Second
	eventsPageSize        = 50
	isoLayout             = "2006-01-02T15:04:05"
)

// Event is one entry of the backend audit trail.
type Event struct {
	OccurredAt          string `json:"occurredAt"`
	EventType           string `json:"eventType"`
	UserEmail           string `json:"userEmail"`
	Operation           string `json:"operation"`
	ModuleName          string `json:"moduleName"`
	BlockchainReference string `json:"blockchainReference"`
}

type EventFilter struct {
	UserEmail  string
	ActionType string
	DaysBack   int
}

// LGPDStatus mirrors GET /lgpd/status.
type LGPDStatus struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	PendingRequests   int    `json:"pending_requests"`
	DeletionScheduled bool   `json:"deletion_scheduled"`
	DeletionDate      string `json:"deletion_date"`
}

// Client reads audit data from the shop backend.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Events lists the most recent audit events matching filter.
func (c *Client) Events(ctx context.Context, filter EventFilter) ([]Event, error) {
	if filter.DaysBack <= 0 {
		filter.DaysBack = 30
	}
	end := c.now()
	start := end.AddDate(0, 0, -filter.DaysBack)

	q := url.Values{}
	q.Set("startDate", start.Format(isoLayout))
	q.Set("endDate", end.Format(isoLayout))
	q.Set("page", "0")
	q.Set("size", fmt.Sprint(eventsPageSize))
	if filter.UserEmail != "" {
		q.Set("userEmail", filter.UserEmail)
	}
	if filter.ActionType != "" {
		q.Set("actionType", filter.ActionType)
	}

	var page struct {
		Content []Event `json:"content"`
	}
	if err := c.get(ctx, "/audit/events", q, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// LGPDStatus reports pending data-subject requests for email.
func (c *Client) LGPDStatus(ctx context.Context, email string) (LGPDStatus, error) {
	var status LGPDStatus
	err := c.get(ctx, "/lgpd/status", url.Values{"userEmail": {email}}, &status)
	return status, err
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", apierr.ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", apierr.ErrUnavailable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apierr.ErrUnavailable, path, err)
	}
	return nil
}
