package pixel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/detoxsabeho/orders-backend/pkg/config"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

const defaultGraphBaseURL = "https://graph.facebook.com"

// Service forwards conversion events to the Facebook Graph API. The access
// token lives only on the server; the browser never sees it.
type Service interface {
	SendEvent(ctx context.Context, event Event) (*Result, error)
}

type service struct {
	cfg     config.FacebookConfig
	baseURL string
	client  *http.Client
	logg    *logger.Logger
	now     func() time.Time
}

// graphEvent is the wire shape of one event in a Conversions API batch.
type graphEvent struct {
	EventName     string         `json:"event_name"`
	EventTime     int64          `json:"event_time"`
	ActionSource  string         `json:"action_source"`
	UserData      UserData       `json:"user_data"`
	CustomData    map[string]any `json:"custom_data,omitempty"`
	TestEventCode string         `json:"test_event_code,omitempty"`
}

type graphRequest struct {
	Data []graphEvent `json:"data"`
}

type graphResponse struct {
	Events []struct {
		EventID string `json:"event_id"`
	} `json:"events"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewService builds the pixel forwarder. It fails when the pixel is not
// configured; callers should check cfg.Enabled() first.
func NewService(cfg config.FacebookConfig, logg *logger.Logger) (Service, error) {
	return newService(cfg, defaultGraphBaseURL, logg)
}

func newService(cfg config.FacebookConfig, baseURL string, logg *logger.Logger) (Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("facebook pixel id and access token are required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logg:    logg,
		now:     time.Now,
	}, nil
}

// SendEvent validates, hashes and forwards a single event.
func (s *service) SendEvent(ctx context.Context, event Event) (*Result, error) {
	name, err := validateEvent(event)
	if err != nil {
		return nil, err
	}

	eventTime := event.Time
	if eventTime <= 0 {
		eventTime = s.now().Unix()
	}

	payload := graphRequest{Data: []graphEvent{{
		EventName:     name.String(),
		EventTime:     eventTime,
		ActionSource:  "website",
		UserData:      event.UserData.normalize(),
		CustomData:    event.CustomData,
		TestEventCode: event.TestEventCode,
	}}}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode conversion event")
	}

	endpoint := fmt.Sprintf("%s/%s/%s/events?access_token=%s",
		s.baseURL, s.cfg.APIVersion, s.cfg.PixelID, url.QueryEscape(s.cfg.AccessToken))

	var parsed graphResponse
	backoff := retry.WithMaxRetries(2, retry.NewExponential(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return retry.RetryableError(err)
		}
		parsed = graphResponse{}
		if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode graph response: %w", err)
		}

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("graph api returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= 300 {
			message := "unknown error"
			if parsed.Error != nil {
				message = parsed.Error.Message
			}
			return fmt.Errorf("graph api rejected event: %s", message)
		}
		return nil
	})
	if err != nil {
		s.logg.Error(ctx, "conversion event delivery failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending conversion event")
	}

	result := &Result{EventName: name.String()}
	if len(parsed.Events) > 0 {
		result.EventID = parsed.Events[0].EventID
	}

	s.logg.Info(s.logg.WithField(ctx, "event_name", name.String()), "conversion event delivered")
	return result, nil
}
