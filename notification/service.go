// Package notification delivers push notifications through the Firebase
// Cloud Messaging HTTP v1 API.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
)

const (
	fcmEndpoint = "https://fcm.googleapis.com"
	iidEndpoint = "https://iid.googleapis.com"

	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

	// multicastWorkers bounds the concurrent sends of one multicast call.
	multicastWorkers = 8
)

var (
	// ErrEmptyTarget signals a message without a device token or topic.
	ErrEmptyTarget = errors.New("notification: empty target")
	// ErrSendFailed signals a rejected send request.
	ErrSendFailed = errors.New("notification: send failed")
)

// Service sends messages and manages topic subscriptions. The HTTP client
// carries OAuth2 service-account credentials.
type Service struct {
	client      *http.Client
	projectID   string
	fcmEndpoint string
	iidEndpoint string
}

// Option customizes a Service.
type Option func(*Service)

// WithEndpoints overrides the FCM and IID base URLs, used in tests.
func WithEndpoints(fcm, iid string) Option {
	return func(s *Service) {
		s.fcmEndpoint = fcm
		s.iidEndpoint = iid
	}
}

// WithHTTPClient overrides the authenticated HTTP client, used in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// NewService builds a Service authenticating with the given service-account
// JSON key.
func NewService(ctx context.Context, projectID string, serviceAccountJSON []byte, opts ...Option) (*Service, error) {
	if projectID == "" {
		return nil, fmt.Errorf("notification: project id is required")
	}

	s := &Service{
		projectID:   projectID,
		fcmEndpoint: fcmEndpoint,
		iidEndpoint: iidEndpoint,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		creds, err := google.CredentialsFromJSON(ctx, serviceAccountJSON, messagingScope)
		if err != nil {
			return nil, fmt.Errorf("notification: load credentials: %w", err)
		}
		s.client = oauth2.NewClient(ctx, creds.TokenSource)
		s.client.Timeout = 30 * time.Second
	}

	return s, nil
}

// fcmMessage is the wire shape of the v1 send request.
type fcmMessage struct {
	Token        string            `json:"token,omitempty"`
	Topic        string            `json:"topic,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

// SendToDevice delivers one message to a single device and returns the FCM
// message name.
func (s *Service) SendToDevice(ctx context.Context, msg DeviceMessage) (string, error) {
	if msg.DeviceToken == "" {
		return "", ErrEmptyTarget
	}
	return s.send(ctx, fcmMessage{
		Token:        msg.DeviceToken,
		Notification: &msg.Notification,
		Data:         msg.Data,
	})
}

// SendToTopic delivers one message to every subscriber of a topic.
func (s *Service) SendToTopic(ctx context.Context, msg TopicMessage) (string, error) {
	if msg.Topic == "" {
		return "", ErrEmptyTarget
	}
	return s.send(ctx, fcmMessage{
		Topic:        msg.Topic,
		Notification: &msg.Notification,
		Data:         msg.Data,
	})
}

// SendMulticast fans one message out to many devices concurrently and
// reports the outcome per token. Individual failures do not abort the
// remaining sends.
func (s *Service) SendMulticast(ctx context.Context, msg MulticastMessage) ([]SendOutcome, error) {
	if len(msg.DeviceTokens) == 0 {
		return nil, ErrEmptyTarget
	}

	outcomes := make([]SendOutcome, len(msg.DeviceTokens))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(multicastWorkers)
	for i, token := range msg.DeviceTokens {
		g.Go(func() error {
			id, err := s.send(ctx, fcmMessage{
				Token:        token,
				Notification: &msg.Notification,
				Data:         msg.Data,
			})
			outcomes[i] = SendOutcome{DeviceToken: token, MessageID: id}
			if err != nil {
				outcomes[i].Error = err.Error()
				slog.Warn("multicast send failed", "token", token, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

// Subscribe adds the device token to a topic.
func (s *Service) Subscribe(ctx context.Context, sub Subscription) error {
	return s.batchTopicOp(ctx, "/iid/v1:batchAdd", sub)
}

// Unsubscribe removes the device token from a topic.
func (s *Service) Unsubscribe(ctx context.Context, sub Subscription) error {
	return s.batchTopicOp(ctx, "/iid/v1:batchRemove", sub)
}

func (s *Service) send(ctx context.Context, msg fcmMessage) (string, error) {
	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", s.fcmEndpoint, s.projectID)

	body, err := json.Marshal(map[string]fcmMessage{"message": msg})
	if err != nil {
		return "", fmt.Errorf("notification: marshal message: %w", err)
	}

	resp, err := s.post(ctx, url, body, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, detail)
	}

	var result struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("notification: decode send response: %w", err)
	}
	return result.Name, nil
}

func (s *Service) batchTopicOp(ctx context.Context, path string, sub Subscription) error {
	if sub.DeviceToken == "" || sub.Topic == "" {
		return ErrEmptyTarget
	}

	body, err := json.Marshal(map[string]any{
		"to":                  "/topics/" + sub.Topic,
		"registration_tokens": []string{sub.DeviceToken},
	})
	if err != nil {
		return fmt.Errorf("notification: marshal subscription: %w", err)
	}

	// The IID batch endpoints require this header when authenticating with
	// an OAuth2 access token.
	headers := map[string]string{"access_token_auth": "true"}

	resp, err := s.post(ctx, s.iidEndpoint+path, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, detail)
	}
	return nil
}

func (s *Service) post(ctx context.Context, url string, body []byte, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("notification: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notification: send request: %w", err)
	}
	return resp, nil
}
