package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultCountryCode is prefixed to stored 10-digit phone numbers.
const DefaultCountryCode = "91"

// Link builds the click-to-chat URL the reminders page opens:
// https://wa.me/<country><digits>?text=<message>. Returns "" when the phone
// has no digits.
func Link(countryCode, phone, message string) string {
	digits := digitsOnly(phone)
	if digits == "" {
		return ""
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return "https://wa.me/" + countryCode + digits + "?text=" + encodeComponent(message)
}

// encodeComponent percent-encodes like a URI component (spaces as %20).
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Provider delivers a message server-side, used when a business API account
// is configured so reminders can be sent without opening a browser tab.
type Provider interface {
	SendText(ctx context.Context, phone, message string) error
	Name() string
}

// Config holds configuration for a WhatsApp provider
type Config struct {
	Provider      string // "generic", "meta", "cloud"
	APIKey        string
	PhoneNumberID string
	CountryCode   string
	BaseURL       string
}

// CloudService implements Provider via the Meta WhatsApp Cloud API, which
// most BSPs proxy.
type CloudService struct {
	config Config
	client *http.Client
}

// NewCloudService creates a Cloud API provider
func NewCloudService(cfg Config) *CloudService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v18.0"
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = DefaultCountryCode
	}
	return &CloudService{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText sends a free-form text message (only delivered inside the 24h
// customer service window).
func (s *CloudService) SendText(ctx context.Context, phone, message string) error {
	to := s.recipient(phone)
	if to == "" {
		return fmt.Errorf("no phone number")
	}
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": false,
			"body":        message,
		},
	}
	return s.sendRequest(ctx, payload)
}

func (s *CloudService) recipient(phone string) string {
	digits := digitsOnly(phone)
	if len(digits) == 10 {
		return s.config.CountryCode + digits
	}
	return digits
}

func (s *CloudService) sendRequest(ctx context.Context, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", s.config.BaseURL, s.config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("WhatsApp API error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("WhatsApp API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Name returns the provider name
func (s *CloudService) Name() string {
	return "Meta Cloud API"
}

// NewProvider returns the configured provider, or nil when server-side
// delivery is not configured and only click-to-chat links are used.
func NewProvider(cfg Config) Provider {
	if cfg.APIKey == "" || cfg.PhoneNumberID == "" {
		return nil
	}
	switch cfg.Provider {
	case "", "generic", "meta", "cloud":
		return NewCloudService(cfg)
	default:
		return nil
	}
}
