package uptimekuma

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	. "node-linker/internal/domain"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	PushURL string `json:"push_url" validate:"required,url"`
}

// UptimeKuma reports each check to a push monitor. Valid links are up,
// anything else is down with the failure as the message.
type UptimeKuma struct {
	pushURL string
	client  *http.Client
}

func New(rawConfig json.RawMessage) (Exporter, error) {
	var cfg Config
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("invalid uptime kuma config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid uptime kuma config: %w", err)
	}

	return NewWithURL(cfg.PushURL), nil
}

func NewWithURL(pushURL string) Exporter {
	return &UptimeKuma{
		pushURL: pushURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (u *UptimeKuma) Export(check Check) error {
	target, err := url.Parse(u.pushURL)
	if err != nil {
		return fmt.Errorf("invalid push url: %w", err)
	}

	q := target.Query()
	if check.Status == StatusValid {
		q.Set("status", "up")
		q.Set("msg", "OK")
	} else {
		q.Set("status", "down")
		q.Set("msg", message(check))
	}
	target.RawQuery = q.Encode()

	resp, err := u.client.Get(target.String())
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push failed: unexpected status %s", resp.Status)
	}
	return nil
}

func message(check Check) string {
	if check.Error != nil {
		return fmt.Sprintf("%s: %v", check.Status, check.Error)
	}
	return check.Status
}
