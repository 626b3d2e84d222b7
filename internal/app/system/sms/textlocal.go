// internal/app/system/sms/textlocal.go
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTextLocalURL is the TextLocal send endpoint.
const DefaultTextLocalURL = "https://api.txtlocal.com/send/"

const maxErrorBody = 512

// TextLocal posts form-encoded messages to the TextLocal API.
type TextLocal struct {
	URL    string
	Client *http.Client
}

// NewTextLocal builds the provider. An empty endpoint uses the public API.
func NewTextLocal(endpoint string) *TextLocal {
	if endpoint == "" {
		endpoint = DefaultTextLocalURL
	}
	return &TextLocal{
		URL:    endpoint,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type textLocalResponse struct {
	Status string `json:"status"`
}

// Send delivers one message. The tenant's base_url, when set, overrides the
// configured endpoint.
func (t *TextLocal) Send(ctx context.Context, cred Credential, to, body string) error {
	endpoint := t.URL
	if cred.BaseURL != "" {
		endpoint = cred.BaseURL
	}
	form := url.Values{
		"apikey":  {cred.APIKey},
		"numbers": {to},
		"sender":  {cred.Sender},
		"message": {body},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	text := strings.TrimSpace(string(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if text != "" {
			return fmt.Errorf("%s", truncate(text))
		}
		return fmt.Errorf("HTTP %d from TextLocal", resp.StatusCode)
	}

	var parsed textLocalResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Status != "success" {
		if text == "" {
			return fmt.Errorf("unknown response from TextLocal")
		}
		return fmt.Errorf("%s", truncate(text))
	}
	return nil
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
