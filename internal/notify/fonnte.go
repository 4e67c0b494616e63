package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/absensi-sd/absensi-api/internal/models"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
)

// FonnteClient talks to the Fonnte WhatsApp HTTP API.
type FonnteClient struct {
	apiURL string
	token  string
	http   *http.Client
}

var _ Gateway = (*FonnteClient)(nil)

// NewFonnteClient constructs the client. An empty timeout defaults to 10s.
func NewFonnteClient(apiURL, token string, timeout time.Duration) *FonnteClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FonnteClient{
		apiURL: apiURL,
		token:  token,
		http:   &http.Client{Timeout: timeout},
	}
}

// SendAttendanceNotice posts one message request. Any transport failure or
// non-2xx response surfaces as an external service error.
func (c *FonnteClient) SendAttendanceNotice(ctx context.Context, notice models.AttendanceNotice) error {
	form := url.Values{}
	form.Set("target", notice.Phone)
	form.Set("message", Message(notice))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "build whatsapp request")
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "send whatsapp message")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return appErrors.Wrap(
			fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			appErrors.ErrExternalService.Code,
			appErrors.ErrExternalService.Status,
			"whatsapp gateway rejected message",
		)
	}
	return nil
}
