// Package gis talks to the downstream map server's token endpoint. Tokens are
// requested fresh on every login; nothing here is cached and no retry is
// attempted, so a single negative answer surfaces directly as an
// authentication denial.
package gis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/internal/config"
)

// Client exchanges a verified identity plus role for a time-limited token.
type Client struct {
	endpoint     string
	password     string
	tokenMinutes int
	http         *fasthttp.Client
	logger       *zap.Logger
}

// NewClient builds a token client from the GIS configuration.
func NewClient(cfg config.GISConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	minutes := cfg.TokenMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return &Client{
		endpoint:     cfg.TokenEndpoint(),
		password:     cfg.ServicePassword,
		tokenMinutes: minutes,
		http: &fasthttp.Client{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// tokenResponse covers both the success and the error shape of the endpoint.
type tokenResponse struct {
	Token    string   `json:"token"`
	Expires  int64    `json:"expires"`
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
}

// RequestToken asks the map server for a token scoped to the application's
// role account. A negative response yields *domain.DownstreamError; transport
// faults come back as wrapped infrastructure errors.
func (c *Client) RequestToken(ctx context.Context, application, role string) (*domain.DownstreamToken, error) {
	if deadline, ok := ctx.Deadline(); ok && !deadline.After(time.Now()) {
		return nil, ctx.Err()
	}

	form := url.Values{}
	// role accounts are provisioned as <application>_<role> on the map server
	form.Set("username", fmt.Sprintf("%s_%s", application, role))
	form.Set("password", c.password)
	form.Set("client", "requestip")
	form.Set("expiration", strconv.Itoa(c.tokenMinutes))
	form.Set("f", "json")

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	if err := c.http.Do(req, resp); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "token endpoint unreachable", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode()))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "unparseable token response", err)
	}

	if parsed.Token == "" || parsed.Status == "error" {
		message := "token request was not successful"
		if len(parsed.Messages) > 0 {
			message = parsed.Messages[0]
		}
		c.logger.Warn("map server rejected token request",
			zap.String("application", application),
			zap.String("role", role),
			zap.String("message", message))
		return nil, &domain.DownstreamError{Message: message}
	}

	return &domain.DownstreamToken{
		Value:   parsed.Token,
		Expires: time.UnixMilli(parsed.Expires),
	}, nil
}
