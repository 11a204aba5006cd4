// Package steamapi is the HTTP adapter for the Steam Web API and the
// community confirmation endpoints. It only moves bytes: request
// signing and session freshness decisions belong to the callers.
package steamapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// Options configures the adapter. Zero values fall back to the public
// Steam hosts and resty's defaults.
type Options struct {
	// Proxy is an optional proxy URL; the scheme selects the protocol
	// (http, https or socks5).
	Proxy string

	// Timeout bounds every request including body read.
	Timeout time.Duration

	// APIBase and CommunityBase override the public hosts in tests.
	APIBase       string
	CommunityBase string
}

// Client talks to the Steam Web API and the community confirmation
// endpoints over a shared resty client.
type Client struct {
	http          *resty.Client
	apiBase       string
	communityBase string
	logger        *logger.Logger
}

func NewClient(opts Options, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", defaultUserAgent)

	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	if opts.Proxy != "" {
		httpClient.SetProxy(opts.Proxy)
	}

	api := opts.APIBase
	if api == "" {
		api = apiBase
	}
	community := opts.CommunityBase
	if community == "" {
		community = communityBase
	}

	return &Client{
		http:          httpClient,
		apiBase:       strings.TrimRight(api, "/"),
		communityBase: strings.TrimRight(community, "/"),
		logger:        log,
	}
}

// CallMeta carries the transport status and the platform result code of
// a completed request.
type CallMeta struct {
	HTTPStatus int
	Result     models.EResult
}

func metaFrom(resp *resty.Response) CallMeta {
	return CallMeta{
		HTTPStatus: resp.StatusCode(),
		Result:     parseEResultHeader(resp.Header().Get(eresultHeader)),
	}
}

func parseEResultHeader(value string) models.EResult {
	code, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return models.EResultInvalid
	}
	return models.EResult(code)
}
