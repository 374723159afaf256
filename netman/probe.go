package netman

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/yllada/vpn-switcher/common"
)

// HTTPProber checks reachability against a captive-portal style endpoint
// that answers 204 No Content, the same contract NetworkManager uses for its
// own connectivity checks. It replaces the control plane check when the
// daemon is configured with a reachability URL.
type HTTPProber struct {
	url    string
	client *resty.Client
}

// NewHTTPProber builds a prober for the given URL.
func NewHTTPProber(url string) *HTTPProber {
	client := resty.New().
		SetTimeout(common.ProbeTimeout).
		SetRedirectPolicy(resty.NoRedirectPolicy())
	return &HTTPProber{url: url, client: client}
}

// URL returns the probed endpoint.
func (p *HTTPProber) URL() string {
	return p.url
}

// CheckReachability performs one probe. A transport error or an unexpected
// status, including a captive portal redirect, counts as not reachable.
func (p *HTTPProber) CheckReachability(ctx context.Context) (bool, error) {
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if err != nil {
		return false, fmt.Errorf("reachability probe failed: %w", err)
	}
	return resp.StatusCode() == http.StatusNoContent, nil
}
