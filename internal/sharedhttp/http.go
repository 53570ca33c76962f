package sharedhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/avast/retry-go"
	"golang.org/x/net/proxy"
)

var Transport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ReadBufferSize:        65536,
	WriteBufferSize:       65536,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// NewTransport returns the shared transport, or a copy of it dialing
// through the SOCKS5 proxy at proxyAddr and, with bypassCloudflare, sending
// browser-like TLS settings and headers.
func NewTransport(proxyAddr string, bypassCloudflare bool) (http.RoundTripper, error) {
	if proxyAddr == "" && !bypassCloudflare {
		return Transport, nil
	}

	t := Transport.Clone()

	if proxyAddr != "" {
		dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("could not connect to socks5 proxy %s: %w", proxyAddr, err)
		}

		t.Proxy = nil

		if cd, ok := dialer.(proxy.ContextDialer); ok {
			t.DialContext = cd.DialContext
		} else {
			t.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	if bypassCloudflare {
		return cloudflarebp.AddCloudFlareByPass(t), nil
	}

	return t, nil
}

// NewClient returns a client on transport, or on the shared transport when
// transport is nil.
func NewClient(timeout time.Duration, transport http.RoundTripper) *http.Client {
	if transport == nil {
		transport = Transport
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// CheckStatusCode maps a response status to nil, a retryable error, or an
// error wrapped with retry.Unrecoverable.
func CheckStatusCode(statusCode int) error {
	switch statusCode {
	case http.StatusOK:

	case http.StatusUnauthorized, http.StatusForbidden:
		return retry.Unrecoverable(fmt.Errorf("unrecoverable error fetching resource: status code %d", statusCode))

	case http.StatusMethodNotAllowed:
		return retry.Unrecoverable(fmt.Errorf("method not allowed: status code %d", statusCode))

	case http.StatusNotFound:
		return fmt.Errorf("resource not found - retrying: status code %d", statusCode)

	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusInternalServerError:
		return fmt.Errorf("server error encountered while fetching resource: status code %d - retrying", statusCode)

	default:
		return retry.Unrecoverable(fmt.Errorf("unexpected error fetching resource: status code %d", statusCode))
	}

	return nil
}
