// Package proxy builds the outbound HTTP client used for AI and search
// requests.
package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

const DefaultTimeout = 30 * time.Second

// NewClient returns a plain client when socksAddr is empty and a client
// that dials through the SOCKS5 proxy otherwise.
func NewClient(socksAddr string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if socksAddr == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("socks5 %s: %w", socksAddr, err)
	}

	dial := dialer.Dial
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return &http.Client{
			Transport: &http.Transport{DialContext: cd.DialContext},
			Timeout:   timeout,
		}, nil
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dial(network, addr)
			},
		},
		Timeout: timeout,
	}, nil
}
