// Package client is the caller-facing stand-in for a remote target. A
// Proxy turns an operation name plus arguments into one encoded round trip
// against the server's RPC endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dexxiez/analog-nest-rpc/pkg/codec"
	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// Options configures a Proxy. Zero fields fall back to the global defaults
// set with Configure; the merge is shallow and per-proxy values win.
type Options struct {
	// BaseURL prefixes the endpoint path, e.g. "http://localhost:8080".
	BaseURL string
	// Endpoint is the client-context endpoint path.
	Endpoint string
	// SSREndpoint is used instead of Endpoint for calls made while
	// server-rendering (see WithServerRender). Optional.
	SSREndpoint string
	// Headers are sent with every call.
	Headers map[string]string
	// HTTPClient overrides the transport.
	HTTPClient *http.Client
}

var (
	defaultsMu sync.RWMutex
	defaults   Options
)

// Configure sets process-wide default options, merged under every proxy's
// own options.
func Configure(opts Options) {
	defaultsMu.Lock()
	defaults = opts
	defaultsMu.Unlock()
}

func merged(overrides Options) Options {
	defaultsMu.RLock()
	out := defaults
	defaultsMu.RUnlock()

	if overrides.BaseURL != "" {
		out.BaseURL = overrides.BaseURL
	}
	if overrides.Endpoint != "" {
		out.Endpoint = overrides.Endpoint
	}
	if overrides.SSREndpoint != "" {
		out.SSREndpoint = overrides.SSREndpoint
	}
	if overrides.Headers != nil {
		out.Headers = overrides.Headers
	}
	if overrides.HTTPClient != nil {
		out.HTTPClient = overrides.HTTPClient
	}
	if out.Endpoint == "" {
		out.Endpoint = domain.DefaultEndpoint
	}
	return out
}

// Proxy calls operations on one remote target.
type Proxy struct {
	target string
	opts   Options
}

// New creates a proxy for the named target. At most one Options value is
// honored; it is merged over the Configure defaults.
func New(target string, overrides ...Options) *Proxy {
	var o Options
	if len(overrides) > 0 {
		o = overrides[0]
	}
	return &Proxy{target: target, opts: merged(o)}
}

type ssrKey struct{}

// WithServerRender marks the context as executing during server rendering,
// which switches the exchange to the SSR endpoint when one is configured.
func WithServerRender(ctx context.Context) context.Context {
	return context.WithValue(ctx, ssrKey{}, true)
}

// IsServerRender reports whether ctx carries the server-render marker.
func IsServerRender(ctx context.Context) bool {
	v, _ := ctx.Value(ssrKey{}).(bool)
	return v
}

// reservedMembers are member names the proxy never treats as remote
// operations: framework lifecycle hooks and object-protocol names.
var reservedMembers = map[string]struct{}{
	"then":                   {},
	"catch":                  {},
	"finally":                {},
	"constructor":            {},
	"prototype":              {},
	"toJSON":                 {},
	"toString":               {},
	"onModuleInit":           {},
	"onModuleDestroy":        {},
	"onApplicationBootstrap": {},
	"onApplicationShutdown":  {},
}

func isReservedMember(name string) bool {
	if name == "" {
		return true
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "$") {
		return true
	}
	_, reserved := reservedMembers[name]
	return reserved
}

// Call performs one round trip: encode arguments, pick the endpoint for the
// execution context, exchange, decode the result. Non-success responses
// fail with a domain.TransportError carrying status and body.
func (p *Proxy) Call(ctx context.Context, action string, args ...any) (any, error) {
	if isReservedMember(action) {
		return nil, fmt.Errorf("%w: %s", domain.ErrReservedMember, action)
	}

	data, err := codec.EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(domain.Envelope{
		Controller: p.target,
		Action:     action,
		Data:       data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url(ctx), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("issue request: %w", err)
	}
	defer drainAndClose(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return codec.Decode(respBody)
}

// Target returns the remote target name this proxy is bound to.
func (p *Proxy) Target() string {
	return p.target
}

func (p *Proxy) url(ctx context.Context) string {
	endpoint := p.opts.Endpoint
	if IsServerRender(ctx) && p.opts.SSREndpoint != "" {
		endpoint = p.opts.SSREndpoint
	}
	return strings.TrimRight(p.opts.BaseURL, "/") + endpoint
}

func (p *Proxy) httpClient() *http.Client {
	if p.opts.HTTPClient != nil {
		return p.opts.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// drainAndClose empties the body before closing so the underlying
// connection can be reused.
func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
