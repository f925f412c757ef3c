// Package probe provides the concrete network capabilities behind the
// custom scorers and the composed Hard-KO domain check: HTTP
// reachability and DNS A-record resolution. Both are bounded by the
// caller's context and degrade to "condition not met" on any failure.
package probe

import (
	"context"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single probe when the caller's context carries
// no deadline of its own.
const DefaultTimeout = 4 * time.Second

// HTTPProbe answers URL reachability with a HEAD request, falling back
// to GET for servers that reject HEAD. Any 2xx or 3xx response counts as
// reachable; timeouts and transport errors do not.
type HTTPProbe struct {
	Client *http.Client
}

// NewHTTPProbe creates a probe with a client bounded by DefaultTimeout.
func NewHTTPProbe() *HTTPProbe {
	return &HTTPProbe{Client: &http.Client{Timeout: DefaultTimeout}}
}

// Reachable implements scoring.ReachabilityProbe.
func (p *HTTPProbe) Reachable(ctx context.Context, rawURL string) bool {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	if ok, decided := p.try(ctx, client, http.MethodHead, rawURL); decided {
		return ok
	}
	ok, _ := p.try(ctx, client, http.MethodGet, rawURL)
	return ok
}

// try returns (reachable, decided). decided is false when the server
// answered 405, in which case the caller should retry with GET.
func (p *HTTPProbe) try(ctx context.Context, client *http.Client, method, rawURL string) (bool, bool) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return false, true
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, true
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		return false, false
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 400, true
}

// DNSResolver answers A-record resolution via the stdlib resolver.
type DNSResolver struct {
	Resolver *net.Resolver
}

// NewDNSResolver creates a resolver using the system default.
func NewDNSResolver() *DNSResolver {
	return &DNSResolver{Resolver: net.DefaultResolver}
}

// ResolvesA implements gate.Resolver. Lookup failures and timeouts both
// mean "does not resolve".
func (r *DNSResolver) ResolvesA(ctx context.Context, domain string) bool {
	res := r.Resolver
	if res == nil {
		res = net.DefaultResolver
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	addrs, err := res.LookupIP(ctx, "ip4", domain)
	return err == nil && len(addrs) > 0
}
