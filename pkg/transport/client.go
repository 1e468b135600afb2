package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/security/tls"
	"github.com/esclient-go/esclient/pkg/telemetry/logging"
)

// Defaults applied when the connection arguments leave a field unset.
const (
	DefaultMaxRetries         = 3
	DefaultRequestTimeout     = 10 * time.Second
	DefaultConnectionsPerNode = 10
	DefaultBackoffMin         = 1 * time.Second
	DefaultBackoffMax         = 60 * time.Second
	DefaultMimetype           = "application/json"
)

// DefaultRetryOnStatus lists the statuses retried when retry_on_status is
// unset.
var DefaultRetryOnStatus = []int{429, 502, 503, 504}

// Client is an HTTP handle to a cluster.
type Client struct {
	hosts   []string
	http    *retryablehttp.Client
	headers http.Header
	logger  *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Retry attempts are logged under its
// "transport" child.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.headers.Set("User-Agent", ua)
	}
}

// New creates a Client from resolved connection arguments. Credential slots
// are read from args, so args must come from the builder's ConnectionArgs.
// When more than one credential is set the first of api_key, bearer_auth
// and basic_auth wins.
func New(args *config.ClientSettings, opts ...Option) (*Client, error) {
	if args == nil {
		return nil, clienterr.Configf("no connection arguments")
	}

	hosts, err := poolHosts(args)
	if err != nil {
		return nil, err
	}
	if config.Deref(args.RandomizeNodesInPool) {
		rand.Shuffle(len(hosts), func(i, j int) { hosts[i], hosts[j] = hosts[j], hosts[i] })
	}

	tlsConfig, err := tls.FromSettings(args).ToTLSConfig()
	if err != nil {
		return nil, clienterr.WrapConfig(err, "Unable to build TLS configuration")
	}

	perNode := DefaultConnectionsPerNode
	if args.ConnectionsPerNode != nil {
		perNode = *args.ConnectionsPerNode
	}
	compress := args.HTTPCompress != nil && *args.HTTPCompress

	c := &Client{
		hosts:   hosts,
		headers: make(http.Header),
		logger:  logging.NewNop(),
	}

	mimetype := DefaultMimetype
	if args.DefaultMimetype != nil && *args.DefaultMimetype != "" {
		mimetype = *args.DefaultMimetype
	}
	c.headers.Set("Accept", mimetype)
	c.headers.Set("Content-Type", mimetype)
	c.headers.Set("User-Agent", "esclient-go ("+runtime.GOOS+"; "+runtime.Version()+")")
	if args.MetaHeader == nil || *args.MetaHeader {
		c.headers.Set("X-Elastic-Client-Meta", "go="+strings.TrimPrefix(runtime.Version(), "go")+",t=rh")
	}
	for k, v := range args.Headers {
		c.headers.Set(k, v)
	}
	if args.OpaqueID != nil && *args.OpaqueID != "" {
		c.headers.Set("X-Opaque-Id", *args.OpaqueID)
	}
	if auth := authorization(args); auth != "" {
		c.headers.Set("Authorization", auth)
	}

	for _, opt := range opts {
		opt(c)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     tlsConfig,
			MaxIdleConnsPerHost: perNode,
			MaxConnsPerHost:     perNode,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  !compress,
			ForceAttemptHTTP2:   true,
		},
		Timeout: DefaultRequestTimeout,
	}
	if args.RequestTimeout != nil {
		rc.HTTPClient.Timeout = seconds(*args.RequestTimeout)
	}
	rc.RetryMax = DefaultMaxRetries
	if args.MaxRetries != nil {
		rc.RetryMax = *args.MaxRetries
	}
	rc.RetryWaitMin = DefaultBackoffMin
	if args.DeadNodeBackoffFactor != nil {
		rc.RetryWaitMin = seconds(*args.DeadNodeBackoffFactor)
	}
	rc.RetryWaitMax = DefaultBackoffMax
	if args.MaxDeadNodeBackoff != nil {
		rc.RetryWaitMax = seconds(*args.MaxDeadNodeBackoff)
	}
	if rc.RetryWaitMax < rc.RetryWaitMin {
		rc.RetryWaitMax = rc.RetryWaitMin
	}
	statuses := DefaultRetryOnStatus
	if args.RetryOnStatus != nil {
		statuses = args.RetryOnStatus
	}
	rc.CheckRetry = retryPolicy(statuses, config.Deref(args.RetryOnTimeout))
	rc.Logger = c.logger.Named("transport")
	c.http = rc

	return c, nil
}

func poolHosts(args *config.ClientSettings) ([]string, error) {
	if args.CloudID != nil && *args.CloudID != "" {
		host, err := DecodeCloudID(*args.CloudID)
		if err != nil {
			return nil, err
		}
		return []string{host}, nil
	}
	if len(args.Hosts) == 0 {
		return nil, clienterr.Configf("No hosts or cloud_id configured")
	}
	hosts := make([]string, len(args.Hosts))
	for i, h := range args.Hosts {
		hosts[i] = strings.TrimRight(h, "/")
	}
	return hosts, nil
}

func authorization(args *config.ClientSettings) string {
	switch {
	case len(args.APIKey) == 2:
		raw := args.APIKey[0] + ":" + args.APIKey[1]
		return "ApiKey " + base64.StdEncoding.EncodeToString([]byte(raw))
	case args.BearerAuth != nil && *args.BearerAuth != "":
		return "Bearer " + *args.BearerAuth
	case len(args.BasicAuth) == 2:
		raw := args.BasicAuth[0] + ":" + args.BasicAuth[1]
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
	}
	return ""
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// retryPolicy retries the listed statuses, timeouts when onTimeout is set,
// and the connection errors retryablehttp considers recoverable.
func retryPolicy(statuses []int, onTimeout bool) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			if isTimeout(err) {
				return onTimeout, nil
			}
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		for _, s := range statuses {
			if resp.StatusCode == s {
				return true, nil
			}
		}
		return false, nil
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Hosts returns the pool in the order it is tried.
func (c *Client) Hosts() []string {
	return append([]string(nil), c.hosts...)
}

// Version returns the version.number reported by the root endpoint.
func (c *Client) Version(ctx context.Context) (string, error) {
	var body struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := c.getJSON(ctx, "/", &body); err != nil {
		return "", err
	}
	if body.Version.Number == "" {
		return "", clienterr.Clientf("Unable to determine version: response carries no version.number")
	}
	return body.Version.Number, nil
}

// LocalNodeID returns the ID of the node answering the request.
func (c *Client) LocalNodeID(ctx context.Context) (string, error) {
	var body struct {
		Nodes map[string]json.RawMessage `json:"nodes"`
	}
	if err := c.getJSON(ctx, "/_nodes/_local", &body); err != nil {
		return "", err
	}
	for id := range body.Nodes {
		return id, nil
	}
	return "", clienterr.Clientf("Unable to determine local node ID")
}

// MasterNodeID returns the ID of the elected master node.
func (c *Client) MasterNodeID(ctx context.Context) (string, error) {
	var body struct {
		MasterNode string `json:"master_node"`
	}
	if err := c.getJSON(ctx, "/_cluster/state/master_node", &body); err != nil {
		return "", err
	}
	if body.MasterNode == "" {
		return "", clienterr.Clientf("Unable to determine master node ID")
	}
	return body.MasterNode, nil
}

// getJSON GETs path from the first host that answers and decodes a 2xx
// body into out. Hosts that fail at the connection level are skipped.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for _, host := range c.hosts {
		err := c.getFrom(logging.WithHost(ctx, host), host, path, out)
		if err == nil {
			return nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return err
		}
		c.logger.WarnContext(ctx, "host unreachable, trying next", "host", host, "error", err)
		lastErr = err
	}
	return clienterr.WrapClient(lastErr, "Unable to connect to any host")
}

func (c *Client) getFrom(ctx context.Context, host, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, host+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	c.logger.DebugContext(ctx, "sending request", "method", http.MethodGet, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Host: host, Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s%s: %w", host, path, err)
	}
	return nil
}

// StatusError is returned when a host answers with a non-2xx status.
type StatusError struct {
	Host       string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s%s returned HTTP %d: %s", e.Host, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == clienterr.ErrClient }
