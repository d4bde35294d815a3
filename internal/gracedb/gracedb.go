// Package gracedb is a client for the REST API of the gravitational-wave event database.
package gracedb

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hwinj/hwinj/internal/constants"
)

var (
	// ErrSendFailure is returned when a request could not be sent or was rejected by the server.
	ErrSendFailure = errors.New("event database request failed")
	// ErrInvalidResponse is returned when the server answers with an unexpected content.
	ErrInvalidResponse = errors.New("invalid response from event database")
)

const (
	// dryRunPrefix starts the identifiers of events created in dry run mode.
	dryRunPrefix = "dryrun-"

	// maxResponseSize is the largest response body decoded.
	maxResponseSize = 1 << 20
)

// Event is a new event to create.
type Event struct {
	Group    string
	Pipeline string
	// Instrument is the comma separated list of instruments involved.
	Instrument         string
	SourceChannel      string
	DestinationChannel string

	// FileName and Content are the event file attached to the event.
	FileName string
	Content  []byte
}

// Client sends requests to the event database.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	dryRun  bool
	log     *slog.Logger
}

type options struct {
	baseServerURL   string
	responseTimeout time.Duration
	certFile        string
	keyFile         string
	dryRun          bool
	logger          *slog.Logger
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithBaseServerURL sets the base URL of the REST API.
func WithBaseServerURL(u string) Options {
	return func(o *options) {
		o.baseServerURL = u
	}
}

// WithResponseTimeout sets how long to wait for the server to answer a request.
func WithResponseTimeout(d time.Duration) Options {
	return func(o *options) {
		o.responseTimeout = d
	}
}

// WithCertificate authenticates requests with the X.509 certificate and key in PEM files.
func WithCertificate(certFile, keyFile string) Options {
	return func(o *options) {
		o.certFile = certFile
		o.keyFile = keyFile
	}
}

// WithDryRun makes the client log requests instead of sending them.
func WithDryRun(dryRun bool) Options {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// WithLogger sets the logger of the client.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.logger = l
	}
}

// New returns a new Client.
func New(args ...Options) (*Client, error) {
	opts := options{
		baseServerURL:   constants.DefaultServerURL,
		responseTimeout: 30 * time.Second,
		logger:          slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	u, err := url.Parse(opts.baseServerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base server URL %s: %v", opts.baseServerURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base server URL %q must be absolute", opts.baseServerURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.certFile != "" || opts.keyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.certFile, opts.keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %v", err)
		}
		transport.TLSClientConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: opts.responseTimeout, Transport: transport},
		dryRun:  opts.dryRun,
		log:     opts.logger,
	}, nil
}

type createEventResponse struct {
	GraceID string `json:"graceid"`
}

// CreateEvent creates ev and returns the identifier assigned by the server.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (string, error) {
	if c.dryRun {
		id := dryRunPrefix + uuid.NewString()
		c.log.Info("Dry run, not creating event", "id", id, "group", ev.Group, "pipeline", ev.Pipeline, "instrument", ev.Instrument)
		return id, nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range []struct{ name, value string }{
		{"group", ev.Group},
		{"pipeline", ev.Pipeline},
		{"instrument", ev.Instrument},
		{"source_channel", ev.SourceChannel},
		{"destination_channel", ev.DestinationChannel},
	} {
		if err := w.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %v", f.name, err)
		}
	}
	part, err := w.CreateFormFile("eventFile", ev.FileName)
	if err != nil {
		return "", fmt.Errorf("failed to create event file part: %v", err)
	}
	if _, err := part.Write(ev.Content); err != nil {
		return "", fmt.Errorf("failed to write event file: %v", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %v", err)
	}

	var resp createEventResponse
	if err := c.send(ctx, http.MethodPost, c.endpoint(true, "events"), &body, w.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	if resp.GraceID == "" {
		return "", fmt.Errorf("%w: no event identifier", ErrInvalidResponse)
	}

	c.log.Info("Created event", "id", resp.GraceID, "group", ev.Group, "pipeline", ev.Pipeline)
	return resp.GraceID, nil
}

// WriteLog appends message to the log of event id, tagged with tag.
func (c *Client) WriteLog(ctx context.Context, id, message, tag string) error {
	if c.dryRun {
		c.log.Info("Dry run, not writing log message", "id", id, "message", message, "tag", tag)
		return nil
	}

	form := url.Values{}
	form.Set("comment", message)
	if tag != "" {
		form.Set("tagname", tag)
	}
	return c.send(ctx, http.MethodPost, c.endpoint(true, "events", id, "log"), strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
}

// AddLabel attaches label to event id.
func (c *Client) AddLabel(ctx context.Context, id, label string) error {
	if c.dryRun {
		c.log.Info("Dry run, not adding label", "id", id, "label", label)
		return nil
	}

	return c.send(ctx, http.MethodPut, c.endpoint(false, "events", id, "labels", label), nil, "", nil)
}

// endpoint returns the URL of the API path made of elems.
func (c *Client) endpoint(trailingSlash bool, elems ...string) string {
	u := c.baseURL.JoinPath(elems...)
	if trailingSlash && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// send sends a request and decodes the JSON answer into v when v is not nil.
func (c *Client) send(ctx context.Context, method, target string, body io.Reader, contentType string, v any) error {
	reqID := uuid.NewString()
	log := c.log.With("req_id", reqID)
	log.Debug("Sending request", "method", method, "url", target)

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrSendFailure, fmt.Errorf("failed to send HTTP request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Join(ErrSendFailure, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}
	log.Debug("Request succeeded", "status", resp.StatusCode)

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
