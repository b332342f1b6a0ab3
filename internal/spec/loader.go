package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/hashicorp/go-version"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs controls whether file refs are followed when an OpenAPI 3
	// document is downgraded. Always allowed when the root input is a local file.
	AllowFileRefs bool
	Logger        *zap.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
		Logger:      zap.NewNop(),
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option             { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option  { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option     { return func(s *Settings) { s.AllowFileRefs = allow } }
func WithLogger(logger *zap.Logger) Option    { return func(s *Settings) { s.Logger = logger } }

var (
	swaggerV2 = version.MustConstraints(version.NewConstraint("~> 2.0"))
	openAPIV3 = version.MustConstraints(version.NewConstraint("~> 3.0"))
)

// Load reads a Swagger 2.0 document from a file path or an http/https URL.
// OpenAPI 3.x input is downgraded to Swagger 2.0 first, so callers always
// get the same document model back.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = zap.NewNop()
	}

	raw, location, rootIsFile, err := readInput(ctx, input, settings)
	if err != nil {
		return nil, err
	}

	major, err := detectSpecVersion(raw)
	if err != nil {
		se := &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
		var ve *versionError
		if errors.As(err, &ve) {
			se.JSONPointer = ve.pointer
		}
		return nil, se
	}
	settings.Logger.Debug("spec version detected", zap.String("location", location), zap.Int("major", major))

	if major == 3 {
		base, _ := url.Parse(location)
		if rootIsFile {
			base = &url.URL{Path: location}
		}
		raw, err = convertV3(raw, base, newLoader(settings, rootIsFile))
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v3→v2: %v", err), Location: location, Cause: err}
		}
	}

	doc, err := decode(raw, settings.Logger)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
	}
	return doc, nil
}

// readInput classifies input as URL or file path and returns its bytes
// together with the resolved location.
func readInput(ctx context.Context, input string, settings Settings) ([]byte, string, bool, error) {
	u, uerr := url.Parse(input)
	isURL := uerr == nil && (u.Host != "" && u.Scheme != "" || strings.EqualFold(u.Scheme, "file"))
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, "", false, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, "", false, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, "", false, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, false, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, "", false, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", false, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, abs, true, nil
}

// Decode parses a Swagger 2.0 document from JSON or YAML bytes.
func Decode(data []byte) (*Document, error) {
	return decode(data, zap.NewNop())
}

func decode(data []byte, logger *zap.Logger) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if preprocessV2ForCompatibility(&root) {
		logger.Debug("rewrote v2 constructs for compatibility")
	}
	doc := &Document{}
	if len(root.Content) == 0 {
		return doc, nil
	}
	if err := root.Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		case "http", "https":
			req, err := http.NewRequest(http.MethodGet, uri.String(), nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func detectSpecVersion(data []byte) (int, error) {
	var head struct {
		Swagger string `yaml:"swagger"`
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if v, err := version.NewVersion(strings.TrimSpace(head.OpenAPI)); err == nil && openAPIV3.Check(v) {
		return 3, nil
	}
	if v, err := version.NewVersion(strings.TrimSpace(head.Swagger)); err == nil && swaggerV2.Check(v) {
		return 2, nil
	}
	ve := &versionError{pointer: "#/swagger", value: strings.TrimSpace(head.Swagger)}
	if strings.TrimSpace(head.OpenAPI) != "" {
		ve = &versionError{pointer: "#/openapi", value: strings.TrimSpace(head.OpenAPI)}
	}
	return 0, ve
}

// versionError points at the version field that was missing or unsupported.
type versionError struct {
	pointer string
	value   string
}

func (e *versionError) Error() string {
	if e.value == "" {
		return "spec: missing version (expected 'swagger: 2.0' or 'openapi: 3.x')"
	}
	return fmt.Sprintf("spec: unsupported version %q (expected 'swagger: 2.0' or 'openapi: 3.x')", e.value)
}

// convertV3 loads an OpenAPI 3 document, resolving external refs against
// base, and returns the equivalent Swagger 2.0 document as JSON.
func convertV3(data []byte, base *url.URL, loader *openapi3.Loader) ([]byte, error) {
	v3doc, err := loader.LoadFromDataWithPath(data, base)
	if err != nil {
		return nil, err
	}
	// FromV3 dereferences both without checking.
	if v3doc.Components == nil {
		v3doc.Components = &openapi3.Components{}
	}
	if v3doc.Info == nil {
		v3doc.Info = &openapi3.Info{}
	}
	v2doc, err := openapi2conv.FromV3(v3doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v2doc)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		settings.Logger.Warn("transient fetch failure, retrying",
			zap.String("url", rawURL), zap.Int("attempt", i+1), zap.Duration("backoff", backoff), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is
// transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err = io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
