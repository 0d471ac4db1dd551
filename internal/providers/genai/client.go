package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sdk "google.golang.org/genai"

	"github.com/bprateek14/video-generation-platform/internal/generation"
	"github.com/bprateek14/video-generation-platform/internal/infra"
)

// KeySource yields the API key to use for the next call. Keys may change at
// runtime when the user selects a new one, so they are never cached here.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticKey is a KeySource backed by a fixed key.
type StaticKey string

func (k StaticKey) APIKey(context.Context) (string, error) {
	return strings.TrimSpace(string(k)), nil
}

// Options controls how the Gemini client is configured.
type Options struct {
	Keys       KeySource
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client implements generation.Service against the Gemini API: Imagen for
// images and Veo long-running operations for videos.
type Client struct {
	keys       KeySource
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger

	// connect builds the SDK surface for a key; swapped in tests.
	connect func(ctx context.Context, apiKey string) (api, error)
}

// api is the subset of the SDK used by Client.
type api interface {
	GenerateImages(ctx context.Context, model, prompt string, cfg *sdk.GenerateImagesConfig) (*sdk.GenerateImagesResponse, error)
	GenerateVideos(ctx context.Context, model, prompt string, cfg *sdk.GenerateVideosConfig) (*sdk.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *sdk.GenerateVideosOperation) (*sdk.GenerateVideosOperation, error)
}

var _ generation.Service = (*Client)(nil)

// NewClient constructs a Gemini client. Callers may provide a nil HTTP client;
// a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	if opts.Keys == nil {
		return nil, errors.New("genai: key source is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	c := &Client{
		keys:       opts.Keys,
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient: client,
		logger:     logger,
	}
	c.connect = c.newSDK
	return c, nil
}

func (c *Client) newSDK(ctx context.Context, apiKey string) (api, error) {
	cfg := &sdk.ClientConfig{
		APIKey:     apiKey,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = sdk.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := sdk.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	return sdkAPI{client: client}, nil
}

// session resolves the active key and opens an SDK client for it.
func (c *Client) session(ctx context.Context) (api, string, error) {
	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("genai: resolve api key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, "", &generation.ServiceError{
			HTTPStatus: http.StatusUnauthorized,
			Status:     "UNAUTHENTICATED",
			Message:    "no API key configured",
		}
	}
	conn, err := c.connect(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return conn, key, nil
}

// GenerateImage requests a single image. A response without image bytes
// yields (nil, nil).
func (c *Client) GenerateImage(ctx context.Context, spec generation.ImageSpec) (*generation.Image, error) {
	conn, _, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := conn.GenerateImages(ctx, spec.Model, spec.Prompt, &sdk.GenerateImagesConfig{
		NumberOfImages: int32(spec.NumberOfImages),
		OutputMIMEType: spec.OutputMIMEType,
		AspectRatio:    spec.AspectRatio,
	})
	if err != nil {
		return nil, toServiceError(err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		c.logger.Warn().Str("model", spec.Model).Msg("genai: image response carried no images")
		return nil, nil
	}
	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		return nil, nil
	}

	c.logger.Debug().
		Str("model", spec.Model).
		Int("bytes", len(generated.Image.ImageBytes)).
		Msg("genai: generated image")

	return &generation.Image{
		Data:     generated.Image.ImageBytes,
		MIMEType: firstNonEmpty(generated.Image.MIMEType, spec.OutputMIMEType),
	}, nil
}

// SubmitVideo starts a Veo long-running operation.
func (c *Client) SubmitVideo(ctx context.Context, spec generation.VideoSpec) (*generation.Job, error) {
	conn, _, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	op, err := conn.GenerateVideos(ctx, spec.Model, spec.Prompt, &sdk.GenerateVideosConfig{
		NumberOfVideos: int32(spec.NumberOfVideos),
		Resolution:     spec.Resolution,
		AspectRatio:    spec.AspectRatio,
	})
	if err != nil {
		return nil, toServiceError(err)
	}

	c.logger.Debug().Str("model", spec.Model).Str("operation", op.Name).Msg("genai: video operation started")
	return jobFromOperation(op)
}

// PollVideo refreshes the state of a running operation.
func (c *Client) PollVideo(ctx context.Context, job *generation.Job) (*generation.Job, error) {
	if job == nil || job.Name == "" {
		return nil, errors.New("genai: operation name is required")
	}
	conn, _, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	op, err := conn.GetVideosOperation(ctx, &sdk.GenerateVideosOperation{Name: job.Name})
	if err != nil {
		return nil, toServiceError(err)
	}
	return jobFromOperation(op)
}

// FetchAsset downloads a generated file. The file endpoint requires the same
// key used to generate it.
func (c *Client) FetchAsset(ctx context.Context, uri string) (*generation.Asset, error) {
	_, key, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		if c.baseURL == "" {
			return nil, fmt.Errorf("genai: relative file uri %q without base url", uri)
		}
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: create download request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", key)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: download file: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &generation.ServiceError{
			HTTPStatus: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
	}

	return &generation.Asset{
		Body:     resp.Body,
		MIMEType: resp.Header.Get("Content-Type"),
	}, nil
}

// jobFromOperation converts an SDK operation, surfacing a finished operation's
// error as a ServiceError.
func jobFromOperation(op *sdk.GenerateVideosOperation) (*generation.Job, error) {
	if op == nil {
		return nil, errors.New("genai: empty operation")
	}
	if op.Done && len(op.Error) > 0 {
		return nil, operationError(op.Error)
	}
	job := &generation.Job{Name: op.Name, Done: op.Done}
	if op.Response != nil && len(op.Response.GeneratedVideos) > 0 {
		if v := op.Response.GeneratedVideos[0]; v != nil && v.Video != nil {
			job.VideoURI = v.Video.URI
			job.MIMEType = v.Video.MIMEType
		}
	}
	return job, nil
}

// grpcStatus maps google.rpc.Code values to their HTTP and canonical names.
var grpcStatus = map[int]struct {
	http int
	name string
}{
	3:  {http.StatusBadRequest, "INVALID_ARGUMENT"},
	5:  {http.StatusNotFound, "NOT_FOUND"},
	7:  {http.StatusForbidden, "PERMISSION_DENIED"},
	8:  {http.StatusTooManyRequests, "RESOURCE_EXHAUSTED"},
	13: {http.StatusInternalServerError, "INTERNAL"},
	14: {http.StatusServiceUnavailable, "UNAVAILABLE"},
	16: {http.StatusUnauthorized, "UNAUTHENTICATED"},
}

func operationError(raw map[string]any) *generation.ServiceError {
	svcErr := &generation.ServiceError{}
	if msg, ok := raw["message"].(string); ok {
		svcErr.Message = msg
	}
	var code int
	switch v := raw["code"].(type) {
	case float64:
		code = int(v)
	case int:
		code = v
	case int32:
		code = int(v)
	case int64:
		code = int(v)
	}
	if st, ok := grpcStatus[code]; ok {
		svcErr.HTTPStatus = st.http
		svcErr.Status = st.name
	}
	if svcErr.Message == "" {
		svcErr.Message = "video operation failed"
	}
	return svcErr
}

// toServiceError translates SDK API errors into generation.ServiceError so the
// orchestrator can classify them without string matching.
func toServiceError(err error) error {
	var apiErr sdk.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *sdk.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return err
		}
		apiErr = *apiErrPtr
	}
	return &generation.ServiceError{
		HTTPStatus: apiErr.Code,
		Status:     apiErr.Status,
		Reason:     errorReason(apiErr.Details),
		Message:    apiErr.Message,
	}
}

// errorReason pulls the ErrorInfo reason out of google.rpc.Status details.
func errorReason(details []map[string]any) string {
	for _, d := range details {
		if reason, ok := d["reason"].(string); ok && reason != "" {
			return reason
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type sdkAPI struct {
	client *sdk.Client
}

func (s sdkAPI) GenerateImages(ctx context.Context, model, prompt string, cfg *sdk.GenerateImagesConfig) (*sdk.GenerateImagesResponse, error) {
	return s.client.Models.GenerateImages(ctx, model, prompt, cfg)
}

func (s sdkAPI) GenerateVideos(ctx context.Context, model, prompt string, cfg *sdk.GenerateVideosConfig) (*sdk.GenerateVideosOperation, error) {
	return s.client.Models.GenerateVideos(ctx, model, prompt, nil, cfg)
}

func (s sdkAPI) GetVideosOperation(ctx context.Context, op *sdk.GenerateVideosOperation) (*sdk.GenerateVideosOperation, error) {
	return s.client.Operations.GetVideosOperation(ctx, op, nil)
}
