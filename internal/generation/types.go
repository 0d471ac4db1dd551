// Package generation drives image and video generation requests against a
// remote service and reports their progress.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind selects the generation path.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ErrInvalidRequest reports a request that fails preconditions before any
// generation work starts.
var ErrInvalidRequest = errors.New("generation: invalid request")

// ParseKind maps a user supplied string onto a Kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindImage:
		return KindImage, nil
	case KindVideo:
		return KindVideo, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, raw)
}

// Request is a single generation request. It is passed by value and never
// mutated once submitted.
type Request struct {
	Kind   Kind
	Prompt string
	Model  string
}

// NewRequest validates and normalizes the inputs of a request.
func NewRequest(kind Kind, prompt, model string) (Request, error) {
	if kind != KindImage && kind != KindVideo {
		return Request{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, kind)
	}
	prompt = norm.NFC.String(strings.TrimSpace(prompt))
	if prompt == "" {
		return Request{}, fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return Request{}, fmt.Errorf("%w: model is required", ErrInvalidRequest)
	}
	return Request{Kind: kind, Prompt: prompt, Model: model}, nil
}

// ProgressFunc receives human readable status updates. It is called on the
// goroutine running the request, never after Request returns.
type ProgressFunc func(message string)

// Image is an inline image payload.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL renders the image as a self-contained data URL.
func (i *Image) DataURL() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Video references generated video bytes kept in a MediaStore.
type Video struct {
	Key      string
	MIMEType string
	Size     int64

	media MediaStore
}

// Open returns a stream over the materialized video bytes.
func (v *Video) Open(ctx context.Context) (io.ReadCloser, error) {
	if v.media == nil {
		return nil, errors.New("generation: video has no backing store")
	}
	return v.media.Open(ctx, v.Key)
}

// Result is the successful outcome of a request. Exactly one of Image or Video
// is set, matching Kind.
type Result struct {
	Kind  Kind
	Image *Image
	Video *Video
}

// ImageSpec is the submission sent for an image request.
type ImageSpec struct {
	Model          string
	Prompt         string
	NumberOfImages int
	OutputMIMEType string
	AspectRatio    string
}

// VideoSpec is the submission sent for a video request.
type VideoSpec struct {
	Model          string
	Prompt         string
	NumberOfVideos int
	Resolution     string
	AspectRatio    string
}

// Job is the remote handle of a long-running video generation.
type Job struct {
	Name     string
	Done     bool
	VideoURI string
	MIMEType string
}

// Asset is a downloaded remote file. Callers must close Body.
type Asset struct {
	Body     io.ReadCloser
	MIMEType string
}

// Service is the remote generation API.
type Service interface {
	GenerateImage(ctx context.Context, spec ImageSpec) (*Image, error)
	SubmitVideo(ctx context.Context, spec VideoSpec) (*Job, error)
	PollVideo(ctx context.Context, job *Job) (*Job, error)
	FetchAsset(ctx context.Context, uri string) (*Asset, error)
}

// MediaStore keeps generated media addressable by key.
type MediaStore interface {
	Put(ctx context.Context, key, mimeType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Authorizer is the credential gate consulted before video submission.
type Authorizer interface {
	EnsureAuthorized(ctx context.Context) bool
	Invalidate()
}
