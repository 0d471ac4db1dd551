package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bprateek14/video-generation-platform/internal/infra"
)

// DefaultPollInterval is the wait between video status queries.
const DefaultPollInterval = 10 * time.Second

const (
	progressInitializing = "Initializing video generation..."
	progressInProgress   = "Generation in progress... This may take a few minutes."
	progressPolling      = "Processing... [Polling %d] This may take a few minutes."
	progressFinalizing   = "Finalizing video..."
)

var errMissingJob = errors.New("generation: service returned no video job")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures an Orchestrator.
type Options struct {
	Service      Service
	Gate         Authorizer
	Media        MediaStore
	PollInterval time.Duration
	Sleep        Sleeper
	Logger       *infra.Logger
}

// Orchestrator drives generation requests to completion. It holds no per-request
// state and is safe for concurrent use.
type Orchestrator struct {
	service      Service
	gate         Authorizer
	media        MediaStore
	pollInterval time.Duration
	sleep        Sleeper
	logger       *infra.Logger
}

// NewOrchestrator validates opts and applies defaults.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Service == nil {
		return nil, errors.New("generation: service is required")
	}
	if opts.Gate == nil {
		return nil, errors.New("generation: gate is required")
	}
	if opts.Media == nil {
		return nil, errors.New("generation: media store is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Logger == nil {
		opts.Logger = infra.NopLogger()
	}
	return &Orchestrator{
		service:      opts.Service,
		gate:         opts.Gate,
		media:        opts.Media,
		pollInterval: opts.PollInterval,
		sleep:        opts.Sleep,
		logger:       opts.Logger,
	}, nil
}

// Request runs req to completion. Failures are returned as *Error, except for
// malformed requests which wrap ErrInvalidRequest. onProgress may be nil.
func (o *Orchestrator) Request(ctx context.Context, req Request, onProgress ProgressFunc) (*Result, error) {
	if req.Prompt == "" || req.Model == "" {
		return nil, fmt.Errorf("%w: prompt and model are required", ErrInvalidRequest)
	}
	if onProgress == nil {
		onProgress = func(string) {}
	}

	switch req.Kind {
	case KindImage:
		return o.generateImage(ctx, req)
	case KindVideo:
		return o.generateVideo(ctx, req, onProgress)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
}

func (o *Orchestrator) generateImage(ctx context.Context, req Request) (*Result, error) {
	img, err := o.service.GenerateImage(ctx, ImageSpec{
		Model:          req.Model,
		Prompt:         req.Prompt,
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "1:1",
	})
	if err != nil {
		o.logger.Error().Err(err).Str("model", req.Model).Msg("generation: image request failed")
		return nil, unknown(err)
	}
	if img == nil || len(img.Data) == 0 {
		return nil, emptyResult(msgNoImageData)
	}
	if img.MIMEType == "" {
		img.MIMEType = "image/jpeg"
	}
	return &Result{Kind: KindImage, Image: img}, nil
}

func (o *Orchestrator) generateVideo(ctx context.Context, req Request, onProgress ProgressFunc) (*Result, error) {
	if !o.gate.EnsureAuthorized(ctx) {
		return nil, authorizationRequired()
	}

	onProgress(progressInitializing)
	job, err := o.service.SubmitVideo(ctx, VideoSpec{
		Model:          req.Model,
		Prompt:         req.Prompt,
		NumberOfVideos: 1,
		Resolution:     "720p",
		AspectRatio:    "16:9",
	})
	if err != nil {
		return nil, o.remoteFailure(err, req.Model)
	}
	if job == nil {
		return nil, unknown(errMissingJob)
	}

	log := o.logger.With().Str("model", req.Model).Str("job", job.Name).Logger()
	log.Debug().Msg("generation: video job submitted")

	if !job.Done {
		onProgress(progressInProgress)
	}
	attempt := 0
	for !job.Done {
		attempt++
		onProgress(fmt.Sprintf(progressPolling, attempt))
		if err := o.sleep(ctx, o.pollInterval); err != nil {
			return nil, unknown(err)
		}
		next, err := o.service.PollVideo(ctx, job)
		if err != nil {
			return nil, o.remoteFailure(err, req.Model)
		}
		if next == nil {
			return nil, unknown(errMissingJob)
		}
		job = next
		log.Debug().Int("attempt", attempt).Bool("done", job.Done).Msg("generation: video job polled")
	}

	onProgress(progressFinalizing)
	if job.VideoURI == "" {
		return nil, emptyResult(msgNoVideoLink)
	}

	video, err := o.materialize(ctx, job)
	if err != nil {
		log.Error().Err(err).Msg("generation: video download failed")
		return nil, err
	}
	log.Info().Str("key", video.Key).Int64("size", video.Size).Msg("generation: video ready")
	return &Result{Kind: KindVideo, Video: video}, nil
}

// remoteFailure maps a submission or polling error onto the error taxonomy,
// clearing the gate when the credential was rejected.
func (o *Orchestrator) remoteFailure(err error, model string) *Error {
	if credentialRejected(err) {
		o.logger.Warn().Err(err).Str("model", model).Msg("generation: credential rejected")
		o.gate.Invalidate()
		return invalidCredential(err)
	}
	o.logger.Error().Err(err).Str("model", model).Msg("generation: video request failed")
	return unknown(err)
}

func (o *Orchestrator) materialize(ctx context.Context, job *Job) (*Video, error) {
	asset, err := o.service.FetchAsset(ctx, job.VideoURI)
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return nil, fetchFailed(svcErr.StatusText(), err)
		}
		return nil, fetchFailed(err.Error(), err)
	}
	defer asset.Body.Close()

	mime := firstNonEmpty(asset.MIMEType, job.MIMEType, "video/mp4")
	key := "generated/videos/" + uuid.NewString() + ".mp4"
	size, err := o.media.Put(ctx, key, mime, asset.Body)
	if err != nil {
		return nil, fetchFailed(err.Error(), err)
	}
	return &Video{Key: key, MIMEType: mime, Size: size, media: o.media}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
