package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bprateek14/video-generation-platform/internal/http/handlers"
	"github.com/bprateek14/video-generation-platform/internal/infra"
	"github.com/bprateek14/video-generation-platform/internal/middleware"
)

// Options wires optional pieces of the router.
type Options struct {
	Logger      *infra.Logger
	CORSOrigins []string
	// Stream serves the websocket event stream; omitted when nil.
	Stream http.Handler
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*logger),
		middleware.CORS(opts.CORSOrigins),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Post("/generations", app.CreateGeneration)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", app.History)
			r.Delete("/", app.ClearHistory)
			r.Get("/generated", app.GeneratedHistory)
		})

		r.Get("/dashboard", app.Dashboard)

		r.Get("/settings", app.GetSettings)
		r.Put("/settings", app.PutSettings)

		r.Route("/credentials", func(r chi.Router) {
			r.Get("/status", app.CredentialStatus)
			r.Put("/", app.PutCredential)
			r.Delete("/", app.DeleteCredential)
			r.Post("/select", app.OpenSelector)
		})

		r.Get("/assets/*", app.DownloadAsset)

		if opts.Stream != nil {
			r.Handle("/stream", opts.Stream)
		}
	})

	return r
}
