package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bprateek14/video-generation-platform/internal/authgate"
	"github.com/bprateek14/video-generation-platform/internal/chat"
	"github.com/bprateek14/video-generation-platform/internal/generation"
	"github.com/bprateek14/video-generation-platform/internal/infra/credentials"
	"github.com/bprateek14/video-generation-platform/internal/kv"
	"github.com/bprateek14/video-generation-platform/internal/library"
	"github.com/bprateek14/video-generation-platform/internal/storage"
)

type stubGenerator struct {
	release chan struct{}
}

func (g *stubGenerator) Request(ctx context.Context, req generation.Request, onProgress generation.ProgressFunc) (*generation.Result, error) {
	if g.release != nil {
		<-g.release
	}
	return &generation.Result{Kind: generation.KindImage, Image: &generation.Image{Data: []byte{1}, MIMEType: "image/jpeg"}}, nil
}

type testEnv struct {
	app      *App
	router   http.Handler
	gen      *stubGenerator
	selected int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := kv.NewMemory()
	lib := library.New(store, library.Settings{}, nil)
	gen := &stubGenerator{}
	svc, err := chat.New(context.Background(), chat.Options{Library: lib, Generator: gen})
	if err != nil {
		t.Fatalf("chat.New: %v", err)
	}
	media, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	creds := credentials.NewStore(store)
	env := &testEnv{gen: gen}
	host := credentials.NewHost(credentials.NewResolver(creds, lib, ""), func(context.Context) error {
		env.selected++
		return nil
	})
	env.app = &App{
		Chat:        svc,
		Library:     lib,
		Credentials: creds,
		Host:        host,
		Gate:        authgate.New(host, nil, nil),
		Media:       media,
	}
	env.router = env.routes()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Wait(ctx)
	})
	return env
}

// routes mirrors the production route table without the middleware stack.
func (e *testEnv) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/healthz", e.app.Health)
	r.Post("/v1/generations", e.app.CreateGeneration)
	r.Get("/v1/history", e.app.History)
	r.Delete("/v1/history", e.app.ClearHistory)
	r.Get("/v1/history/generated", e.app.GeneratedHistory)
	r.Get("/v1/dashboard", e.app.Dashboard)
	r.Get("/v1/settings", e.app.GetSettings)
	r.Put("/v1/settings", e.app.PutSettings)
	r.Get("/v1/credentials/status", e.app.CredentialStatus)
	r.Put("/v1/credentials", e.app.PutCredential)
	r.Delete("/v1/credentials", e.app.DeleteCredential)
	r.Post("/v1/credentials/select", e.app.OpenSelector)
	r.Get("/v1/assets/*", e.app.DownloadAsset)
	return r
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/v1/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateGeneration(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/generations", `{"kind":"image","prompt":"a red cube"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User library.Message `json:"user"`
		Bot  library.Message `json:"bot"`
	}
	decodeBody(t, rec, &resp)
	if resp.User.Text != "a red cube" || resp.Bot.Text != "Generating image..." || !resp.Bot.IsLoading {
		t.Fatalf("unexpected messages: %#v", resp)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = env.app.Chat.Wait(ctx)

	rec = env.do(t, http.MethodGet, "/v1/history/generated", "")
	var generated struct {
		Items []chat.GeneratedItem `json:"items"`
	}
	decodeBody(t, rec, &generated)
	if len(generated.Items) != 1 || generated.Items[0].Prompt != "a red cube" {
		t.Fatalf("unexpected generated items: %#v", generated)
	}
}

func TestCreateGenerationValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		body string
		code string
	}{
		{`{"kind":"gif","prompt":"p"}`, "invalid_kind"},
		{`{"kind":"image","prompt":"  "}`, "empty_prompt"},
		{`not json`, "bad_request"},
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodPost, "/v1/generations", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.body, rec.Code)
		}
		var body errorBody
		decodeBody(t, rec, &body)
		if body.Error.Code != tc.code {
			t.Fatalf("%s: expected code %s, got %s", tc.body, tc.code, body.Error.Code)
		}
	}
}

func TestCreateGenerationBusy(t *testing.T) {
	env := newTestEnv(t)
	env.gen.release = make(chan struct{})

	if rec := env.do(t, http.MethodPost, "/v1/generations", `{"kind":"image","prompt":"one"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/v1/generations", `{"kind":"video","prompt":"two"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/v1/history", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 clearing while busy, got %d", rec.Code)
	}
	close(env.gen.release)
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/settings", "")
	var got struct {
		Settings  library.Settings   `json:"settings"`
		Providers []library.Provider `json:"providers"`
	}
	decodeBody(t, rec, &got)
	if got.Settings.Provider != library.ProviderGoogle || len(got.Providers) != 6 {
		t.Fatalf("unexpected settings: %#v", got)
	}

	rec = env.do(t, http.MethodPut, "/v1/settings", `{"provider":"Replicate","apiKey":"r8","imageModel":"sdxl"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/v1/settings", `{"provider":"Nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/v1/dashboard", "")
	var stats chat.Stats
	decodeBody(t, rec, &stats)
	if stats.Provider != "Replicate" || stats.ImageModel != "sdxl" || stats.TotalCost != "0.00" {
		t.Fatalf("unexpected dashboard: %#v", stats)
	}
}

func TestCredentialEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var status map[string]bool
	decodeBody(t, env.do(t, http.MethodGet, "/v1/credentials/status", ""), &status)
	if status["has_key"] || status["authorized"] {
		t.Fatalf("unexpected initial status: %v", status)
	}

	if rec := env.do(t, http.MethodPut, "/v1/credentials", `{"api_key":" "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty key, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, "/v1/credentials", `{"api_key":"AIza-test"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !env.app.Gate.EnsureAuthorized(context.Background()) {
		t.Fatal("expected gate to pick up stored key")
	}

	if rec := env.do(t, http.MethodPost, "/v1/credentials/select", ""); rec.Code != http.StatusAccepted || env.selected != 1 {
		t.Fatalf("selector not opened: %d %d", rec.Code, env.selected)
	}

	if rec := env.do(t, http.MethodDelete, "/v1/credentials", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if env.app.Gate.Authorized() {
		t.Fatal("expected gate invalidated after key removal")
	}
}

func TestDownloadAsset(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.Media.Put(context.Background(), "generated/videos/a.mp4", "video/mp4", bytes.NewReader([]byte("mp4"))); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/v1/assets/generated/videos/a.mp4", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "mp4" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Fatalf("unexpected content type %q", ct)
	}

	if rec := env.do(t, http.MethodGet, "/v1/assets/generated/videos/missing.mp4", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
