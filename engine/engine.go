package engine

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/antmrlt/API64/artifact"
	"github.com/antmrlt/API64/core"
	"github.com/antmrlt/API64/digest"
	"github.com/antmrlt/API64/logging"
	"github.com/antmrlt/API64/mimetype"
	"github.com/antmrlt/API64/naming"
	"github.com/antmrlt/API64/payload"
)

const tracerName = "github.com/antmrlt/API64/engine"

// Config defines the operational parameters of an Engine.
type Config struct {
	// APIKey is the shared secret ingestion callers must present. An empty
	// key rejects every ingestion call.
	APIKey string

	// IOTimeout bounds the storage and digest I/O of one ingestion call.
	// Zero disables the deadline.
	IOTimeout time.Duration
}

// Options configures an Engine instance using the functional options pattern.
//
// Example:
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Config.APIKey = cfg.APIKey
//	    o.Store = diskStore
//	    o.URLFor = cfg.FileURL
//	    o.Logger = logger
//	})
type Options struct {
	// Config contains the shared secret and deadlines.
	Config Config

	// Store persists artifacts. Defaults to an in-memory store.
	Store core.ArtifactStore

	// Resolver maps declared media types to extensions. Defaults to a
	// resolver over mimetype.DefaultTable.
	Resolver *mimetype.Resolver

	// Names generates artifact names. Defaults to naming.New().
	Names *naming.Generator

	// URLFor builds the public retrieval URL of an artifact. Defaults to a
	// host-relative "/uploads/<name>".
	URLFor func(name string) string

	// Logger receives one entry per call. Defaults to NoOp logger if nil.
	Logger logging.Logger

	// Callbacks run after every call.
	Callbacks []Callback

	// Tracer creates the per-call spans. Defaults to the global provider.
	Tracer trace.Tracer
}

// Engine orchestrates ingestion and retrieval of artifacts. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	config    Config
	store     core.ArtifactStore
	resolver  *mimetype.Resolver
	names     *naming.Generator
	urlFor    func(name string) string
	logger    logging.Logger
	callbacks *CallbackManager
	tracer    trace.Tracer
}

// New creates a new Engine with sensible defaults and optional configuration.
//
// The Engine does not take ownership of the provided store; callers remain
// responsible for its lifecycle.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Store:    artifact.NewInMemoryStore(),
		Resolver: mimetype.NewResolver(nil),
		Names:    naming.New(),
		URLFor:   func(name string) string { return "/uploads/" + url.PathEscape(name) },
		Logger:   logging.NoOpLogger{},
		Tracer:   otel.Tracer(tracerName),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	callbacks := NewCallbackManager()
	for _, cb := range opts.Callbacks {
		callbacks.RegisterCallback(cb)
	}

	return &Engine{
		config:    opts.Config,
		store:     opts.Store,
		resolver:  opts.Resolver,
		names:     opts.Names,
		urlFor:    opts.URLFor,
		logger:    opts.Logger,
		callbacks: callbacks,
		tracer:    opts.Tracer,
	}
}

// Resolver returns the media type resolver used by the engine.
func (e *Engine) Resolver() *mimetype.Resolver {
	return e.resolver
}

// Authenticate checks credential against the shared secret. The comparison
// runs in constant time; an empty credential or an unset secret never
// matches.
func (e *Engine) Authenticate(credential string) error {
	if credential == "" || e.config.APIKey == "" {
		return core.ErrAuth
	}
	if subtle.ConstantTimeCompare([]byte(credential), []byte(e.config.APIKey)) != 1 {
		return core.ErrAuth
	}
	return nil
}

// Ingest decodes, names and stores one artifact.
//
// Errors wrap one of the core error kinds: ErrAuth, ErrValidation and
// ErrDecode are caused by the caller and nothing has been written; ErrStorage
// means the write failed and nothing is visible; ErrDigest means the artifact
// was stored but its digest could not be computed. The call is still
// reported as failed.
func (e *Engine) Ingest(ctx context.Context, credential string, req core.IngestionRequest) (res *core.IngestionResult, err error) {
	var (
		start = time.Now()
		name  string
		ext   string
		size  int64
	)

	ctx, span := e.tracer.Start(ctx, "api64.ingest", trace.WithAttributes(
		attribute.String("api64.content_type", req.ContentType),
		attribute.Bool("api64.want_digest", req.WantDigest),
	))
	defer func() {
		dur := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("api64.artifact", name), attribute.Int64("api64.size", size))
		}
		span.End()

		logging.LogIngestion(logging.ForContext(ctx, e.logger), name, req.ContentType, size, dur, err)
		e.afterCall(ctx, &CallbackContext{
			CallbackType: CallbackAfterIngest,
			Name:         name,
			ContentType:  req.ContentType,
			Extension:    ext,
			Size:         size,
			Duration:     dur,
			Err:          err,
		})
	}()

	if err := e.Authenticate(credential); err != nil {
		return nil, err
	}
	ext = e.resolver.Extension(req.ContentType)

	data, err := payload.Decode(req.EncodedPayload)
	if err != nil {
		return nil, err
	}

	generated, err := e.names.Generate(ext)
	if err != nil {
		return nil, fmt.Errorf("generating artifact name: %w", err)
	}

	ioCtx := ctx
	if e.config.IOTimeout > 0 {
		var cancel context.CancelFunc
		ioCtx, cancel = context.WithTimeout(ctx, e.config.IOTimeout)
		defer cancel()
	}

	stored, err := e.store.Save(ioCtx, generated, data)
	if err != nil {
		if errors.Is(err, core.ErrInvalidName) {
			return nil, fmt.Errorf("%w: content type %q yields an unusable file name: %w", core.ErrValidation, req.ContentType, err)
		}
		return nil, err
	}
	name, size = stored.Name, stored.Size

	res = &core.IngestionResult{
		Name: name,
		URL:  e.urlFor(name),
		Size: size,
	}

	if req.WantDigest {
		sum, err := digest.Compute(ioCtx, e.store, name)
		if err != nil {
			return nil, err
		}
		res.SHA256 = sum
	}

	return res, nil
}

// Retrieve opens the named artifact for reading. The caller must close the
// returned file. Errors wrap core.ErrInvalidName or core.ErrNotFound when the
// name does not address a stored artifact.
func (e *Engine) Retrieve(ctx context.Context, name string) (f core.ArtifactFile, err error) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "api64.retrieve", trace.WithAttributes(
		attribute.String("api64.artifact", name),
	))
	defer func() {
		var size int64
		if f != nil {
			size = f.Size()
		}
		dur := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		logging.LogRetrieval(logging.ForContext(ctx, e.logger), name, size, dur, err)
		e.afterCall(ctx, &CallbackContext{
			CallbackType: CallbackAfterRetrieve,
			Name:         name,
			Size:         size,
			Duration:     dur,
			Err:          err,
		})
	}()

	if err := core.ValidateName(name); err != nil {
		return nil, err
	}
	return e.store.Open(ctx, name)
}

func (e *Engine) afterCall(ctx context.Context, callbackCtx *CallbackContext) {
	if err := e.callbacks.ExecuteCallbacks(ctx, callbackCtx.CallbackType, callbackCtx); err != nil {
		logging.ForContext(ctx, e.logger).Warn("callback failed", "callback", string(callbackCtx.CallbackType), "error", err.Error())
	}
}
