package runtime

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	coreerrors "shellchain/core/errors"
	"shellchain/core/events"
	"shellchain/core/state"
	"shellchain/core/types"
	"shellchain/crypto"
	"shellchain/native/bank"
	"shellchain/native/incubation"
	"shellchain/native/nft"
	"shellchain/native/world"
	"shellchain/observability"
	"shellchain/observability/logging"
	"shellchain/observability/metrics"
	telemetry "shellchain/observability/otel"
	"shellchain/storage"
)

// TokenRegistry is the union of the registry capabilities the engines need.
type TokenRegistry interface {
	world.TokenRegistry
	AddResource(collection, nft uint32, src string) (uint32, error)
	AcceptResource(collection, nft, resource uint32) error
}

// RecordSink receives every committed event after it has been sequenced.
type RecordSink interface {
	Append(rec events.Record) error
}

// Config carries the engine parameters of a runtime.
type Config struct {
	World              world.Params
	Incubation         incubation.Params
	ExistentialDeposit *uint256.Int
}

// DefaultConfig returns production parameters.
func DefaultConfig() Config {
	return Config{
		World:              world.DefaultParams(),
		Incubation:         incubation.DefaultParams(),
		ExistentialDeposit: uint256.NewInt(1),
	}
}

// Option customises a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for call outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics replaces the process wide metrics set.
func WithMetrics(m *metrics.WorldMetrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// WithClock overrides the unix-seconds clock shared by every engine.
func WithClock(now func() int64) Option {
	return func(r *Runtime) {
		if now != nil {
			r.nowFn = now
		}
	}
}

// WithEmitter adds a downstream emitter that receives committed events.
func WithEmitter(emitter events.Emitter) Option {
	return func(r *Runtime) {
		if emitter != nil {
			r.downstream = append(r.downstream, emitter)
		}
	}
}

// WithRecordSink archives every committed record.
func WithRecordSink(sink RecordSink) Option {
	return func(r *Runtime) { r.sink = sink }
}

// WithTokenRegistry wraps the state-backed registry, for instance to inject
// faults in tests.
func WithTokenRegistry(wrap func(*nft.Registry) TokenRegistry) Option {
	return func(r *Runtime) { r.wrapRegistry = wrap }
}

// Runtime serialises every call against the shared world state. Each call
// either commits all of its writes and events or none of them.
type Runtime struct {
	mu sync.Mutex

	db         storage.Database
	state      *state.Manager
	nfts       *nft.Registry
	registry   TokenRegistry
	ledger     *bank.Ledger
	world      *world.Engine
	incubation *incubation.Engine

	buffer     *events.Buffer
	hub        *events.Hub
	downstream events.MultiEmitter
	sink       RecordSink

	logger       *slog.Logger
	metrics      *metrics.WorldMetrics
	tracer       trace.Tracer
	nowFn        func() int64
	wrapRegistry func(*nft.Registry) TokenRegistry
}

// New wires the engines on top of db.
func New(db storage.Database, cfg Config, opts ...Option) (*Runtime, error) {
	if db == nil {
		return nil, errors.New("runtime: nil database")
	}
	if err := cfg.World.Validate(); err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}
	r := &Runtime{
		db:     db,
		state:  state.NewManager(db),
		buffer: &events.Buffer{},
		hub:    events.NewHub(),
		logger: logging.Discard(),
		tracer: telemetry.Tracer(),
		nowFn:  func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.World()
	}
	existential := cfg.ExistentialDeposit
	if existential == nil {
		existential = uint256.NewInt(0)
	}

	r.nfts = nft.NewRegistry(r.state)
	r.registry = r.nfts
	if r.wrapRegistry != nil {
		r.registry = r.wrapRegistry(r.nfts)
	}
	r.ledger = bank.NewLedger(r.state, existential)

	r.world = world.NewEngine(cfg.World)
	r.world.SetState(r.state)
	r.world.SetRegistry(r.registry)
	r.world.SetLedger(r.ledger)
	r.world.SetSigner(crypto.Verifier{})
	r.world.SetEmitter(r.buffer)
	r.world.SetNowFunc(r.now)

	r.incubation = incubation.NewEngine(cfg.Incubation)
	r.incubation.SetState(r.state)
	r.incubation.SetWorld(r.world)
	r.incubation.SetRegistry(r.registry)
	r.incubation.SetEmitter(r.buffer)
	r.incubation.SetNowFunc(r.now)
	return r, nil
}

func (r *Runtime) now() int64 { return r.nowFn() }

// Hub exposes the committed event stream.
func (r *Runtime) Hub() *events.Hub { return r.hub }

// Close releases the backing database.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Discard()
	r.db.Close()
}

type call struct {
	name  string
	admin bool
	// attrs are appended to the rejection log line.
	attrs []slog.Attr
}

func signatureAttrs(signature []byte) []slog.Attr {
	return []slog.Attr{
		logging.MaskField("signature", hex.EncodeToString(signature)),
		slog.Int("signature_len", len(signature)),
	}
}

func originLabel(origin types.Origin) string {
	if origin.IsRoot() {
		return "root"
	}
	if signer, ok := origin.Signer(); ok {
		return crypto.FormatAccount(signer)
	}
	return "none"
}

// dispatch runs fn in the exclusive execution slot. Writes staged by fn are
// committed in one batch when it succeeds and dropped otherwise; buffered
// events follow the same fate.
func (r *Runtime) dispatch(ctx context.Context, c call, origin types.Origin, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	_, span := r.tracer.Start(ctx, "shellchain."+c.name, trace.WithAttributes(
		attribute.String("shell.call", c.name),
		attribute.String("shell.sender", originLabel(origin)),
	))
	defer span.End()
	start := time.Now()

	err := fn()
	if err == nil {
		err = r.state.Commit()
	}
	result := coreerrors.Label(err)
	if err != nil {
		r.state.Discard()
		r.buffer.Reset()
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		attrs := append([]slog.Attr{
			slog.String("call", c.name),
			slog.String("sender", originLabel(origin)),
			slog.String("result", result),
			slog.String("error", err.Error()),
		}, c.attrs...)
		r.logger.LogAttrs(ctx, slog.LevelDebug, "call rejected", attrs...)
		r.metrics.ObserveCall(c.name, result, time.Since(start))
		return err
	}

	published := r.publish(c.name)
	if c.admin {
		r.logger.Info("admin call committed",
			slog.String("call", c.name),
			slog.String("sender", originLabel(origin)),
			slog.Int("events", published))
	}
	r.refreshGauges()
	r.metrics.ObserveCall(c.name, result, time.Since(start))
	return nil
}

func (r *Runtime) publish(callName string) int {
	flushed := r.buffer.Flush(nil)
	eventMetrics := observability.Events()
	for _, evt := range flushed {
		rec := r.hub.Publish(callName, evt)
		r.downstream.Emit(evt)
		eventMetrics.RecordEvent(rec.Type)
		if r.sink != nil {
			if err := r.sink.Append(rec); err != nil {
				r.logger.Warn("event archive failed",
					slog.String("call", callName),
					slog.Uint64("sequence", rec.Sequence),
					slog.String("error", err.Error()))
			}
		}
	}
	return len(flushed)
}

func (r *Runtime) refreshGauges() {
	if r.metrics == nil {
		return
	}
	if era, err := r.world.Era(); err == nil {
		r.metrics.SetEra(era)
	}
	for _, tier := range world.Tiers {
		for _, race := range world.Races {
			if info, ok, err := r.world.Inventory(tier, race); err == nil && ok {
				r.metrics.SetInventory(tier.String(), race.String(), info.RaceForSale)
			}
		}
	}
	if pending, err := r.world.PendingPreorderCount(); err == nil {
		r.metrics.SetPendingPreorders(int(pending))
	}
}
