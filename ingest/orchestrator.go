package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/sig-0/nbprates/storage"
)

var (
	errInvalidProvider = errors.New("invalid provider")
	errInvalidInterval = errors.New("invalid interval")
)

const (
	defaultRetryDelay   = 10 * time.Second
	defaultSaveTimeout  = 10 * time.Second
	defaultResultBuffer = 100
)

// Orchestrator runs the registered providers on their intervals and
// persists everything they fetch
type Orchestrator struct {
	storage storage.Storage
	logger  *slog.Logger

	registeredProviders sync.Map

	q             iq.Queue[scheduledIngest]
	queryInterval time.Duration
	retryDelay    time.Duration
	saveTimeout   time.Duration
	resultBuffer  int
	qMux          sync.Mutex
}

// New creates a new Orchestrator instance
func New(storage storage.Storage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:       storage,
		q:             iq.NewQueue[scheduledIngest](),
		queryInterval: time.Second,
		retryDelay:    defaultRetryDelay,
		saveTimeout:   defaultSaveTimeout,
		resultBuffer:  defaultResultBuffer,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a new provider with the orchestrator.
// The provider is immediately queued up for execution
func (o *Orchestrator) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return errInvalidProvider
	}

	if p.Interval() <= 0 {
		return errInvalidInterval
	}

	id := xid.New()
	o.registeredProviders.Store(id, p)

	o.logger.Info(
		"registered new provider",
		"name", p.Name(),
		"id", id.String(),
		"interval", p.Interval().String(),
	)

	o.scheduleIngest(time.Now().UTC(), id, p, 0)

	return nil
}

// Start starts the provider orchestration service loop [BLOCKING]
func (o *Orchestrator) Start(ctx context.Context) error {
	collectorCh := make(chan *workerResponse, o.resultBuffer)

	ticker := time.NewTicker(o.queryInterval)
	defer ticker.Stop()

	// dispatch spawns a worker for every due job
	dispatch := func() {
		for ctx.Err() == nil {
			next := o.nextIngest()
			if next == nil {
				return
			}

			o.logger.Info(
				"running ingest",
				"name", next.provider.Name(),
				"attempt", next.attempt+1,
			)

			go handleJob(ctx, &workerInfo{
				provider:   next.provider,
				providerID: next.providerID,
				attempt:    next.attempt,
				resCh:      collectorCh,
			})
		}
	}

	// Jobs registered before boot are due right away
	dispatch()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator service shut down")

			return nil
		case <-ticker.C:
			dispatch()
		case response := <-collectorCh:
			o.handleResponse(ctx, response)
		}
	}
}

// handleResponse persists a worker's results and schedules the provider's next run
func (o *Orchestrator) handleResponse(ctx context.Context, response *workerResponse) {
	now := time.Now().UTC()

	rpRaw, ok := o.registeredProviders.Load(response.providerID)
	if !ok {
		o.logger.Error(
			"unable to load registered provider",
			"id", response.providerID.String(),
		)

		return
	}

	rp, _ := rpRaw.(Provider)

	if response.error != nil {
		o.logger.Error(
			"error encountered during rate fetch",
			"name", rp.Name(),
			"attempt", response.attempt+1,
			"err", response.error,
		)

		o.scheduleIngest(now.Add(o.retryDelay), response.providerID, rp, response.attempt+1)

		return
	}

	saved := o.saveRates(ctx, response)

	o.logger.Info(
		"ingest complete",
		"name", rp.Name(),
		"fetched", len(response.rates),
		"saved", saved,
		"took", response.took.String(),
	)

	o.scheduleIngest(now.Add(rp.Interval()), response.providerID, rp, 0)
}

// saveRates stores the fetched rates, returning how many were written
func (o *Orchestrator) saveRates(ctx context.Context, response *workerResponse) int {
	saved := 0

	for _, rate := range response.rates {
		if rate == nil {
			continue
		}

		saveCtx, cancelFn := context.WithTimeout(ctx, o.saveTimeout)
		err := o.storage.SaveExchangeRate(saveCtx, rate)

		cancelFn()

		if err != nil {
			o.logger.Error(
				"unable to save exchange rate",
				"base", rate.Base,
				"target", rate.Target,
				"source", rate.Source,
				"err", err,
			)

			continue
		}

		saved++

		o.logger.Debug(
			"saved exchange rate",
			"base", rate.Base,
			"target", rate.Target,
			"source", rate.Source,
			"rate", rate.Rate,
			"rate_type", rate.RateType,
			"effective_date", rate.AsOf.Format(time.DateOnly),
		)
	}

	return saved
}

// scheduleIngest schedules a new provider ingest
func (o *Orchestrator) scheduleIngest(
	at time.Time,
	providerID xid.ID,
	provider Provider,
	attempt int,
) {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	o.q.Push(scheduledIngest{
		at:         at,
		providerID: providerID,
		provider:   provider,
		attempt:    attempt,
	})
}

// nextIngest fetches the next due ingest job, as of the moment of calling
func (o *Orchestrator) nextIngest() *scheduledIngest {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	if o.q.Len() == 0 {
		return nil // nothing to schedule, all jobs are running
	}

	if o.q.Index(0).at.After(time.Now().UTC()) {
		return nil // the earliest job is in the future
	}

	return o.q.PopFront()
}
