// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"sync"
	"time"

	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/platform/cache"
	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/logx"
	"exposechain/internal/platform/netguard"
	"exposechain/internal/platform/rate"
)

// scanState es el estado de la máquina de escaneo. Cada transición se
// registra; los estados terminales son Done y los rechazos previos al
// dispatch (validación, rate limit, SSRF).
type scanState string

const (
	stateValidating   scanState = "validating"
	stateRateChecking scanState = "rate_checking"
	stateSSRFChecking scanState = "ssrf_checking"
	stateDispatching  scanState = "dispatching"
	stateAggregating  scanState = "aggregating"
	stateScoring      scanState = "scoring"
	stateDone         scanState = "done"
)

// Orchestrator coordina el ciclo de vida completo de un escaneo:
// validación, rate limiting por caller, política SSRF, dispatch
// concurrente de las fuentes a través de la caché, agregación bajo
// deadline global, scoring y persistencia.
type Orchestrator struct {
	sources map[domain.SourceKind]ports.Source
	cache   *cache.LookupCache
	guard   *netguard.Guard
	limiter *rate.CallerLimiter
	scorer  *Scorer
	store   ports.ScanStore
	logger  logx.Logger

	// Deadlines globales por tipo de escaneo
	fullDeadline  time.Duration
	quickDeadline time.Duration

	version string

	// Control de persistencia asíncrona
	persistWg sync.WaitGroup
}

// OrchestratorOptions configura el orchestrator.
type OrchestratorOptions struct {
	Sources map[domain.SourceKind]ports.Source
	Cache   *cache.LookupCache
	Guard   *netguard.Guard
	Limiter *rate.CallerLimiter
	Scorer  *Scorer
	Store   ports.ScanStore
	Logger  logx.Logger

	FullDeadline  time.Duration
	QuickDeadline time.Duration

	Version string
}

const (
	defaultFullDeadline  = 30 * time.Second
	defaultQuickDeadline = 10 * time.Second

	// persistTimeout acota la escritura asíncrona del resultado;
	// no participa del deadline del escaneo.
	persistTimeout = 5 * time.Second
)

// NewOrchestrator crea una nueva instancia del orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Cache == nil {
		opts.Cache = cache.New(0, 0, 0)
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewCallerLimiter(0, 0)
	}
	if opts.Scorer == nil {
		opts.Scorer = NewScorer(nil)
	}
	if opts.FullDeadline <= 0 {
		opts.FullDeadline = defaultFullDeadline
	}
	if opts.QuickDeadline <= 0 {
		opts.QuickDeadline = defaultQuickDeadline
	}

	return &Orchestrator{
		sources:       opts.Sources,
		cache:         opts.Cache,
		guard:         opts.Guard,
		limiter:       opts.Limiter,
		scorer:        opts.Scorer,
		store:         opts.Store,
		logger:        opts.Logger.With("component", "orchestrator"),
		fullDeadline:  opts.FullDeadline,
		quickDeadline: opts.QuickDeadline,
		version:       opts.Version,
	}
}

// RunScan ejecuta un escaneo completo contra la entrada cruda del caller.
//
// Los rechazos previos al dispatch retornan (nil, error): *RejectedError
// para entrada inválida o rate limit, *BlockedError para targets que la
// política SSRF no permite. Una vez despachado, el escaneo siempre
// retorna un *ScanResult con los cuatro campos de fuente poblados: los
// fallos de fuentes individuales degradan campos, nunca el escaneo.
func (o *Orchestrator) RunScan(ctx context.Context, raw string, scanType domain.ScanType, caller string) (*domain.ScanResult, error) {
	// Validating
	o.transition(stateValidating, raw)
	if !scanType.IsValid() {
		return nil, &domain.RejectedError{
			Reason: domain.RejectValidation,
			Detail: string(scanType),
			Err:    domain.ErrInvalidScanType,
		}
	}
	target, err := domain.ParseTarget(raw)
	if err != nil {
		o.logger.Warn("target rejected", "input", raw, "error", err)
		return nil, &domain.RejectedError{
			Reason: domain.RejectValidation,
			Detail: err.Error(),
			Err:    err,
		}
	}

	// RateChecking
	o.transition(stateRateChecking, target.Normalized)
	if allowed, retryAfter := o.limiter.Allow(caller); !allowed {
		o.logger.Warn("caller rate limited", "caller", caller, "retry_after", retryAfter)
		return nil, &domain.RejectedError{
			Reason:     domain.RejectRateLimited,
			Detail:     "caller quota exhausted",
			RetryAfter: retryAfter,
		}
	}

	// SSRFChecking: un target bloqueado aborta el escaneo entero antes
	// de tocar cualquier fuente. El veredicto queda registrado.
	o.transition(stateSSRFChecking, target.Normalized)
	if o.guard != nil {
		if err := o.guard.Check(ctx, target); err != nil {
			o.logger.Warn("target blocked", "target", target.Normalized, "caller", caller, "error", err)
			return nil, err
		}
	}

	// Dispatching
	o.transition(stateDispatching, target.Normalized)
	deadline := time.Now().Add(o.deadlineFor(scanType))
	result := domain.NewScanResult(target, scanType)
	result.Metadata.Caller = caller
	result.Metadata.Deadline = deadline
	result.Metadata.Version = o.version

	kinds := domain.SourcesFor(scanType)
	for _, k := range kinds {
		result.Metadata.SourcesDispatched = append(result.Metadata.SourcesDispatched, k.String())
	}

	o.logger.Info("starting scan",
		"scan_id", result.ID,
		"target", target.Normalized,
		"type", scanType,
		"caller", caller,
		"sources", len(kinds),
	)

	scanCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	// Aggregating: el fan-in está acotado por scanCtx — GetOrCompute
	// retorna TimedOut para cualquier fuente pendiente al deadline,
	// así que el Wait nunca excede el presupuesto global.
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, kind := range kinds {
		src, ok := o.sources[kind]
		if !ok {
			// Fuente no construida: degrada a Failure, nunca rompe
			// el invariante de campos poblados.
			result.Set(domain.NewFailure(kind, domain.ErrorKindInternal, "source not available"))
			continue
		}

		wg.Add(1)
		go func(kind domain.SourceKind, src ports.Source) {
			defer wg.Done()
			lr := o.lookup(scanCtx, kind, src, target, deadline)
			mu.Lock()
			result.Set(lr)
			mu.Unlock()
		}(kind, src)
	}
	wg.Wait()
	o.transition(stateAggregating, target.Normalized)

	// Scoring
	o.transition(stateScoring, target.Normalized)
	result.Risk = o.scorer.Score(result)

	// Done
	result.Finalize()
	o.transition(stateDone, target.Normalized)
	o.logger.Info("scan completed",
		"scan_id", result.ID,
		"target", target.Normalized,
		"score", result.Risk.Score,
		"level", result.Risk.Level,
		"duration", result.Metadata.Duration,
	)

	o.persistAsync(result)

	return result, nil
}

// lookup ejecuta una fuente a través de la caché. El cómputo corre
// desacoplado del contexto del caller con su propio deadline, de modo
// que una escritura en vuelo completa y puebla la caché aunque el
// escaneo que la inició ya haya expirado.
func (o *Orchestrator) lookup(ctx context.Context, kind domain.SourceKind, src ports.Source, target domain.Target, deadline time.Time) domain.LookupResult {
	key := cache.Key{Source: kind, Target: target.Normalized}

	return o.cache.GetOrCompute(ctx, key, func() domain.LookupResult {
		budget := time.Until(deadline)
		if budget <= 0 {
			return domain.NewTimedOut(kind)
		}
		computeCtx, cancel := context.WithTimeout(context.Background(), budget)
		defer cancel()

		start := time.Now()
		data, err := src.Lookup(computeCtx, target)
		elapsed := time.Since(start)
		if err != nil {
			o.logger.Debug("source lookup failed",
				"source", kind,
				"target", target.Normalized,
				"elapsed", elapsed,
				"error", err,
			)
			return classifyFailure(kind, err)
		}
		return domain.NewSuccess(kind, data, elapsed)
	})
}

// classifyFailure mapea el error de una fuente a un LookupResult tipado.
func classifyFailure(kind domain.SourceKind, err error) domain.LookupResult {
	switch {
	case errors.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return domain.NewTimedOut(kind)
	case errors.IsUpstreamRateLimit(err), errors.IsRateLimit(err):
		return domain.NewFailure(kind, domain.ErrorKindRateLimited, err.Error())
	case errors.IsBlocked(err):
		return domain.NewFailure(kind, domain.ErrorKindBlocked, err.Error())
	case errors.IsInvalidInput(err), errors.IsInvalidResponse(err), errors.IsNotFound(err):
		return domain.NewFailure(kind, domain.ErrorKindProtocol, err.Error())
	case errors.IsConnectionFailed(err), errors.IsServiceUnavailable(err):
		return domain.NewFailure(kind, domain.ErrorKindNetwork, err.Error())
	default:
		return domain.NewFailure(kind, domain.ErrorKindInternal, err.Error())
	}
}

// persistAsync guarda el resultado en background (fire-and-forget).
// Un fallo de persistencia se registra y jamás afecta al resultado
// ya retornado al caller.
func (o *Orchestrator) persistAsync(result *domain.ScanResult) {
	if o.store == nil {
		return
	}
	o.persistWg.Add(1)
	go func() {
		defer o.persistWg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := o.store.Save(ctx, result); err != nil {
			o.logger.Warn("failed to persist scan result", "scan_id", result.ID, "error", err)
		}
	}()
}

// deadlineFor retorna el presupuesto global según el tipo de escaneo.
func (o *Orchestrator) deadlineFor(t domain.ScanType) time.Duration {
	if t == domain.ScanTypeQuick {
		return o.quickDeadline
	}
	return o.fullDeadline
}

func (o *Orchestrator) transition(s scanState, target string) {
	o.logger.Debug("state transition", "state", s, "target", target)
}

// Close espera las persistencias en vuelo y cierra las fuentes.
func (o *Orchestrator) Close() error {
	o.persistWg.Wait()
	var firstErr error
	for kind, src := range o.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "closing source %s", kind)
		}
	}
	if o.store != nil {
		if err := o.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
