package ecs

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"runtime"
	"runtime/trace"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// NewScheduler constructs a scheduler bound to the provided world. A nil
// world gets a fresh one.
func NewScheduler(world *World) (Scheduler, error) {
	if world == nil {
		world = NewWorld()
	}
	s := &basicScheduler{
		world:           world,
		groups:          make(map[WorkGroupID]*workGroup),
		queues:          NewCommandQueuePool(),
		logger:          world.Logger(),
		tracer:          noopTracer{},
		policyOverrides: make(map[WorkGroupID]ErrorPolicy),
		intents:         newIntentLedger(),
	}
	s.applyInstrumentation(InstrumentationConfig{})
	return s, nil
}

// basicScheduler drives registered work groups against a single world.
// Synchronized groups run on the calling goroutine in resolved order while
// async groups run concurrently on a bounded errgroup; everything rejoins
// before the tick's deferred commands flush into the world.
type basicScheduler struct {
	mu              sync.RWMutex
	world           *World
	groups          map[WorkGroupID]*workGroup
	regOrder        []WorkGroupID
	syncOrder       []WorkGroupID
	order           []*workGroup
	queues          *CommandQueuePool
	logger          Logger
	tracer          Tracer
	instrumentation InstrumentationConfig
	observer        SchedulerObserver
	policyOverrides map[WorkGroupID]ErrorPolicy
	asyncLimit      int
	tick            uint64
	intents         intentLedger
}

// workGroup is the registered form of a WorkGroupConfig.
type workGroup struct {
	id       WorkGroupID
	mode     WorkGroupMode
	systems  []System
	interval TickInterval
	policy   ErrorPolicy
	access   groupAccess
}

type workGroupHandle struct {
	id WorkGroupID
}

func (h workGroupHandle) ID() WorkGroupID { return h.id }

// RegisterWorkGroup validates a group's declared component and resource
// access against every group already registered and adds it to the
// execution order.
func (s *basicScheduler) RegisterWorkGroup(cfg WorkGroupConfig) (WorkGroupHandle, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("ecs: work group requires a non-empty ID")
	}

	systems := make([]System, 0, len(cfg.Systems))
	for _, sys := range cfg.Systems {
		if sys != nil {
			systems = append(systems, sys)
		}
	}

	access, err := collectAccess(cfg.Mode, systems)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[cfg.ID]; exists {
		return nil, fmt.Errorf("ecs: work group %s already registered", cfg.ID)
	}
	if err := s.intents.claim(cfg.ID, access); err != nil {
		return nil, err
	}

	grp := &workGroup{
		id:       cfg.ID,
		mode:     cfg.Mode,
		systems:  systems,
		interval: cfg.Interval,
		policy:   s.resolvePolicy(cfg.ID, cfg.ErrorPolicy),
		access:   access,
	}
	s.groups[cfg.ID] = grp
	s.regOrder = append(s.regOrder, cfg.ID)
	s.resolveOrder()
	s.logger.Info("work group registered",
		"work_group", string(cfg.ID),
		"mode", modeLabel(cfg.Mode),
		"systems", len(systems))
	return workGroupHandle{id: cfg.ID}, nil
}

// Tick executes every due work group once and then flushes the commands
// their systems deferred. Async groups are launched as they come up in the
// order and joined before any flush, so commands always apply on the owner
// goroutine.
func (s *basicScheduler) Tick(ctx context.Context, dt time.Duration) error {
	s.mu.RLock()
	ordered := slices.Clone(s.order)
	world := s.world
	logger := s.logger
	tracer := s.tracer
	tick := s.tick
	limit := s.asyncLimit
	s.mu.RUnlock()

	queue := s.queues.Get()
	defer s.queues.Put(queue)

	type asyncRun struct {
		group   *workGroup
		queue   *CommandQueue
		outcome groupOutcome
	}
	var asyncRuns []*asyncRun
	defer func() {
		for _, run := range asyncRuns {
			s.queues.Put(run.queue)
		}
	}()

	var pool errgroup.Group
	if limit > 0 {
		pool.SetLimit(limit)
	} else {
		pool.SetLimit(runtime.GOMAXPROCS(0))
	}

	var abortErr error
	for _, grp := range ordered {
		if err := ctx.Err(); err != nil {
			abortErr = err
			break
		}
		if !shouldRunTick(tick, grp.interval) {
			continue
		}
		if grp.mode == WorkGroupModeAsync {
			run := &asyncRun{group: grp, queue: s.queues.Get()}
			asyncRuns = append(asyncRuns, run)
			pool.Go(func() error {
				run.outcome = s.runGroup(ctx, grp, world, dt, tick, run.queue, logger, tracer, true)
				return nil
			})
			continue
		}
		outcome := s.runGroup(ctx, grp, world, dt, tick, queue, logger, tracer, false)
		outcome.summary.EntitiesAlive = world.Entities().Count()
		s.publish(outcome.summary)
		if outcome.err != nil {
			if grp.policy != ErrorPolicyContinue {
				abortErr = outcome.err
				break
			}
			logger.Error("work group failed", "work_group", string(grp.id), "err", outcome.err)
		}
	}

	// Join before touching the async queues; the closures write outcomes.
	_ = pool.Wait()

	for _, run := range asyncRuns {
		run.outcome.summary.EntitiesAlive = world.Entities().Count()
		s.publish(run.outcome.summary)
		if run.outcome.err != nil {
			if run.group.policy != ErrorPolicyContinue {
				if abortErr == nil {
					abortErr = run.outcome.err
				}
			} else {
				logger.Error("async work group failed",
					"work_group", string(run.group.id), "err", run.outcome.err)
			}
			continue
		}
		if abortErr == nil {
			if _, err := run.queue.Flush(world); err != nil {
				abortErr = err
			}
		}
	}

	if abortErr != nil {
		return abortErr
	}
	if _, err := queue.Flush(world); err != nil {
		return err
	}

	s.mu.Lock()
	s.tick++
	s.mu.Unlock()
	return nil
}

// Run advances the scheduler a fixed number of ticks with a constant delta.
func (s *basicScheduler) Run(ctx context.Context, steps int, dt time.Duration) error {
	for i := 0; i < steps; i++ {
		if err := s.Tick(ctx, dt); err != nil {
			return err
		}
	}
	return nil
}

// RunWithTrace wraps fn in a runtime execution trace when tracing is
// enabled and a writer is supplied; otherwise fn runs plain.
func (s *basicScheduler) RunWithTrace(ctx context.Context, w io.Writer, fn func() error) error {
	s.mu.RLock()
	enabled := s.instrumentation.EnableTrace
	s.mu.RUnlock()
	if enabled && w != nil {
		if err := trace.Start(w); err != nil {
			return err
		}
		defer trace.Stop()
	}
	return fn()
}

// groupOutcome pairs a work group's summary with its failure, if any.
type groupOutcome struct {
	summary WorkGroupSummary
	err     error
}

// runGroup executes one work group's systems against the world, collecting
// deferred commands into the supplied queue. A failing system's commands
// are rolled back so a partial run never leaks mutations; under the retry
// policy the system gets one more attempt from the rolled-back mark.
func (s *basicScheduler) runGroup(ctx context.Context, grp *workGroup, world *World, dt time.Duration, tick uint64, queue *CommandQueue, logger Logger, tracer Tracer, async bool) groupOutcome {
	groupLogger := logger.With("work_group", string(grp.id))
	exec := &systemExecutionContext{
		world:  world,
		dt:     dt,
		tick:   tick,
		logger: groupLogger,
		tracer: tracer,
		queue:  queue,
	}

	summary := WorkGroupSummary{
		WorkGroupID:     grp.id,
		Mode:            grp.mode,
		Async:           async,
		Tick:            tick,
		ComponentReads:  sortedKeys(grp.access.componentReads),
		ComponentWrites: sortedKeys(grp.access.componentWrites),
		ResourceReads:   sortedKeys(grp.access.resourceReads),
		ResourceWrites:  sortedKeys(grp.access.resourceWrites),
	}

	deferBase := queue.Len()
	start := time.Now()
	var failure error
	for _, sys := range grp.systems {
		if err := ctx.Err(); err != nil {
			failure = err
			break
		}
		desc := sys.Descriptor()
		summary.SystemsTotal++
		if !shouldRunTick(tick, desc.RunEvery) {
			summary.SystemsSkipped++
			continue
		}
		exec.logger = groupLogger.With("system", desc.Name)

		mark := queue.Snapshot()
		result := sys.Run(ctx, exec)
		if result.Err != nil && grp.policy == ErrorPolicyRetry {
			exec.logger.Error("system failed, retrying", "err", result.Err)
			queue.Rollback(mark)
			result = sys.Run(ctx, exec)
		}
		if result.Err != nil {
			queue.Rollback(mark)
			failure = fmt.Errorf("ecs: system %s failed: %w", desc.Name, result.Err)
			break
		}
		if result.Skipped {
			summary.SystemsSkipped++
		} else {
			summary.SystemsExecuted++
		}
	}

	summary.Duration = time.Since(start)
	summary.CommandsDeferred = queue.Len() - deferBase
	summary.Error = failure
	return groupOutcome{summary: summary, err: failure}
}

func (s *basicScheduler) publish(summary WorkGroupSummary) {
	s.mu.RLock()
	observer := s.observer
	s.mu.RUnlock()
	if observer != nil {
		observer.WorkGroupCompleted(summary)
	}
}

// resolveOrder rebuilds the execution order: groups named by the sync order
// first, then the rest in registration order. Caller holds the lock.
func (s *basicScheduler) resolveOrder() {
	ordered := make([]*workGroup, 0, len(s.groups))
	seen := make(map[WorkGroupID]bool, len(s.groups))
	appendGroup := func(id WorkGroupID) {
		if seen[id] {
			return
		}
		if grp, ok := s.groups[id]; ok {
			ordered = append(ordered, grp)
			seen[id] = true
		}
	}
	for _, id := range s.syncOrder {
		appendGroup(id)
	}
	for _, id := range s.regOrder {
		appendGroup(id)
	}
	s.order = ordered
}

func (s *basicScheduler) resolvePolicy(id WorkGroupID, supplied ErrorPolicy) ErrorPolicy {
	if supplied != ErrorPolicyAbort {
		return supplied
	}
	if override, ok := s.policyOverrides[id]; ok {
		return override
	}
	return ErrorPolicyAbort
}

func (s *basicScheduler) applyInstrumentation(cfg InstrumentationConfig) {
	s.instrumentation = cfg
	if !cfg.EnableTrace {
		s.tracer = noopTracer{}
	}
	s.observer = buildObserverChain(s.logger, cfg)
}

// Builder exposes the fluent configuration surface. The builder mutates the
// scheduler it came from; Build merely rebinds the world.
func (s *basicScheduler) Builder() SchedulerBuilder {
	return &schedulerBuilder{s: s}
}

type schedulerBuilder struct {
	s *basicScheduler
}

func (b *schedulerBuilder) WithSyncOrder(order []WorkGroupID) SchedulerBuilder {
	b.s.mu.Lock()
	b.s.syncOrder = slices.Clone(order)
	b.s.resolveOrder()
	b.s.mu.Unlock()
	return b
}

func (b *schedulerBuilder) WithAsyncWorkers(count int) SchedulerBuilder {
	b.s.mu.Lock()
	b.s.asyncLimit = max(count, 0)
	b.s.mu.Unlock()
	return b
}

func (b *schedulerBuilder) WithErrorPolicy(id WorkGroupID, policy ErrorPolicy) SchedulerBuilder {
	b.s.mu.Lock()
	if policy == ErrorPolicyAbort {
		delete(b.s.policyOverrides, id)
	} else {
		b.s.policyOverrides[id] = policy
	}
	if grp, ok := b.s.groups[id]; ok {
		grp.policy = policy
	}
	b.s.mu.Unlock()
	return b
}

func (b *schedulerBuilder) WithInstrumentation(cfg InstrumentationConfig) SchedulerBuilder {
	b.s.mu.Lock()
	b.s.applyInstrumentation(cfg)
	b.s.mu.Unlock()
	return b
}

func (b *schedulerBuilder) WithLogger(logger Logger) SchedulerBuilder {
	if logger == nil {
		logger = noopLogger{}
	}
	b.s.mu.Lock()
	b.s.logger = logger
	b.s.applyInstrumentation(b.s.instrumentation)
	b.s.mu.Unlock()
	return b
}

func (b *schedulerBuilder) Build(world *World) (Scheduler, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if world != nil {
		b.s.world = world
	}
	return b.s, nil
}

// groupAccess is the union of a work group's declared component and
// resource intents. Resource writers are tracked as readers too since a
// write implies observing the value.
type groupAccess struct {
	componentReads  map[ComponentType]struct{}
	componentWrites map[ComponentType]struct{}
	resourceReads   map[string]struct{}
	resourceWrites  map[string]struct{}
}

// collectAccess folds the systems' descriptors into one access set,
// rejecting layouts a single group cannot execute safely: duplicate writers
// within the group, and any write at all under async mode.
func collectAccess(mode WorkGroupMode, systems []System) (groupAccess, error) {
	access := groupAccess{
		componentReads:  make(map[ComponentType]struct{}),
		componentWrites: make(map[ComponentType]struct{}),
		resourceReads:   make(map[string]struct{}),
		resourceWrites:  make(map[string]struct{}),
	}
	componentOwner := make(map[ComponentType]string)
	resourceOwner := make(map[string]string)

	for _, sys := range systems {
		desc := sys.Descriptor()
		name := desc.Name
		if name == "" {
			name = "<unnamed>"
		}
		if mode == WorkGroupModeAsync {
			if !desc.AsyncAllowed {
				return access, fmt.Errorf("%w: %s", ErrAsyncSystemNotAllowed, name)
			}
			if len(desc.Writes) > 0 {
				return access, fmt.Errorf("%w: %s declares component writes", ErrAsyncWritesNotSupported, name)
			}
		}
		for _, comp := range desc.Reads {
			access.componentReads[comp] = struct{}{}
		}
		for _, comp := range desc.Writes {
			if owner, taken := componentOwner[comp]; taken {
				return access, fmt.Errorf("%w: %s and %s both write component %s",
					ErrDuplicateWriteAccess, owner, name, comp)
			}
			componentOwner[comp] = name
			access.componentWrites[comp] = struct{}{}
		}
		for _, res := range desc.Resources {
			if res.Name == "" {
				continue
			}
			if res.Mode != AccessModeWrite {
				access.resourceReads[res.Name] = struct{}{}
				continue
			}
			if mode == WorkGroupModeAsync {
				return access, fmt.Errorf("%w: %s writes resource %s",
					ErrAsyncResourceWritesNotSupported, name, res.Name)
			}
			if owner, taken := resourceOwner[res.Name]; taken {
				return access, fmt.Errorf("%w: %s and %s both write resource %s",
					ErrDuplicateResourceWriteAccess, owner, name, res.Name)
			}
			resourceOwner[res.Name] = name
			access.resourceWrites[res.Name] = struct{}{}
			access.resourceReads[res.Name] = struct{}{}
		}
	}
	return access, nil
}

// intentLedger records which work group owns each component and resource
// write, and who reads each resource, so registration can reject layouts
// where two groups would race.
type intentLedger struct {
	componentWriters map[ComponentType]WorkGroupID
	resourceWriters  map[string]WorkGroupID
	resourceReaders  map[string]map[WorkGroupID]struct{}
}

func newIntentLedger() intentLedger {
	return intentLedger{
		componentWriters: make(map[ComponentType]WorkGroupID),
		resourceWriters:  make(map[string]WorkGroupID),
		resourceReaders:  make(map[string]map[WorkGroupID]struct{}),
	}
}

// claim checks the group's access against the ledger and records it when no
// conflict exists. Components allow one writer overall; resources allow one
// writer only while nobody else reads.
func (l *intentLedger) claim(id WorkGroupID, access groupAccess) error {
	for comp := range access.componentWrites {
		if owner, taken := l.componentWriters[comp]; taken && owner != id {
			return fmt.Errorf("%w: group %s already writes component %s",
				ErrDuplicateWriteAccess, owner, comp)
		}
	}
	for res := range access.resourceWrites {
		if owner, taken := l.resourceWriters[res]; taken && owner != id {
			return fmt.Errorf("%w: group %s already writes resource %s",
				ErrDuplicateResourceWriteAccess, owner, res)
		}
		for reader := range l.resourceReaders[res] {
			if reader != id {
				return fmt.Errorf("%w: group %s already reads resource %s",
					ErrDuplicateResourceWriteAccess, reader, res)
			}
		}
	}
	for res := range access.resourceReads {
		if owner, taken := l.resourceWriters[res]; taken && owner != id {
			return fmt.Errorf("%w: group %s already writes resource %s",
				ErrDuplicateResourceWriteAccess, owner, res)
		}
	}

	for comp := range access.componentWrites {
		l.componentWriters[comp] = id
	}
	for res := range access.resourceWrites {
		l.resourceWriters[res] = id
	}
	for res := range access.resourceReads {
		readers := l.resourceReaders[res]
		if readers == nil {
			readers = make(map[WorkGroupID]struct{})
			l.resourceReaders[res] = readers
		}
		readers[id] = struct{}{}
	}
	return nil
}

// shouldRunTick reports whether an interval is due at the given tick. A
// zero Every means every tick; Offset shifts the phase.
func shouldRunTick(tick uint64, interval TickInterval) bool {
	if interval.Every == 0 {
		return true
	}
	offset := uint64(interval.Offset % interval.Every)
	return (tick+offset)%uint64(interval.Every) == 0
}

func sortedKeys[K cmp.Ordered](set map[K]struct{}) []K {
	if len(set) == 0 {
		return nil
	}
	keys := make([]K, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// systemExecutionContext is what systems see while running: the world, tick
// timing, a logger scoped to the system, and the queue mutations defer into.
type systemExecutionContext struct {
	world  *World
	dt     time.Duration
	tick   uint64
	logger Logger
	tracer Tracer
	queue  *CommandQueue
}

func (c *systemExecutionContext) World() *World { return c.world }

func (c *systemExecutionContext) TimeDelta() time.Duration { return c.dt }

func (c *systemExecutionContext) TickIndex() uint64 { return c.tick }

func (c *systemExecutionContext) Logger() Logger { return c.logger }

func (c *systemExecutionContext) Defer(cmd Command) { c.queue.Defer(cmd) }

// Tracer exposes the scheduler's tracer to systems that want spans.
func (c *systemExecutionContext) Tracer() Tracer { return c.tracer }

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, name string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End() {}

type noopObserver struct{}

func (noopObserver) WorkGroupCompleted(WorkGroupSummary) {}
