package nav

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/navchoreo/nav/audit"
	"github.com/dshills/navchoreo/nav/emit"
)

// Choreographer is the central serialising processor. It owns a
// StateHandler, a CompositeValidator, a TransactionManager, a Graph, a
// fixed set of registered Actors, a bounded local intent source used to
// inject redirect-chain steps and error dialogs, and a bounded Command
// broadcast.
//
// The dispatch loop is single-goroutine: at most one intent is ever being
// processed at a time, so State, the validation chain, and the
// transaction manager are observed as if single-threaded.
type Choreographer struct {
	graph      *Graph
	state      *StateHandler
	validators *CompositeValidator
	tm         *TransactionManager
	timer      *InactivityTimer

	actors []Actor
	local  chan Intent
	cmds   chan Command

	debounce *debouncer
	retry    *retryPolicy

	cfg choreographerConfig

	initOnce sync.Once
	initDone chan struct{}

	seq int
}

// New constructs a Choreographer rooted at graph. The choreographer is
// idle until Initialize is called.
func New(graph *Graph, actors []Actor, opts ...Option) (*Choreographer, error) {
	if graph == nil {
		return nil, &ChoreographerError{Code: "invalid_graph", Message: "graph must not be nil"}
	}

	cfg := defaultChoreographerConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, &ChoreographerError{Code: "invalid_option", Message: "applying option failed", Cause: err}
		}
	}

	state := NewStateHandler(graph, cfg.observers...)
	validators := NewCompositeValidator(cfg.validators...)
	timer := NewInactivityTimer(cfg.defaultScreenTimeout, PrioritySystemDefault)
	timer.SetCurrentNode(state.CurrentNode())

	c := &Choreographer{
		graph:      graph,
		state:      state,
		validators: validators,
		tm:         NewTransactionManager(),
		timer:      timer,
		actors:     append(append([]Actor(nil), actors...), timer),
		local:      make(chan Intent, cfg.localSourceCap),
		cmds:       make(chan Command, cfg.commandBufferCap),
		debounce:   newDebouncer(cfg.debounceWindow),
		retry:      newRetryPolicy(cfg.maxIntentRetries, cfg.retryBaseDelay, cfg.retryMaxDelay),
		cfg:        cfg,
		initDone:   make(chan struct{}),
	}
	return c, nil
}

// Commands returns the outbound command broadcast. Buffer capacity is
// WithCommandBufferCapacity's value (default 64); the choreographer
// suspends dispatch when it is full rather than dropping commands.
func (c *Choreographer) Commands() <-chan Command { return c.cmds }

// CurrentNode returns the state handler's current-node observable.
func (c *Choreographer) CurrentNode() *CurrentNodeObservable { return c.state.Current() }

// AcquireLock suppresses the inactivity timer until every acquired reason
// is released, for a view-model that needs to hold the current screen
// open regardless of user interaction (video playback, an in-progress
// form).
func (c *Choreographer) AcquireLock(reason LockReason) { c.timer.Acquire(reason) }

// ReleaseLock releases a previously acquired lock. The inactivity timer
// resumes once every held reason has been released.
func (c *Choreographer) ReleaseLock(reason LockReason) { c.timer.Release(reason) }

// Initialize starts the merge-and-dispatch loop. Repeated calls are
// idempotent: the first call's running loop is preserved and subsequent
// calls return immediately once it has started.
func (c *Choreographer) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		go c.run(ctx)
	})
	<-c.initDone
}

// run merges every actor's intent stream plus the local source into one
// sequence via errgroup-coordinated fan-in goroutines, then dispatches
// serially off the merged channel until ctx is cancelled.
func (c *Choreographer) run(ctx context.Context) {
	merged := make(chan Intent)

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range c.actors {
		a := a
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case intent, ok := <-a.Intents():
					if !ok {
						return nil
					}
					select {
					case merged <- intent:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case intent := <-c.local:
				select {
				case merged <- intent:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	close(c.initDone)

	for {
		select {
		case <-ctx.Done():
			return
		case intent := <-merged:
			if c.cfg.metrics != nil {
				c.cfg.metrics.SetQueueDepth(len(c.local))
			}
			if !c.debounce.admit(intent) {
				if c.cfg.metrics != nil {
					c.cfg.metrics.IncrementDebounceSuppressed()
				}
				c.emitEvent("intent_debounced", intent.Route.Key, map[string]interface{}{
					"sender": intent.Sender.String(),
					"kind":   intent.Kind.String(),
				})
				continue
			}
			c.dispatchWithRetry(ctx, intent)
		}
	}
}

// emitLocal enqueues intent onto the local intent source, suspending if
// it is full, unless ctx is cancelled first.
func (c *Choreographer) emitLocal(ctx context.Context, intent Intent) {
	select {
	case c.local <- intent:
	case <-ctx.Done():
	}
}

// emitCommand publishes cmd on the broadcast, suspending the dispatch
// loop when the buffer is full rather than dropping it.
func (c *Choreographer) emitCommand(ctx context.Context, cmd Command) {
	select {
	case c.cmds <- cmd:
	case <-ctx.Done():
	}
	if c.cfg.metrics != nil {
		c.cfg.metrics.SetCommandBufferDepth(len(c.cmds))
	}
}

// dispatchWithRetry dispatches intent, retrying ErrInvalidState-class
// failures up to the configured cap with exponential backoff plus
// jitter. Other errors terminate dispatch of this intent only;
// cancellation propagates unchanged.
func (c *Choreographer) dispatchWithRetry(ctx context.Context, intent Intent) {
	start := time.Now()
	attempt := 0
	for {
		err := c.dispatch(ctx, intent)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		if err != ErrInvalidState {
			log.Printf("nav: dispatch error for %s: %v", intent, err)
			break
		}
		if c.retry.exhausted(attempt) {
			log.Printf("nav: dispatch of %s exhausted retries: %v", intent, err)
			break
		}
		if c.cfg.metrics != nil {
			c.cfg.metrics.IncrementIntentRetries()
		}
		delay := c.retry.computeBackoff(attempt)
		attempt++
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
	if c.cfg.metrics != nil {
		c.cfg.metrics.RecordDispatchLatency(time.Since(start))
	}
}

func (c *Choreographer) nextSeq() int {
	c.seq++
	return c.seq
}

func (c *Choreographer) emitEvent(msg string, route RouteKey, meta map[string]interface{}) {
	if c.cfg.emitter == nil {
		return
	}
	c.cfg.emitter.Emit(emit.Event{
		SessionID: c.cfg.sessionID,
		Sequence:  c.nextSeq(),
		RouteKey:  string(route),
		Msg:       msg,
		Meta:      meta,
	})
}

func (c *Choreographer) recordAudit(kind, name string, route RouteKey, sender Sender, detail string) {
	if c.cfg.audit == nil {
		return
	}
	_ = c.cfg.audit.Append(context.Background(), audit.Record{
		SessionID: c.cfg.sessionID,
		Sequence:  c.seq,
		Kind:      kind,
		Name:      name,
		RouteKey:  string(route),
		Sender:    sender.String(),
		Detail:    detail,
		Timestamp: time.Now(),
	})
}

// dispatch performs the per-variant handling. It returns ErrInvalidState
// for failures the caller should retry, and nil for every other outcome
// (including benign failures already handled internally).
func (c *Choreographer) dispatch(ctx context.Context, intent Intent) error {
	c.emitEvent("intent_received", intent.Route.Key, map[string]interface{}{
		"sender": intent.Sender.String(),
		"kind":   intent.Kind.String(),
	})
	c.recordAudit("intent", intent.Kind.String(), intent.Route.Key, intent.Sender, intent.String())

	// Any user-originated intent counts as interaction, restarting the
	// inactivity clock without changing the governing node.
	if intent.Sender == SenderUser {
		c.timer.Pulse()
	}

	switch intent.Kind {
	case IntentNavigateTo:
		return c.dispatchNavigateTo(ctx, intent)
	case IntentPopUpTo:
		return c.dispatchPopUpTo(ctx, intent)
	case IntentBack:
		return c.dispatchBack(ctx, intent)
	case IntentClearBackStack, IntentInteractionTimeout:
		if intent.Kind == IntentInteractionTimeout && c.cfg.metrics != nil {
			c.cfg.metrics.IncrementTimeoutsFired()
		}
		return c.dispatchClear(ctx, intent)
	case IntentDisplayDialog, IntentDismissOverlay:
		return c.dispatchOverlay(ctx, intent)
	case IntentCompleteNavTransaction:
		return c.dispatchCompleteTransaction(ctx, intent)
	default:
		log.Printf("nav: unknown intent kind %v", intent.Kind)
		return nil
	}
}

func (c *Choreographer) dispatchNavigateTo(ctx context.Context, intent Intent) error {
	node, ok := c.graph.Lookup(intent.Route.Key)
	if !ok {
		log.Printf("nav: route %q not in graph", intent.Route.Key)
		return nil
	}
	result := c.validate(ctx, intent, node)
	return c.applyValidation(ctx, intent, node, result)
}

func (c *Choreographer) dispatchPopUpTo(ctx context.Context, intent Intent) error {
	if ok := c.state.PopUntil(intent.Route.Key); !ok {
		return nil
	}
	node := c.state.CurrentNode()
	c.timer.SetCurrentNode(node)
	result := c.validate(ctx, intent, node)
	return c.applyValidation(ctx, intent, node, result)
}

func (c *Choreographer) dispatchBack(ctx context.Context, intent Intent) error {
	node := c.state.Pop()
	c.timer.SetCurrentNode(node)
	result := c.validate(ctx, intent, node)
	err := c.applyValidation(ctx, intent, node, result)
	c.tm.Cancel()
	c.updateTransactionMetric()
	return err
}

func (c *Choreographer) dispatchClear(ctx context.Context, intent Intent) error {
	c.state.Clear()
	node := c.state.CurrentNode()
	c.timer.SetCurrentNode(node)
	result := c.validate(ctx, intent, node)
	err := c.applyValidation(ctx, intent, node, result)
	c.tm.Cancel()
	c.updateTransactionMetric()
	return err
}

func (c *Choreographer) dispatchOverlay(ctx context.Context, intent Intent) error {
	node := c.state.CurrentNode()
	result := c.validate(ctx, intent, node)
	return c.applyValidation(ctx, intent, node, result)
}

// dispatchCompleteTransaction advances the transaction manager one step:
// either re-entering the pipeline with the next prefix intent or, once
// the chain is drained, appending and emitting the original NavigateTo's
// command directly, bypassing further validation.
func (c *Choreographer) dispatchCompleteTransaction(ctx context.Context, intent Intent) error {
	if !c.tm.Active() {
		log.Printf("nav: CompleteNavTransaction(%s) with no active transaction", intent.CompletedRoute.Key)
		return nil
	}

	step, err := c.tm.Next()
	if err != nil {
		if err == ErrInvalidState {
			return err
		}
		log.Printf("nav: transaction.Next error: %v", err)
		c.tm.Cancel()
		c.updateTransactionMetric()
		return nil
	}
	c.updateTransactionMetric()
	c.advanceTransaction(ctx, step)
	return nil
}

// advanceTransaction dispatches one TransactionStep returned by
// TransactionManager.Next: StepContinue re-enters the pipeline with the
// next prefix intent (it will be validated normally); StepComplete
// resolves the original NavigateTo directly against the graph, bypassing
// further validation, and emits its command form.
func (c *Choreographer) advanceTransaction(ctx context.Context, step TransactionStep) {
	switch step.Kind {
	case StepContinue:
		c.emitLocal(ctx, step.Intent)
	case StepComplete:
		original := step.Intent
		if original.Kind == IntentNavigateTo {
			node, ok := c.graph.Lookup(original.Route.Key)
			if !ok {
				log.Printf("nav: transaction original route %q not in graph", original.Route.Key)
				return
			}
			c.state.AppendWithOptions(node, original.Options)
			c.timer.SetCurrentNode(node)
		}
		cmd := commandFor(original)
		c.emitEvent("command_emitted", original.Route.Key, map[string]interface{}{"kind": cmd.Kind.String(), "via": "back_to_original"})
		c.recordAudit("command", cmd.Kind.String(), original.Route.Key, original.Sender, original.String())
		c.emitCommand(ctx, cmd)
	}
}

// validate runs the composite validator chain, recovering a validator
// panic as Invalid("validator error") and honoring the configured
// watchdog, if any.
func (c *Choreographer) validate(ctx context.Context, intent Intent, node *Node) (result ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = Invalid(fmt.Sprintf("validator error: %v", r))
		}
	}()

	vctx := ctx
	var cancel context.CancelFunc
	if c.cfg.validationWatchdog > 0 {
		vctx, cancel = context.WithTimeout(ctx, c.cfg.validationWatchdog)
		defer cancel()
	}

	done := make(chan ValidationResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Invalid(fmt.Sprintf("validator error: %v", r))
				return
			}
		}()
		done <- c.validators.Validate(vctx, intent, node)
	}()

	select {
	case result = <-done:
	case <-vctx.Done():
		// Either the watchdog or the ambient ctx fired. If it was the
		// ambient ctx, applyValidation's own ctx check discards this
		// result anyway, propagating cancellation unchanged.
		result = Invalid("validator_timeout")
	}

	if c.cfg.metrics != nil {
		c.cfg.metrics.RecordValidatorInvocation(validationResultLabel(result.Kind))
	}
	c.emitEvent("validation_result", node.routeKeyOr(""), map[string]interface{}{"result": validationResultLabel(result.Kind)})
	return result
}

func validationResultLabel(k ValidationKind) string {
	switch k {
	case ValidationValid:
		return "valid"
	case ValidationIgnore:
		return "ignore"
	case ValidationInvalid:
		return "invalid"
	case ValidationRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// applyValidation applies a validation result to the pipeline: mutate
// state and emit for Valid, synthesize an error dialog for Invalid,
// install a transaction for Redirect, drop for Ignore.
func (c *Choreographer) applyValidation(ctx context.Context, intent Intent, node *Node, result ValidationResult) error {
	if ctx.Err() != nil {
		return nil
	}
	switch result.Kind {
	case ValidationValid:
		if intent.Kind == IntentNavigateTo {
			c.state.AppendWithOptions(node, intent.Options)
			c.timer.SetCurrentNode(node)
		}
		cmd := commandFor(intent)
		c.emitEvent("command_emitted", intent.Route.Key, map[string]interface{}{"kind": cmd.Kind.String()})
		c.recordAudit("command", cmd.Kind.String(), intent.Route.Key, intent.Sender, intent.String())
		c.emitCommand(ctx, cmd)
		return nil

	case ValidationInvalid:
		overlay := Overlay{Kind: "error", Title: "Navigation error", Message: result.Message, Severity: SeverityError}
		dialog := DisplayDialog(overlay, SenderSystem, PrioritySystemDefault, "")
		c.emitLocal(ctx, dialog)
		return nil

	case ValidationRedirect:
		c.tm.Cancel()
		if err := c.tm.Apply(result.OriginalIntent, result.Chain); err != nil {
			log.Printf("nav: transaction apply failed: %v", err)
			return nil
		}
		c.updateTransactionMetric()
		if c.cfg.metrics != nil {
			c.cfg.metrics.IncrementRedirectChains()
		}
		c.emitEvent("transaction_started", result.OriginalIntent.Route.Key, map[string]interface{}{"chain_len": len(result.Chain)})

		// Only the first prefix is emitted here; the rest of the chain
		// advances on CompleteNavTransaction. An empty chain has no
		// prefix to emit: the transaction stays installed, pending
		// nothing, until an explicit CompleteNavTransaction arrives.
		// Calling tm.Next() here in that case would resolve the
		// original before the view layer ever asked for it.
		if len(result.Chain) == 0 {
			return nil
		}
		step, err := c.tm.Next()
		if err != nil {
			log.Printf("nav: transaction next failed immediately after apply: %v", err)
			return nil
		}
		c.updateTransactionMetric()
		c.advanceTransaction(ctx, step)
		return nil

	case ValidationIgnore:
		return nil

	default:
		return nil
	}
}

func (c *Choreographer) updateTransactionMetric() {
	if c.cfg.metrics == nil {
		return
	}
	c.cfg.metrics.SetTransactionsActive(c.tm.Active())
	if !c.tm.Active() {
		c.emitEvent("transaction_completed", "", nil)
	}
}

// routeKeyOr returns n.RouteKey, or fallback if n is nil.
func (n *Node) routeKeyOr(fallback RouteKey) RouteKey {
	if n == nil {
		return fallback
	}
	return n.RouteKey
}
