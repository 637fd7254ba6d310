package nav

import "time"

// Option configures a Choreographer at construction. Functional options
// let New take only what callers actually want to override.
//
// Example:
//
//	c, err := nav.New(g, actors,
//	    nav.WithDebounceWindow(70*time.Millisecond),
//	    nav.WithMaxIntentRetries(3),
//	    nav.WithCommandBufferCapacity(64),
//	)
type Option func(*choreographerConfig) error

// choreographerConfig collects options before New applies them.
type choreographerConfig struct {
	sessionID            string
	debounceWindow       time.Duration
	maxIntentRetries     int
	retryBaseDelay       time.Duration
	retryMaxDelay        time.Duration
	defaultScreenTimeout time.Duration
	commandBufferCap     int
	localSourceCap       int
	validationWatchdog   time.Duration
	metrics              *ChoreographerMetrics
	emitter              Emitter
	observers            []Observer
	validators           []Validator
	audit                AuditStore
}

func defaultChoreographerConfig() choreographerConfig {
	return choreographerConfig{
		sessionID:            "default",
		debounceWindow:       70 * time.Millisecond,
		maxIntentRetries:     3,
		retryBaseDelay:       20 * time.Millisecond,
		retryMaxDelay:        500 * time.Millisecond,
		defaultScreenTimeout: NoTimeout,
		commandBufferCap:     64,
		localSourceCap:       16,
	}
}

// WithSessionID tags every emitted event and audit record with sessionID
// (default "default"), distinguishing one choreographer instance's
// lifecycle from another's in shared emitters/audit stores.
func WithSessionID(sessionID string) Option {
	return func(cfg *choreographerConfig) error {
		cfg.sessionID = sessionID
		return nil
	}
}

// WithDebounceWindow sets the debounce-distinct window. Default: 70ms.
func WithDebounceWindow(d time.Duration) Option {
	return func(cfg *choreographerConfig) error {
		cfg.debounceWindow = d
		return nil
	}
}

// WithMaxIntentRetries bounds how many times an invalid-state failure is
// retried with backoff before the choreographer gives up on the intent.
// Default: 3.
func WithMaxIntentRetries(n int) Option {
	return func(cfg *choreographerConfig) error {
		cfg.maxIntentRetries = n
		return nil
	}
}

// WithRetryBackoff overrides the base and max delay used between
// IllegalState retry attempts. Defaults: 20ms base, 500ms max.
func WithRetryBackoff(base, max time.Duration) Option {
	return func(cfg *choreographerConfig) error {
		cfg.retryBaseDelay = base
		cfg.retryMaxDelay = max
		return nil
	}
}

// WithDefaultScreenTimeout sets the engine-wide inactivity timeout used
// for nodes that don't specify their own ScreenTimeout. Default:
// NoTimeout.
func WithDefaultScreenTimeout(d time.Duration) Option {
	return func(cfg *choreographerConfig) error {
		cfg.defaultScreenTimeout = d
		return nil
	}
}

// WithCommandBufferCapacity sets the capacity of the outgoing command
// channel. When full, dispatch suspends until the view layer drains it
// rather than dropping commands. Default: 64.
func WithCommandBufferCapacity(n int) Option {
	return func(cfg *choreographerConfig) error {
		cfg.commandBufferCap = n
		return nil
	}
}

// WithLocalSourceCapacity sets the buffer capacity of the choreographer's
// own internally-generated intents (redirect-chain steps and the error
// dialogs raised for Invalid results). Default: 16.
func WithLocalSourceCapacity(n int) Option {
	return func(cfg *choreographerConfig) error {
		cfg.localSourceCap = n
		return nil
	}
}

// WithValidationWatchdog bounds how long a single validator chain may
// run before being treated as Invalid("validator_timeout"). Zero (the
// default) disables
// the watchdog, trusting validators to honor ctx cancellation.
func WithValidationWatchdog(d time.Duration) Option {
	return func(cfg *choreographerConfig) error {
		cfg.validationWatchdog = d
		return nil
	}
}

// WithMetrics attaches a ChoreographerMetrics to record dispatch-loop
// observability.
func WithMetrics(m *ChoreographerMetrics) Option {
	return func(cfg *choreographerConfig) error {
		cfg.metrics = m
		return nil
	}
}

// WithEmitter attaches an Emitter that receives lifecycle events for
// every dispatched intent and emitted command.
func WithEmitter(e Emitter) Option {
	return func(cfg *choreographerConfig) error {
		cfg.emitter = e
		return nil
	}
}

// WithObservers registers StateHandler observers notified after every
// back-stack transition.
func WithObservers(observers ...Observer) Option {
	return func(cfg *choreographerConfig) error {
		cfg.observers = append(cfg.observers, observers...)
		return nil
	}
}

// WithValidators registers the validator chain evaluated on every
// admitted intent.
func WithValidators(validators ...Validator) Option {
	return func(cfg *choreographerConfig) error {
		cfg.validators = append(cfg.validators, validators...)
		return nil
	}
}

// WithAuditStore attaches an append-only audit trail of dispatched
// intents and emitted commands. The choreographer only ever writes to
// it; it is never read back to reconstruct navigation state.
func WithAuditStore(a AuditStore) Option {
	return func(cfg *choreographerConfig) error {
		cfg.audit = a
		return nil
	}
}
