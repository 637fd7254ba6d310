package nav

import (
	"context"
	"fmt"
	"sort"
)

// ValidationKind tags the four-variant ValidationResult.
type ValidationKind int

const (
	ValidationValid ValidationKind = iota
	ValidationIgnore
	ValidationInvalid
	ValidationRedirect
)

// ValidationResult is the outcome of evaluating a Validator against an
// (Intent, Node) pair.
type ValidationResult struct {
	Kind ValidationKind

	// Message is set for ValidationInvalid.
	Message string

	// OriginalIntent and Chain are set for ValidationRedirect. Chain is
	// ordered descending by priority before being handed to the
	// transaction manager.
	OriginalIntent Intent
	Chain          []Intent
}

// Valid returns a Valid result.
func Valid() ValidationResult { return ValidationResult{Kind: ValidationValid} }

// Ignore returns an Ignore result.
func Ignore() ValidationResult { return ValidationResult{Kind: ValidationIgnore} }

// Invalid returns an Invalid result carrying message.
func Invalid(message string) ValidationResult {
	return ValidationResult{Kind: ValidationInvalid, Message: message}
}

// Redirect returns a Redirect result: original's command is emitted,
// without further validation, once chain drains; chain is the ordered
// set of prefix intents.
func Redirect(original Intent, chain ...Intent) ValidationResult {
	return ValidationResult{Kind: ValidationRedirect, OriginalIntent: original, Chain: chain}
}

// Validator evaluates (intent, node) and reports whether/how the intent
// should proceed. Validators may await external state; they must honor
// ctx cancellation.
type Validator interface {
	// Priority controls evaluation order: the CompositeValidator scans
	// validators in order of ascending priority (lower runs first),
	// ties broken by the order they were supplied in.
	Priority() int
	Validate(ctx context.Context, intent Intent, node *Node) ValidationResult
}

// ValidatorFunc adapts a plain function plus a fixed priority to the
// Validator interface.
type ValidatorFunc struct {
	Prio int
	Fn   func(ctx context.Context, intent Intent, node *Node) ValidationResult
}

// Priority implements Validator.
func (f ValidatorFunc) Priority() int { return f.Prio }

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, intent Intent, node *Node) ValidationResult {
	return f.Fn(ctx, intent, node)
}

// CompositeValidator is the core composite validator chain: a struct
// holding a sorted slice of validators.
type CompositeValidator struct {
	validators []Validator
}

// NewCompositeValidator builds a CompositeValidator, sorting validators
// ascending by Priority with a stable sort so ties preserve the order
// they were supplied in.
func NewCompositeValidator(validators ...Validator) *CompositeValidator {
	sorted := make([]Validator, len(validators))
	copy(sorted, validators)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &CompositeValidator{validators: sorted}
}

// Validate scans the configured validators in priority order, combining
// their results:
//
//   - Invalid short-circuits and is returned immediately.
//   - Ignore short-circuits and is returned immediately.
//   - Valid is absorbed; scanning continues.
//   - Redirect is merged with any prior Redirect: the merged result
//     carries the union of required prefix intents (de-duplicated by
//     value, via Intent.DebounceKey, so two validators redirecting to
//     the same destination contribute a single step) and the most
//     recently seen original_intent. Scanning continues after a redirect.
//   - If the scan completes with at least one redirect accumulated, the
//     merged redirect (with its chain sorted descending by priority,
//     ties broken by insertion order) is returned; otherwise Valid.
//
// A validator that panics is treated as Invalid("validator error")
// rather than propagating; that recovery happens one layer up, in the
// Choreographer, which is the component with visibility into injecting
// the resulting error dialog.
func (c *CompositeValidator) Validate(ctx context.Context, intent Intent, node *Node) ValidationResult {
	var merged *ValidationResult
	seen := make(map[string]struct{})
	var chain []Intent

	for _, v := range c.validators {
		result := v.Validate(ctx, intent, node)

		switch result.Kind {
		case ValidationInvalid, ValidationIgnore:
			return result
		case ValidationValid:
			continue
		case ValidationRedirect:
			if merged == nil {
				merged = &ValidationResult{Kind: ValidationRedirect}
			}
			merged.OriginalIntent = result.OriginalIntent
			for i := range result.Chain {
				key := result.Chain[i].DebounceKey()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				chain = append(chain, result.Chain[i])
			}
		}
	}

	if merged == nil {
		return Valid()
	}

	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].Priority > chain[j].Priority
	})
	merged.Chain = chain
	return *merged
}

// Validators exposes the sorted validator slice for inspection/tests.
func (c *CompositeValidator) Validators() []Validator {
	out := make([]Validator, len(c.validators))
	copy(out, c.validators)
	return out
}

// RequirementsValidator rejects any intent, whatever its kind, whose
// node carries a requirement tag not present in the
// caller-supplied set of satisfied tags, redirecting instead to a named
// fallback route (e.g. a login screen) when one is configured.
type RequirementsValidator struct {
	Prio          int
	Satisfied     func(ctx context.Context) map[string]struct{}
	FallbackRoute RouteKey
	FallbackPrio  int
}

// Priority implements Validator.
func (r *RequirementsValidator) Priority() int { return r.Prio }

// Validate implements Validator.
func (r *RequirementsValidator) Validate(ctx context.Context, intent Intent, node *Node) ValidationResult {
	if node == nil || len(node.Requirements) == 0 {
		return Valid()
	}
	satisfied := r.Satisfied(ctx)
	for tag := range node.Requirements {
		if _, ok := satisfied[tag]; ok {
			continue
		}
		if r.FallbackRoute == "" {
			return Invalid(fmt.Sprintf("missing requirement %q for route %q", tag, node.RouteKey))
		}
		return Redirect(intent, NavigateTo(
			NewRoute(r.FallbackRoute),
			NavOptions{SingleTop: true, AddToBackStack: true},
			SenderSystem,
			r.FallbackPrio,
		))
	}
	return Valid()
}
