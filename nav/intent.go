package nav

import (
	"fmt"

	"github.com/google/uuid"
)

// IntentKind tags which variant an Intent carries.
type IntentKind int

const (
	IntentNavigateTo IntentKind = iota
	IntentBack
	IntentPopUpTo
	IntentClearBackStack
	IntentInteractionTimeout
	IntentDisplayDialog
	IntentDismissOverlay
	IntentCompleteNavTransaction
)

func (k IntentKind) String() string {
	switch k {
	case IntentNavigateTo:
		return "NavigateTo"
	case IntentBack:
		return "Back"
	case IntentPopUpTo:
		return "PopUpTo"
	case IntentClearBackStack:
		return "ClearBackStack"
	case IntentInteractionTimeout:
		return "InteractionTimeout"
	case IntentDisplayDialog:
		return "DisplayDialog"
	case IntentDismissOverlay:
		return "DismissOverlay"
	case IntentCompleteNavTransaction:
		return "CompleteNavTransaction"
	default:
		return "Unknown"
	}
}

// Overlay is opaque payload for DisplayDialog, carrying whatever the view
// layer needs to render a dialog/overlay. The core never inspects it.
type Overlay struct {
	Kind     string
	Title    string
	Message  string
	Severity Severity
}

// Severity classifies an Overlay, used by the choreographer to
// synthesize the system error-dialog on Invalid validation results.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Intent is the tagged union of navigation requests. Exactly one of the
// Route/OverlayPayload fields is meaningful, selected by Kind;
// constructors (NavigateTo, Back, PopUpTo, ...) are the supported way to
// build one rather than raw struct literals.
type Intent struct {
	Kind IntentKind

	// Route is used by NavigateTo and PopUpTo.
	Route Route
	// Options is used by NavigateTo.
	Options NavOptions
	// Inclusive is used by PopUpTo.
	Inclusive bool

	// OverlayPayload is used by DisplayDialog.
	OverlayPayload Overlay
	// DialogID identifies the dialog a DisplayDialog intent will open, so
	// a later DismissOverlay can name it. Assigned by the constructor.
	DialogID string
	// DismissID optionally accompanies DisplayDialog (a dialog this one
	// supersedes) and is the subject of DismissOverlay.
	DismissID string

	// CompletedRoute is used by CompleteNavTransaction to identify which
	// transaction prefix just finished.
	CompletedRoute Route

	Sender   Sender
	Priority int
}

// NavigateTo builds a NavigateTo intent.
func NavigateTo(route Route, opts NavOptions, sender Sender, priority int) Intent {
	return Intent{Kind: IntentNavigateTo, Route: route, Options: opts, Sender: sender, Priority: priority}
}

// Back builds a Back intent.
func Back(sender Sender, priority int) Intent {
	return Intent{Kind: IntentBack, Sender: sender, Priority: priority}
}

// PopUpTo builds a PopUpTo intent.
func PopUpTo(route Route, inclusive bool, sender Sender, priority int) Intent {
	return Intent{Kind: IntentPopUpTo, Route: route, Inclusive: inclusive, Sender: sender, Priority: priority}
}

// ClearBackStack builds a ClearBackStack intent.
func ClearBackStack(sender Sender, priority int) Intent {
	return Intent{Kind: IntentClearBackStack, Sender: sender, Priority: priority}
}

// InteractionTimeout builds an InteractionTimeout intent. Sender is
// always SenderSystem.
func InteractionTimeout(priority int) Intent {
	return Intent{Kind: IntentInteractionTimeout, Sender: SenderSystem, Priority: priority}
}

// DisplayDialog builds a DisplayDialog intent. Each call mints a fresh
// DialogID; the view layer echoes it back through DismissOverlay.
func DisplayDialog(overlay Overlay, sender Sender, priority int, dismissID string) Intent {
	return Intent{
		Kind:           IntentDisplayDialog,
		OverlayPayload: overlay,
		DialogID:       uuid.NewString(),
		DismissID:      dismissID,
		Sender:         sender,
		Priority:       priority,
	}
}

// DismissOverlay builds a DismissOverlay intent.
func DismissOverlay(dialogID string, sender Sender, priority int) Intent {
	return Intent{Kind: IntentDismissOverlay, DismissID: dialogID, Sender: sender, Priority: priority}
}

// CompleteNavTransaction builds a CompleteNavTransaction intent. Sender
// is always SenderSystem and Priority is always 0.
func CompleteNavTransaction(route Route) Intent {
	return Intent{Kind: IntentCompleteNavTransaction, CompletedRoute: route, Sender: SenderSystem, Priority: 0}
}

// DebounceKey is the default key selector used by debounce-distinct:
// structural equality of the intent itself, rendered as a comparable
// string so non-comparable payload fields (Route.Args, an `any`) don't
// panic a map/struct comparison. DialogID is deliberately excluded:
// two back-to-back identical dialogs are duplicates even though each
// minted its own ID.
func (i Intent) DebounceKey() string {
	return fmt.Sprintf("%d|%s|%v|%+v|%v|%v|%s|%s|%+v|%d|%d",
		i.Kind, i.Route.Key, i.Route.Args, i.Options, i.Inclusive,
		i.OverlayPayload, i.DismissID, i.CompletedRoute.Key, i.CompletedRoute.Args,
		i.Sender, i.Priority)
}

func (i Intent) String() string {
	return fmt.Sprintf("Intent{%s route=%s sender=%s prio=%d}", i.Kind, i.Route.Key, i.Sender, i.Priority)
}
