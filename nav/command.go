package nav

// CommandKind tags which variant a Command carries.
type CommandKind int

const (
	CommandNavigateTo CommandKind = iota
	CommandBack
	CommandPopUpTo
	CommandClearBackStack
	CommandDialog
	CommandDismissDialog
)

func (k CommandKind) String() string {
	switch k {
	case CommandNavigateTo:
		return "NavigateTo"
	case CommandBack:
		return "Back"
	case CommandPopUpTo:
		return "PopUpTo"
	case CommandClearBackStack:
		return "ClearBackStack"
	case CommandDialog:
		return "Dialog"
	case CommandDismissDialog:
		return "DismissDialog"
	default:
		return "Unknown"
	}
}

// Command is the target-side counterpart to Intent: the vocabulary the
// view layer consumes. It is one-to-one from intent kinds that reach
// the emit stage.
type Command struct {
	Kind CommandKind

	Route     Route
	Options   NavOptions
	Inclusive bool

	Overlay        Overlay
	DialogID       string
	PriorDismissID string
}

// commandFor converts a validated Intent into its Command form.
// CompleteNavTransaction never reaches the emit stage itself and maps to
// the zero Command.
func commandFor(i Intent) Command {
	switch i.Kind {
	case IntentNavigateTo:
		return Command{Kind: CommandNavigateTo, Route: i.Route, Options: i.Options}
	case IntentBack:
		return Command{Kind: CommandBack}
	case IntentPopUpTo:
		return Command{Kind: CommandPopUpTo, Route: i.Route, Inclusive: i.Inclusive}
	case IntentClearBackStack, IntentInteractionTimeout:
		return Command{Kind: CommandClearBackStack}
	case IntentDisplayDialog:
		return Command{Kind: CommandDialog, Overlay: i.OverlayPayload, DialogID: i.DialogID, PriorDismissID: i.DismissID}
	case IntentDismissOverlay:
		return Command{Kind: CommandDismissDialog, DialogID: i.DismissID}
	default:
		return Command{}
	}
}
