package nav

import (
	"context"
	"testing"
	"time"

	"github.com/dshills/navchoreo/nav/emit"
)

func buildTestGraph(t *testing.T) *Graph {
	t.Helper()
	root := NewNode("home")
	profile := NewNode("profile")
	settings := NewNode("settings", WithRequirements("authenticated"))
	login := NewNode("login")
	g, err := NewGraph(root, profile, settings, login)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	return g
}

func awaitCommand(t *testing.T, cmds <-chan Command) Command {
	t.Helper()
	select {
	case cmd := <-cmds:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command")
		return Command{}
	}
}

func assertNoCommand(t *testing.T, cmds <-chan Command) {
	t.Helper()
	select {
	case cmd := <-cmds:
		t.Fatalf("expected no command, got %+v", cmd)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestChoreographer_SimpleNavigation: a plain NavigateTo that every
// validator accepts yields the matching NavigateTo command and updates
// current node.
func TestChoreographer_SimpleNavigation(t *testing.T) {
	g := buildTestGraph(t)
	user := NewUserActor(PriorityUserDefault, 4)
	c, err := New(g, []Actor{user}, WithDebounceWindow(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Initialize(ctx)

	user.Navigate(NewRoute("profile"), NavOptions{AddToBackStack: true})

	cmd := awaitCommand(t, c.Commands())
	if cmd.Kind != CommandNavigateTo {
		t.Fatalf("expected CommandNavigateTo, got %v", cmd.Kind)
	}
	if cmd.Route.Key != "profile" {
		t.Fatalf("expected route 'profile', got %q", cmd.Route.Key)
	}
	if got := c.CurrentNode().Value(); got == nil || got.RouteKey != "profile" {
		t.Fatalf("expected current node 'profile', got %+v", got)
	}
}

// TestChoreographer_RedirectChain: a validator redirecting
// NavigateTo("settings") through a single-step chain to "login" first,
// then resuming the original once the chain drains.
func TestChoreographer_RedirectChain(t *testing.T) {
	g := buildTestGraph(t)
	user := NewUserActor(PriorityUserDefault, 4)
	system := NewSystemActor(PrioritySystemDefault, 4)

	authRequired := ValidatorFunc{
		Prio: 1,
		Fn: func(ctx context.Context, intent Intent, node *Node) ValidationResult {
			if node != nil && node.HasRequirement("authenticated") {
				original := intent
				step := NavigateTo(NewRoute("login"), NavOptions{AddToBackStack: true}, SenderSystem, PrioritySystemDefault)
				return Redirect(original, step)
			}
			return Valid()
		},
	}

	c, err := New(g, []Actor{user, system}, WithDebounceWindow(time.Millisecond), WithValidators(authRequired))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Initialize(ctx)

	user.Navigate(NewRoute("settings"), NavOptions{AddToBackStack: true})

	first := awaitCommand(t, c.Commands())
	if first.Kind != CommandNavigateTo || first.Route.Key != "login" {
		t.Fatalf("expected first command to be NavigateTo(login), got %+v", first)
	}

	system.CompleteTransaction(NewRoute("login"))

	second := awaitCommand(t, c.Commands())
	if second.Kind != CommandNavigateTo || second.Route.Key != "settings" {
		t.Fatalf("expected second command to be NavigateTo(settings), got %+v", second)
	}
}

// TestChoreographer_RedirectEmptyChainRoundTrip: Redirect(original, {})
// followed by CompleteNavTransaction immediately yields
// original's own command, with no intervening chain step.
func TestChoreographer_RedirectEmptyChainRoundTrip(t *testing.T) {
	g := buildTestGraph(t)
	user := NewUserActor(PriorityUserDefault, 4)
	system := NewSystemActor(PrioritySystemDefault, 4)

	passthroughRedirect := ValidatorFunc{
		Prio: 1,
		Fn: func(ctx context.Context, intent Intent, node *Node) ValidationResult {
			return Redirect(intent)
		},
	}

	c, err := New(g, []Actor{user, system}, WithDebounceWindow(time.Millisecond), WithValidators(passthroughRedirect))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Initialize(ctx)

	user.Navigate(NewRoute("profile"), NavOptions{AddToBackStack: true})

	// An empty chain has no prefix to emit: nothing is dispatched until
	// CompleteNavTransaction explicitly arrives.
	assertNoCommand(t, c.Commands())

	system.CompleteTransaction(NewRoute("profile"))

	cmd := awaitCommand(t, c.Commands())
	if cmd.Kind != CommandNavigateTo || cmd.Route.Key != "profile" {
		t.Fatalf("expected command for original intent (profile), got %+v", cmd)
	}
	assertNoCommand(t, c.Commands())
}

// TestChoreographer_Debounce: two identical intents arriving within the
// debounce window collapse into one dispatched intent.
func TestChoreographer_Debounce(t *testing.T) {
	g := buildTestGraph(t)
	user := NewUserActor(PriorityUserDefault, 4)
	c, err := New(g, []Actor{user}, WithDebounceWindow(time.Hour))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Initialize(ctx)

	user.Navigate(NewRoute("profile"), NavOptions{AddToBackStack: true})
	user.Navigate(NewRoute("profile"), NavOptions{AddToBackStack: true})

	awaitCommand(t, c.Commands())
	assertNoCommand(t, c.Commands())
}

// TestChoreographer_BackFromEmptyStack: Back at the root (nothing
// retained below it) is benign: the root is re-emitted as current and
// a single Back command still reaches the view layer.
func TestChoreographer_BackFromEmptyStack(t *testing.T) {
	g := buildTestGraph(t)
	user := NewUserActor(PriorityUserDefault, 4)
	c, err := New(g, []Actor{user}, WithDebounceWindow(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Initialize(ctx)

	user.Back()

	cmd := awaitCommand(t, c.Commands())
	if cmd.Kind != CommandBack {
		t.Fatalf("expected a Back command, got %v", cmd.Kind)
	}
	if got := c.CurrentNode().Value(); got == nil || got.RouteKey != "home" {
		t.Fatalf("expected current node to remain 'home', got %+v", got)
	}
}

// TestChoreographer_InactivityTimeout: an expired per-node screen
// timeout fires InteractionTimeout, which clears the back-stack and
// lands back on root.
func TestChoreographer_InactivityTimeout(t *testing.T) {
	shortTimeoutNode := NewNode("ephemeral", WithScreenTimeout(20*time.Millisecond))
	root := NewNode("home")
	g, err := NewGraph(root, shortTimeoutNode)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}

	user := NewUserActor(PriorityUserDefault, 4)
	c, err := New(g, []Actor{user}, WithDebounceWindow(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Initialize(ctx)

	user.Navigate(NewRoute("ephemeral"), NavOptions{AddToBackStack: true})
	awaitCommand(t, c.Commands()) // the navigate itself

	cmd := awaitCommand(t, c.Commands())
	if cmd.Kind != CommandClearBackStack {
		t.Fatalf("expected ClearBackStack from inactivity timeout, got %v", cmd.Kind)
	}
	if got := c.CurrentNode().Value(); got == nil || got.RouteKey != "home" {
		t.Fatalf("expected current node to be 'home' after timeout, got %+v", got)
	}
}

// TestChoreographer_CancellationStopsLoop: cancelling the top-level
// context halts dispatch; an intent sent afterward produces no command.
func TestChoreographer_CancellationStopsLoop(t *testing.T) {
	g := buildTestGraph(t)
	user := NewUserActor(PriorityUserDefault, 4)
	c, err := New(g, []Actor{user}, WithDebounceWindow(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.Initialize(ctx)
	cancel()
	time.Sleep(50 * time.Millisecond)

	user.Navigate(NewRoute("profile"), NavOptions{AddToBackStack: true})
	assertNoCommand(t, c.Commands())
}

// TestChoreographer_EmitterReceivesLifecycleEvents exercises
// WithEmitter end to end using the buffered emitter, checking at least
// one intent_received and one command_emitted event are recorded.
func TestChoreographer_EmitterReceivesLifecycleEvents(t *testing.T) {
	g := buildTestGraph(t)
	user := NewUserActor(PriorityUserDefault, 4)
	buffer := emit.NewBufferedEmitter()
	c, err := New(g, []Actor{user},
		WithDebounceWindow(time.Millisecond),
		WithEmitter(buffer),
		WithSessionID("test-session"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Initialize(ctx)

	user.Navigate(NewRoute("profile"), NavOptions{AddToBackStack: true})
	awaitCommand(t, c.Commands())

	history := buffer.GetHistory("test-session")
	var sawReceived, sawEmitted bool
	for _, ev := range history {
		switch ev.Msg {
		case "intent_received":
			sawReceived = true
		case "command_emitted":
			sawEmitted = true
		}
	}
	if !sawReceived {
		t.Error("expected an intent_received event")
	}
	if !sawEmitted {
		t.Error("expected a command_emitted event")
	}
}
