// Command navdemo demonstrates wiring a Graph, Actors, validators and a
// Choreographer together end to end: a small, self-contained program
// that prints every lifecycle event and emitted command to stdout.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dshills/navchoreo/nav"
	"github.com/dshills/navchoreo/nav/emit"
)

func main() {
	fmt.Println("Navigation Choreographer Demo")
	fmt.Println("=============================")
	fmt.Println()

	root := nav.NewNode("home", nav.WithAppearance(nav.Appearance{Title: "Home"}))
	profile := nav.NewNode("profile", nav.WithAppearance(nav.Appearance{Title: "Profile"}))
	settings := nav.NewNode("settings",
		nav.WithAppearance(nav.Appearance{Title: "Settings"}),
		nav.WithRequirements("authenticated"),
	)
	login := nav.NewNode("login", nav.WithAppearance(nav.Appearance{Title: "Login"}))

	graph, err := nav.NewGraph(root, profile, settings, login)
	if err != nil {
		log.Fatalf("building graph: %v", err)
	}

	user := nav.NewUserActor(nav.PriorityUserDefault, 8)
	system := nav.NewSystemActor(nav.PrioritySystemDefault, 8)

	authenticated := false
	authRedirect := &nav.RequirementsValidator{
		Prio: 1,
		Satisfied: func(ctx context.Context) map[string]struct{} {
			if authenticated {
				return map[string]struct{}{"authenticated": {}}
			}
			return map[string]struct{}{}
		},
		FallbackRoute: "login",
		FallbackPrio:  nav.PrioritySystemDefault,
	}

	emitter := emit.NewLogEmitter(os.Stdout, false)

	choreo, err := nav.New(graph, []nav.Actor{user, system},
		nav.WithSessionID("navdemo-001"),
		nav.WithEmitter(emitter),
		nav.WithValidators(authRedirect),
		nav.WithDebounceWindow(50*time.Millisecond),
	)
	if err != nil {
		log.Fatalf("constructing choreographer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	choreo.Initialize(ctx)

	go func() {
		for cmd := range choreo.Commands() {
			fmt.Printf("  [Command] %s route=%q\n", cmd.Kind, cmd.Route.Key)
		}
	}()

	fmt.Println("Navigating to profile...")
	user.Navigate(nav.NewRoute("profile"), nav.NavOptions{AddToBackStack: true})
	time.Sleep(100 * time.Millisecond)

	fmt.Println("Navigating to settings while unauthenticated (expect redirect to login)...")
	user.Navigate(nav.NewRoute("settings"), nav.NavOptions{AddToBackStack: true})
	time.Sleep(100 * time.Millisecond)

	fmt.Println("Login screen done presenting, completing the pending transaction...")
	system.CompleteTransaction(nav.NewRoute("login"))
	time.Sleep(100 * time.Millisecond)

	fmt.Println("Signing in, then retrying settings...")
	authenticated = true
	user.Navigate(nav.NewRoute("settings"), nav.NavOptions{AddToBackStack: true})
	time.Sleep(100 * time.Millisecond)

	fmt.Println("Navigating back...")
	user.Back()
	time.Sleep(100 * time.Millisecond)

	fmt.Println()
	fmt.Println("Demo complete.")
}
