package nav

import (
	"testing"
	"time"
)

func TestNewStateHandler_PushesAndEmitsRoot(t *testing.T) {
	root := NewNode("home")
	g, err := NewGraph(root)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	h := NewStateHandler(g)

	if h.CurrentNode() != root {
		t.Fatalf("expected CurrentNode to be root immediately after construction, got %+v", h.CurrentNode())
	}
	if h.Depth() != 1 {
		t.Errorf("expected Depth 1, got %d", h.Depth())
	}
}

func TestStateHandler_AppendEmitsNewCurrent(t *testing.T) {
	root := NewNode("home")
	profile := NewNode("profile")
	g, _ := NewGraph(root, profile)
	h := NewStateHandler(g)

	ch, unsub := h.Current().Subscribe()
	defer unsub()
	<-ch // drain the root value delivered on subscribe

	h.Append(profile, true)
	select {
	case got := <-ch:
		if got != profile {
			t.Errorf("expected subscriber to observe profile, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a published value after Append")
	}
	if h.CurrentNode() != profile {
		t.Errorf("expected CurrentNode to be profile, got %+v", h.CurrentNode())
	}
}

func TestStateHandler_AppendWithOptionsRespectsClearBackStack(t *testing.T) {
	root := NewNode("home")
	profile := NewNode("profile")
	settings := NewNode("settings")
	g, _ := NewGraph(root, profile, settings)
	h := NewStateHandler(g)

	h.Append(profile, true)
	h.AppendWithOptions(settings, NavOptions{ClearBackStack: true})

	if h.Depth() != 1 {
		t.Errorf("expected ClearBackStack to collapse the stack to 1 entry, got %d", h.Depth())
	}
	if h.CurrentNode() != settings {
		t.Errorf("expected CurrentNode to be settings, got %+v", h.CurrentNode())
	}
}

func TestStateHandler_PopFromSingleEntryIsBenignAndStaysAtRoot(t *testing.T) {
	root := NewNode("home")
	g, _ := NewGraph(root)
	h := NewStateHandler(g)

	got := h.Pop()
	if got != root {
		t.Errorf("expected benign Pop to return root, got %+v", got)
	}
	if h.CurrentNode() != root {
		t.Errorf("expected CurrentNode to remain root, got %+v", h.CurrentNode())
	}
}

func TestStateHandler_PopReturnsToPriorEntry(t *testing.T) {
	root := NewNode("home")
	profile := NewNode("profile")
	g, _ := NewGraph(root, profile)
	h := NewStateHandler(g)

	h.Append(profile, true)
	got := h.Pop()
	if got != root {
		t.Errorf("expected Pop to return to root, got %+v", got)
	}
}

func TestStateHandler_PopUntilFoundMatch(t *testing.T) {
	root := NewNode("home")
	profile := NewNode("profile")
	settings := NewNode("settings")
	g, _ := NewGraph(root, profile, settings)
	h := NewStateHandler(g)

	h.Append(profile, true)
	h.Append(settings, true)

	if ok := h.PopUntil("profile"); !ok {
		t.Fatal("expected PopUntil to succeed")
	}
	if h.CurrentNode() != profile {
		t.Errorf("expected CurrentNode to be profile, got %+v", h.CurrentNode())
	}
}

func TestStateHandler_PopUntilNoMatchSelfHealsToRoot(t *testing.T) {
	root := NewNode("home")
	profile := NewNode("profile")
	g, _ := NewGraph(root, profile)
	h := NewStateHandler(g)

	h.Append(profile, true)
	if ok := h.PopUntil("nonexistent"); !ok {
		t.Fatal("expected PopUntil to self-heal and report success")
	}
	if h.CurrentNode() != root {
		t.Errorf("expected CurrentNode to be root after self-heal, got %+v", h.CurrentNode())
	}
}

func TestStateHandler_ClearCollapsesToRoot(t *testing.T) {
	root := NewNode("home")
	profile := NewNode("profile")
	g, _ := NewGraph(root, profile)
	h := NewStateHandler(g)

	h.Append(profile, true)
	h.Clear()

	if h.Depth() != 1 {
		t.Errorf("expected Depth 1 after Clear, got %d", h.Depth())
	}
	if h.CurrentNode() != root {
		t.Errorf("expected CurrentNode to be root after Clear, got %+v", h.CurrentNode())
	}
}

func TestStateHandler_ObserversNotifiedOnNavigate(t *testing.T) {
	root := NewNode("home")
	profile := NewNode("profile")
	var seen []*Node
	obs := ObserverFunc(func(to *Node) { seen = append(seen, to) })

	g, _ := NewGraph(root, profile)
	h := NewStateHandler(g, obs)
	h.Append(profile, true)

	if len(seen) != 2 {
		t.Fatalf("expected observer notified for construction and the append, got %d calls", len(seen))
	}
	if seen[0] != root || seen[1] != profile {
		t.Errorf("expected [root, profile], got %+v", seen)
	}
}

func TestCurrentNodeObservable_UnsubscribeClosesChannel(t *testing.T) {
	o := newCurrentNodeObservable()
	o.publish(NewNode("a"))

	ch, unsub := o.Subscribe()
	<-ch
	unsub()

	if _, ok := <-ch; ok {
		t.Error("expected the channel to be closed after unsubscribe")
	}
}

func TestCurrentNodeObservable_LastWriteWinsForSlowSubscriber(t *testing.T) {
	o := newCurrentNodeObservable()
	ch, unsub := o.Subscribe()
	defer unsub()

	a := NewNode("a")
	b := NewNode("b")
	o.publish(a)
	o.publish(b)

	got := <-ch
	if got != b {
		t.Errorf("expected the slow subscriber to observe only the latest value b, got %+v", got)
	}
}
