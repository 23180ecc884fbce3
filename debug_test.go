package chime

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// captureLog routes chime logging into a buffer for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

// ---- Debug mode tests ------------------------------------------------------

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	s := newTestScene(t)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewGroup("parent")
	s.AddChild(parent)

	child := NewGroup("child")
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed node, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestDebugMode_DisposedParentPanics(t *testing.T) {
	s := newTestScene(t)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewGroup("parent")
	parent.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild to disposed parent, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, `"parent"`) {
			t.Errorf("panic message should name the node, got: %s", msg)
		}
	}()

	parent.AddChild(NewGroup("child"))
}

func TestDebugMode_LastSceneWins(t *testing.T) {
	a := newTestScene(t)
	b := newTestScene(t)
	a.SetDebugMode(true)
	b.SetDebugMode(false)

	child := NewGroup("child")
	child.Dispose()

	// a is still in debug mode, but the node checks follow b.
	a.AddChild(child)
	if !a.debug {
		t.Error("scene a lost its own debug flag")
	}
}

func TestReleaseMode_DisposedNodeNoPanic(t *testing.T) {
	s := newTestScene(t)
	s.SetDebugMode(false)

	child := NewGroup("child")
	child.Dispose()

	s.AddChild(child)
	if child.Parent() != Node(s) {
		t.Error("release mode should attach the node without checks")
	}
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	buf := captureLog(t)
	s := newTestScene(t)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	var current Node = s
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewGroup(fmt.Sprintf("depth_%d", i))
		current.Base().AddChild(child)
		current = child
	}

	if !strings.Contains(buf.String(), "tree depth exceeds threshold") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	buf := captureLog(t)
	s := newTestScene(t)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewGroup("many_children")
	s.AddChild(parent)
	for i := 0; i < debugMaxChildCount+1; i++ {
		parent.AddChild(NewGroup(fmt.Sprintf("c_%d", i)))
	}

	out := buf.String()
	if !strings.Contains(out, "child count exceeds threshold") || !strings.Contains(out, "many_children") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestDebugMode_FrameLog(t *testing.T) {
	buf := captureLog(t)
	f := newSceneFixture(t)
	f.scene.SetDebugMode(true)
	defer f.scene.SetDebugMode(false)

	f.scene.Simulate(0.016)
	if err := f.scene.Render(f.pipe, f.cam); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "chime: frame") {
		t.Fatalf("expected frame log, got: %q", out)
	}
	for _, want := range []string{"geometry=1", "lights=1", "scene=scene"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame log missing %s: %q", want, out)
		}
	}
}

func TestReleaseMode_NoFrameLog(t *testing.T) {
	buf := captureLog(t)
	f := newSceneFixture(t)

	if err := f.scene.Render(f.pipe, f.cam); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "chime: frame") {
		t.Errorf("frame log written outside debug mode: %q", buf.String())
	}
}
