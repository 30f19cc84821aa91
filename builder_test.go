package hsm_test

import (
	"reflect"
	"strings"
	"testing"

	. "github.com/statomic/hsm"
	"github.com/statomic/hsm/testutil"
)

func TestChartAutoCreatesParents(t *testing.T) {
	c := NewChart("nested")
	c.State("a.b.c")

	if c.Lookup("a") == nil || c.Lookup("a.b") == nil || c.Lookup("a.b.c") == nil {
		t.Fatal("all ancestors should exist after referencing a.b.c")
	}
	if c.Lookup("a.b.c").Parent() != c.Lookup("a.b") {
		t.Error("a.b.c should be parented under a.b")
	}
	if c.Lookup("a.b").Parent() != c.Lookup("a") {
		t.Error("a.b should be parented under a")
	}
	if c.Lookup("a").Parent() != nil {
		t.Error("a should be a root state")
	}
	if c.Lookup("missing") != nil {
		t.Error("Lookup of an unreferenced path should return nil")
	}
}

func TestChartBuildValidation(t *testing.T) {
	ev := Event(User)

	t.Run("unknown transition target", func(t *testing.T) {
		c := NewChart("bad")
		c.State("a").On(ev, "nowhere")
		if _, err := c.Build(); err == nil {
			t.Error("expected an error for an unknown target path")
		}
	})
	t.Run("init target missing", func(t *testing.T) {
		c := NewChart("bad")
		c.State("a").Init("a.ghost")
		if _, err := c.Build(); err == nil {
			t.Error("expected an error for a missing init target")
		}
	})
	t.Run("init target not a direct child", func(t *testing.T) {
		c := NewChart("bad")
		c.State("a").Init("b")
		c.State("b")
		if _, err := c.Build(); err == nil {
			t.Error("expected an error for an init target outside the state")
		}
	})
	t.Run("reserved event value", func(t *testing.T) {
		c := NewChart("bad")
		c.Event("sneaky", Init)
		c.State("a")
		if _, err := c.Build(); err == nil {
			t.Error("expected an error for a reserved event value")
		}
	})
	t.Run("reserved event in binding", func(t *testing.T) {
		c := NewChart("bad")
		c.State("a")
		c.State("b")
		c.State("a").On(Entry, "b")
		if _, err := c.Build(); err == nil {
			t.Error("expected an error for binding a reserved event")
		}
	})
}

// vcrChart builds the VCR chart from the demo program, with entry/exit
// narration captured by the recorder.
func vcrChart(rec *testutil.Recorder) (*Chart, map[string]Event) {
	c := NewChart("vcr")
	events := map[string]Event{
		"power": c.Event("power", User),
		"stop":  c.Event("stop", User+1),
		"play":  c.Event("play", User+2),
		"pause": c.Event("pause", User+3),
		"rec":   c.Event("rec", User+4),
		"rew":   c.Event("rew", User+5),
		"ff":    c.Event("ff", User+6),
	}

	c.State("off").
		Entry(rec.Note("Enter standby mode")).
		Exit(rec.Note("Exit standby mode")).
		On(events["power"], "idle")
	c.State("idle").
		Entry(rec.Note("Enter idle")).
		Exit(rec.Note("Exit idle")).
		Init("idle.stop").
		On(events["power"], "off").
		On(events["play"], "playing").
		On(events["rec"], "recording")
	c.State("idle.stop").
		Entry(rec.Note("Get ready")).
		On(events["rew"], "idle.rew").
		On(events["ff"], "idle.ff")
	c.State("idle.rew").
		Entry(rec.Note("Rewind")).
		On(events["stop"], "idle")
	c.State("idle.ff").
		Entry(rec.Note("Fast forward")).
		On(events["stop"], "idle")
	c.State("playing").
		Entry(rec.Note("Enter playing")).
		Exit(rec.Note("Exit playing")).
		Init("playing.play").
		On(events["power"], "off").
		On(events["stop"], "idle")
	c.State("playing.play").
		Entry(rec.Note("Playing")).
		On(events["pause"], "playing.pause")
	c.State("playing.pause").
		Entry(rec.Note("Playing pause")).
		On(events["play"], "playing.play")
	c.State("recording").
		Entry(rec.Note("Enter recording")).
		Exit(rec.Note("Exit recording")).
		Init("recording.record").
		On(events["power"], "off").
		On(events["stop"], "idle")
	c.State("recording.record").
		Entry(rec.Note("Recording")).
		On(events["pause"], "recording.pause")
	c.State("recording.pause").
		Entry(rec.Note("Recording pause")).
		On(events["rec"], "recording.record")

	return c, events
}

func TestChartVCRScript(t *testing.T) {
	rec := &testutil.Recorder{}
	c, ev := vcrChart(rec)

	m, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}

	m.Start(c.Lookup("off"))
	script := []Event{
		ev["power"], ev["rew"], ev["stop"], ev["play"], ev["pause"],
		ev["play"], ev["stop"], ev["rew"], ev["stop"], ev["rec"],
		ev["stop"], ev["power"],
	}
	for _, e := range script {
		m.Send(Message{Event: e})
	}
	m.Send(Message{Event: Stop})

	want := []string{
		"Enter standby mode",
		"Exit standby mode",
		"Enter idle",
		"Get ready",
		"Rewind",
		"Get ready",
		"Exit idle",
		"Enter playing",
		"Playing",
		"Playing pause",
		"Playing",
		"Exit playing",
		"Enter idle",
		"Get ready",
		"Rewind",
		"Get ready",
		"Exit idle",
		"Enter recording",
		"Recording",
		"Exit recording",
		"Enter idle",
		"Get ready",
		"Exit idle",
		"Enter standby mode",
		"Exit standby mode",
	}
	if got := rec.Trace(); !reflect.DeepEqual(got, want) {
		t.Errorf("narration mismatch:\ngot  %v\nwant %v", got, want)
	}
	if m.Current() != nil {
		t.Errorf("current = %v after machine stop, want none", m.Current())
	}
}

func TestChartDOT(t *testing.T) {
	rec := &testutil.Recorder{}
	c, _ := vcrChart(rec)

	out := c.DOT(c.Lookup("idle.rew"))

	for _, want := range []string{
		`digraph "vcr"`,
		`subgraph "cluster_idle"`,
		`"idle" -> "idle.stop" [style=dashed, label="init"]`,
		`"off" -> "idle" [label="power"]`,
		`"idle.rew" [label="idle.rew" style=filled fillcolor=lightgreen]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}
