// Command vcr drives a VCR-style state chart through a scripted sequence of
// events, printing a narration of the machine's progress. Run with -v for a
// debug trace of the engine, or -dot to print the chart as Graphviz DOT and
// exit.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/statomic/hsm"
)

func main() {
	verbose := flag.Bool("v", false, "trace engine activity")
	dot := flag.Bool("dot", false, "print the chart as Graphviz DOT and exit")
	flag.Parse()

	c := hsm.NewChart("vcr")
	power := c.Event("power", hsm.User)
	stop := c.Event("stop", hsm.User+1)
	play := c.Event("play", hsm.User+2)
	pause := c.Event("pause", hsm.User+3)
	rec := c.Event("rec", hsm.User+4)
	rew := c.Event("rew", hsm.User+5)
	ff := c.Event("ff", hsm.User+6)

	say := func(line string) hsm.Handler {
		return func(hsm.Message) { fmt.Println(line) }
	}

	c.State("off").
		Entry(say("Enter standby mode")).
		Exit(say("Exit standby mode")).
		On(power, "idle")
	c.State("idle").
		Entry(say("Enter idle")).
		Exit(say("Exit idle")).
		Init("idle.stop").
		On(power, "off").
		On(play, "playing").
		On(rec, "recording")
	c.State("idle.stop").
		Entry(say("Get ready")).
		On(rew, "idle.rew").
		On(ff, "idle.ff")
	c.State("idle.rew").
		Entry(say("Rewind")).
		On(stop, "idle")
	c.State("idle.ff").
		Entry(say("Fast forward")).
		On(stop, "idle")
	c.State("playing").
		Entry(say("Enter playing")).
		Exit(say("Exit playing")).
		Init("playing.play").
		On(power, "off").
		On(stop, "idle")
	c.State("playing.play").
		Entry(say("Playing")).
		On(pause, "playing.pause")
	c.State("playing.pause").
		Entry(say("Playing pause")).
		On(play, "playing.play")
	c.State("recording").
		Entry(say("Enter recording")).
		Exit(say("Exit recording")).
		Init("recording.record").
		On(power, "off").
		On(stop, "idle")
	c.State("recording.record").
		Entry(say("Recording")).
		On(pause, "recording.pause")
	c.State("recording.pause").
		Entry(say("Recording pause")).
		On(rec, "recording.record")

	if *dot {
		fmt.Print(c.DOT(nil))
		return
	}

	var opts []hsm.Option
	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger:", err)
			os.Exit(1)
		}
		defer log.Sync()
		opts = append(opts, hsm.WithLogger(log))
	}

	m, err := c.Build(opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}

	m.Start(c.Lookup("off"))

	script := []hsm.Event{
		power, // turn on the power
		rew,   // rewind to the beginning
		stop,  // beginning of tape, end of rewinding
		play,  // watching a movie
		pause, // a little break
		play,  // resume watching
		stop,  // end of the movie
		rew,   // rewind to the beginning
		stop,  // beginning of tape, end of rewinding
		rec,   // record something
		stop,  // end of recording
		power, // turn off the power
	}
	for _, e := range script {
		m.Send(hsm.Message{Event: e})
	}
	m.Send(hsm.Message{Event: hsm.Stop}) // stop the state machine
}
