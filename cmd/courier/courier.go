// Program courier runs a command dispatch service. It bridges HTTP request
// envelopes to a fixed set of named handlers, and forwards the notifications
// those handlers emit to an external consumer, here a broadcast hub that
// writes each note to stdout.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/creachadair/command"
	"github.com/creachadair/courier"
	"github.com/creachadair/courier/broadcast"
	"github.com/creachadair/courier/handler"
	"github.com/creachadair/courier/server"
	"github.com/creachadair/flax"
	"github.com/creachadair/taskgroup"
)

var flags struct {
	Addr    string `flag:"addr,Service address (host:port)" env:"COURIER_ADDR" envDefault:"localhost:8117"`
	SinkCap int    `flag:"sink-capacity,Notification channel capacity (0 for the default)" env:"COURIER_SINK_CAP"`
}

func main() {
	// Environment variables provide the flag defaults, so that explicit
	// flags still win.
	if err := env.Parse(&flags); err != nil {
		log.Fatalf("Parse environment: %v", err)
	}

	root := &command.C{
		Name:     filepath.Base(os.Args[0]),
		Help:     "A command dispatch service bridging requests to named handlers.",
		SetFlags: command.Flags(flax.MustBind, &flags),
		Commands: []*command.C{
			{
				Name: "serve",
				Help: `Run the dispatch service.

The service accepts POST requests at "/" whose body is a JSON envelope
{"command": ..., "params": ...}, and replies either with a response
envelope {"response": ...} or a failure envelope
{"message": "not success", "from": ...}.

Handler notifications are forwarded to standard output, one per line.`,
				Run: runServe,
			},
			{
				Name:  "call",
				Usage: "<command> [<params>]",
				Help:  "Send a request to a running service and print the result.",
				Run:   runCall,
			},
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

// demoRegistry returns the compiled-in handler set served by the demo
// service.
func demoRegistry() *courier.Registry {
	return courier.NewRegistry(
		courier.Bind("greet", handler.Notify(
			func(req *courier.Request) string { return "greeting received: " + req.Params },
			handler.Static("and farewell to you"),
		)),
		courier.Bind("yebisu", handler.Notify(
			func(req *courier.Request) string { return "round ordered: " + req.Params },
			handler.Static("a fine choice from the tap"),
		)),
		courier.Bind("echo", handler.ParamResultError(func(_ context.Context, s string) (string, error) {
			return s, nil
		})),
	)
}

func runServe(cenv *command.Env) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sink, rc := courier.NewSink(flags.SinkCap)
	reg := demoRegistry()
	d := courier.NewDispatcher(reg, sink)

	hub := broadcast.NewHub(rc)
	stop := hub.NotifyWriter(os.Stdout)
	loop := taskgroup.Go(func() error {
		err := hub.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	log.Printf("Serving commands %q at %q", reg.Names(), flags.Addr)
	err := server.Run(ctx, flags.Addr, server.New(d))

	// Shut down the notification bridge: stop the producers' channel, let
	// the hub drain what remains, then detach the writer.
	cancel()
	rc.Close()
	if lerr := loop.Wait(); err == nil {
		err = lerr
	}
	if serr := stop(); err == nil {
		err = serr
	}
	return err
}

func runCall(cenv *command.Env) error {
	if len(cenv.Args) == 0 || len(cenv.Args) > 2 {
		return cenv.Usagef("required: <command> [<params>]")
	}
	req := courier.Request{Command: cenv.Args[0]}
	if len(cenv.Args) == 2 {
		req.Params = cenv.Args[1]
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	hrsp, err := http.Post("http://"+flags.Addr+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer hrsp.Body.Close()

	if hrsp.StatusCode != http.StatusOK {
		var f courier.Failure
		if err := json.NewDecoder(hrsp.Body).Decode(&f); err != nil {
			return fmt.Errorf("call failed: %s", hrsp.Status)
		}
		return errors.New(f.String())
	}
	var rsp courier.Response
	if err := json.NewDecoder(hrsp.Body).Decode(&rsp); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	fmt.Println(rsp.Response)
	return nil
}
