// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package courier_test

import (
	"context"
	"testing"

	"github.com/creachadair/courier"
)

func quiet(context.Context, *courier.Sink, *courier.Request) (*courier.Response, error) {
	return &courier.Response{Response: "ok"}, nil
}

func noisy(ctx context.Context, sink *courier.Sink, req *courier.Request) (*courier.Response, error) {
	if err := sink.Send(ctx, req.Params); err != nil {
		return nil, err
	}
	return &courier.Response{Response: "ok"}, nil
}

func BenchmarkDispatch(b *testing.B) {
	reg := courier.NewRegistry(
		courier.Bind("quiet", quiet),
		courier.Bind("noisy", noisy),
	)

	run := func(b *testing.B, command string) {
		b.Helper()

		sink, rc := courier.NewSink(0)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for range rc.Chan() {
			}
		}()
		b.Cleanup(func() { rc.Close(); <-done })

		d := courier.NewDispatcher(reg, sink)
		ctx := context.Background()
		req := &courier.Request{Command: command, Params: "benchmark"}

		for b.Loop() {
			if _, err := d.Dispatch(ctx, req); err != nil {
				b.Fatal(err)
			}
		}
	}

	b.Run("Quiet", func(b *testing.B) { run(b, "quiet") })
	b.Run("Noisy", func(b *testing.B) { run(b, "noisy") })
}
