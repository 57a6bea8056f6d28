// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package broadcast_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/synctest"

	"github.com/creachadair/courier"
	"github.com/creachadair/courier/broadcast"
	"github.com/creachadair/taskgroup"
	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
)

func TestFanout(t *testing.T) {
	defer leaktest.Check(t)()

	sink, rc := courier.NewSink(4)
	hub := broadcast.NewHub(rc)

	ctx := context.Background()
	run := taskgroup.Go(func() error { return hub.Run(ctx) })

	ch1, cancel1 := hub.Subscribe()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()

	for i := range 3 {
		if err := sink.Send(ctx, fmt.Sprintf("note-%d", i+1)); err != nil {
			t.Fatalf("Send: unexpected error: %v", err)
		}
	}

	want := []string{"note-1", "note-2", "note-3"}
	for _, ch := range []<-chan string{ch1, ch2} {
		var got []string
		for range len(want) {
			got = append(got, <-ch)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Subscriber notes (-want, +got):\n%s", diff)
		}
	}

	// After cancelling, a subscriber's channel closes and receives nothing
	// further; the other subscriber is unaffected.
	cancel1()
	if _, ok := <-ch1; ok {
		t.Error("Subscriber 1 channel still open after cancel")
	}
	cancel1() // must be idempotent

	if err := sink.Send(ctx, "late"); err != nil {
		t.Fatalf("Send: unexpected error: %v", err)
	}
	if got := <-ch2; got != "late" {
		t.Errorf("Subscriber 2: got %q, want %q", got, "late")
	}

	// Closing the receiver stops the hub cleanly.
	rc.Close()
	if err := run.Wait(); err != nil {
		t.Errorf("Run: unexpected error: %v", err)
	}
}

func TestRunCancel(t *testing.T) {
	defer leaktest.Check(t)()

	_, rc := courier.NewSink(1)
	defer rc.Close()
	hub := broadcast.NewHub(rc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hub.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run: got %v, want %v", err, context.Canceled)
	}
}

func TestSlowSubscriber(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sink, rc := courier.NewSink(0)
		hub := broadcast.NewHub(rc)

		ctx := context.Background()
		run := taskgroup.Go(func() error { return hub.Run(ctx) })

		// A subscriber that never drains must not block delivery: overflow
		// past its buffer capacity is dropped for it alone.
		stuck, cancelStuck := hub.Subscribe()
		defer cancelStuck()

		const numNotes = 24 // more than the subscriber buffer (16)
		for i := range numNotes {
			if err := sink.Send(ctx, fmt.Sprintf("note-%d", i+1)); err != nil {
				t.Fatalf("Send: unexpected error: %v", err)
			}
		}

		// Wait for the hub to drain the sink. The stuck subscriber holds
		// only its buffer's worth; the overflow was dropped rather than
		// stalling the hub.
		synctest.Wait()
		if got, want := len(stuck), 16; got != want {
			t.Errorf("Buffered notes: got %d, want %d", got, want)
		}
		if got := <-stuck; got != "note-1" {
			t.Errorf("First note: got %q, want %q", got, "note-1")
		}

		// A fresh subscriber still receives new notes promptly.
		live, cancelLive := hub.Subscribe()
		defer cancelLive()
		if err := sink.Send(ctx, "fresh"); err != nil {
			t.Fatalf("Send: unexpected error: %v", err)
		}
		if got := <-live; got != "fresh" {
			t.Errorf("Live note: got %q, want %q", got, "fresh")
		}

		rc.Close()
		if err := run.Wait(); err != nil {
			t.Errorf("Run: unexpected error: %v", err)
		}
	})
}

func TestNotifyWriter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sink, rc := courier.NewSink(4)
		hub := broadcast.NewHub(rc)

		ctx := t.Context()
		run := taskgroup.Go(func() error { return hub.Run(ctx) })

		var buf strings.Builder
		stop := hub.NotifyWriter(&buf)

		for _, note := range []string{"alpha", "bravo"} {
			if err := sink.Send(ctx, note); err != nil {
				t.Fatalf("Send: unexpected error: %v", err)
			}
		}

		// Wait for delivery to settle before stopping the writer.
		synctest.Wait()
		if err := stop(); err != nil {
			t.Errorf("Stop: unexpected error: %v", err)
		}
		if got, want := buf.String(), "alpha\nbravo\n"; got != want {
			t.Errorf("Output: got %q, want %q", got, want)
		}

		rc.Close()
		if err := run.Wait(); err != nil {
			t.Errorf("Run: unexpected error: %v", err)
		}
	})
}
