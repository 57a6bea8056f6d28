// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package courier implements a registry of named asynchronous command
// handlers, a dispatcher that routes request envelopes to them, and a shared
// notification sink that bridges handler side effects to an independent
// consumer.
//
// # Overview
//
// A [Request] carries a command name and an opaque parameter string. The
// command name selects a [Handler] from a [Registry], an immutable mapping
// built once at startup. The [Dispatcher] is the front door: it resolves the
// command, invokes the handler, and reports either the handler's [Response]
// or an error. All failures render uniformly at the transport boundary as a
// [Failure] envelope.
//
// Handlers additionally hold a cloned handle on a [Sink], a bounded channel
// of notification strings whose other end is drained by a single external
// consumer, for example a broadcast loop forwarding each note to connected
// peers. Sends on the sink are a detached effect: the dispatcher does not
// observe or await their delivery.
//
// # Usage
//
// Construct the sink and the registry during initialization, then build a
// dispatcher over them:
//
//	sink, rc := courier.NewSink(0)
//	reg := courier.NewRegistry(
//	   courier.Bind("greet", greet),
//	   courier.Bind("yebisu", yebisu),
//	)
//	d := courier.NewDispatcher(reg, sink)
//
// Each inbound request is then a single call:
//
//	rsp, err := d.Dispatch(ctx, &courier.Request{Command: "greet", Params: "hi"})
//
// Dispatch is safe for concurrent use by arbitrarily many goroutines, and
// imposes no ordering between concurrent requests. The registry is never
// modified after construction, so lookups require no locking; the sink's
// producer side is safely shared by independent clones.
//
// The consumer drains the [Receiver] returned by [NewSink] until it has no
// further use for notifications, then closes it. After the receiver closes,
// any handler attempting a send gets [ErrSinkClosed], which it must report
// as its error rather than discard.
//
// # Errors
//
// A failed dispatch reports an error wrapping one of:
//
//   - [*UnknownCommandError]: no handler is registered for the command name
//   - [ErrSinkClosed]: a notification send failed because the consumer is gone
//   - any other error the handler chose to report
//
// None of these is fatal to the process: a bad request never terminates the
// registry, the sink, or other in-flight dispatches. Use [FailureFromError]
// to render any of them in the uniform envelope shape for the caller.
//
// # Metrics
//
// Dispatchers maintain a collection of metrics while running. Use the
// [Dispatcher.Metrics] method to obtain an [expvar.Map] containing the
// metrics exported by the package. By default, metrics are shared globally
// among all dispatchers.
//
// The metrics currently exported include:
//
//   - dispatches: counter of requests dispatched
//   - dispatches_failed: counter of dispatches resulting in errors
//   - dispatches_active: gauge of dispatches currently executing
//   - commands_unknown: counter of lookups that missed the registry
//   - notes_sent: counter of notifications delivered to the sink
//   - notes_failed: counter of notification sends that failed
//
// Additional metrics may be added in the future. It is safe for the caller
// to modify the metrics map to add, update, and remove entries.
package courier
