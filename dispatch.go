// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package courier

import (
	"context"
	"expvar"
	"fmt"
)

// A Dispatcher is the front door for inbound requests. It resolves each
// request's command name against an immutable registry and invokes the
// selected handler with a cloned handle on the notification sink.
//
// Dispatches are independent: the dispatcher imposes no ordering or mutual
// exclusion between concurrent invocations, whether for the same command
// name or different ones. It is safe for concurrent use by any number of
// goroutines.
type Dispatcher struct {
	reg  *Registry
	sink *Sink
}

// NewDispatcher constructs a dispatcher serving the commands registered in
// reg, with handler notifications delivered via sink.
func NewDispatcher(reg *Registry, sink *Sink) *Dispatcher {
	return &Dispatcher{reg: reg, sink: sink}
}

// An UnknownCommandError reports a request whose command name has no handler
// in the registry. It is always recoverable at the dispatch boundary.
type UnknownCommandError struct {
	Name string // the unregistered command name
}

func (u *UnknownCommandError) Error() string { return fmt.Sprintf("unknown command %q", u.Name) }

// Dispatch resolves req.Command and invokes its handler, blocking until the
// handler completes. On success it returns the handler's response; on
// failure it returns an error wrapping the handler's error, or an
// [*UnknownCommandError] if the command is not registered. A handler error
// is wrapped, never swallowed, so the caller can still recover it with
// [errors.Is] and [errors.As].
//
// Dispatch never panics: a panic out of the handler is recovered and
// reported as an ordinary error.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	coreMetrics.dispatchIn.Add(1)
	handler, ok := d.reg.Lookup(req.Command)
	if !ok {
		coreMetrics.unknownCmd.Add(1)
		coreMetrics.dispatchErr.Add(1)
		return nil, &UnknownCommandError{Name: req.Command}
	}

	coreMetrics.dispatchActive.Add(1)
	defer coreMetrics.dispatchActive.Add(-1)

	rsp, err := func() (_ *Response, err error) {
		// Ensure a panic out of the handler is turned into a graceful error.
		defer func() {
			if x := recover(); x != nil && err == nil {
				err = fmt.Errorf("handler panicked (recovered): %v", x)
			}
		}()
		return handler(ctx, d.sink.Clone(), req)
	}()
	if err != nil {
		coreMetrics.dispatchErr.Add(1)
		return nil, fmt.Errorf("command %q: %w", req.Command, err)
	}
	if rsp == nil {
		rsp = new(Response)
	}
	return rsp, nil
}

// Metrics returns a metrics map for the dispatcher and sink. It is safe for
// the caller to add additional metrics to the map while the dispatcher is
// active. By default, metrics are shared globally among all dispatchers.
func (d *Dispatcher) Metrics() *expvar.Map { return coreMetrics.emap }
