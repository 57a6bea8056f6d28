// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package server provides an HTTP front door for a courier.Dispatcher.
//
// The server accepts POST requests whose body is a JSON courier.Request and
// replies with a JSON courier.Response on success. Any failure, whether a
// malformed request, an unknown command, or a handler error, is reported
// with a single uniform failure status and a courier.Failure envelope body.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/creachadair/courier"
	"github.com/creachadair/taskgroup"
)

// shutdownGrace is how long Serve waits for in-flight requests to drain
// after its context ends.
const shutdownGrace = 5 * time.Second

// New returns an HTTP handler that serves dispatch requests on d.
func New(d *courier.Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, hr *http.Request) {
		if hr.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed,
				courier.FailureFromError(fmt.Errorf("method %q not allowed", hr.Method)))
			return
		}
		var req courier.Request
		if err := json.NewDecoder(hr.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusInternalServerError,
				courier.FailureFromError(fmt.Errorf("invalid request: %w", err)))
			return
		}
		rsp, err := d.Dispatch(hr.Context(), &req)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, courier.FailureFromError(err))
			return
		}
		writeJSON(w, http.StatusOK, rsp)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Run listens on addr and serves h until ctx ends, then shuts the server
// down and waits for in-flight requests to drain.
func Run(ctx context.Context, addr string, h http.Handler) error {
	lst, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, lst, h)
}

// Serve serves h on lst until ctx ends, then shuts the server down and
// waits for in-flight requests to drain. The listener is closed as part of
// shutdown.
func Serve(ctx context.Context, lst net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h}

	// The http package does not obey a context directly, so simulate it by
	// shutting the server down when ctx ends. The ok channel releases the
	// watcher when Serve returns on its own.
	ok := make(chan struct{})
	watch := taskgroup.Go(func() error {
		select {
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(sctx)
		case <-ok:
			return nil
		}
	})

	err := srv.Serve(lst)
	close(ok)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if werr := watch.Wait(); err == nil {
		err = werr
	}
	return err
}
