// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package handler provides adapters to the courier.Handler type for
// functions with other signatures, and composition helpers for the common
// notify-then-reply handler shape.
//
// Parameters may be a string, or a type whose pointer supports the
// encoding.TextUnmarshaler interface. Results may be a string, or any type
// that supports the encoding.TextMarshaler interface.
package handler

import (
	"context"
	"encoding"
	"fmt"

	"github.com/creachadair/courier"
)

// reqContextKey is a context key for the request value to a handler.
type reqContextKey struct{}

// sinkContextKey is a context key for the sink handle to a handler.
type sinkContextKey struct{}

// ContextRequest returns the original request passed to the handler, or nil
// if ctx has no associated request. The context passed to a function adapted
// by this package will have this value.
func ContextRequest(ctx context.Context) *courier.Request {
	if v := ctx.Value(reqContextKey{}); v != nil {
		return v.(*courier.Request)
	}
	return nil
}

// ContextSink returns the sink handle passed to the handler, or nil if ctx
// has no associated sink. The context passed to a function adapted by this
// package will have this value, so adapted functions can still emit
// notifications.
func ContextSink(ctx context.Context) *courier.Sink {
	if v := ctx.Value(sinkContextKey{}); v != nil {
		return v.(*courier.Sink)
	}
	return nil
}

func withHandlerContext(ctx context.Context, sink *courier.Sink, req *courier.Request) context.Context {
	hctx := context.WithValue(ctx, reqContextKey{}, req)
	return context.WithValue(hctx, sinkContextKey{}, sink)
}

// ParamResultError adapts a function f that accepts parameters of type P and
// returns a result of type R and an error, to a courier.Handler. The request
// parameter string is unmarshaled into P, and R is marshaled into the
// response text.
func ParamResultError[P, R any](f func(context.Context, P) (R, error)) courier.Handler {
	return func(ctx context.Context, sink *courier.Sink, req *courier.Request) (*courier.Response, error) {
		var p P
		if err := unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		r, err := f(withHandlerContext(ctx, sink, req), p)
		if err != nil {
			return nil, err
		}
		return marshal(r)
	}
}

// ResultError adapts a function f that accepts no parameters and returns a
// result of type R and an error, to a courier.Handler. The request parameter
// string is ignored.
func ResultError[R any](f func(context.Context) (R, error)) courier.Handler {
	return func(ctx context.Context, sink *courier.Sink, req *courier.Request) (*courier.Response, error) {
		r, err := f(withHandlerContext(ctx, sink, req))
		if err != nil {
			return nil, err
		}
		return marshal(r)
	}
}

// Static returns a handler that reports text as its response without
// interpreting the request parameters and without sending any notification.
func Static(text string) courier.Handler {
	return func(context.Context, *courier.Sink, *courier.Request) (*courier.Response, error) {
		return &courier.Response{Response: text}, nil
	}
}

// Notify wraps h so that the string reported by note for each request is
// sent on the sink before h runs. The send is a detached effect whose
// delivery the dispatch caller does not observe, but a send failure is
// reported as the handler's error and overrides whatever outcome h would
// have produced.
func Notify(note func(*courier.Request) string, h courier.Handler) courier.Handler {
	return func(ctx context.Context, sink *courier.Sink, req *courier.Request) (*courier.Response, error) {
		if err := sink.Send(ctx, note(req)); err != nil {
			return nil, err
		}
		return h(ctx, sink, req)
	}
}

// unmarshal decodes param into v. The concrete type of v must be a pointer
// to a string, or must implement the encoding.TextUnmarshaler interface.
func unmarshal(param string, v any) error {
	switch t := v.(type) {
	case *string:
		*t = param
	case encoding.TextUnmarshaler:
		return t.UnmarshalText([]byte(param))
	default:
		return fmt.Errorf("cannot unmarshal into %T", v)
	}
	return nil
}

// marshal encodes v as a response. The concrete type of v must be a string,
// or must implement the encoding.TextMarshaler interface.
func marshal(v any) (*courier.Response, error) {
	switch t := v.(type) {
	case string:
		return &courier.Response{Response: t}, nil
	case encoding.TextMarshaler:
		text, err := t.MarshalText()
		if err != nil {
			return nil, err
		}
		return &courier.Response{Response: string(text)}, nil
	default:
		return nil, fmt.Errorf("cannot marshal %T", v)
	}
}
