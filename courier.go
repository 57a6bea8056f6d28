// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package courier

import "context"

// A Request is the envelope for a single command invocation. The Command
// field selects which handler services the request; Params is an opaque
// payload interpreted only by the selected handler.
type Request struct {
	Command string `json:"command"`
	Params  string `json:"params"`
}

// A Response is the single success payload shape reported to the caller of a
// dispatch. A call either yields a full Response or a full error; there is
// no intermediate or streaming result.
type Response struct {
	Response string `json:"response"`
}

// A Handler services requests for a single named command. The sink is a
// cloned handle on the notification channel shared with the external
// consumer; the handler may send zero or more notification strings on it
// before returning.
//
// Sink sends are a detached effect: their delivery is not observed or
// awaited by the dispatcher, and the consumer offers no acknowledgement back
// to the handler. A send that fails because the consumer is gone must be
// reported as the handler's error, overriding an otherwise successful
// outcome, rather than discarded.
//
// A handler must report an error whenever it cannot produce a Response.
// Handlers are stateless with respect to the registry; any state they need
// is captured at registration time or carried in the request.
type Handler func(ctx context.Context, sink *Sink, req *Request) (*Response, error)
