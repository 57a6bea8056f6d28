// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package courier

import "fmt"

// failureMessage is the fixed text carried by every Failure envelope.
const failureMessage = "not success"

// A Failure is the uniform externally visible shape for any failed call. A
// registry miss, a handler failure, and a notification send failure all
// render identically; the From field carries the text of the originating
// error for the caller to inspect.
type Failure struct {
	Message string `json:"message"`
	From    string `json:"from"`
}

// FailureFromError constructs the failure envelope for err.
func FailureFromError(err error) Failure {
	return Failure{Message: failureMessage, From: err.Error()}
}

func (f Failure) String() string { return fmt.Sprintf("%s (from: %s)", f.Message, f.From) }
