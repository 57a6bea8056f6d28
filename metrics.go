// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package courier

import "expvar"

// courierMetrics record dispatcher and sink activity counters.
type courierMetrics struct {
	dispatchIn     expvar.Int // number of requests dispatched
	dispatchErr    expvar.Int // number of dispatches reporting an error
	dispatchActive expvar.Int // dispatches currently executing
	unknownCmd     expvar.Int // number of lookups that missed the registry
	noteSent       expvar.Int // notifications delivered to the sink
	noteFailed     expvar.Int // notification sends that failed

	emap *expvar.Map
}

var coreMetrics = newCourierMetrics()

func newCourierMetrics() *courierMetrics {
	cm := &courierMetrics{emap: new(expvar.Map)}
	cm.emap.Set("dispatches", &cm.dispatchIn)
	cm.emap.Set("dispatches_failed", &cm.dispatchErr)
	cm.emap.Set("dispatches_active", &cm.dispatchActive)
	cm.emap.Set("commands_unknown", &cm.unknownCmd)
	cm.emap.Set("notes_sent", &cm.noteSent)
	cm.emap.Set("notes_failed", &cm.noteFailed)
	return cm
}
