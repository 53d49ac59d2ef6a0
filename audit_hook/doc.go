// Package audithook is a bossbat extension that turns lifecycle events
// into structured audit records.
//
// Every hook builds an [AuditEvent] and hands it to a [Recorder]. Arming
// and successful runs are info, skipped occurrences are warnings, failed
// runs are critical. [SlogRecorder] writes events to a logger; any other
// backend plugs in through [RecorderFunc].
//
//	eng, _ := engine.New(store,
//	    engine.WithExtension(audithook.New(audithook.SlogRecorder(logger),
//	        audithook.WithActions(audithook.ActionJobFailed),
//	    )),
//	)
//
// Recorder errors are logged and never fail the hook.
package audithook
