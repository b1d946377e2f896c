// Package signal provides thread-safe signals on top of the worker package.
//
// A Signal connects listeners to an event source across worker boundaries:
// each listener names the worker it wants to run on, and Emit dispatches the
// payload through that worker's queue. Emitting from the listener's own
// goroutine calls it inline.
//
//	var ready signal.Signal[string]
//
//	conn := ready.Connect(w, func(name string) {
//	    // runs on w's goroutine
//	})
//	ready.Emit("db")
//	ready.Disconnect(conn)
package signal
