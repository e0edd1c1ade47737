// Package audit relays session audit events to a sink on a background
// goroutine.
//
// [Dispatcher] buffers events and either blocks or drops when the buffer
// is full. Sinks decide the encoding; [JSONWriterSink] writes one JSON
// object per line.
package audit
