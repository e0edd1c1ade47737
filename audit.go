package authdemo

import (
	internalaudit "github.com/MalcoreHardcore698/authdemo/internal/audit"
)

type (
	// AuditEvent is one recorded session action.
	AuditEvent = internalaudit.Event
	// AuditSink receives audit events from the dispatcher goroutine.
	AuditSink = internalaudit.Sink
	// NoOpSink drops audit events.
	NoOpSink = internalaudit.NoOpSink
	// ChannelSink delivers audit events on a channel.
	ChannelSink = internalaudit.ChannelSink
	// JSONWriterSink writes JSON lines.
	JSONWriterSink = internalaudit.JSONWriterSink
	// SlogSink logs audit events.
	SlogSink = internalaudit.SlogSink
)

var (
	NewChannelSink    = internalaudit.NewChannelSink
	NewJSONWriterSink = internalaudit.NewJSONWriterSink
)
