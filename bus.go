package pressure

import (
	"context"
	"errors"
)

// ErrTransport marks failures reported by the instrument link itself
// (I/O errors, timeouts, closed ports).
var ErrTransport = errors.New("transport error")

// Status is the completion code reported by a transport for its last operation.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	// read completed because the termination character was received
	StatusTermChar
	// read completed because the buffer was filled
	StatusMaxCount
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusTermChar:
		return "success (termination character)"
	case StatusMaxCount:
		return "success (max count)"
	default:
		return "unknown"
	}
}

type CommandWriter interface {
	Write(ctx context.Context, command string) error
}

type Querier interface {
	Query(ctx context.Context, command string) (string, error)
}

type StatusReporter interface {
	LastStatus() Status
}

// Transport is a line oriented request/response link to a single instrument.
type Transport interface {
	CommandWriter
	Querier
	StatusReporter
}

type TransportCloser interface {
	Transport
	Close() error
}
