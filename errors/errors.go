package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrSinkFull       = fmt.Errorf("connection sink full")
	ErrInvalidPayload = fmt.Errorf("invalid payload")
	ErrUnknownEvent   = fmt.Errorf("unknown event name")
)
