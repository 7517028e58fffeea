package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/store"
)

// Kind classifies a service failure for callers that need to map errors
// onto exit codes or API responses.
type Kind string

const (
	KindOK                 Kind = "ok"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindTimeout            Kind = "timeout"
	KindAdapterUnavailable Kind = "adapter_unavailable"
	KindInternal           Kind = "internal"
)

// Error wraps a failure with its classification and the operation that
// produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err, KindOK for nil.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrForbidden):
		return KindForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, platform.ErrUnavailable):
		return KindAdapterUnavailable
	default:
		return KindInternal
	}
}

// wrap classifies err and tags it with the operation name. A nil err
// passes through.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: classify(err), Op: op, Err: err}
}
