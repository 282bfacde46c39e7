package domain

import (
	"net/http"

	"github.com/google/uuid"
)

// ScopeID is a fresh identifier minted once per inbound call. It isolates
// request-specific instances (targets, guards) from concurrent calls and is
// never reused.
type ScopeID string

// NewScopeID mints a unique scope identifier.
func NewScopeID() ScopeID {
	return ScopeID(uuid.NewString())
}

// RequestInfo is the transport-agnostic view of the inbound request that is
// bound into the call's scope and exposed to guards and extractors.
type RequestInfo struct {
	Method         string
	Path           string
	Header         http.Header
	RemoteAddr     string
	IdempotencyKey string
}

// RequestFromHTTP adapts an *http.Request into the view the pipeline binds
// into the invocation scope.
func RequestFromHTTP(r *http.Request) *RequestInfo {
	if r == nil {
		return nil
	}
	return &RequestInfo{
		Method:         r.Method,
		Path:           r.URL.Path,
		Header:         r.Header.Clone(),
		RemoteAddr:     r.RemoteAddr,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	}
}

// ExecutionContext is the view handed to guards and extractors: which
// operation is about to run, and for which request.
type ExecutionContext struct {
	Target  string
	Action  string
	Handler HandlerFunc
	Scope   ScopeID
	Request *RequestInfo
}
