// Package middleware holds the interceptor chain every outbound API request
// travels through.
package middleware

import "net/http"

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Interceptor wraps a Doer with extra behaviour.
type Interceptor func(next Doer) Doer

// Chain wraps base with the interceptors. The first interceptor is the
// outermost one and sees the request first.
func Chain(base Doer, interceptors ...Interceptor) Doer {
	d := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] == nil {
			continue
		}
		d = interceptors[i](d)
	}
	return d
}
