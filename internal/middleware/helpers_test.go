package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

type recordingNotifier struct {
	mu    sync.Mutex
	warns []string
	errs  []string
	infos []string
}

func (n *recordingNotifier) Info(summary, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, summary)
}

func (n *recordingNotifier) Warn(summary, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warns = append(n.warns, summary)
}

func (n *recordingNotifier) Error(summary, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, summary+": "+detail)
}

func (n *recordingNotifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.warns) + len(n.errs) + len(n.infos)
}

type fixedNavigator struct {
	route     string
	navigated int
}

func (n *fixedNavigator) CurrentRoute() string { return n.route }
func (n *fixedNavigator) NavigateToLogin()     { n.navigated++ }

// respond builds a canned response for req.
func respond(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}
