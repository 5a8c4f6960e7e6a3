package cmd

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/output"
)

// routes maps top-level commands to the surface they stand for, so the
// failure pipeline can tell a login attempt from any other request.
var routes = map[string]string{
	"login":       domain.LoginRoute,
	"logout":      "/logout",
	"whoami":      "/profile",
	"session":     "/profile",
	"token":       "/github-import",
	"repos":       "/github-import",
	"import":      "/github-import",
	"presets":     "/github-import",
	"report":      "/reports",
	"achievement": "/achievements",
}

// routeFor returns the route of cmd's top-level command.
func routeFor(cmd *cobra.Command) string {
	c := cmd
	for c.HasParent() && c.Parent().HasParent() {
		c = c.Parent()
	}
	if r, ok := routes[c.Name()]; ok {
		return r
	}
	return "/"
}

// navigator is the CLI rendition of in-app navigation: "going to login"
// means telling the user how to sign in, once per run.
type navigator struct {
	p *output.Printer

	mu         sync.Mutex
	route      string
	redirected bool
}

func newNavigator(route string, p *output.Printer) *navigator {
	return &navigator{route: route, p: p}
}

func (n *navigator) CurrentRoute() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

func (n *navigator) NavigateToLogin() {
	n.mu.Lock()
	if n.redirected || strings.Contains(n.route, domain.LoginRoute) {
		n.mu.Unlock()
		return
	}
	n.redirected = true
	n.route = domain.LoginRoute
	n.mu.Unlock()

	n.p.Info("Run '%s' to sign in.", "bragctl login")
}

// Redirected reports whether the run was sent to login.
func (n *navigator) Redirected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirected
}
