// Package guard decides which dashboard destinations are reachable for the
// current session and keeps that decision in step with session changes.
package guard

import (
	"errors"
	"fmt"
	"strings"
)

// Default destinations.
const (
	DefaultLanding   = "/"
	DefaultProtected = "/dashboard"
)

// Routes splits destinations into the public and protected trees.
type Routes struct {
	Landing   string   // where unauthenticated requests end up
	Default   string   // where authenticated requests for public/unknown paths end up
	Public    []string // reachable only without a session
	Protected []string // reachable only with a session, rendered inside the shell
}

// DefaultRoutes returns the dashboard's route table.
func DefaultRoutes() Routes {
	return Routes{
		Landing: DefaultLanding,
		Default: DefaultProtected,
		Public:  []string{"/", "/login", "/register"},
		Protected: []string{
			"/dashboard",
			"/projects",
			"/barangays",
			"/officials",
			"/contractors",
			"/documents",
			"/transactions",
		},
	}
}

var errRoutes = errors.New("invalid routes")

// Validate checks that both fallbacks point into their own tree and that no
// path belongs to both trees.
func (r Routes) Validate() error {
	if !r.IsPublic(r.Landing) {
		return fmt.Errorf("%w: landing %q is not a public route", errRoutes, r.Landing)
	}
	if !r.IsProtected(r.Default) {
		return fmt.Errorf("%w: default %q is not a protected route", errRoutes, r.Default)
	}
	for _, p := range r.Public {
		if r.IsProtected(p) {
			return fmt.Errorf("%w: %q is both public and protected", errRoutes, p)
		}
	}
	return nil
}

// IsPublic reports whether path is in the public tree.
func (r Routes) IsPublic(path string) bool { return contains(r.Public, Normalize(path)) }

// IsProtected reports whether path is in the protected tree.
func (r Routes) IsProtected(path string) bool { return contains(r.Protected, Normalize(path)) }

// Decision is the outcome of resolving one navigation request.
type Decision struct {
	Requested  string `json:"requested"`
	Location   string `json:"location"`
	Redirected bool   `json:"redirected"`
	Shell      bool   `json:"shell"` // render inside sidebar + header
	State      State  `json:"state"`
}

// Resolve maps a requested path to the destination reachable in state.
func (r Routes) Resolve(state State, path string) Decision {
	p := Normalize(path)
	d := Decision{Requested: p, Location: p, State: state}

	switch state {
	case Authenticated:
		if !r.IsProtected(p) {
			d.Location = Normalize(r.Default)
		}
		d.Shell = true
	default:
		if !r.IsPublic(p) {
			d.Location = Normalize(r.Landing)
		}
	}
	d.Redirected = d.Location != p
	return d
}

// Normalize drops query and fragment, trims trailing slashes and roots the path.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(strings.TrimSpace(path), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func contains(list []string, p string) bool {
	for _, v := range list {
		if Normalize(v) == p {
			return true
		}
	}
	return false
}
