// Package policy centralizes request authorization for the platform. A single
// rule table drives both the edge middleware and the in-handler guards, so the
// two enforcement points cannot drift; only the trust placed in their inputs
// differs.
package policy

import (
	"sort"
	"strings"

	"github.com/pemira-app/pemira/internal/shared"
)

// Landing paths used by redirect decisions.
const (
	LandingPath   = "/"
	DashboardPath = "/dashboard"
)

// Requirement describes who may access a rule's subtree.
type Requirement int

const (
	// Public paths are reachable without a session.
	Public Requirement = iota
	// Authenticated paths require any logged-in session.
	Authenticated
	// RoleRestricted paths additionally require one of the rule's roles.
	RoleRestricted
)

// AccessRule maps a path prefix to an access requirement. A prefix matches the
// path exactly or at a path boundary: "/login" matches "/login" and
// "/login/forgot" but not "/loginx".
type AccessRule struct {
	Prefix      string
	Requirement Requirement
	Roles       []shared.Role
}

// DecisionKind enumerates policy outcomes.
type DecisionKind int

const (
	// Allow passes the request through.
	Allow DecisionKind = iota
	// Redirect aborts the request with a redirect to Decision.Location.
	Redirect
	// Deny rejects the request outright. Only issued by action guards.
	Deny
)

// Decision is the outcome of evaluating the policy for one request.
type Decision struct {
	Kind     DecisionKind
	Location string
}

func allow() Decision { return Decision{Kind: Allow} }

func redirect(to string) Decision { return Decision{Kind: Redirect, Location: to} }

// Policy evaluates access rules against resolved sessions. It is immutable
// after construction and safe for concurrent use.
type Policy struct {
	rules []AccessRule
}

// DefaultRules is the platform's access table. Anything not listed is
// authenticated-only.
func DefaultRules() []AccessRule {
	return []AccessRule{
		{Prefix: "/", Requirement: Public},
		{Prefix: "/login", Requirement: Public},
		{Prefix: "/forgot-password", Requirement: Public},
		{Prefix: "/request-account", Requirement: Public},
		{Prefix: "/about", Requirement: Public},
		{Prefix: "/faq", Requirement: Public},
		{Prefix: "/terms", Requirement: Public},
		{Prefix: "/privacy", Requirement: Public},
		{Prefix: "/users", Requirement: RoleRestricted, Roles: []shared.Role{shared.RoleAdmin}},
		{Prefix: "/elections/manage", Requirement: RoleRestricted, Roles: []shared.Role{shared.RoleAdmin, shared.RoleStaff}},
		{Prefix: "/jobs", Requirement: RoleRestricted, Roles: []shared.Role{shared.RoleAdmin}},
	}
}

// New builds a Policy from the given rules. Rules are ordered longest prefix
// first so the most specific rule wins.
func New(rules []AccessRule) *Policy {
	sorted := make([]AccessRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Policy{rules: sorted}
}

// Default returns a Policy over DefaultRules.
func Default() *Policy {
	return New(DefaultRules())
}

// IsBypassed reports whether the path is infrastructure or a static asset and
// skips policy evaluation entirely.
func IsBypassed(path string) bool {
	if strings.HasPrefix(path, "/_next") || strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/static") {
		return true
	}
	switch {
	case strings.HasSuffix(path, ".ico"),
		strings.HasSuffix(path, ".svg"),
		strings.HasSuffix(path, ".png"),
		strings.HasSuffix(path, ".jpg"):
		return true
	}
	return false
}

// Decide evaluates the full policy, including role requirements. Pure and
// deterministic: identical inputs always yield identical decisions.
func (p *Policy) Decide(sess shared.Session, path string) Decision {
	return p.decide(sess, path, true)
}

// DecideEdge evaluates only the coarse public/authenticated policy. Role
// checks are deferred to the guarded boundary, which can re-verify roles
// against the authoritative store.
func (p *Policy) DecideEdge(sess shared.Session, path string) Decision {
	return p.decide(sess, path, false)
}

func (p *Policy) decide(sess shared.Session, path string, withRoles bool) Decision {
	if IsBypassed(path) {
		return allow()
	}

	anonymous := sess.IsAnonymous()
	rule, matched := p.match(path)

	if matched && rule.Requirement == Public {
		// Logged-in users skip the anonymous landing page.
		if !anonymous && path == LandingPath {
			return redirect(DashboardPath)
		}
		return allow()
	}

	if anonymous {
		return redirect(LandingPath)
	}

	if withRoles && matched && rule.Requirement == RoleRestricted && !roleIn(sess.Role, rule.Roles) {
		return redirect(DashboardPath)
	}

	return allow()
}

// match returns the longest-prefix rule for the path. Rules are pre-sorted by
// prefix length, so the first boundary-aware hit wins; an exact match on the
// same length is found first because it is checked before the boundary form.
func (p *Policy) match(path string) (AccessRule, bool) {
	for _, rule := range p.rules {
		if prefixMatches(rule.Prefix, path) {
			return rule, true
		}
	}
	return AccessRule{}, false
}

func prefixMatches(prefix, path string) bool {
	if path == prefix {
		return true
	}
	if prefix == "/" {
		// Root is an exact-match rule only; every path has "/" as a prefix.
		return false
	}
	return strings.HasPrefix(path, prefix) && len(path) > len(prefix) && path[len(prefix)] == '/'
}

func roleIn(role shared.Role, allowed []shared.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
