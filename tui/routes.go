// ABOUTME: Route table for the shell: names, labels, shortcut keys and the auth gate
package tui

// Route names a screen.
type Route int

const (
	RouteDashboard Route = iota
	RouteLeads
	RouteContacts
	RoutePipeline
	RouteTasks
	RouteMeetings
	RouteGroups
	RouteEmails
	RouteAnalytics
	RouteSettings
	RouteMessages
	RouteBulkEmails
	RouteProfile
	RouteLogin
	RouteRegister
	RoutePolicy
	RouteTerms
)

var routeNames = map[Route]string{
	RouteDashboard:  "dashboard",
	RouteLeads:      "leads",
	RouteContacts:   "contacts",
	RoutePipeline:   "pipeline",
	RouteTasks:      "tasks",
	RouteMeetings:   "meetings",
	RouteGroups:     "groups",
	RouteEmails:     "emails",
	RouteAnalytics:  "analytics",
	RouteSettings:   "settings",
	RouteMessages:   "messages",
	RouteBulkEmails: "bulkEmails",
	RouteProfile:    "profile",
	RouteLogin:      "login",
	RouteRegister:   "register",
	RoutePolicy:     "policy",
	RouteTerms:      "terms",
}

var routeLabels = map[Route]string{
	RouteDashboard:  "Dashboard",
	RouteLeads:      "Leads",
	RouteContacts:   "Contacts",
	RoutePipeline:   "Pipeline",
	RouteTasks:      "Tasks",
	RouteMeetings:   "Meetings",
	RouteGroups:     "Groups",
	RouteEmails:     "Emails",
	RouteAnalytics:  "Analytics",
	RouteSettings:   "Settings",
	RouteMessages:   "Messages",
	RouteBulkEmails: "Bulk Emails",
	RouteProfile:    "Profile",
	RouteLogin:      "Login",
	RouteRegister:   "Register",
	RoutePolicy:     "Privacy Policy",
	RouteTerms:      "Terms",
}

// navRoutes is the rail order. The first ten answer to the number keys 1..9, 0.
var navRoutes = []Route{
	RouteDashboard,
	RouteLeads,
	RouteContacts,
	RoutePipeline,
	RouteTasks,
	RouteMeetings,
	RouteGroups,
	RouteEmails,
	RouteAnalytics,
	RouteSettings,
	RouteMessages,
	RouteBulkEmails,
	RouteProfile,
}

func (r Route) String() string { return routeNames[r] }
func (r Route) Label() string  { return routeLabels[r] }

// Public routes render without a session.
func (r Route) Public() bool {
	switch r {
	case RouteLogin, RouteRegister, RoutePolicy, RouteTerms:
		return true
	}
	return false
}

// ParseRoute accepts the route names used by --route and the web client's paths.
func ParseRoute(s string) (Route, bool) {
	for r, name := range routeNames {
		if name == s {
			return r, true
		}
	}
	return 0, false
}

func routeForKey(key string) (Route, bool) {
	keys := "1234567890"
	for i := 0; i < len(keys) && i < len(navRoutes); i++ {
		if key == keys[i:i+1] {
			return navRoutes[i], true
		}
	}
	return 0, false
}

// nextRoute steps through the rail from r, wrapping.
func nextRoute(r Route, step int) Route {
	idx := 0
	for i, nr := range navRoutes {
		if nr == r {
			idx = i
		}
	}
	n := len(navRoutes)
	return navRoutes[((idx+step)%n+n)%n]
}
