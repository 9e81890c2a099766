// Package server provides HTTP routing, middleware, and the page handlers for the
// vehicle demo web application.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Application Handlers
//
// [App] owns the six routes of the demo and drives the authorization/session state
// machine: anonymous visitors see the Connect URL on the home page; the OAuth
// callback exchanges the code and seeds a fresh session; /vehicles populates the
// session's vehicle mapping through the fleet engine; /request dispatches one of the
// fixed command types against a selected vehicle; /logout tears every vehicle
// connection down and clears the session.
//
// Every controller failure funnels into the error page redirect
// (/error?message=&action=) rather than propagating raw errors; unauthorized and
// incomplete-flow navigations silently land back on the home page.
//
// # Views
//
// Pages are server-rendered from html/template files embedded at build time,
// with a small embedded stylesheet served under /static/.
package server
