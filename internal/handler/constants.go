// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixImport is the suffix for CSV import routes.
	RouteSuffixImport = "/import"
	// RouteSuffixExport is the suffix for CSV export routes.
	RouteSuffixExport = "/export"
	// RouteSuffixDecision is the suffix for front-desk decision routes.
	RouteSuffixDecision = "/decision"
	// RouteSuffixRole is the suffix for admin role-change routes.
	RouteSuffixRole = "/role"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteSignup is the signup route.
	RouteSignup = "/signup"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteForgotPassword is the forgot-password route.
	RouteForgotPassword = "/forgot-password"
	// RouteUpdatePassword is the update-password route.
	RouteUpdatePassword = "/update-password"

	// RouteDashboard is the generic dashboard redirector route.
	RouteDashboard = "/dashboard"
	// RouteAccount is the account page route.
	RouteAccount = "/account"

	// RouteRequests is the room-requests route within a role section.
	RouteRequests = "/requests"
	// RouteWorkers is the worker roster route within the employer section.
	RouteWorkers = "/workers"
	// RouteUsers is the user table route within the admin section.
	RouteUsers = "/users"

	// RouteHealthz is the health check route.
	RouteHealthz = "/healthz"
)

// Redirect targets assembled from the route constants.
const (
	redirectLogin  = RouteLogin
	redirectSignup = RouteSignup

	redirectEmployer            = "/employer"
	redirectEmployerRequests    = redirectEmployer + RouteRequests
	redirectEmployerRequestsNew = redirectEmployerRequests + RouteSuffixNew
	redirectEmployerWorkers     = redirectEmployer + RouteWorkers

	redirectFrontdesk         = "/frontdesk"
	redirectFrontdeskRequests = redirectFrontdesk + RouteRequests

	redirectAdmin      = "/admin"
	redirectAdminUsers = redirectAdmin + RouteUsers
)
