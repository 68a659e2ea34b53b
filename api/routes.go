package api

// Route path constants, relative to the API base URL.
// The fake API registers the same paths so client and server cannot drift.
const (
	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthGoogle   = "/auth/google"

	// User Routes
	RouteUsersProfile   = "/users/profile"
	RouteUsersAccount   = "/users/account"
	RouteUsersDashboard = "/users/dashboard"

	// Finance Routes
	RouteTransactions        = "/transactions"
	RouteTransactionsSummary = "/transactions/summary"
	RouteCategories          = "/categories"
	RouteCards               = "/cards"

	// Suffixes
	StatsSuffix = "/stats"
)
