package fakeapi

import (
	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/fintrack-client/api"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteMetrics exposes the server's Prometheus registry
const RouteMetrics = "/metrics"

func (s *Server) initRoutes() {
	s.engine.GET(RouteMetrics, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := s.engine.Group(BasePath)

	// Public auth routes
	v1.POST(api.RouteAuthRegister, s.register)
	v1.POST(api.RouteAuthLogin, s.login)
	v1.POST(api.RouteAuthRefresh, s.refreshTokens)
	v1.POST(api.RouteAuthLogout, s.logout)
	v1.GET(api.RouteAuthGoogle, s.googleLogin)

	protected := v1.Group("")
	protected.Use(s.requireBearer())

	protected.GET(api.RouteUsersProfile, s.getProfile)
	protected.PUT(api.RouteUsersProfile, s.updateProfile)
	protected.DELETE(api.RouteUsersAccount, s.deleteAccount)
	protected.GET(api.RouteUsersDashboard, s.getDashboard)

	protected.POST(api.RouteTransactions, s.createTransaction)
	protected.GET(api.RouteTransactions, s.listTransactions)
	protected.GET(api.RouteTransactionsSummary, s.transactionSummary)
	protected.GET(api.RouteTransactions+"/:id", s.getTransaction)
	protected.PUT(api.RouteTransactions+"/:id", s.updateTransaction)
	protected.DELETE(api.RouteTransactions+"/:id", s.deleteTransaction)

	protected.POST(api.RouteCategories, s.createCategory)
	protected.GET(api.RouteCategories, s.listCategories)
	protected.GET(api.RouteCategories+"/:id", s.getCategory)
	protected.PUT(api.RouteCategories+"/:id", s.updateCategory)
	protected.DELETE(api.RouteCategories+"/:id", s.deleteCategory)
	protected.GET(api.RouteCategories+"/:id"+api.StatsSuffix, s.categoryStats)

	protected.GET(api.RouteCards, s.listCards)
	protected.POST(api.RouteCards, s.createCard)
	protected.GET(api.RouteCards+"/:id", s.getCard)
	protected.PUT(api.RouteCards+"/:id", s.updateCard)
	protected.DELETE(api.RouteCards+"/:id", s.deleteCard)
}

// Routes lists every registered method and path, for the startup banner
func (s *Server) Routes() gin.RoutesInfo {
	return s.engine.Routes()
}
