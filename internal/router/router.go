package router

import (
	"spent_api/internal/api"        // Request handlers
	"spent_api/internal/events"     // Change notifications
	"spent_api/internal/middleware" // Auth and logging middleware
	"spent_api/internal/utils"      // Cache

	"github.com/gin-gonic/gin" // Gin web framework
)

// Options carries the dependencies of the HTTP API
type Options struct {
	APIToken string           // Static bearer token
	Store    api.SpentStore   // Persistence
	Cache    *utils.Cache     // Read view cache, may be disabled
	Events   events.Publisher // Change notifications, may be nil
	Pingers  []api.Pinger     // Probed by /healthz
}

// SetupRouter builds the gin engine with every route mounted
func SetupRouter(opts Options) *gin.Engine {
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/healthz", api.HealthHandler(opts.Pingers...)) // Unauthenticated probe

	// Spent routes (protected by the static token)
	spent := r.Group("/api/spent")
	spent.Use(middleware.TokenAuthMiddleware(opts.APIToken))

	spent.GET("/last_categories", api.LastCategoriesHandler(opts.Store))
	spent.GET("/all_categories", api.AllCategoriesHandler(opts.Store, opts.Cache))
	spent.GET("/last_descriptions", api.LastDescriptionsHandler(opts.Store))
	spent.GET("/all_descriptions", api.AllDescriptionsHandler(opts.Store, opts.Cache))

	spent.POST("/create", api.CreateSpentHandler(opts.Store, opts.Cache, opts.Events))
	spent.PUT("/edit/:id", api.EditSpentHandler(opts.Store, opts.Cache, opts.Events))
	spent.DELETE("/delete/:id", api.DeleteSpentHandler(opts.Store, opts.Cache, opts.Events))
	spent.GET("/filter", api.FilterSpentHandler(opts.Store))
	spent.POST("/copy_month", api.CopyMonthHandler(opts.Store, opts.Cache, opts.Events))

	spent.GET("/breakdown_month", api.BreakdownMonthHandler(opts.Store, opts.Cache))
	spent.GET("/breakdown_year", api.BreakdownYearHandler(opts.Store, opts.Cache))
	spent.GET("/balance", api.BalanceHandler(opts.Store, opts.Cache))

	return r
}
