package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campstock/exchange/pkg/exchange"
)

// Server is the HTTP surface the kiosk and admin console call.
type Server struct {
	engine *exchange.Exchange
	router *gin.Engine
	srv    *http.Server
}

func NewServer(engine *exchange.Exchange) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	s := &Server{
		engine: engine,
		router: router,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	{
		api.POST("/orders", s.placeOrder)
		api.DELETE("/orders/:id", s.cancelOrder)
		api.GET("/orders/:id", s.getOrder)
		api.GET("/orderbook/:symbol", s.orderBook)
		api.GET("/trades/:symbol", s.trades)
		api.POST("/accounts", s.createAccount)
		api.GET("/accounts/:id/balance", s.balance)

		admin := api.Group("/admin")
		{
			admin.POST("/auction/:symbol", s.runAuction)
			admin.POST("/settlement", s.forceSettlement)
			admin.POST("/ipo/reset", s.resetIPO)
			admin.PATCH("/ipo", s.updateIPO)
			admin.GET("/ipo", s.ipoStatus)
			admin.GET("/market-config", s.getMarketConfig)
			admin.PUT("/market-config", s.setMarketConfig)
		}
	}
}

func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	zap.S().Infof("http server listening on %s", addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
