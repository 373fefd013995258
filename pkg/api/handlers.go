package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/campstock/exchange/pkg/exchange/marketcfg"
	"github.com/campstock/exchange/pkg/exchange/model"
	"github.com/campstock/exchange/pkg/response"
)

type placeOrderRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Symbol    string          `json:"symbol" binding:"required"`
	Side      string          `json:"side" binding:"required"`
	Kind      string          `json:"kind" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := s.engine.PlaceOrder(c.Request.Context(), &model.AddOrder{
		AccountID:    req.AccountID,
		Symbol:       req.Symbol,
		Side:         model.OrderSide(req.Side),
		Kind:         model.OrderKind(req.Kind),
		Price:        req.Price,
		Quantity:     req.Quantity,
		TransactTime: time.Now(),
	})
	response.Handle(c, res, err)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) cancelOrder(c *gin.Context) {
	var req cancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := s.engine.CancelOrder(c.Request.Context(), c.Param("id"), model.CancelReason(req.Reason))
	response.Handle(c, order, err)
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.engine.GetOrder(c.Param("id"))
	response.Handle(c, order, err)
}

func (s *Server) orderBook(c *gin.Context) {
	snapshot := s.engine.OrderBookSnapshot(c.Request.Context(), c.Param("symbol"))
	response.Success(c, snapshot)
}

func (s *Server) trades(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	response.Success(c, s.engine.Fills(c.Param("symbol"), limit))
}

type createAccountRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Points    int64  `json:"points"`
	Shares    int64  `json:"shares"`
}

func (s *Server) createAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := s.engine.CreateAccount(req.AccountID, req.Points, req.Shares)
	response.Handle(c, gin.H{"account_id": req.AccountID}, err)
}

func (s *Server) balance(c *gin.Context) {
	bal, err := s.engine.GetBalance(c.Param("id"))
	response.Handle(c, gin.H{"points": bal.Points, "shares": bal.Shares}, err)
}

func (s *Server) runAuction(c *gin.Context) {
	result, err := s.engine.RunCallAuction(c.Request.Context(), c.Param("symbol"))
	response.Handle(c, result, err)
}

type settlementRequest struct {
	SettlementPrice int64 `json:"settlement_price" binding:"required"`
}

func (s *Server) forceSettlement(c *gin.Context) {
	var req settlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := s.engine.ForceSettlement(c.Request.Context(), req.SettlementPrice)
	response.Handle(c, result, err)
}

type resetIPORequest struct {
	InitialShares int64 `json:"initial_shares" binding:"required"`
	InitialPrice  int64 `json:"initial_price" binding:"required"`
}

func (s *Server) resetIPO(c *gin.Context) {
	var req resetIPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status, err := s.engine.ResetIPO(c.Request.Context(), req.InitialShares, req.InitialPrice)
	response.Handle(c, status, err)
}

type updateIPORequest struct {
	SharesRemaining *int64 `json:"shares_remaining"`
	InitialPrice    *int64 `json:"initial_price"`
}

func (s *Server) updateIPO(c *gin.Context) {
	var req updateIPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status, err := s.engine.UpdateIPO(c.Request.Context(), req.SharesRemaining, req.InitialPrice)
	response.Handle(c, status, err)
}

func (s *Server) ipoStatus(c *gin.Context) {
	response.Success(c, s.engine.IPOStatus())
}

func (s *Server) getMarketConfig(c *gin.Context) {
	cfg, err := s.engine.MarketConfig(c.Request.Context())
	response.Handle(c, cfg, err)
}

func (s *Server) setMarketConfig(c *gin.Context) {
	var cfg marketcfg.MarketConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := s.engine.SetMarketConfig(c.Request.Context(), &cfg)
	response.Handle(c, &cfg, err)
}
