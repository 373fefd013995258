package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campstock/exchange/pkg/exchange"
)

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeTradingClosed  = "TRADING_CLOSED"
	ErrCodePriceLimit     = "PRICE_LIMIT_EXCEEDED"
	ErrCodeInsufficient   = "INSUFFICIENT_BALANCE"
	ErrCodeNoLiquidity    = "INSUFFICIENT_LIQUIDITY"
	ErrCodeNotCancellable = "ORDER_NOT_CANCELLABLE"
	ErrCodeSelfTrade      = "SELF_TRADE"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// Handle maps engine errors onto HTTP statuses. Partial results are
// still returned alongside the error: a market order's executed fills
// are final even when its remainder was rejected.
func Handle(c *gin.Context, data interface{}, err error) {
	if err == nil {
		Success(c, data)
		return
	}

	switch {
	case errors.Is(err, exchange.ErrOrderNotFound), errors.Is(err, exchange.ErrUnknownAccount):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error(), data)
	case errors.Is(err, exchange.ErrInvalidQuantity), errors.Is(err, exchange.ErrInvalidParameters):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), data)
	case errors.Is(err, exchange.ErrTradingClosed):
		fail(c, http.StatusUnprocessableEntity, ErrCodeTradingClosed, err.Error(), data)
	case errors.Is(err, exchange.ErrPriceLimitExceeded):
		fail(c, http.StatusUnprocessableEntity, ErrCodePriceLimit, err.Error(), data)
	case errors.Is(err, exchange.ErrInsufficientBalance):
		fail(c, http.StatusUnprocessableEntity, ErrCodeInsufficient, err.Error(), data)
	case errors.Is(err, exchange.ErrInsufficientLiquidity):
		fail(c, http.StatusUnprocessableEntity, ErrCodeNoLiquidity, err.Error(), data)
	case errors.Is(err, exchange.ErrOrderNotCancellable):
		fail(c, http.StatusConflict, ErrCodeNotCancellable, err.Error(), data)
	case errors.Is(err, exchange.ErrSelfTrade):
		fail(c, http.StatusUnprocessableEntity, ErrCodeSelfTrade, err.Error(), data)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternalError, "an unexpected error occurred", nil)
	}
}

func Success(c *gin.Context, data interface{}) {
	status := http.StatusOK
	if c.Request.Method == http.MethodPost {
		status = http.StatusCreated
	}
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, message, nil)
}

func fail(c *gin.Context, status int, code, message string, data interface{}) {
	c.JSON(status, Response{
		Success: false,
		Data:    data,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}
