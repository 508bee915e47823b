package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var InvalidAmountError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "amount must be a positive decimal with at most 3 fractional digits",
	HttpStatusCode: 400,
}

var InvalidAddressError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "invalid destination address",
	HttpStatusCode: 400,
}

var InvoiceNotFoundError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "invoice not found",
	HttpStatusCode: 404,
}

var TagCapacityError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "all payment tags are in use. Please try again later",
	HttpStatusCode: 503,
}

var DuplicatePayAmountError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "could not allocate a unique payment amount. Please retry",
	HttpStatusCode: 409,
}

var ChainUnavailableError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "upstream node unavailable. Please try again later",
	HttpStatusCode: 502,
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("RequestID", c.Response().Header().Get(echo.HeaderXRequestID))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
	} else {
		c.JSON(http.StatusInternalServerError, GeneralServerError)
	}
}
