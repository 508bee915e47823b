package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stablegate/stablegate.go/lib/responses"
	"github.com/stablegate/stablegate.go/lib/service"
)

// PayoutController : Payout controller struct
type PayoutController struct {
	svc *service.GatewayService
}

func NewPayoutController(svc *service.GatewayService) *PayoutController {
	return &PayoutController{svc: svc}
}

type SendPayoutRequestBody struct {
	ToAddress string          `json:"to_address" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type SendPayoutResponseBody struct {
	TxID      string `json:"tx_id"`
	ToAddress string `json:"to_address"`
	Amount    string `json:"amount"`
}

func (controller *PayoutController) SendPayout(c echo.Context) error {
	var body SendPayoutRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load SendPayout request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	txID, err := controller.svc.SendPayout(c.Request().Context(), body.ToAddress, body.Amount)
	if err != nil {
		c.Logger().Errorf("Failed to send payout to:%s amount:%s %v", body.ToAddress, body.Amount, err)
		return c.JSON(http.StatusBadGateway, responses.ChainUnavailableError)
	}

	return c.JSON(http.StatusOK, &SendPayoutResponseBody{
		TxID:      txID,
		ToAddress: body.ToAddress,
		Amount:    body.Amount.String(),
	})
}
