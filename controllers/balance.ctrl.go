package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stablegate/stablegate.go/lib/responses"
	"github.com/stablegate/stablegate.go/lib/service"
)

// BalanceController : Balance controller struct
type BalanceController struct {
	svc *service.GatewayService
}

func NewBalanceController(svc *service.GatewayService) *BalanceController {
	return &BalanceController{svc: svc}
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

func (controller *BalanceController) Balance(c echo.Context) error {
	balance, err := controller.svc.GatewayBalance(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to read gateway balance: %v", err)
		return c.JSON(http.StatusBadGateway, responses.ChainUnavailableError)
	}
	return c.JSON(http.StatusOK, &BalanceResponse{
		Address: controller.svc.Config.ReceivingAddress,
		Balance: balance.String(),
	})
}
