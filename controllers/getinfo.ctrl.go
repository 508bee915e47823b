package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stablegate/stablegate.go/lib/service"
)

// GetInfoController : GetInfoController struct
type GetInfoController struct {
	svc *service.GatewayService
}

func NewGetInfoController(svc *service.GatewayService) *GetInfoController {
	return &GetInfoController{svc: svc}
}

type GetInfoResponse struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	ReceivingAddress string `json:"receiving_address"`
	TokenDecimals    int32  `json:"token_decimals"`
}

func (controller *GetInfoController) GetInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, &GetInfoResponse{
		Title:            controller.svc.Config.Branding.Title,
		Description:      controller.svc.Config.Branding.Desc,
		ReceivingAddress: controller.svc.Config.ReceivingAddress,
		TokenDecimals:    controller.svc.TokenDecimals,
	})
}
