package transport

import (
	"github.com/labstack/echo/v4"
	"github.com/stablegate/stablegate.go/controllers"
	"github.com/stablegate/stablegate.go/lib/service"
)

func RegisterEndpoints(svc *service.GatewayService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, logMw echo.MiddlewareFunc) {
	invoiceCtrl := controllers.NewInvoiceController(svc)
	payoutCtrl := controllers.NewPayoutController(svc)
	balanceCtrl := controllers.NewBalanceController(svc)

	e.GET("/getinfo", controllers.NewGetInfoController(svc).GetInfo, logMw)

	secured.POST("/v2/invoices", invoiceCtrl.AddInvoice)
	secured.GET("/v2/invoices/pending", invoiceCtrl.GetPendingInvoices)
	secured.GET("/v2/invoices/:id", invoiceCtrl.GetInvoice)
	secured.GET("/v2/balance", balanceCtrl.Balance)
	securedWithStrictRateLimit.POST("/v2/payouts", payoutCtrl.SendPayout)
}
