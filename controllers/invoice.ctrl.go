package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stablegate/stablegate.go/common"
	"github.com/stablegate/stablegate.go/db/models"
	"github.com/stablegate/stablegate.go/lib/responses"
	"github.com/stablegate/stablegate.go/lib/service"
)

// InvoiceController : Add invoice controller struct
type InvoiceController struct {
	svc *service.GatewayService
}

func NewInvoiceController(svc *service.GatewayService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	ID              string    `json:"id"`
	RequestedAmount string    `json:"requested_amount"`
	Tag             string    `json:"tag"`
	PayAmount       string    `json:"pay_amount"`
	ToAddress       string    `json:"to_address"`
	State           string    `json:"state"`
	TxHash          string    `json:"tx_hash,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ConfirmedAt     time.Time `json:"confirmed_at,omitempty"`
	IsPaid          bool      `json:"is_paid"`
}

type AddInvoiceRequestBody struct {
	Amount decimal.Decimal `json:"amount"`
}

func (controller *InvoiceController) AddInvoice(c echo.Context) error {
	var body AddInvoiceRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load AddInvoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.AddInvoice(c.Request().Context(), body.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCapacityExhausted):
			c.Logger().Warnf("Tag capacity exhausted, rejecting invoice creation")
			return c.JSON(http.StatusServiceUnavailable, responses.TagCapacityError)
		case errors.Is(err, service.ErrDuplicatePayAmount):
			return c.JSON(http.StatusConflict, responses.DuplicatePayAmountError)
		default:
			c.Logger().Errorf("Failed to create invoice: %v", err)
			return c.JSON(http.StatusBadRequest, responses.InvalidAmountError)
		}
	}

	return c.JSON(http.StatusOK, convertInvoice(invoice))
}

func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
		}
		c.Logger().Errorf("Failed to load invoice: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, convertInvoice(invoice))
}

type GetInvoicesResponseBody struct {
	Invoices []Invoice `json:"invoices"`
}

func (controller *InvoiceController) GetPendingInvoices(c echo.Context) error {
	invoices, err := controller.svc.ListPendingInvoices(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list pending invoices: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	response := make([]Invoice, len(invoices))
	for i, invoice := range invoices {
		response[i] = convertInvoice(&invoice)
	}
	return c.JSON(http.StatusOK, &GetInvoicesResponseBody{Invoices: response})
}

func convertInvoice(invoice *models.Invoice) Invoice {
	return Invoice{
		ID:              invoice.PublicID,
		RequestedAmount: invoice.RequestedAmount.String(),
		Tag:             invoice.Tag.String(),
		PayAmount:       invoice.PayAmount.String(),
		ToAddress:       invoice.ToAddress,
		State:           invoice.State,
		TxHash:          invoice.TxHash,
		CreatedAt:       invoice.CreatedAt,
		ConfirmedAt:     invoice.ConfirmedAt.Time,
		IsPaid:          invoice.State == common.InvoiceStateConfirmed,
	}
}
