package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stablegate/stablegate.go/db/models"
	"github.com/stablegate/stablegate.go/lib"
	"github.com/stablegate/stablegate.go/lib/responses"
	"github.com/stablegate/stablegate.go/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ziflex/lecho/v3"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = responses.HTTPErrorHandler
	e.Validator = &lib.CustomValidator{Validator: validator.New()}
	return e
}

func newTestService(t *testing.T) *service.GatewayService {
	t.Helper()
	return &service.GatewayService{
		Config: &service.Config{
			ReceivingAddress:     "0x1f9C1Efa5dDe1CB8a1f81BbD9a6ecd1a9B515E5a",
			TagStep:              service.DecimalValue{Decimal: decimal.RequireFromString("0.001")},
			TagMax:               service.DecimalValue{Decimal: decimal.RequireFromString("0.099")},
			AmountPrecision:      3,
			FeedPageSize:         50,
			LedgerRetentionHours: 720,
			CreateRetries:        3,
		},
		Logger:        lecho.New(io.Discard),
		Invoices:      service.NewMemoryInvoiceStore(),
		Ledger:        service.NewMemoryTransferLedger(),
		TokenDecimals: 18,
		InvoicePubSub: service.NewPubsub(),
	}
}

func TestAddInvoiceEndpoint(t *testing.T) {
	e := newTestEcho()
	svc := newTestService(t)
	controller := NewInvoiceController(svc)

	req := httptest.NewRequest(http.MethodPost, "/v2/invoices", bytes.NewBufferString(`{"amount": "10"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, controller.AddInvoice(c))
	require.Equal(t, http.StatusOK, rec.Code)

	response := Invoice{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "10", response.RequestedAmount)
	assert.Equal(t, "10.001", response.PayAmount)
	assert.Equal(t, svc.Config.ReceivingAddress, response.ToAddress)
	assert.False(t, response.IsPaid)
}

func TestAddInvoiceEndpointRejectsBadAmount(t *testing.T) {
	e := newTestEcho()
	controller := NewInvoiceController(newTestService(t))

	for _, body := range []string{`{"amount": "-1"}`, `{"amount": "0"}`, `{"amount": "1.00001"}`, `{"amount": "abc"}`} {
		req := httptest.NewRequest(http.MethodPost, "/v2/invoices", bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, controller.AddInvoice(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestAddInvoiceEndpointCapacityExhausted(t *testing.T) {
	e := newTestEcho()
	svc := newTestService(t)
	svc.Config.TagMax = service.DecimalValue{Decimal: decimal.RequireFromString("0.001")}
	controller := NewInvoiceController(svc)

	_, err := svc.AddInvoice(context.Background(), decimal.RequireFromString("10"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v2/invoices", bytes.NewBufferString(`{"amount": "10"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, controller.AddInvoice(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetInvoiceEndpoint(t *testing.T) {
	e := newTestEcho()
	svc := newTestService(t)
	controller := NewInvoiceController(svc)

	invoice, err := svc.AddInvoice(context.Background(), decimal.RequireFromString("10"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v2/invoices/:id")
	c.SetParamNames("id")
	c.SetParamValues(invoice.PublicID)

	require.NoError(t, controller.GetInvoice(c))
	require.Equal(t, http.StatusOK, rec.Code)

	response := Invoice{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, invoice.PublicID, response.ID)
}

// erroringInvoiceStore answers every lookup with a backend failure.
type erroringInvoiceStore struct {
	service.InvoiceStore
}

func (s erroringInvoiceStore) FindInvoice(ctx context.Context, publicID string) (*models.Invoice, error) {
	return nil, errors.New("connection refused")
}

func TestGetInvoiceEndpointStoreOutageIsNot404(t *testing.T) {
	e := newTestEcho()
	svc := newTestService(t)
	svc.Invoices = erroringInvoiceStore{InvoiceStore: svc.Invoices}
	controller := NewInvoiceController(svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v2/invoices/:id")
	c.SetParamNames("id")
	c.SetParamValues("any")

	require.NoError(t, controller.GetInvoice(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetInvoiceEndpointNotFound(t *testing.T) {
	e := newTestEcho()
	controller := NewInvoiceController(newTestService(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v2/invoices/:id")
	c.SetParamNames("id")
	c.SetParamValues("no-such-invoice")

	require.NoError(t, controller.GetInvoice(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPendingInvoicesEndpoint(t *testing.T) {
	e := newTestEcho()
	svc := newTestService(t)
	controller := NewInvoiceController(svc)

	for i := 0; i < 3; i++ {
		_, err := svc.AddInvoice(context.Background(), decimal.RequireFromString("10"))
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v2/invoices/pending", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, controller.GetPendingInvoices(c))
	require.Equal(t, http.StatusOK, rec.Code)

	response := GetInvoicesResponseBody{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response.Invoices, 3)
}
