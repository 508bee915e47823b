package common

const (
	InvoiceStatePending   = "pending"
	InvoiceStateConfirmed = "confirmed"

	TopicInvoiceConfirmed = "invoice_confirmed"
)
