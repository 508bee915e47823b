package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stablegate/stablegate.go/common"
	"github.com/stablegate/stablegate.go/db/models"
)

func (svc *GatewayService) StartWebhookRoutine(ctx context.Context) {
	svc.Logger.Infof("Starting webhook routine with webhook url %s", svc.Config.WebhookUrl)
	confirmedInvoices := make(chan models.Invoice)
	subId := svc.InvoicePubSub.Subscribe(common.TopicInvoiceConfirmed, confirmedInvoices)
	defer svc.InvoicePubSub.Unsubscribe(subId, common.TopicInvoiceConfirmed)
	for {
		select {
		case <-ctx.Done():
			return
		case confirmed := <-confirmedInvoices:
			svc.postToWebhook(confirmed)
		}
	}
}

func (svc *GatewayService) postToWebhook(invoice models.Invoice) {
	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(invoice)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(svc.Config.WebhookUrl, "application/json", payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
