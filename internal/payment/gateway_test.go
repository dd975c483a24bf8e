package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSimulatedGateway_CreateCheckout(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	checkout, err := g.CreateCheckout(ctx, uuid.New(), 500, "USD")
	assert.NoError(t, err)
	assert.Contains(t, checkout.Reference, "pay_sim_")
	assert.NotEmpty(t, checkout.CheckoutURL)

	_, err = g.CreateCheckout(ctx, uuid.New(), 0, "USD")
	assert.Error(t, err)
}

func TestSimulatedGateway_GetStatus(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	checkout, err := g.CreateCheckout(ctx, uuid.New(), 500, "USD")
	assert.NoError(t, err)

	status, err := g.GetStatus(ctx, checkout.Reference)
	assert.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)

	_, err = g.GetStatus(ctx, "unknown_ref")
	assert.Error(t, err)
}

func TestSimulatedGateway_HandleWebhook(t *testing.T) {
	g := NewSimulatedGateway()
	escrowID := uuid.New()

	payload := []byte(`{"type":"payment.succeeded","data":{"reference":"pay_sim_abc","escrow_id":"` + escrowID.String() + `"}}`)
	event, err := g.HandleWebhook(payload, "sig")
	assert.NoError(t, err)
	assert.Equal(t, "payment.succeeded", event.Type)
	assert.Equal(t, "pay_sim_abc", event.Reference)
	assert.Equal(t, escrowID, event.EscrowID)
}

func TestSimulatedGateway_HandleWebhook_Invalid(t *testing.T) {
	g := NewSimulatedGateway()

	_, err := g.HandleWebhook([]byte(`not json`), "")
	assert.Error(t, err)

	_, err = g.HandleWebhook([]byte(`{"type":"","data":{}}`), "")
	assert.Error(t, err)

	_, err = g.HandleWebhook([]byte(`{"type":"payment.succeeded","data":{"reference":"r","escrow_id":"bad-uuid"}}`), "")
	assert.Error(t, err)
}
