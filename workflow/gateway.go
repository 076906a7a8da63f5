package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/estatehub/backend/models"
)

// Gateway is the external payment-processor collaborator. Authorize
// reserves the funds and returns a transaction id; Capture settles it.
// A webhook-driven processor implements the same contract with Capture
// resolving when the processor calls back.
type Gateway interface {
	Authorize(ctx context.Context, p *models.Payment) (string, error)
	Capture(ctx context.Context, transactionID string) error
}

// SimulatedGateway approves everything synchronously. It stands in for a
// real processor in development and keeps the checkout flow's behavior of
// completing payments immediately.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway { return &SimulatedGateway{} }

func (g *SimulatedGateway) Authorize(ctx context.Context, p *models.Payment) (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "txn_" + hex.EncodeToString(buf), nil
}

func (g *SimulatedGateway) Capture(ctx context.Context, transactionID string) error {
	return nil
}
