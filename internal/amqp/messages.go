package amqp

import (
	"encoding/json"
	"time"

	"smartexpense/internal/core"
)

// TransactionPostedMessage is published after a transaction has been
// committed. It carries enough to build an audit entry without a
// database round trip.
type TransactionPostedMessage struct {
	TransactionID string               `json:"transaction_id"`
	UserID        string               `json:"user_id"`
	AccountID     string               `json:"account_id"`
	Type          core.TransactionType `json:"type"`
	AmountCents   int64                `json:"amount_cents"`
	Timestamp     time.Time            `json:"timestamp"`
}

func NewTransactionPostedMessage(t core.Transaction) *TransactionPostedMessage {
	return &TransactionPostedMessage{
		TransactionID: t.ID,
		UserID:        t.UserID,
		AccountID:     t.AccountID,
		Type:          t.Type,
		AmountCents:   t.Amount.Cents,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *TransactionPostedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionPostedMessageFromJSON(data []byte) (*TransactionPostedMessage, error) {
	var msg TransactionPostedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
