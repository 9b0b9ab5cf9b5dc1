package entities

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	// TicketCodeLength is the number of letters in a ticket code
	TicketCodeLength = 5
	// ticketCodeAlphabet is the uniform alphabet codes are drawn from
	ticketCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var ticketCodePattern = regexp.MustCompile(`^[A-Z]{5}$`)

// Ticket represents one chance to win, minted per whole dollar of a qualifying tip
type Ticket struct {
	ID        int64     `db:"id" json:"id"`
	PoolID    int64     `db:"pool_id" json:"pool_id"`
	PaymentID string    `db:"payment_id" json:"payment_id"` // Source payment, the minting idempotency key
	TipperID  int64     `db:"tipper_id" json:"tipper_id"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TicketDetail is a ticket enriched with the owning tipper's username
type TicketDetail struct {
	Ticket
	TipperUsername string `db:"tipper_username" json:"tipper_username"`
}

// GenerateTicketCode generates a cryptographically random 5-letter code
// drawn uniformly from A-Z
func GenerateTicketCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(ticketCodeAlphabet)))

	buf := make([]byte, TicketCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate ticket code: %w", err)
		}
		buf[i] = ticketCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// IsValidTicketCode reports whether code is exactly five uppercase A-Z letters
func IsValidTicketCode(code string) bool {
	return ticketCodePattern.MatchString(code)
}
