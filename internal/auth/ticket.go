package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Ticket is the ephemeral proof of a one-time code issuance. It is never
// persisted: the server hands the sealed triple to the client, the
// client echoes it back, and the server revalidates by recomputation.
type Ticket struct {
	MobileNumber string    `json:"mobileNumber"`
	Code         int       `json:"verificationCode"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Tag          string    `json:"hash"`
}

// Expired reports whether the ticket's window has passed.
func (t Ticket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Sealer produces and checks ticket integrity tags using a keyed digest
// under a process-wide secret. The sealer is agnostic to expiry: it
// binds the expiry into the tag but the caller owns the clock check.
type Sealer struct {
	secret []byte
}

// NewSealer builds a Sealer around the ticket-sealing secret.
func NewSealer(secret []byte) *Sealer {
	return &Sealer{secret: secret}
}

// canonical renders the triple in a fixed field order. Expiry is reduced
// to unix seconds so the encoding survives any timestamp round trip.
func canonical(mobileNumber string, code int, expiresAt time.Time) []byte {
	return []byte(fmt.Sprintf("%s|%d|%d", mobileNumber, code, expiresAt.Unix()))
}

// Seal computes the hex integrity tag over {mobileNumber, code, expiresAt}.
func (s *Sealer) Seal(mobileNumber string, code int, expiresAt time.Time) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(canonical(mobileNumber, code, expiresAt))
	return hex.EncodeToString(mac.Sum(nil))
}

// Check recomputes the tag for the triple and compares it to tag in
// constant time. Any mutation of any field invalidates the ticket.
func (s *Sealer) Check(mobileNumber string, code int, expiresAt time.Time, tag string) bool {
	want, err := hex.DecodeString(tag)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(canonical(mobileNumber, code, expiresAt))
	return hmac.Equal(want, mac.Sum(nil))
}
