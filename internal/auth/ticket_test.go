package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSealRoundTrip(t *testing.T) {
	sealer := NewSealer([]byte("test-ticket-secret"))
	expiresAt := time.Now().Add(10 * time.Minute)

	tag := sealer.Seal("9876543210", 654321, expiresAt)
	require.True(t, sealer.Check("9876543210", 654321, expiresAt, tag))
}

func TestCheckRejectsMutation(t *testing.T) {
	sealer := NewSealer([]byte("test-ticket-secret"))
	expiresAt := time.Now().Add(10 * time.Minute)
	tag := sealer.Seal("9876543210", 654321, expiresAt)

	require.False(t, sealer.Check("9876543211", 654321, expiresAt, tag), "mutated mobile number")
	require.False(t, sealer.Check("9876543210", 654322, expiresAt, tag), "mutated code")
	require.False(t, sealer.Check("9876543210", 654321, expiresAt.Add(time.Second), tag), "mutated expiry")

	flipped := []byte(tag)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	require.False(t, sealer.Check("9876543210", 654321, expiresAt, string(flipped)), "mutated tag")
}

func TestCheckRejectsNonHexTag(t *testing.T) {
	sealer := NewSealer([]byte("test-ticket-secret"))
	require.False(t, sealer.Check("9876543210", 654321, time.Now(), "not-hex!"))
}

func TestCheckRejectsForeignSecret(t *testing.T) {
	expiresAt := time.Now().Add(10 * time.Minute)
	tag := NewSealer([]byte("secret-a")).Seal("9876543210", 654321, expiresAt)
	require.False(t, NewSealer([]byte("secret-b")).Check("9876543210", 654321, expiresAt, tag))
}

func TestSealIsStableAcrossSubsecondDrift(t *testing.T) {
	// The wire carries timestamps at varying precision; sealing binds
	// unix seconds so a round-tripped expiry still verifies.
	sealer := NewSealer([]byte("test-ticket-secret"))
	expiresAt := time.Now().Add(10 * time.Minute)
	tag := sealer.Seal("9876543210", 654321, expiresAt)
	require.True(t, sealer.Check("9876543210", 654321, expiresAt.Truncate(time.Second), tag))
}

func TestTicketExpired(t *testing.T) {
	now := time.Now()
	ticket := Ticket{ExpiresAt: now.Add(time.Minute)}
	require.False(t, ticket.Expired(now))
	require.False(t, ticket.Expired(now.Add(time.Minute)), "boundary instant is still usable")
	require.True(t, ticket.Expired(now.Add(time.Minute+time.Second)))
}
