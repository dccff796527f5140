package gateway

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature(t *testing.T) {
	sum := sha512.Sum512([]byte("RB-1" + "200" + "500000.00" + "secret"))
	expected := hex.EncodeToString(sum[:])

	assert.Equal(t, expected, Signature("RB-1", "200", "500000.00", "secret"))
}

func TestVerifySignature(t *testing.T) {
	n := &Notification{
		OrderID:     "RB-1",
		StatusCode:  "200",
		GrossAmount: "500000.00",
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "secret")

	assert.True(t, VerifySignature(n, "secret"))
	assert.False(t, VerifySignature(n, "other-key"))

	// Hex case does not matter.
	n.SignatureKey = strings.ToUpper(n.SignatureKey)
	assert.True(t, VerifySignature(n, "secret"))

	n.SignatureKey = "tampered"
	assert.False(t, VerifySignature(n, "secret"))
}
