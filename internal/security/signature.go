package security

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// Payment webhook signatures are HMAC-SHA512 over the raw request body,
// hex encoded, carried in this header by the payment processor.
const HeaderWebhookSignature = "X-Paystack-Signature"

func ComputeWebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	expected := ComputeWebhookSignature(secret, body)
	return hmac.Equal([]byte(signature), []byte(expected))
}
