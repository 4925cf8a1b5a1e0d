// middleware/signature.go
package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries hex(HMAC-SHA256(secret, body)) on Linear deliveries.
const SignatureHeader = "Linear-Signature"

// LinearSignatureMiddleware rejects webhook deliveries whose signature does not match
// the raw body. An empty secret disables the check.
func LinearSignatureMiddleware(secret string) fiber.Handler {
	if secret == "" {
		log.Println("⚠️  LINEAR_WEBHOOK_SECRET not set, webhook signatures are not verified")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		signature := strings.TrimSpace(c.Get(SignatureHeader))
		if signature == "" {
			log.Printf("🚫 [SIGNATURE] Missing %s header for %s", SignatureHeader, c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "webhook signature missing",
			})
		}

		if !ValidSignature(secret, c.Body(), signature) {
			log.Printf("❌ [SIGNATURE] Invalid signature for %s (got prefix: %.10s...)", c.Path(), signature)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid webhook signature",
			})
		}
		return c.Next()
	}
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature compares in constant time.
func ValidSignature(secret string, body []byte, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	return hmac.Equal(got, want)
}
