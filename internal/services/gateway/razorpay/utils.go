package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// Hmac256 is a function to generate HMAC256 hash.
func Hmac256(body, key []byte) string {
	hash := hmac.New(sha256.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

// VerifyCompletionSignature checks the completion handler's signature:
// HMAC-SHA256 over "orderID|paymentID" keyed with the gateway secret.
func VerifyCompletionSignature(orderID, paymentID, signature, secret string) bool {
	expected := Hmac256([]byte(orderID+"|"+paymentID), []byte(secret))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// GenerateHash hashes a webhook shared secret for storage.
func GenerateHash(secret []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareHash checks a presented webhook secret against its stored hash.
func CompareHash(storedHash, presented []byte) bool {
	if err := bcrypt.CompareHashAndPassword(storedHash, presented); err != nil {
		return false
	}
	return true
}
