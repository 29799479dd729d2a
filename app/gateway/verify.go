package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/factory"
)

// MockVerifier accepts every delivery. It exists for local development
// against provider sandboxes that cannot sign requests. SelectVerifier
// only hands it out when the deployment explicitly allows it.
type MockVerifier struct {
	gateway string
	logger  logrus.FieldLogger
}

func NewMockVerifier(gateway string) *MockVerifier {
	return &MockVerifier{
		gateway: gateway,
		logger:  factory.NewModuleLogger("gateway-" + gateway),
	}
}

func (v *MockVerifier) Verify(map[string]string, []byte, string) error {
	v.logger.Warn("Signature verification skipped (mock mode)")
	return nil
}

// failClosedVerifier rejects everything. It is selected when a gateway's
// credentials are missing and mock mode is not allowed.
type failClosedVerifier struct {
	gateway string
}

func (v *failClosedVerifier) Verify(map[string]string, []byte, string) error {
	return ErrCredentialsMissing
}

// SelectVerifier picks the verification strategy for one gateway at
// startup: the real verifier when credentials exist, the mock verifier
// when they are absent and explicitly allowed, a fail-closed verifier
// otherwise.
func SelectVerifier(gateway string, real Verifier, haveCredentials, allowMock bool) Verifier {
	if haveCredentials {
		return real
	}
	if allowMock {
		factory.NewModuleLogger("gateway-"+gateway).
			Warn("Gateway credentials are missing, signature verification is MOCKED")
		return NewMockVerifier(gateway)
	}
	factory.NewModuleLogger("gateway-"+gateway).
		Warn("Gateway credentials are missing, all deliveries will be rejected")
	return &failClosedVerifier{gateway: gateway}
}

func hmacSHA256Hex(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	_, _ = mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// equalSignatures compares the entire computed value in constant time.
func equalSignatures(expected, provided string) bool {
	return hmac.Equal([]byte(expected), []byte(provided))
}

// signedKeys returns the field names that participate in a signature:
// everything except the signature field itself and empty values, sorted
// alphabetically.
func signedKeys(fields map[string]string, signatureField string) []string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == signatureField || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
