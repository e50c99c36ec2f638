package webhook

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Signature headers set on outgoing requests when a signing secret is configured
const (
	HeaderTimestamp = "X-MRSL-Request-Timestamp"
	HeaderNonce     = "X-MRSL-Request-Nonce"
	HeaderSignature = "X-MRSL-Signature"
)

// Signer computes request signatures so the receiver can authenticate submissions.
// The signature is the hex SHA-256 of timestamp + nonce + secret + body.
type Signer struct {
	secret string
}

// NewSigner returns nil when secret is empty; a nil Signer signs nothing
func NewSigner(secret string) *Signer {
	if secret == "" {
		return nil
	}
	return &Signer{secret: secret}
}

// Sign sets the signature headers on req for body
func (s *Signer) Sign(req *http.Request, body []byte, at time.Time) {
	if s == nil {
		return
	}
	timestamp := strconv.FormatInt(at.Unix(), 10)
	nonce := uuid.NewString()

	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderNonce, nonce)
	req.Header.Set(HeaderSignature, s.signature(timestamp, nonce, body))
}

func (s *Signer) signature(timestamp, nonce string, body []byte) string {
	hash := sha256.Sum256([]byte(timestamp + nonce + s.secret + string(body)))
	return fmt.Sprintf("%x", hash)
}
