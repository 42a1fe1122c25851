package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/Khalil2008k/guild-contracts/model"
)

// tokenSeparator joins the GID and the signing instant before hashing.
const tokenSeparator = "|"

// SignatureEngine derives and checks the tamper-evidence token written into a
// party's signature record. The token is a one-way digest binding the party's
// GID to the moment of signing; it proves the record was not altered after the
// fact, nothing more.
type SignatureEngine struct {
	now func() time.Time
}

func NewSignatureEngine() *SignatureEngine {
	return &SignatureEngine{now: time.Now}
}

// NewSignatureEngineAt returns an engine with a fixed clock, for tests.
func NewSignatureEngineAt(now func() time.Time) *SignatureEngine {
	return &SignatureEngine{now: now}
}

// Sign produces a signature record for a party's GID at the current instant.
// The timestamp is set here, server-side, and is the only timestamp ever used
// for verification.
func (e *SignatureEngine) Sign(gid string) model.Signature {
	at := e.now().UTC()
	return model.Signature{
		SignedAt: at,
		Token:    e.token(gid, at),
	}
}

// Verify recomputes the token for (gid, signedAt) and compares it to token.
func (e *SignatureEngine) Verify(gid, token string, signedAt time.Time) bool {
	expected := e.token(gid, signedAt)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// VerifyRecord checks a party's stored signature against the party's GID,
// always using the persisted SignedAt rather than any caller-supplied value.
func (e *SignatureEngine) VerifyRecord(p *model.Party) bool {
	if p == nil || p.Signature == nil {
		return false
	}
	return e.Verify(p.GID, p.Signature.Token, p.Signature.SignedAt)
}

func (e *SignatureEngine) token(gid string, at time.Time) string {
	sum := sha256.Sum256([]byte(gid + tokenSeparator + at.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
