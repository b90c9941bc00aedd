// Package hasher computes and compares intent hashes for Covenant
// contracts.
//
// An IntentHash binds a contract's stated intent (free-form prose) to
// its actual behavior (the canonical fingerprint) via two independent
// SHA-256 digests plus a combined digest over both. Comparing two
// IntentHashes for the same contract across revisions of a source file
// surfaces "intent drift": behavior changed while the stated intent did
// not, which is exactly the situation the Intent Verification Engine
// exists to catch.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
	"github.com/covenant-lang/covenant/internal/compiler/fingerprint"
)

// IntentHash is the hashed identity of a contract: its declared intent
// text, its behavioral fingerprint, and a digest combining both.
type IntentHash struct {
	ContractName    string
	IntentText      string
	IntentHash      string
	FingerprintHash string
	CombinedHash    string
}

// ToDict returns a map representation suitable for JSON rendering by
// the CLI's fingerprint subcommand.
func (h IntentHash) ToDict() map[string]string {
	return map[string]string{
		"contract_name":    h.ContractName,
		"intent_text":      h.IntentText,
		"intent_hash":      h.IntentHash,
		"fingerprint_hash": h.FingerprintHash,
		"combined_hash":    h.CombinedHash,
	}
}

// VerifyAgainst compares this hash (treated as the "old" revision)
// against other (the "new" revision) and classifies the result.
func (h IntentHash) VerifyAgainst(other IntentHash) IntentHashComparison {
	return IntentHashComparison{
		ContractName:    h.ContractName,
		IntentChanged:   h.IntentHash != other.IntentHash,
		BehaviorChanged: h.FingerprintHash != other.FingerprintHash,
		CombinedMatch:   h.CombinedHash == other.CombinedHash,
		OldHash:         h,
		NewHash:         other,
	}
}

// IntentHashComparison is the result of comparing two IntentHashes for
// the same contract across two points in time.
type IntentHashComparison struct {
	ContractName    string
	IntentChanged   bool
	BehaviorChanged bool
	CombinedMatch   bool
	OldHash         IntentHash
	NewHash         IntentHash
}

// IsDrift reports intent drift: behavior changed but the stated intent
// did not. This is the single most important signal the IVE produces —
// code that now does something different from what it still claims to
// do.
func (c IntentHashComparison) IsDrift() bool {
	return c.BehaviorChanged && !c.IntentChanged
}

// IsConsistent reports that neither intent nor behavior changed, or
// that both changed together (the intent was updated to match new
// behavior).
func (c IntentHashComparison) IsConsistent() bool {
	return c.CombinedMatch || (c.IntentChanged && c.BehaviorChanged)
}

// Describe renders a short, human-readable classification of the
// comparison for CLI output.
func (c IntentHashComparison) Describe() string {
	switch {
	case c.IsDrift():
		return fmt.Sprintf("contract '%s': intent drift detected — behavior changed but intent was not updated", c.ContractName)
	case c.BehaviorChanged && c.IntentChanged:
		return fmt.Sprintf("contract '%s': both intent and behavior changed", c.ContractName)
	case !c.BehaviorChanged && c.IntentChanged:
		return fmt.Sprintf("contract '%s': intent text changed, behavior unchanged", c.ContractName)
	default:
		return fmt.Sprintf("contract '%s': no change", c.ContractName)
	}
}

// ComputeIntentHash hashes a contract's intent text and behavioral
// fingerprint.
//
// intent_hash is SHA-256 of the raw intent text. fingerprint_hash is
// SHA-256 of the fingerprint's canonical JSON form, with object keys
// in sorted order and no inserted whitespace so that semantically
// identical fingerprints always serialize identically. encoding/json
// writes struct fields in declaration order, so the sorted key order
// comes from CanonicalFingerprint declaring its fields alphabetically
// by JSON name, mirroring the original implementation's
// json.dumps(sort_keys=True, separators=(",", ":")). combined_hash is
// SHA-256 of the intent hash and fingerprint hash strings concatenated.
func ComputeIntentHash(contract *ast.ContractDef, intentText string, fp *fingerprint.BehavioralFingerprint) (IntentHash, error) {
	if fp == nil {
		fp = fingerprint.FingerprintContract(contract)
	}

	canonicalJSON, err := json.Marshal(fp.ToCanonicalDict())
	if err != nil {
		return IntentHash{}, fmt.Errorf("marshaling canonical fingerprint: %w", err)
	}

	intentHash := sha256Hex([]byte(intentText))
	fingerprintHash := sha256Hex(canonicalJSON)
	combinedHash := sha256Hex([]byte(intentHash + fingerprintHash))

	return IntentHash{
		ContractName:    contract.Name,
		IntentText:      intentText,
		IntentHash:      intentHash,
		FingerprintHash: fingerprintHash,
		CombinedHash:    combinedHash,
	}, nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
