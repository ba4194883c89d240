package domain

import "time"

// RecoveryCodeCount is the number of single-use recovery codes handed out when
// MFA is attached or the codes are regenerated.
const RecoveryCodeCount = 10

type MFAStatus int

const (
	MFADisabled MFAStatus = iota
	MFAPending            // an unexpired candidate secret exists but MFA is not yet attached
	MFAEnabled
)

func (s MFAStatus) String() string {
	switch s {
	case MFADisabled:
		return "DISABLED"
	case MFAPending:
		return "PENDING"
	case MFAEnabled:
		return "ENABLED"
	default:
		return "UNKNOWN"
	}
}

// MFAState is a snapshot of an account's second factor as read from the store.
type MFAState struct {
	Status MFAStatus

	// Secret is the active base32 TOTP seed. Only set when Status is MFAEnabled.
	Secret string

	// CandidateSecret is the seed issued by the last key generation. Only set
	// when Status is MFAPending.
	CandidateSecret    string
	CandidateExpiresAt time.Time

	RecoveryCodesRemaining int
}

// Enabled reports whether a second factor is required for this account.
func (s MFAState) Enabled() bool { return s.Status == MFAEnabled }

// GeneratedKey is returned from key generation.
type GeneratedKey struct {
	Secret string
	URI    string // otpauth:// provisioning URI
	Skew   int64  // server clock minus client reference time, in milliseconds
}
