package validation

const (
	// PINLength is the exact number of ASCII digits in a PIN.
	PINLength = 6

	// MaxDonationMessageLength is counted in characters, not bytes.
	MaxDonationMessageLength = 100

	MinPasswordLength = 6

	// MaxAmount keeps balance arithmetic far from int64 overflow.
	MaxAmount = int64(1_000_000_000_000)

	// MaxAvatarBytes bounds uploads read into memory.
	MaxAvatarBytes = 5 << 20
)
