package errors

// ValidateKey checks that a commit key can identify a commit. Any
// non-empty string is accepted; sinks escape keys wherever they are
// written.
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "commit key cannot be empty")
	}
	return nil
}

// ValidateLane checks that a lane index is a usable horizontal track.
func ValidateLane(lane int) error {
	if lane < 0 {
		return New(ErrCodeInvalidSnapshot, "lane must be non-negative, got %d", lane)
	}
	return nil
}
