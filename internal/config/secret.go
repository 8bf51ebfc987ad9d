package config

const redactedPlaceholder = "***REDACTED***"

// SecretString is a string that refuses to print itself. String and
// MarshalJSON return a placeholder so tokens never reach logs or config
// dumps; Unmask returns the raw value.
type SecretString string

func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedPlaceholder + `"`), nil
}

// Unmask returns the plaintext. Call it only where the value is sent
// upstream.
func (s SecretString) Unmask() string {
	return string(s)
}
