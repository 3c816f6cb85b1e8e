package deck

// SetMaxPayload lowers the payload limit for a test and returns a restore func.
func SetMaxPayload(n int64) func() {
	prev := maxPayload
	maxPayload = n
	return func() { maxPayload = prev }
}
