package tail

// SetMaxPollBytes overrides the per-poll byte budget for the duration of a test.
func SetMaxPollBytes(n int64) func() {
	prev := maxPollBytes
	maxPollBytes = n
	return func() { maxPollBytes = prev }
}
