package util

// Must2 returns v or panics with e.
// It is meant for package-level tables built from embedded data.
func Must2[T any](v T, e error) T {
	if e != nil {
		panic(e)
	}
	return v
}
