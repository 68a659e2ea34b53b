package utils

// Ptr returns a pointer to a copy of v, for the optional fields of update requests
func Ptr[T any](v T) *T {
	return &v
}
