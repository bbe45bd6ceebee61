package configs

// First returns the value at path of the first file defining it, or the zero value.
// Other errors panic.
func First[T any](loader Loader, path string) T {
	var value T
	if err := loader.AssignFirst(path, &value); err != nil {
		if IsNotFound(err) {
			return value
		}
		panic(err)
	}
	return value
}
