package constants

// WithUserConfigDir replaces the lookup of the user configuration directory.
func WithUserConfigDir(f func() (string, error)) option {
	return func(o *options) {
		o.baseDir = f
	}
}
