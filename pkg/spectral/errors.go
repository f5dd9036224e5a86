package spectral

// DimensionError reports array dimensions that do not match the selected
// pipeline variant, such as a wavelength axis whose length differs from the
// cube's spectral axis.
type DimensionError struct {
	Msg string
}

func (e *DimensionError) Error() string {
	return "spectral: " + e.Msg
}

// UnitError reports an unrecognized wavelength unit or a mismatch between a
// caller-declared unit and the data's declared unit. It is a configuration
// error and is never recovered locally.
type UnitError struct {
	Msg string
}

func (e *UnitError) Error() string {
	return "spectral: " + e.Msg
}
