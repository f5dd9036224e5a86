package spectral

import (
	"fmt"
	"math"
)

// Unit is a wavelength unit. The set is closed: nanometers, microns, meters.
type Unit int

const (
	Nanometer Unit = iota
	Micron
	Meter
)

// String returns the conventional short name of the unit.
func (u Unit) String() string {
	switch u {
	case Nanometer:
		return "nm"
	case Micron:
		return "um"
	case Meter:
		return "m"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ParseUnit converts a short unit name ("nm", "um", "m") to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "nm":
		return Nanometer, nil
	case "um":
		return Micron, nil
	case "m":
		return Meter, nil
	default:
		return 0, &UnitError{Msg: fmt.Sprintf("unrecognized wavelength unit %q", s)}
	}
}

// ScaleFromNanometers returns the factor that converts a value expressed in
// nanometers into this unit.
func (u Unit) ScaleFromNanometers() (float64, error) {
	switch u {
	case Nanometer:
		return 1, nil
	case Micron:
		return 1e-3, nil
	case Meter:
		return 1e-9, nil
	default:
		return 0, &UnitError{Msg: fmt.Sprintf("unrecognized wavelength unit %v", u)}
	}
}

// Wavelength is the spectral axis of a spectrum or cube: an ordered sequence
// of wavelength values in a declared unit.
type Wavelength struct {
	// Values are the wavelength samples, co-indexed with the spectral axis
	Values []float64

	unit Unit
}

// NewWavelength creates a wavelength axis from values in the given unit.
func NewWavelength(values []float64, unit Unit) *Wavelength {
	return &Wavelength{Values: values, unit: unit}
}

// Unit returns the declared unit of the wavelength values.
func (w *Wavelength) Unit() Unit {
	return w.unit
}

// Len returns the number of wavelength samples.
func (w *Wavelength) Len() int {
	return len(w.Values)
}

// Clone returns a deep copy of the wavelength axis.
func (w *Wavelength) Clone() *Wavelength {
	values := make([]float64, len(w.Values))
	copy(values, w.Values)
	return &Wavelength{Values: values, unit: w.unit}
}

// Convert rescales the wavelength values in place to the target unit.
func (w *Wavelength) Convert(target Unit) error {
	from, err := w.unit.ScaleFromNanometers()
	if err != nil {
		return err
	}
	to, err := target.ScaleFromNanometers()
	if err != nil {
		return err
	}
	factor := to / from
	for i := range w.Values {
		w.Values[i] *= factor
	}
	w.unit = target
	return nil
}

// ToNanometers rescales the wavelength values in place to nanometers.
func (w *Wavelength) ToNanometers() { _ = w.Convert(Nanometer) }

// ToMicrons rescales the wavelength values in place to microns.
func (w *Wavelength) ToMicrons() { _ = w.Convert(Micron) }

// ToMeters rescales the wavelength values in place to meters.
func (w *Wavelength) ToMeters() { _ = w.Convert(Meter) }

// FindWavelength returns the index of the sample nearest the target value and
// the actual wavelength at that index.
func FindWavelength(values []float64, target float64) (int, float64) {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range values {
		d := math.Abs(v - target)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, values[best]
}

// FindWavelengthIn searches a Wavelength for the sample nearest a target
// expressed in the given unit, returning a UnitError when the declared units
// do not match.
func FindWavelengthIn(w *Wavelength, target float64, unit Unit) (int, float64, error) {
	if unit != w.unit {
		return 0, 0, &UnitError{
			Msg: fmt.Sprintf("target unit %v does not match wavelength unit %v", unit, w.unit),
		}
	}
	idx, actual := FindWavelength(w.Values, target)
	return idx, actual, nil
}
