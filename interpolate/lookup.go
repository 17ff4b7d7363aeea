package interpolate

import "github.com/fogleman/ease"

// LookupInterpolator samples another interpolator into a table and answers
// with linear interpolation between neighbouring samples. It trades a little
// precision for constant-time evaluation of expensive curves.
type LookupInterpolator struct {
	table []float64
}

// NewLookup samples src at n+1 evenly spaced points. n is raised to 1 if
// smaller.
func NewLookup(src Interpolator, n int) *LookupInterpolator {
	if n < 1 {
		n = 1
	}
	table := make([]float64, n+1)
	for i := range table {
		table[i] = src.Interpolate(float64(i) / float64(n))
	}
	return &LookupInterpolator{table: table}
}

// NewPulseLookup builds a length-sample table that rises along
// ease.InOutQuad towards the midpoint and falls back symmetrically to 0.
func NewPulseLookup(length int) *LookupInterpolator {
	if length < 2 {
		length = 2
	}
	increment := 1.0 / float64(length/2)
	table := make([]float64, length)
	for i, j := 0, length-1; i < length/2; i, j = i+1, j-1 {
		value := float64(i) * increment
		table[i] = ease.InOutQuad(value)
		table[j] = ease.InOutQuad(value)
	}
	return &LookupInterpolator{table: table}
}

// Len returns the number of samples.
func (l *LookupInterpolator) Len() int {
	return len(l.table)
}

// Interpolate looks up fraction in the table.
func (l *LookupInterpolator) Interpolate(fraction float64) float64 {
	fraction = Clamp(fraction)
	last := len(l.table) - 1
	if last == 0 {
		return l.table[0]
	}
	pos := fraction * float64(last)
	i := int(pos)
	if i >= last {
		return l.table[last]
	}
	t := pos - float64(i)
	return l.table[i] + (l.table[i+1]-l.table[i])*t
}
