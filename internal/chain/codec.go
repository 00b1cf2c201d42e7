package chain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatPositions renders p as a pasteable [[x,y,z],...] list with a fixed
// number of decimals. Non-finite coordinates are written as null.
func FormatPositions(p Positions, digits int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for k, c := range v {
			if k > 0 {
				b.WriteByte(',')
			}
			if math.IsNaN(c) || math.IsInf(c, 0) {
				b.WriteString("null")
				continue
			}
			b.WriteString(strconv.FormatFloat(c, 'f', digits, 64))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}

// ParsePositions reads a list of 3D points. Both the JSON form produced by
// FormatPositions and YAML block lists are accepted.
func ParsePositions(s string) (Positions, error) {
	var raw [][]*float64
	if err := yaml.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPositions, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrMalformedPositions)
	}
	p := make(Positions, len(raw))
	for i, pt := range raw {
		if len(pt) != 3 {
			return nil, fmt.Errorf("%w: point %d has %d coordinates", ErrMalformedPositions, i, len(pt))
		}
		for k, c := range pt {
			if c == nil {
				return nil, fmt.Errorf("%w: point %d has a null coordinate", ErrMalformedPositions, i)
			}
			p[i][k] = *c
		}
	}
	return p, nil
}
