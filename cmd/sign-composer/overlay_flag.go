package main

import (
	"fmt"
	"strconv"
	"strings"
)

// overlaySpec is one -sig argument: path[@x,y[,scale]].
type overlaySpec struct {
	Path     string
	X, Y     float64
	HasPos   bool
	Scale    float64
	HasScale bool
}

func parseOverlaySpec(s string) (overlaySpec, error) {
	spec := overlaySpec{Path: s}
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return spec, nil
	}
	spec.Path = s[:at]
	if spec.Path == "" {
		return spec, fmt.Errorf("overlay %q: missing path", s)
	}

	parts := strings.Split(s[at+1:], ",")
	if len(parts) != 2 && len(parts) != 3 {
		return spec, fmt.Errorf("overlay %q: expected path@x,y[,scale]", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return spec, fmt.Errorf("overlay %q: %w", s, err)
		}
		vals[i] = v
	}
	spec.X, spec.Y, spec.HasPos = vals[0], vals[1], true
	if len(vals) == 3 {
		spec.Scale, spec.HasScale = vals[2], true
	}
	return spec, nil
}

// overlayFlags collects repeated -sig flags.
type overlayFlags []overlaySpec

func (f *overlayFlags) String() string {
	paths := make([]string, len(*f))
	for i, s := range *f {
		paths[i] = s.Path
	}
	return strings.Join(paths, ",")
}

func (f *overlayFlags) Set(v string) error {
	spec, err := parseOverlaySpec(v)
	if err != nil {
		return err
	}
	*f = append(*f, spec)
	return nil
}
