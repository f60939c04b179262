package window

import (
	"os"
	"strconv"
	"strings"
)

var commonScales = []float32{0.75, 1.0, 1.25, 1.5, 1.75, 2.0, 2.5, 3.0, 4.0}

// envScale returns the first positive scale factor set by a toolkit
// environment variable, or 0.
func envScale() float32 {
	for _, name := range []string{"GTK_SCALE", "GDK_SCALE", "QT_SCALE_FACTOR"} {
		if s := parseScale(os.Getenv(name)); s > 0 {
			return s
		}
	}
	return 0
}

func parseScale(v string) float32 {
	if v == "" {
		return 0
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil || s <= 0 {
		return 0
	}
	return float32(s)
}

// parseXftDPI extracts Xft.dpi from an X resource manager string such as
// "Xft.dpi:\t96\n".
func parseXftDPI(resources string) float32 {
	for _, line := range strings.Split(resources, "\n") {
		value, ok := strings.CutPrefix(line, "Xft.dpi:")
		if !ok {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
		if err != nil || dpi <= 0 {
			return 0
		}
		return float32(dpi)
	}
	return 0
}

// dpiFromSize derives DPI from the physical screen width. Values outside
// 72..300 usually mean the monitor reported a bogus size and give 0.
func dpiFromSize(widthPx, widthMM int32) float32 {
	if widthPx <= 0 || widthMM <= 0 {
		return 0
	}
	dpi := float32(widthPx) / float32(widthMM) * 25.4
	if dpi < 72 || dpi > 300 {
		return 0
	}
	return dpi
}

// roundScale snaps scale to a common factor within 0.1, else clamps it to
// [0.5, 4].
func roundScale(scale float32) float32 {
	best, bestDiff := float32(1), float32(1000)
	for _, c := range commonScales {
		diff := scale - c
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	switch {
	case bestDiff < 0.1:
		return best
	case scale < 0.5:
		return 0.5
	case scale > 4:
		return 4
	}
	return scale
}
