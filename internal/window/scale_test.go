package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseXftDPI(t *testing.T) {
	assert.Equal(t, float32(144), parseXftDPI("Xcursor.size:\t24\nXft.dpi:\t144\nXft.hinting:\t1\n"))
	assert.Equal(t, float32(96.5), parseXftDPI("Xft.dpi: 96.5"))
	assert.Zero(t, parseXftDPI("Xft.hinting:\t1\n"))
	assert.Zero(t, parseXftDPI("Xft.dpi:\tlots\n"))
	assert.Zero(t, parseXftDPI(""))
}

func TestRoundScale(t *testing.T) {
	assert.Equal(t, float32(1.5), roundScale(144.0/96))
	assert.Equal(t, float32(2), roundScale(1.95))
	assert.Equal(t, float32(1.4), roundScale(1.4))
	assert.Equal(t, float32(0.5), roundScale(0.2))
	assert.Equal(t, float32(4), roundScale(9))
}

func TestDPIFromSize(t *testing.T) {
	assert.InDelta(t, 96, dpiFromSize(1920, 508), 0.1)
	assert.Zero(t, dpiFromSize(1920, 0))
	assert.Zero(t, dpiFromSize(1920, 5), "implausible sizes are ignored")
}

func TestEnvScale(t *testing.T) {
	t.Setenv("GTK_SCALE", "")
	t.Setenv("GDK_SCALE", "nope")
	t.Setenv("QT_SCALE_FACTOR", "1.25")
	assert.Equal(t, float32(1.25), envScale())

	t.Setenv("GTK_SCALE", "2")
	assert.Equal(t, float32(2), envScale())
}
