package gui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHexColor(t *testing.T) {
	t.Parallel()
	c := hexColor("#ff8000")
	require.EqualValues(t, 255, c.R)
	require.EqualValues(t, 128, c.G)
	require.EqualValues(t, 0, c.B)
	require.EqualValues(t, 255, c.A)
}

func TestFadeColorPremultiplies(t *testing.T) {
	t.Parallel()
	c := fadeColor("#ffffff", 0.5)
	require.EqualValues(t, 127, c.R)
	require.EqualValues(t, 127, c.A)

	full := fadeColor("#102030", 1.0)
	require.EqualValues(t, 0x10, full.R)
	require.EqualValues(t, 255, full.A)

	neg := fadeColor("#ffffff", -1)
	require.EqualValues(t, 0, neg.R)
}
