package render

import "image/color"

var (
	// Black is the label text color, darknet writes labels in black on the
	// class colored background
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}

	// darknetColors are the anchor colors darknet interpolates between when
	// picking a class color, as RGB fractions
	darknetColors = [6][3]float32{
		{1, 0, 1},
		{0, 0, 1},
		{0, 1, 1},
		{0, 1, 0},
		{1, 1, 0},
		{1, 0, 0},
	}
)

// channel returns channel c of the interpolated darknet color for x out of
// max, matching get_color() in darknet's image.c
func channel(c, x, max int) float32 {

	ratio := float32(x) / float32(max) * 5
	i := int(ratio)
	j := i + 1

	if j > 5 {
		j = 5
	}

	ratio -= float32(i)

	return (1-ratio)*darknetColors[i][c] + ratio*darknetColors[j][c]
}

// ClassColor returns the color darknet's draw_detections uses for class out
// of numClasses, so boxes drawn in Go match those drawn natively
func ClassColor(class, numClasses int) color.RGBA {

	if numClasses < 1 {
		numClasses = 1
	}

	offset := class * 123457 % numClasses

	return color.RGBA{
		R: uint8(channel(2, offset, numClasses) * 255),
		G: uint8(channel(1, offset, numClasses) * 255),
		B: uint8(channel(0, offset, numClasses) * 255),
		A: 255,
	}
}
