package labels

// instancePalette holds visually distinct colors, instance ids cycle through it
var instancePalette = [...]RGB{
	{230, 25, 75}, {60, 180, 75}, {255, 225, 25}, {0, 130, 200}, {245, 130, 48},
	{145, 30, 180}, {70, 240, 240}, {240, 50, 230}, {210, 245, 60}, {250, 190, 190},
	{0, 128, 128}, {230, 190, 255}, {170, 110, 40}, {255, 250, 200}, {128, 0, 0},
	{170, 255, 195}, {128, 128, 0}, {255, 215, 180}, {0, 0, 128}, {128, 128, 128},
}

// PaletteSize is the number of colors in the instance palette
const PaletteSize = len(instancePalette)

// Palette returns a copy of the instance palette
func Palette() []RGB {
	p := make([]RGB, PaletteSize)
	copy(p, instancePalette[:])
	return p
}

// InstanceColor returns the palette entry for an instance id (id mod PaletteSize).
// Ids more than PaletteSize apart share a color.
func InstanceColor(id int32) RGB {
	idx := int(id) % PaletteSize
	if idx < 0 {
		idx += PaletteSize
	}
	return instancePalette[idx]
}
