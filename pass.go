package pathtrace

// Pass is a rectangular region of the canvas to sample (spec §3's "pass
// descriptor"). Width or Height of -1 means "to the canvas edge";
// Clamp resolves that against concrete canvas dimensions.
type Pass struct {
	StartX, StartY int
	Width, Height  int
}

// Clamp resolves a -1 Width/Height against canvasWidth/canvasHeight and
// clips the rectangle to the canvas bounds.
func (p Pass) Clamp(canvasWidth, canvasHeight int) Pass {
	width := p.Width
	if width < 0 {
		width = canvasWidth - p.StartX
	}
	height := p.Height
	if height < 0 {
		height = canvasHeight - p.StartY
	}
	if p.StartX+width > canvasWidth {
		width = canvasWidth - p.StartX
	}
	if p.StartY+height > canvasHeight {
		height = canvasHeight - p.StartY
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Pass{StartX: p.StartX, StartY: p.StartY, Width: width, Height: height}
}

// centerDistSq is the squared distance from a tile's center to the
// canvas center, used to order tiles so the image fills in from the
// middle outward.
func centerDistSq(p Pass, canvasWidth, canvasHeight int) float64 {
	cx := float64(p.StartX) + float64(p.Width)/2
	cy := float64(p.StartY) + float64(p.Height)/2
	dx := cx - float64(canvasWidth)/2
	dy := cy - float64(canvasHeight)/2
	return dx*dx + dy*dy
}

// tileOrigins enumerates every tile origin covering [0,width)x[0,height)
// at stride (tileWidth, tileHeight), in row-major order.
func tileOrigins(width, height, tileWidth, tileHeight int) []Pass {
	var tiles []Pass
	for y := 0; y < height; y += tileHeight {
		for x := 0; x < width; x += tileWidth {
			tiles = append(tiles, Pass{StartX: x, StartY: y, Width: tileWidth, Height: tileHeight})
		}
	}
	return tiles
}
