package imagegen

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"regexp"
	"strings"
)

// nameRe finds character mentions so the placeholder can sketch them.
var nameRe = regexp.MustCompile(`(?i)(Modi|Rahul|Kejriwal|Yogi|Shah|Common Man)`)

var characterColors = []color.NRGBA{
	{255, 153, 51, 255},
	{65, 105, 225, 255},
	{50, 205, 50, 255},
	{220, 20, 60, 255},
}

// palette picks a background gradient themed to the visual description so
// consecutive placeholder scenes do not all look identical.
func palette(visual string) (color.NRGBA, color.NRGBA) {
	v := strings.ToLower(visual)
	switch {
	case strings.Contains(v, "parliament") || strings.Contains(v, "sansad") || strings.Contains(v, "arena"):
		return color.NRGBA{40, 40, 70, 255}, color.NRGBA{20, 20, 50, 255}
	case strings.Contains(v, "petrol") || strings.Contains(v, "pump"):
		return color.NRGBA{255, 200, 150, 255}, color.NRGBA{200, 120, 80, 255}
	case strings.Contains(v, "school") || strings.Contains(v, "student") || strings.Contains(v, "degree"):
		return color.NRGBA{200, 230, 255, 255}, color.NRGBA{150, 180, 220, 255}
	case strings.Contains(v, "bulldozer") || strings.Contains(v, "law"):
		return color.NRGBA{255, 180, 100, 255}, color.NRGBA{200, 130, 60, 255}
	case strings.Contains(v, "reel") || strings.Contains(v, "social") || strings.Contains(v, "media"):
		return color.NRGBA{100, 50, 150, 255}, color.NRGBA{60, 20, 100, 255}
	case strings.Contains(v, "family") || strings.Contains(v, "tv") || strings.Contains(v, "common"):
		return color.NRGBA{180, 200, 180, 255}, color.NRGBA{130, 150, 130, 255}
	case strings.Contains(v, "vote") || strings.Contains(v, "remote") || strings.Contains(v, "public"):
		return color.NRGBA{200, 180, 50, 255}, color.NRGBA{150, 130, 30, 255}
	}
	return color.NRGBA{80, 100, 140, 255}, color.NRGBA{40, 50, 80, 255}
}

// placeholder draws a deterministic cartoon stand-in frame: themed
// gradient, floor band and one colored figure per character mentioned in
// the visual. It is the end of the provider chain and must not fail for
// any input.
func (e *Engine) placeholder(visual, outFile string) (string, error) {
	w, h := e.cfg.Images.Width, e.cfg.Images.Height
	top, bottom := palette(visual)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h-1)
		c := lerp(top, bottom, t)
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	floorY := int(float64(h) * 0.72)
	floor := color.NRGBA{dim(bottom.R), dim(bottom.G), dim(bottom.B), 255}
	fillRect(img, 0, floorY, w, h, floor)

	names := dedupe(nameRe.FindAllString(visual, -1))
	if len(names) == 0 {
		names = []string{"", ""}
	}
	if len(names) > 4 {
		names = names[:4]
	}

	bodyTop := int(float64(h) * 0.42)
	for i := range names {
		cx := w * (i + 1) / (len(names) + 1)
		body := characterColors[i%len(characterColors)]
		// torso
		fillRect(img, cx-60, bodyTop, cx+60, floorY-10, body)
		// head
		fillCircle(img, cx, bodyTop-40, 50, color.NRGBA{255, 220, 185, 255})
		// eyes
		fillCircle(img, cx-15, bodyTop-45, 6, color.NRGBA{255, 255, 255, 255})
		fillCircle(img, cx+15, bodyTop-45, 6, color.NRGBA{255, 255, 255, 255})
		fillCircle(img, cx-15, bodyTop-45, 2, color.NRGBA{0, 0, 0, 255})
		fillCircle(img, cx+15, bodyTop-45, 2, color.NRGBA{0, 0, 0, 255})
	}

	f, err := os.Create(outFile)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", err
	}
	return outFile, nil
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R)*(1-t) + float64(b.R)*t),
		G: uint8(float64(a.G)*(1-t) + float64(b.G)*t),
		B: uint8(float64(a.B)*(1-t) + float64(b.B)*t),
		A: 255,
	}
}

func dim(c uint8) uint8 {
	if c < 30 {
		return 0
	}
	return c - 30
}

func fillRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	b := img.Bounds()
	for y := max(y0, b.Min.Y); y < min(y1, b.Max.Y); y++ {
		for x := max(x0, b.Min.X); x < min(x1, b.Max.X); x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func fillCircle(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				if image.Pt(x, y).In(img.Bounds()) {
					img.SetNRGBA(x, y, c)
				}
			}
		}
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		key := strings.ToLower(n)
		if !seen[key] {
			seen[key] = true
			out = append(out, n)
		}
	}
	return out
}
