package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LoadFontFace loads a TTF font from disk for use with PutTTFText.  size
// is the point size at 72 DPI.
func LoadFontFace(path string, size float64) (font.Face, error) {

	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return face, nil
}

// PutTTFText draws text onto the image at the given pixel position using a
// loaded TTF face.  pos is the start of the text baseline.  Slower than
// the Hershey fonts but supports the full glyph range of the face, so use
// it for labels that go beyond Latin characters.
func PutTTFText(img *gocv.Mat, text string, pos image.Point, face font.Face,
	clr color.RGBA) error {

	// draw the text on a transparent image of the same size
	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{}),
		image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(clr),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(pos.X * 64),
			Y: fixed.Int26_6(pos.Y * 64),
		},
	}
	dr.DrawString(text)

	textImg, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(),
		gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil || textImg.Empty() {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer textImg.Close()

	// blend the text layer over the frame
	gocv.CvtColor(textImg, &textImg, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, textImg, 1.0, 0, img)

	return nil
}
