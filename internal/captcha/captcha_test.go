package captcha

import (
	"bytes"
	"context"
	"ecourts-backend/internal/components/telemetry"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleCaptcha(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 40, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 40; x++ {
			c := color.RGBA{R: 220, G: 220, B: 220, A: 255}
			if x >= 10 && x < 30 && y >= 4 && y < 12 {
				c = color.RGBA{R: 30, G: 30, B: 90, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClean(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{in: " aB3 x9\n", expected: "ab3x9"},
		{in: "k7-Q_2.", expected: "k7q2"},
		{in: "", expected: ""},
		{in: "\u00e9\u00e8", expected: ""},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, Clean(c.in), c.in)
	}
}

func TestDataURL(t *testing.T) {
	raw := sampleCaptcha(t)
	url := DataURL(raw)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	require.Equal(t, raw, decoded)

	require.True(t, strings.HasPrefix(DataURL([]byte("not an image")), "data:image/png;base64,"))
}

func TestPreprocess(t *testing.T) {
	src, err := png.Decode(bytes.NewReader(sampleCaptcha(t)))
	require.NoError(t, err)

	out := Preprocess(src)
	require.Equal(t, 80, out.Bounds().Dx())
	require.Equal(t, 32, out.Bounds().Dy())
	for _, p := range out.Pix {
		require.True(t, p == 0 || p == 255, "pixel %d is not binary", p)
	}
	require.Equal(t, uint8(0), out.GrayAt(40, 16).Y)
	require.Equal(t, uint8(255), out.GrayAt(2, 2).Y)
}

func TestStubs(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, "", Nop{}.GuessText(ctx, nil))
	require.Equal(t, "abc12", Fixed{Answer: "abc12"}.GuessText(ctx, nil))

	ch := NewChallenge(ctx, sampleCaptcha(t), Fixed{Answer: "x1"})
	require.Equal(t, "x1", ch.Guess)
	require.NotEmpty(t, ch.DataURL)
}

func TestTesseractNeverFails(t *testing.T) {
	rec := &telemetry.RecordingAPI{}
	guesser := NewTesseract("/nonexistent/tesseract", time.Second, rec)

	require.Equal(t, "", guesser.GuessText(context.Background(), []byte("garbage")))
	require.Len(t, rec.Find("warning", report_tesseract_preprocess), 1)

	require.Equal(t, "", guesser.GuessText(context.Background(), sampleCaptcha(t)))
	require.Len(t, rec.Find("warning", report_tesseract_run), 1)
}
