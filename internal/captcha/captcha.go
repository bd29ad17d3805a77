// Package captcha holds the advisory side of the captcha step: rendering the
// challenge for a human and producing a best-effort guess of its text.
package captcha

import (
	"context"
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"
)

// TextGuesser reads the text off a captcha image. Guesses are advisory, an
// implementation returns "" rather than an error when it cannot read the image.
type TextGuesser interface {
	GuessText(ctx context.Context, image []byte) string
}

// Challenge is a captcha issued inside one portal session. It is only valid
// for submissions made through that same session.
type Challenge struct {
	Image   []byte `json:"-"`
	DataURL string `json:"captcha_url"`
	Guess   string `json:"detected_text"`
}

func NewChallenge(ctx context.Context, image []byte, guesser TextGuesser) Challenge {
	return Challenge{
		Image:   image,
		DataURL: DataURL(image),
		Guess:   guesser.GuessText(ctx, image),
	}
}

// DataURL embeds image as a base64 data: URL.
func DataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}

var notCaptchaChars = regexp.MustCompile(`[^a-z0-9]`)

// Clean reduces raw recognizer output to the lowercase alphanumerics the
// portal captchas are drawn from.
func Clean(text string) string {
	return notCaptchaChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "")
}

// Nop never guesses.
type Nop struct{}

func (Nop) GuessText(context.Context, []byte) string { return "" }

// Fixed always guesses Answer.
type Fixed struct {
	Answer string
}

func (f Fixed) GuessText(context.Context, []byte) string { return f.Answer }
