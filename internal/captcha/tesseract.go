package captcha

import (
	"bytes"
	"context"
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/telemetry"
	"fmt"
	"os/exec"
	"time"
)

const (
	report_tesseract_preprocess = "tesseract.preprocess"
	report_tesseract_run        = "tesseract.run"
)

// Tesseract guesses captcha text by running the tesseract binary on the
// preprocessed image, restricted to a single line of [a-z0-9].
type Tesseract struct {
	path    string
	timeout time.Duration
	tel     telemetry.API
}

func NewTesseract(path string, timeout time.Duration, tel telemetry.API) Tesseract {
	assert.NotEmptyStr(path, "tesseract path")
	assert.NotNil(tel)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Tesseract{
		path:    path,
		timeout: timeout,
		tel:     telemetry.NewScopedAPI("captcha", tel),
	}
}

func (t Tesseract) GuessText(ctx context.Context, image []byte) (guess string) {
	defer func() {
		if r := recover(); r != nil {
			t.tel.ReportBroken(report_tesseract_run, fmt.Errorf("panic: %v", r))
			guess = ""
		}
	}()

	prepared, err := PreprocessPNG(image)
	if err != nil {
		t.tel.ReportWarning(report_tesseract_preprocess, err)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(
		ctx, t.path,
		"stdin", "stdout",
		"--psm", "7",
		"-c", "tessedit_char_whitelist=abcdefghijklmnopqrstuvwxyz0123456789",
	)
	cmd.Stdin = bytes.NewReader(prepared)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		t.tel.ReportWarning(report_tesseract_run, err, stderr.String())
		return ""
	}

	guess = Clean(stdout.String())
	t.tel.ReportDebug("captcha guessed", len(guess))
	return guess
}
