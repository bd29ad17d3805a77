package commands

import (
	"bufio"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/service"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var captchaFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&captchaFile, "captcha-file", "captcha.png", "Where to write the captcha image to solve.")
}

// solveCaptcha shows the captcha of challenge and reads the answer from
// stdin. An empty answer accepts the OCR guess.
func solveCaptcha(cmd *cobra.Command, challenge service.Challenge) (string, error) {
	err := os.WriteFile(captchaFile, challenge.Image, 0644)
	if err != nil {
		return "", fmt.Errorf("write captcha: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "captcha written to %s\n", captchaFile)
	if challenge.Guess != "" {
		fmt.Fprintf(out, "OCR guess: %s (press enter to accept)\n", challenge.Guess)
	}
	fmt.Fprint(out, "captcha: ")

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read captcha: %w", err)
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		answer = challenge.Guess
	}
	if answer == "" {
		return "", fmt.Errorf("no captcha answer given")
	}
	return answer, nil
}

// saveAttachment writes a cached document into dir under its display name.
func saveAttachment(svc service.Service, dir, key string) (string, error) {
	att, _, err := svc.Attachment(key)
	if err != nil {
		return "", describe(err)
	}
	return writeDocument(dir, att)
}

func writeDocument(dir string, att attachments.Attachment) (string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(att.Filename))
	err = os.WriteFile(path, att.Content, 0644)
	if err != nil {
		return "", err
	}
	return path, nil
}
