package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/selection-upload/internal/config"
)

// maxAttempts bounds re-prompting after invalid input.
const maxAttempts = 3

// Prompter asks for values on an interactive terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// String prompts for a value. An empty answer returns def; with no default,
// an empty answer is asked again.
func (p *Prompter) String(label, def string) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}

		input, err := p.readLine()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", label, err)
		}
		if input == "" {
			input = def
		}
		if input != "" {
			return input, nil
		}
		fmt.Fprintf(p.out, "%s is required.\n", label)
	}
	return "", fmt.Errorf("no value entered for %s", label)
}

// Int prompts for a positive integer.
func (p *Prompter) Int(label string) (int, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "%s: ", label)
		input, err := p.readLine()
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", label, err)
		}
		n, err := strconv.Atoi(input)
		if err == nil && n > 0 {
			return n, nil
		}
		fmt.Fprintf(p.out, "%s must be a positive whole number.\n", label)
	}
	return 0, fmt.Errorf("no valid number entered for %s", label)
}

// Directory prompts for a directory path. An empty answer selects the
// current directory.
func (p *Prompter) Directory() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return p.String("Directory", cwd)
}

// FillMissing prompts for every required run value the environment and
// flags left empty.
func FillMissing(p *Prompter, cfg *config.Config) error {
	missing := cfg.Missing()
	if len(missing) == 0 {
		return nil
	}
	log.Debug().Strs("missing", missing).Msg("Prompting for configuration")

	var err error
	for _, name := range missing {
		switch name {
		case config.EnvDirectory:
			cfg.Run.Directory, err = p.Directory()
		case config.EnvUsername:
			cfg.Run.Username, err = p.String("Username", "")
		case config.EnvEventID:
			cfg.Run.EventID, err = p.String("Event ID", "")
		case config.EnvEventTitle:
			cfg.Run.EventTitle, err = p.String("Event title", "")
		case config.EnvMaxPhotos:
			cfg.Run.MaxNumberOfPhotos, err = p.Int("Max number of photos")
		case config.EnvBucket:
			cfg.Storage.Bucket, err = p.String("Bucket", "")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
