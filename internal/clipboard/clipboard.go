// Package clipboard copies text to the system clipboard through the
// platform's clipboard tool.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ErrUnavailable is returned when no clipboard tool is installed.
var ErrUnavailable = errors.New("no clipboard tool found")

// tool is a clipboard command line.
type tool struct {
	name string
	args []string
}

// candidates lists the tools to try for goos, in preference order.
func candidates(goos string) []tool {
	switch goos {
	case "darwin":
		return []tool{{"pbcopy", nil}}
	case "windows":
		return []tool{{"clip", nil}}
	default:
		return []tool{
			{"wl-copy", nil},
			{"xclip", []string{"-selection", "clipboard"}},
			{"xsel", []string{"--clipboard", "--input"}},
		}
	}
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

func find() (tool, bool) {
	for _, t := range candidates(runtime.GOOS) {
		if _, err := lookPath(t.name); err == nil {
			return t, true
		}
	}
	return tool{}, false
}

// Write copies text to the system clipboard.
func Write(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return WriteContext(ctx, text)
}

// WriteContext copies text, giving up when ctx is done.
func WriteContext(ctx context.Context, text string) error {
	t, ok := find()
	if !ok {
		return ErrUnavailable
	}

	cmd := exec.CommandContext(ctx, t.name, t.args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", t.name, err)
	}
	return nil
}

// Available checks if clipboard functionality is available.
func Available() bool {
	_, ok := find()
	return ok
}
