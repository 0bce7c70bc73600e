package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
)

// cliError carries the terminal message for a pipeline error
type cliError struct {
	msg string
	err error
}

func (e *cliError) Error() string { return e.msg }

func (e *cliError) Unwrap() error { return e.err }

// userFacing replaces err's text with the message shown to the user,
// keeping the original error reachable through errors.Is/As.
func userFacing(err error) error {
	if err == nil {
		return nil
	}
	return &cliError{msg: domain.UserMessage(err), err: err}
}

// absolutePaths resolves command line arguments against the working directory
func absolutePaths(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", arg, err)
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

// pluralize returns "1 page" or "n pages"
func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// truncate shortens s to max runes, marking the cut with an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
