package utils

import (
	"os"
	"os/exec"
	"strings"
)

// Editor resolves the user's editor: $VISUAL, $EDITOR, then nvim, vi.
func Editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if ed := strings.TrimSpace(os.Getenv(env)); ed != "" {
			return ed
		}
	}
	if p, err := exec.LookPath("nvim"); err == nil {
		return p
	}
	if p, err := exec.LookPath("vi"); err == nil {
		return p
	}
	return "ed"
}

// EditTempFile writes initial to a temp file and returns the command
// that opens it in the editor. Read the result with ReadAndRemove once
// the command exits.
func EditTempFile(initial string) (*exec.Cmd, string, error) {
	tmp, err := os.CreateTemp("", "storyshelf-*.md")
	if err != nil {
		return nil, "", err
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(initial); err != nil {
		tmp.Close()
		os.Remove(name)
		return nil, "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return nil, "", err
	}

	// editors configured with arguments, e.g. "code --wait"
	fields := strings.Fields(Editor())
	args := append(fields[1:], name)
	return exec.Command(fields[0], args...), name, nil
}

func ReadAndRemove(path string) (string, error) {
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
