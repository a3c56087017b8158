package secrets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DiffSource produces the unified diff a commit would record.
type DiffSource interface {
	// Diff returns the staged diff in dir. With includeTracked it returns
	// the diff against HEAD, covering "git commit -a".
	Diff(ctx context.Context, dir string, includeTracked bool) ([]byte, error)
}

// GitDiff runs the git binary.
type GitDiff struct {
	// Binary defaults to "git".
	Binary string
}

// Diff implements DiffSource. Outside a repository, or without a git
// binary, the commit cannot record anything and the diff is empty. A
// repository without commits has no HEAD, so the index diff is used.
func (g GitDiff) Diff(ctx context.Context, dir string, includeTracked bool) ([]byte, error) {
	// Outside a work tree "git diff" switches to --no-index mode and rejects
	// --cached, so the repository is located first.
	if _, stderr, err := g.run(ctx, dir, "rev-parse", "--git-dir"); err != nil {
		if errors.Is(err, exec.ErrNotFound) || strings.Contains(stderr, "not a git repository") {
			return nil, nil
		}
		return nil, gitError("git rev-parse", err, stderr)
	}

	out, stderr, err := g.run(ctx, dir, diffArgs(includeTracked)...)
	if err != nil && includeTracked && strings.Contains(stderr, "'HEAD'") {
		out, stderr, err = g.run(ctx, dir, diffArgs(false)...)
	}
	if err != nil {
		return nil, gitError("git diff", err, stderr)
	}
	return out, nil
}

func diffArgs(includeTracked bool) []string {
	args := []string{"diff", "--no-color", "--no-ext-diff", "--unified=0"}
	if includeTracked {
		return append(args, "HEAD")
	}
	return append(args, "--cached")
}

// gitError keeps only the first line of stderr.
func gitError(op string, err error, stderr string) error {
	if line, _, _ := strings.Cut(stderr, "\n"); line != "" {
		return fmt.Errorf("%s: %w: %s", op, err, strings.TrimSpace(line))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (g GitDiff) run(ctx context.Context, dir string, args ...string) ([]byte, string, error) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	// Stderr is matched in English.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), strings.TrimSpace(stderr.String()), err
}
