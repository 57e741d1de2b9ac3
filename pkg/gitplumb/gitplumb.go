// Package gitplumb drives the real git binary as a subprocess to provide the
// bit-exact CLI contract the rewriting pipeline depends on: diff generation,
// object reads, and tree/commit construction all go through the same
// plumbing commands a human operator would type.
package gitplumb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Hash is a hex object id, either SHA-1 or SHA-256 depending on the
// repository's object format. It is kept as a string rather than a fixed
// byte array because the pipeline never needs arithmetic on it, only
// equality and use as a map key/plumbing argument.
type Hash string

// IsZero reports whether h is the empty hash, used as a sentinel for
// "file does not exist on this side of the diff".
func (h Hash) IsZero() bool { return h == "" }

func (h Hash) String() string { return string(h) }

// looksZero reports whether s is empty or the all-zero sentinel git prints
// for a missing blob side in a diff (40 zeroes for SHA-1, 64 for SHA-256).
// Any string of only '0' characters counts as zero.
func looksZero(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// GitError wraps a failed git invocation with the exact command and stderr,
// so callers and logs can see precisely what plumbing call failed.
type GitError struct {
	Command []string
	Stderr  string
	Err     error
}

func (e *GitError) Error() string {
	return fmt.Sprintf("git %s: %s: %v", strings.Join(e.Command, " "), strings.TrimSpace(e.Stderr), e.Err)
}

func (e *GitError) Unwrap() error { return e.Err }

// ErrObjectNotFound names the case of an object that does not exist in the
// repository's object store. No Driver method returns it; a missing object
// surfaces as a *GitError, or as CatFileResult.Missing from BatchCatFile.
var ErrObjectNotFound = errors.New("gitplumb: object not found")

// Driver executes git plumbing commands against a single repository
// directory. All invocations route through run/runBytes so context
// cancellation and stderr capture are handled in one place.
type Driver struct {
	repoDir string
	gitBin  string
}

// New returns a Driver rooted at repoDir, using the git binary found on
// PATH unless an alternate is configured with WithGitBinary.
func New(repoDir string) *Driver {
	return &Driver{repoDir: repoDir, gitBin: "git"}
}

// WithGitBinary overrides the git executable path (default "git").
func (d *Driver) WithGitBinary(path string) *Driver {
	d.gitBin = path
	return d
}

func (d *Driver) command(ctx context.Context, args ...string) *exec.Cmd {
	full := append([]string{"-C", d.repoDir}, args...)
	return exec.CommandContext(ctx, d.gitBin, full...)
}

// run executes a git command and returns stdout, wrapping any failure in a
// *GitError that carries the full argv and stderr.
func (d *Driver) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := d.command(ctx, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &GitError{Command: args, Stderr: stderr.String(), Err: err}
	}

	return stdout.Bytes(), nil
}

// runWithStdin is like run but feeds in to the process's stdin.
func (d *Driver) runWithStdin(ctx context.Context, in []byte, args ...string) ([]byte, error) {
	cmd := d.command(ctx, args...)
	cmd.Stdin = bytes.NewReader(in)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &GitError{Command: args, Stderr: stderr.String(), Err: err}
	}

	return stdout.Bytes(), nil
}

// RevParse resolves a revision expression (branch, tag, commit-ish) to its
// object hash.
func (d *Driver) RevParse(ctx context.Context, rev string) (Hash, error) {
	out, err := d.run(ctx, "rev-parse", rev)
	if err != nil {
		return "", fmt.Errorf("rev-parse %s: %w", rev, err)
	}

	return Hash(strings.TrimSpace(string(out))), nil
}

// SymbolicRefHEAD returns the branch HEAD currently points to, or "" (with
// no error) if HEAD is detached.
func (d *Driver) SymbolicRefHEAD(ctx context.Context) (string, error) {
	out, err := d.run(ctx, "symbolic-ref", "-q", "HEAD")
	if err != nil {
		var gerr *GitError
		if errors.As(err, &gerr) {
			return "", nil
		}
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

// UpdateRef atomically points ref at hash, recording oldHash as the
// expected prior value (compare-and-swap semantics); pass "" for oldHash to
// skip the check.
func (d *Driver) UpdateRef(ctx context.Context, ref string, hash, oldHash Hash) error {
	args := []string{"update-ref", ref, string(hash)}
	if oldHash != "" {
		args = append(args, string(oldHash))
	}

	_, err := d.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("update-ref %s: %w", ref, err)
	}

	return nil
}

// ResetHard syncs the working tree and index to ref. Used only by the
// opt-in SyncWorktree pipeline option, never by the core synthesizer.
func (d *Driver) ResetHard(ctx context.Context, ref string) error {
	_, err := d.run(ctx, "reset", "--hard", ref)
	if err != nil {
		return fmt.Errorf("reset --hard %s: %w", ref, err)
	}

	return nil
}

// ReadWorktreeFile reads a path's current on-disk content relative to the
// repository root, used when diffing against the dirty working tree rather
// than a committed revision.
func (d *Driver) ReadWorktreeFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.repoDir, path))
}

// TrackUntracked stages (via add -N, the "intent to add" flag) any
// untracked, non-ignored files so that a subsequent diff against the
// working tree reports them as additions rather than omitting them
// entirely. It never writes blob content to the index.
func (d *Driver) TrackUntracked(ctx context.Context) error {
	out, err := d.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return fmt.Errorf("ls-files --others: %w", err)
	}

	files := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(files) == 0 || (len(files) == 1 && files[0] == "") {
		return nil
	}

	args := append([]string{"add", "-N", "--"}, files...)

	_, err = d.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("add -N: %w", err)
	}

	return nil
}
