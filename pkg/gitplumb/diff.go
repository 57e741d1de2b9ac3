package gitplumb

import (
	"context"
	"fmt"
	"strconv"
)

// RawDiff returns the literal stdout of a unified diff between two
// commit-ish revisions, with the exact flags the rewriting pipeline
// contracts on: no color, zero lines of context, and a configurable rename
// similarity threshold. pkg/unidiff is the only consumer expected to parse
// this output.
func (d *Driver) RawDiff(ctx context.Context, base, target string, renameSimilarity int, pathspecs ...string) ([]byte, error) {
	if renameSimilarity <= 0 {
		renameSimilarity = 50
	}

	args := []string{
		"diff",
		"--no-color",
		"--unified=0",
		fmt.Sprintf("-M%d%%", renameSimilarity),
		base, target,
	}
	if len(pathspecs) > 0 {
		args = append(args, "--")
		args = append(args, pathspecs...)
	}

	out, err := d.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", base, target, err)
	}

	return out, nil
}

// RawDiffWorktree diffs base against the current working tree (dirty
// state), used when target == "" per spec.md's §6 contract for comparing a
// commit against uncommitted local changes.
func (d *Driver) RawDiffWorktree(ctx context.Context, base string, renameSimilarity int, pathspecs ...string) ([]byte, error) {
	if renameSimilarity <= 0 {
		renameSimilarity = 50
	}

	args := []string{
		"diff",
		"--no-color",
		"--unified=0",
		fmt.Sprintf("-M%d%%", renameSimilarity),
		base,
	}
	if len(pathspecs) > 0 {
		args = append(args, "--")
		args = append(args, pathspecs...)
	}

	out, err := d.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("diff %s..<worktree>: %w", base, err)
	}

	return out, nil
}

// CatFilePretty returns the pretty-printed content of an object (equivalent
// to `git cat-file -p <id>`), used for reading a single blob at <commit>:<path>.
func (d *Driver) CatFilePretty(ctx context.Context, spec string) ([]byte, error) {
	out, err := d.run(ctx, "cat-file", "-p", spec)
	if err != nil {
		return nil, fmt.Errorf("cat-file -p %s: %w", spec, err)
	}

	return out, nil
}

// ObjectSize returns the size in bytes of an object without reading its
// content, via `git cat-file -s`, used to decide the in-memory vs.
// disk-streaming threshold before paying for a full read.
func (d *Driver) ObjectSize(ctx context.Context, spec string) (int64, error) {
	out, err := d.run(ctx, "cat-file", "-s", spec)
	if err != nil {
		return 0, fmt.Errorf("cat-file -s %s: %w", spec, err)
	}

	n, parseErr := strconv.ParseInt(string(trimNewline(out)), 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("cat-file -s %s: parse size: %w", spec, parseErr)
	}

	return n, nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
