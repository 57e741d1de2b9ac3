package gitplumb

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/codestory-build/gitsynth/pkg/safeconv"
)

// BatchConfig tunes how many objects are grouped into a single
// `cat-file --batch` round trip. Mirrors the shape of a conventional
// batch-size/worker-count config record.
type BatchConfig struct {
	// BlobBatchSize is the number of objects requested per cat-file batch.
	BlobBatchSize int
	// HashBatchSize is carried in the record but not read by any driver
	// method; HashObjectStdinPaths hashes all of its paths in one
	// invocation.
	HashBatchSize int
}

// DefaultBatchConfig returns conservative defaults: large enough to amortize
// process-spawn overhead, small enough to bound peak memory.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{BlobBatchSize: 200, HashBatchSize: 200}
}

// CatFileResult is one entry of a `cat-file --batch` response.
type CatFileResult struct {
	Hash    Hash
	Type    string
	Size    int64
	Content []byte
	Missing bool
}

// BatchCatFile resolves a list of object specs (hashes, or "<rev>:<path>"
// expressions) in as few `git cat-file --batch` invocations as possible,
// preserving input order in the returned slice.
func (d *Driver) BatchCatFile(ctx context.Context, specs []string, cfg BatchConfig) ([]CatFileResult, error) {
	if cfg.BlobBatchSize <= 0 {
		cfg = DefaultBatchConfig()
	}

	results := make([]CatFileResult, 0, len(specs))

	for start := 0; start < len(specs); start += cfg.BlobBatchSize {
		end := min(start+cfg.BlobBatchSize, len(specs))

		batch, err := d.catFileBatchOnce(ctx, specs[start:end])
		if err != nil {
			return nil, fmt.Errorf("cat-file --batch [%s]: %w", humanize.Comma(int64(end-start)), err)
		}

		results = append(results, batch...)
	}

	return results, nil
}

func (d *Driver) catFileBatchOnce(ctx context.Context, specs []string) ([]CatFileResult, error) {
	cmd := d.command(ctx, "cat-file", "--batch")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	writeErrCh := make(chan error, 1)
	go func() {
		defer stdin.Close()
		for _, spec := range specs {
			if _, err := io.WriteString(stdin, spec+"\n"); err != nil {
				writeErrCh <- err
				return
			}
		}
		writeErrCh <- nil
	}()

	reader := bufio.NewReaderSize(stdout, 64*1024)
	results := make([]CatFileResult, 0, len(specs))

	for range specs {
		header, err := reader.ReadString('\n')
		if err != nil {
			_ = cmd.Wait()
			return nil, fmt.Errorf("read header: %w (stderr: %s)", err, stderr.String())
		}

		header = strings.TrimRight(header, "\n")
		fields := strings.Fields(header)

		if len(fields) >= 2 && fields[1] == "missing" {
			results = append(results, CatFileResult{Hash: Hash(fields[0]), Missing: true})
			continue
		}

		if len(fields) < 3 {
			_ = cmd.Wait()
			return nil, fmt.Errorf("malformed cat-file header %q", header)
		}

		size, parseErr := strconv.ParseInt(fields[2], 10, 64)
		if parseErr != nil {
			_ = cmd.Wait()
			return nil, fmt.Errorf("malformed size in header %q: %w", header, parseErr)
		}

		content := make([]byte, safeconv.MustInt64ToInt(size))
		if _, err := io.ReadFull(reader, content); err != nil {
			_ = cmd.Wait()
			return nil, fmt.Errorf("read content: %w", err)
		}

		// Each record is terminated by a trailing LF after the content.
		if _, err := reader.ReadByte(); err != nil {
			_ = cmd.Wait()
			return nil, fmt.Errorf("read trailing newline: %w", err)
		}

		results = append(results, CatFileResult{
			Hash: Hash(fields[0]), Type: fields[1], Size: size, Content: content,
		})
	}

	if err := <-writeErrCh; err != nil {
		_ = cmd.Wait()
		return nil, fmt.Errorf("write specs: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return nil, &GitError{Command: []string{"cat-file", "--batch"}, Stderr: stderr.String(), Err: err}
	}

	return results, nil
}

// HashObjectStdinPaths hashes and writes each path's current on-disk content
// as a blob object (equivalent to `git hash-object -w --stdin-paths`),
// returning the resulting hash per path in input order.
func (d *Driver) HashObjectStdinPaths(ctx context.Context, paths []string) ([]Hash, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	cmd := d.command(ctx, "hash-object", "-w", "--stdin-paths")
	cmd.Stdin = strings.NewReader(strings.Join(paths, "\n") + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &GitError{Command: []string{"hash-object", "-w", "--stdin-paths"}, Stderr: stderr.String(), Err: err}
	}

	return splitHashLines(stdout.String(), len(paths))
}

// HashObjectStdin hashes and writes raw content as a single blob object
// (equivalent to `git hash-object -w --stdin`), used for the synthesizer's
// in-memory reconstruction path.
func (d *Driver) HashObjectStdin(ctx context.Context, content []byte) (Hash, error) {
	cmd := d.command(ctx, "hash-object", "-w", "--stdin")
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &GitError{Command: []string{"hash-object", "-w", "--stdin"}, Stderr: stderr.String(), Err: err}
	}

	return Hash(strings.TrimSpace(stdout.String())), nil
}

// HashObjectFile hashes and writes the content of a single on-disk file,
// used for the >1 MiB disk-streaming synthesis path so content never
// transits through the Go process's own memory as one contiguous buffer
// beyond what the OS pipe buffers naturally.
func (d *Driver) HashObjectFile(ctx context.Context, path string) (Hash, error) {
	out, err := d.run(ctx, "hash-object", "-w", "--", path)
	if err != nil {
		return "", fmt.Errorf("hash-object -w %s: %w", path, err)
	}

	return Hash(strings.TrimSpace(string(out))), nil
}

func splitHashLines(s string, want int) ([]Hash, error) {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != want {
		return nil, fmt.Errorf("expected %d hashes, got %d", want, len(lines))
	}

	hashes := make([]Hash, want)
	for i, l := range lines {
		hashes[i] = Hash(strings.TrimSpace(l))
	}

	return hashes, nil
}
