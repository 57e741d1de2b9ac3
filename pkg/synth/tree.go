package synth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/codestory-build/gitsynth/pkg/chunk"
	"github.com/codestory-build/gitsynth/pkg/gitplumb"
)

const defaultBlobMode = "100644"

// buildTree realizes the tree that results from applying every chunk in
// cumulative (the union of all commit groups up to and including the one
// currently being synthesized) on top of baseListing. Each call starts
// fresh from the base tree rather than the previous synthesized tree,
// mirroring the synthesizer's "re-derive, don't incrementally patch"
// contract: a later commit group's chunks are always expressed relative to
// the working diff's base, never relative to an intermediate synthetic
// state.
func (s *Synthesizer) buildTree(ctx context.Context, baseListing map[string]gitplumb.TreeEntry, cumulative []chunk.Chunk) (gitplumb.Hash, error) {
	finalTree := make(map[string]gitplumb.TreeEntry, len(baseListing))
	for path, entry := range baseListing {
		finalTree[path] = entry
	}

	leaves := flattenAll(cumulative)

	renameMap := make(map[string]string) // new path -> old path
	var deletes []string
	standardsByPath := make(map[string][]*chunk.Standard)
	emptyAdds := make(map[string]bool)

	for _, leaf := range leaves {
		switch v := leaf.(type) {
		case *chunk.Rename:
			renameMap[string(v.NewPath)] = string(v.OldPath)
		case *chunk.Delete:
			deletes = append(deletes, string(v.Path))
		case *chunk.EmptyAdd:
			emptyAdds[string(v.Path)] = true
		case *chunk.Standard:
			path := string(v.NewPath)
			standardsByPath[path] = append(standardsByPath[path], v)
		}
	}

	for _, path := range deletes {
		delete(finalTree, path)
	}
	for newPath, oldPath := range renameMap {
		delete(finalTree, oldPath)
		if entry, ok := baseListing[oldPath]; ok {
			finalTree[newPath] = entry
		}
	}

	touchedPaths := make(map[string]bool, len(standardsByPath)+len(emptyAdds))
	for path := range standardsByPath {
		touchedPaths[path] = true
	}
	for path := range emptyAdds {
		touchedPaths[path] = true
	}

	blobHashes, originalOf := s.resolveOriginalBlobs(baseListing, renameMap, touchedPaths)

	originals, err := s.readBlobs(ctx, blobHashes)
	if err != nil {
		return "", fmt.Errorf("read base blobs: %w", err)
	}

	for path := range touchedPaths {
		original := originals[originalOf[path]]

		result, err := applyStandards(original, standardsByPath[path])
		if err != nil {
			return "", fmt.Errorf("apply changes to %s: %w", path, err)
		}

		empty, err := result.Empty()
		if err != nil {
			result.cleanup()
			return "", fmt.Errorf("inspect applied content for %s: %w", path, err)
		}

		if empty && len(original) > 0 {
			delete(finalTree, path)
			result.cleanup()
			continue
		}

		hash, err := s.hashResult(ctx, result)
		result.cleanup()
		if err != nil {
			return "", fmt.Errorf("hash-object %s: %w", path, err)
		}

		finalTree[path] = gitplumb.TreeEntry{Mode: defaultBlobMode, Type: gitplumb.TreeEntryBlob, Hash: hash, Path: path}
	}

	return s.buildRecursiveTree(ctx, finalTree)
}

// resolveOriginalBlobs maps every touched path to the blob hash its content
// should be read from (following a rename back to its pre-rename path) and
// returns the full set of distinct blob hashes that need reading.
func (s *Synthesizer) resolveOriginalBlobs(baseListing map[string]gitplumb.TreeEntry, renameMap map[string]string, touched map[string]bool) ([]gitplumb.Hash, map[string]gitplumb.Hash) {
	seen := make(map[gitplumb.Hash]bool)
	var hashes []gitplumb.Hash
	originalOf := make(map[string]gitplumb.Hash, len(touched))

	for path := range touched {
		source := path
		if orig, ok := renameMap[path]; ok {
			source = orig
		}

		entry, ok := baseListing[source]
		if !ok {
			continue
		}

		originalOf[path] = entry.Hash
		if !seen[entry.Hash] {
			seen[entry.Hash] = true
			hashes = append(hashes, entry.Hash)
		}
	}

	return hashes, originalOf
}

// readBlobs resolves a set of blob hashes to their content, serving cached
// entries from s.cache and batching the rest through BatchCatFile with
// DefaultBatchConfig (one `cat-file --batch` round trip per 200 misses).
func (s *Synthesizer) readBlobs(ctx context.Context, hashes []gitplumb.Hash) (map[gitplumb.Hash][]byte, error) {
	out := make(map[gitplumb.Hash][]byte, len(hashes))

	var specs []string
	var misses []gitplumb.Hash

	for _, h := range hashes {
		if content, ok := s.cache.Get(string(h)); ok {
			out[h] = content
			continue
		}
		misses = append(misses, h)
		specs = append(specs, string(h))
	}

	if len(specs) == 0 {
		return out, nil
	}

	results, err := s.driver.BatchCatFile(ctx, specs, gitplumb.DefaultBatchConfig())
	if err != nil {
		return nil, err
	}

	for i, res := range results {
		if res.Missing {
			continue
		}
		out[misses[i]] = res.Content
		s.cache.Put(string(misses[i]), res.Content)
	}

	return out, nil
}

func (s *Synthesizer) hashResult(ctx context.Context, result applyResult) (gitplumb.Hash, error) {
	if result.Path != "" {
		return s.driver.HashObjectFile(ctx, result.Path)
	}
	return s.driver.HashObjectStdin(ctx, result.Content)
}

// buildRecursiveTree turns a flat path -> TreeEntry map into nested git
// tree objects, one `mktree` call per directory level, innermost first.
func (s *Synthesizer) buildRecursiveTree(ctx context.Context, flat map[string]gitplumb.TreeEntry) (gitplumb.Hash, error) {
	if len(flat) == 0 {
		return s.driver.MkTree(ctx, nil)
	}

	type dirNode struct {
		blobs map[string]gitplumb.TreeEntry
		dirs  map[string]*dirNode
	}

	newDir := func() *dirNode { return &dirNode{blobs: map[string]gitplumb.TreeEntry{}, dirs: map[string]*dirNode{}} }

	root := newDir()
	for path, entry := range flat {
		parts := strings.Split(path, "/")
		cur := root
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur.dirs[part]
			if !ok {
				next = newDir()
				cur.dirs[part] = next
			}
			cur = next
		}
		cur.blobs[parts[len(parts)-1]] = entry
	}

	var build func(n *dirNode) (gitplumb.Hash, error)
	build = func(n *dirNode) (gitplumb.Hash, error) {
		entries := make([]gitplumb.TreeEntry, 0, len(n.blobs)+len(n.dirs))

		for name, entry := range n.blobs {
			entries = append(entries, gitplumb.TreeEntry{Mode: entry.Mode, Type: gitplumb.TreeEntryBlob, Hash: entry.Hash, Path: name})
		}

		names := make([]string, 0, len(n.dirs))
		for name := range n.dirs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			subHash, err := build(n.dirs[name])
			if err != nil {
				return "", err
			}
			entries = append(entries, gitplumb.TreeEntry{Mode: "040000", Type: gitplumb.TreeEntryTree, Hash: subHash, Path: name})
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

		return s.driver.MkTree(ctx, entries)
	}

	return build(root)
}

func flattenAll(chunks []chunk.Chunk) []chunk.Chunk {
	var out []chunk.Chunk
	for _, c := range chunks {
		out = append(out, chunk.Flatten(c)...)
	}
	return out
}

// cumulativeChunks accumulates every chunk seen across commit groups so
// far, in group order, for re-deriving each tree from the base.
type cumulativeChunks struct {
	items []chunk.Chunk
}

func newCumulativeChunks() *cumulativeChunks { return &cumulativeChunks{} }

func (c *cumulativeChunks) extend(items []chunk.Chunk) { c.items = append(c.items, items...) }

func (c *cumulativeChunks) all() []chunk.Chunk { return c.items }
