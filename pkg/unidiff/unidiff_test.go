package unidiff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/a.go b/a.go
index 1111111..2222222 100644
--- a/a.go
+++ b/a.go
@@ -2,1 +2,2 @@ func Foo() {
-	old()
+	new1()
+	new2()
diff --git a/old.go b/renamed.go
similarity index 92%
rename from old.go
rename to renamed.go
index 3333333..4444444 100644
--- a/old.go
+++ b/renamed.go
@@ -5,0 +6,1 @@
+	extra()
diff --git a/new.go b/new.go
new file mode 100644
index 0000000..5555555
--- /dev/null
+++ b/new.go
@@ -0,0 +1,2 @@
+package main
+func main() {}
diff --git a/gone.go b/gone.go
deleted file mode 100644
index 6666666..0000000
--- a/gone.go
+++ /dev/null
@@ -1,1 +0,0 @@
-package gone
`

func TestParse(t *testing.T) {
	diffs, err := Parse([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, diffs, 4)

	first := diffs[0]
	require.Equal(t, "a.go", string(first.NewPath))
	require.Len(t, first.Hunks, 1)
	require.Equal(t, 2, first.Hunks[0].OldStart)
	require.Equal(t, 1, first.Hunks[0].OldLen)
	require.Equal(t, 2, first.Hunks[0].NewLen)
	require.Len(t, first.Hunks[0].Lines, 3)

	renamed := diffs[1]
	require.True(t, renamed.IsRename)
	require.Equal(t, "old.go", string(renamed.OldPath))
	require.Equal(t, "renamed.go", string(renamed.NewPath))
	require.Equal(t, 92, renamed.RenameSimilarity)

	added := diffs[2]
	require.True(t, added.IsNewFile)
	require.Equal(t, "new.go", string(added.CanonicalPath()))

	deleted := diffs[3]
	require.True(t, deleted.IsDeletedFile)
	require.Equal(t, "gone.go", string(deleted.CanonicalPath()))
}

const noNewlineDiff = `diff --git a/a.go b/a.go
index 1111111..2222222 100644
--- a/a.go
+++ b/a.go
@@ -1,1 +1,1 @@
-old
\ No newline at end of file
+new
\ No newline at end of file
`

func TestParseNoNewlineMarker(t *testing.T) {
	diffs, err := Parse([]byte(noNewlineDiff))
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	lines := diffs[0].Hunks[0].Lines
	require.Len(t, lines, 2)
	require.True(t, lines[0].NoNewline)
	require.True(t, lines[1].NoNewline)
}
