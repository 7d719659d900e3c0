package pkg_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/photosort/pkg"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDestinationName(t *testing.T) {
	rec := datedRecord("src/IMG_1234.jpeg", time.Date(2023, 10, 27, 14, 5, 9, 0, time.UTC), 1)
	assert.Equal(t, "2023-10-27-140509.jpeg", pkg.DestinationName(rec, false))
	assert.Equal(t, "IMG_1234.jpeg", pkg.DestinationName(rec, true))
}

func TestVersionedName(t *testing.T) {
	assert.Equal(t, "a.jpg", pkg.VersionedName("a.jpg", 0))
	assert.Equal(t, "a-1.jpg", pkg.VersionedName("a.jpg", 1))
	assert.Equal(t, "a.b-2.png", pkg.VersionedName("a.b.png", 2))
	assert.Equal(t, "noext-3", pkg.VersionedName("noext", 3))
}

func TestOrganize(t *testing.T) {
	date := time.Date(2023, 10, 27, 14, 5, 9, 0, time.UTC)

	t.Run("copies into YYYY/MM and suffixes collisions", func(t *testing.T) {
		srcDir, targetDir := t.TempDir(), filepath.Join(t.TempDir(), "sorted")
		a := datedRecord(writeSource(t, srcDir, "a/one.jpg", "first"), date, 5)
		b := datedRecord(writeSource(t, srcDir, "b/two.jpg", "second"), date, 6)
		log, _ := test.NewNullLogger()
		var processed int

		o := &pkg.Organizer{TargetDir: targetDir, Log: log, OnProcessed: func(pkg.ImageRecord) { processed++ }}
		res := o.Organize([]pkg.ImageRecord{a, b})
		assert.Empty(t, res.Failures)
		require.Len(t, res.Copied, 2)
		assert.Equal(t, 2, processed)

		first := filepath.Join(targetDir, "2023", "10", "2023-10-27-140509.jpg")
		second := filepath.Join(targetDir, "2023", "10", "2023-10-27-140509-1.jpg")
		assert.Equal(t, first, res.Copied[0].Destination)
		assert.Equal(t, second, res.Copied[1].Destination)

		got, err := os.ReadFile(first)
		require.NoError(t, err)
		assert.Equal(t, "first", string(got))
		got, err = os.ReadFile(second)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("existing target files are left alone", func(t *testing.T) {
		srcDir, targetDir := t.TempDir(), t.TempDir()
		existing := writeSource(t, targetDir, "2023/10/keep.jpg", "already here")
		rec := datedRecord(writeSource(t, srcDir, "keep.jpg", "new"), date, 3)
		log, _ := test.NewNullLogger()

		o := &pkg.Organizer{TargetDir: targetDir, KeepNames: true, Log: log}
		res := o.Organize([]pkg.ImageRecord{rec})
		require.Len(t, res.Copied, 1)
		assert.Equal(t, filepath.Join(targetDir, "2023", "10", "keep-1.jpg"), res.Copied[0].Destination)

		got, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Equal(t, "already here", string(got))
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		srcDir, targetDir := t.TempDir(), filepath.Join(t.TempDir(), "never")
		a := datedRecord(writeSource(t, srcDir, "a.jpg", "a"), date, 1)
		b := datedRecord(writeSource(t, srcDir, "b.jpg", "b"), date, 1)
		log, _ := test.NewNullLogger()

		o := &pkg.Organizer{TargetDir: targetDir, DryRun: true, Log: log}
		res := o.Organize([]pkg.ImageRecord{a, b})
		require.Len(t, res.Copied, 2)
		assert.NotEqual(t, res.Copied[0].Destination, res.Copied[1].Destination)
		assert.NoDirExists(t, targetDir)
	})

	t.Run("failed copy is recorded and the run continues", func(t *testing.T) {
		srcDir, targetDir := t.TempDir(), t.TempDir()
		missing := datedRecord(filepath.Join(srcDir, "vanished.jpg"), date, 1)
		present := datedRecord(writeSource(t, srcDir, "present.jpg", "ok"), date.Add(time.Hour), 2)
		log, hook := test.NewNullLogger()

		o := &pkg.Organizer{TargetDir: targetDir, Log: log}
		res := o.Organize([]pkg.ImageRecord{missing, present})
		require.Len(t, res.Failures, 1)
		assert.Equal(t, pkg.KindCopy, res.Failures[0].Kind)
		assert.Equal(t, missing.SourcePath, res.Failures[0].Path)
		require.Len(t, res.Copied, 1)
		assert.Equal(t, present.SourcePath, res.Copied[0].Source)
		assert.NotEmpty(t, hook.AllEntries())
	})

	t.Run("undated record is refused", func(t *testing.T) {
		log, _ := test.NewNullLogger()
		o := &pkg.Organizer{TargetDir: t.TempDir(), Log: log}
		res := o.Organize([]pkg.ImageRecord{{SourcePath: "x.jpg", FileName: "x.jpg"}})
		assert.Len(t, res.Failures, 1)
		assert.Empty(t, res.Copied)
	})

	t.Run("verify passes for faithful copies", func(t *testing.T) {
		srcDir, targetDir := t.TempDir(), t.TempDir()
		rec := datedRecord(writeSource(t, srcDir, "v.png", "pixels"), date, 6)
		log, _ := test.NewNullLogger()

		o := &pkg.Organizer{TargetDir: targetDir, Verify: true, Log: log}
		res := o.Organize([]pkg.ImageRecord{rec})
		assert.Empty(t, res.Failures)
		assert.Len(t, res.Copied, 1)
	})

	t.Run("unusable target root fails every record", func(t *testing.T) {
		blocker := writeSource(t, t.TempDir(), "file", "x")
		srcDir := t.TempDir()
		a := datedRecord(writeSource(t, srcDir, "a.jpg", "a"), date, 1)
		b := datedRecord(writeSource(t, srcDir, "b.jpg", "b"), date, 1)
		log, _ := test.NewNullLogger()
		var processed int

		o := &pkg.Organizer{TargetDir: filepath.Join(blocker, "sub"), Log: log, OnProcessed: func(pkg.ImageRecord) { processed++ }}
		res := o.Organize([]pkg.ImageRecord{a, b})
		assert.Empty(t, res.Copied)
		require.Len(t, res.Failures, 2)
		for _, f := range res.Failures {
			assert.Equal(t, pkg.KindCopy, f.Kind)
		}
		assert.Equal(t, 2, processed)
	})
}
