package hilbpix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int, seed int64) *PixelBuffer {
	t.Helper()
	buf := randomBuffer(t, w, h, 4, 8, seed)
	require.NoError(t, EncodeImageFile(path, buf))
	return buf
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "b.png"), 4, 4, 1)
	writeTestPNG(t, filepath.Join(dir, "a.png"), 4, 4, 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	files, err := ScanDir(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
	}, files)

	_, err = ScanDir(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestProcessFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	orig := writeTestPNG(t, in, 13, 9, 5)

	encPath := filepath.Join(dir, "enc.png")
	encOpts := Options{Direction: Encrypt, Offset: AutoOffset}
	res := ProcessFile(in, encPath, encOpts, zerolog.Nop())
	require.NoError(t, res.Err)
	require.Equal(t, 13, res.Width)
	require.Equal(t, 9, res.Height)
	require.NotZero(t, res.Digest)

	scrambled, err := DecodeImageFile(encPath)
	require.NoError(t, err)
	require.NotEqual(t, orig.Pix8, scrambled.Pix8, "encrypt should move pixels")

	decPath := filepath.Join(dir, "dec.png")
	decOpts := Options{Direction: Decrypt, Offset: AutoOffset}
	res = ProcessFile(encPath, decPath, decOpts, zerolog.Nop())
	require.NoError(t, res.Err)

	restored, err := DecodeImageFile(decPath)
	require.NoError(t, err)
	require.Equal(t, orig, restored)
}

func TestProcessFile_MissingInput(t *testing.T) {
	res := ProcessFile(filepath.Join(t.TempDir(), "nope.png"), "out.png",
		Options{Direction: Encrypt, Offset: AutoOffset}, zerolog.Nop())
	require.Error(t, res.Err)
}

// One broken file in the batch must not keep the others from round-tripping.
func TestProcessFiles_Isolation(t *testing.T) {
	srcDir := t.TempDir()
	encDir := t.TempDir()
	decDir := t.TempDir()

	originals := map[string]*PixelBuffer{
		"a.png": writeTestPNG(t, filepath.Join(srcDir, "a.png"), 12, 8, 10),
		"b.png": writeTestPNG(t, filepath.Join(srcDir, "b.png"), 5, 17, 11),
		// Same size as a.png so the two share one cached curve.
		"c.png": writeTestPNG(t, filepath.Join(srcDir, "c.png"), 12, 8, 12),
	}
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "broken.png"), []byte("junk"), 0o644))

	files, err := ScanDir(srcDir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	cache := NewCurveCache()
	report := ProcessFiles(files, Options{
		Direction: Encrypt,
		Offset:    AutoOffset,
		Workers:   4,
		OutDir:    encDir,
		Cache:     cache,
	}, zerolog.Nop())
	require.Equal(t, 3, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.FailedFiles(), 1)
	require.Contains(t, report.FailedFiles()[0], "broken.png")

	encFiles, err := ScanDir(encDir)
	require.NoError(t, err)
	require.Len(t, encFiles, 3)

	report = ProcessFiles(encFiles, Options{
		Direction: Decrypt,
		Offset:    AutoOffset,
		Workers:   2,
		OutDir:    decDir,
		Cache:     cache,
	}, zerolog.Nop())
	require.Equal(t, 3, report.Succeeded)
	require.Equal(t, 0, report.Failed)

	for name, want := range originals {
		got, err := DecodeImageFile(filepath.Join(decDir, name))
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
}

func TestProcessFiles_Empty(t *testing.T) {
	report := ProcessFiles(nil, Options{Direction: Encrypt, Offset: AutoOffset}, zerolog.Nop())
	require.Equal(t, 0, report.Succeeded)
	require.Equal(t, 0, report.Failed)
	require.Empty(t, report.Results)
}

func TestProcessFiles_ExplicitOffset(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	orig := writeTestPNG(t, filepath.Join(srcDir, "img.png"), 6, 6, 30)

	enc := ProcessFiles([]string{filepath.Join(srcDir, "img.png")}, Options{
		Direction: Encrypt, Offset: "5", OutDir: outDir,
	}, zerolog.Nop())
	require.Equal(t, 1, enc.Succeeded)
	require.Equal(t, 5, enc.Results[0].Offset)

	dec := ProcessFiles([]string{filepath.Join(outDir, "img.png")}, Options{
		Direction: Decrypt, Offset: "5", OutDir: srcDir,
	}, zerolog.Nop())
	require.Equal(t, 1, dec.Succeeded)

	got, err := DecodeImageFile(filepath.Join(srcDir, "img.png"))
	require.NoError(t, err)
	require.Equal(t, orig, got)
}

func TestBatchReport_Summary(t *testing.T) {
	r := &BatchReport{Succeeded: 2, Failed: 1, Results: make([]FileResult, 3)}
	require.Equal(t, "2 succeeded, 1 failed of 3 files", r.Summary())
}
