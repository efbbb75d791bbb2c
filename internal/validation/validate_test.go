package validation

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
)

// mockAnalyzer implements MediaAnalyzer for testing.
type mockAnalyzer struct {
	byPath map[string]ffprobe.StreamMetadata
	errs   map[string]error
	calls  []string
}

func (m *mockAnalyzer) ProbeVideoStream(_ context.Context, path string) (ffprobe.StreamMetadata, error) {
	m.calls = append(m.calls, path)
	if err, ok := m.errs[path]; ok {
		return ffprobe.StreamMetadata{}, err
	}
	return m.byPath[path], nil
}

func conforming() ffprobe.StreamMetadata {
	return ffprobe.StreamMetadata{
		CodecName:              "h264",
		PixelFormat:            "yuv420p",
		ColorSpace:             "bt709",
		TransferCharacteristic: "bt709",
		ColorPrimaries:         "bt709",
		ColorRange:             "tv",
	}
}

func TestVerifyFile(t *testing.T) {
	profile := config.DefaultTargetProfile()

	tenBit := conforming()
	tenBit.PixelFormat = "yuv420p10le"

	stillHDR := conforming()
	stillHDR.TransferCharacteristic = "smpte2084"
	stillHDR.ColorPrimaries = "bt2020"

	hevc := conforming()
	hevc.CodecName = "hevc"

	untagged := conforming()
	untagged.ColorSpace = ""
	untagged.TransferCharacteristic = ""
	untagged.ColorPrimaries = ""

	tests := []struct {
		name           string
		meta           ffprobe.StreamMetadata
		wantPassed     bool
		wantMismatches []string
	}{
		{"conforming", conforming(), true, nil},
		{"ten bit", tenBit, false, []string{CheckPixelFormat}},
		{"still hdr", stillHDR, false, []string{CheckColorTransfer, CheckColorPrimaries}},
		{"untagged", untagged, false, []string{CheckColorSpace, CheckColorTransfer, CheckColorPrimaries}},
		{"wrong codec", hevc, false, []string{CheckCodec}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAnalyzer{byPath: map[string]ffprobe.StreamMetadata{"/out/a.mp4": tt.meta}}

			report := VerifyFile(context.Background(), mock, "/out/a.mp4", profile)

			if report.Passed() != tt.wantPassed {
				t.Errorf("Passed() = %v, want %v", report.Passed(), tt.wantPassed)
			}
			if !reflect.DeepEqual(report.Mismatches(), tt.wantMismatches) {
				t.Errorf("Mismatches() = %v, want %v", report.Mismatches(), tt.wantMismatches)
			}
			if len(report.Checks) != 5 {
				t.Errorf("got %d checks, want 5", len(report.Checks))
			}
			if tt.wantPassed {
				if report.Err() != nil {
					t.Errorf("Err() = %v, want nil", report.Err())
				}
			} else if !errors.IsKind(report.Err(), errors.KindConformance) {
				t.Errorf("Err() = %v, want KindConformance", report.Err())
			}
		})
	}
}

func TestVerifyFileUnreadable(t *testing.T) {
	probeErr := errors.NewProbeError("/out/broken.mp4", stderrors.New("moov atom not found"))
	mock := &mockAnalyzer{errs: map[string]error{"/out/broken.mp4": probeErr}}

	report := VerifyFile(context.Background(), mock, "/out/broken.mp4", config.DefaultTargetProfile())

	if report.Passed() {
		t.Error("Passed() = true for a file that could not be probed")
	}
	if report.Measured != nil {
		t.Error("Measured should be nil when probing failed")
	}
	if !errors.IsKind(report.Err(), errors.KindProbe) {
		t.Errorf("Err() = %v, want KindProbe", report.Err())
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	profile := config.DefaultTargetProfile()
	bad := conforming()
	bad.PixelFormat = "yuv422p"
	mock := &mockAnalyzer{byPath: map[string]ffprobe.StreamMetadata{
		"/out/a.mp4": conforming(),
		"/out/b.mp4": bad,
	}}
	paths := []string{"/out/a.mp4", "/out/b.mp4"}

	first, err := VerifyFiles(context.Background(), mock, paths, profile)
	if err != nil {
		t.Fatalf("VerifyFiles() error = %v", err)
	}
	second, err := VerifyFiles(context.Background(), mock, paths, profile)
	if err != nil {
		t.Fatalf("VerifyFiles() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated verification differs:\n%+v\n%+v", first, second)
	}
	if first.PassedCount != 1 || first.FailedCount != 1 || first.AllPassed() {
		t.Errorf("summary = %d passed / %d failed", first.PassedCount, first.FailedCount)
	}
	if f := first.Failures(); len(f) != 1 || f[0].Path != "/out/b.mp4" {
		t.Errorf("Failures() = %+v", f)
	}
}

func TestVerifyFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockAnalyzer{}
	_, err := VerifyFiles(ctx, mock, []string{"/out/a.mp4"}, config.DefaultTargetProfile())
	if !errors.IsCancelled(err) {
		t.Errorf("error = %v, want KindCancelled", err)
	}
	if len(mock.calls) != 0 {
		t.Errorf("analyzer called %d times after cancellation", len(mock.calls))
	}
}

func TestVerifyDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_normalized.mp4", "a_normalized.mov", "notes.txt", config.LockFileName} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	a := filepath.Join(dir, "a_normalized.mov")
	b := filepath.Join(dir, "b_normalized.mp4")
	mock := &mockAnalyzer{byPath: map[string]ffprobe.StreamMetadata{a: conforming(), b: conforming()}}
	exts := map[string]bool{".mp4": true, ".mov": true}

	summary, err := VerifyDirectory(context.Background(), mock, dir, exts, config.DefaultTargetProfile())
	if err != nil {
		t.Fatalf("VerifyDirectory() error = %v", err)
	}
	if !summary.AllPassed() || summary.PassedCount != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if !reflect.DeepEqual(mock.calls, []string{a, b}) {
		t.Errorf("probe order = %v, want sorted [%s %s]", mock.calls, a, b)
	}

	// The files are untouched.
	if _, err := os.Stat(b); err != nil {
		t.Errorf("verified file missing: %v", err)
	}
}

func TestVerifyDirectoryEmpty(t *testing.T) {
	_, err := VerifyDirectory(context.Background(), &mockAnalyzer{}, t.TempDir(), map[string]bool{".mp4": true}, config.DefaultTargetProfile())
	if !errors.IsNoFilesFound(err) {
		t.Errorf("error = %v, want KindNoFilesFound", err)
	}
}
