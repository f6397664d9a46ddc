//go:build integration

package test_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"hapticrec/encoder"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("HAPTICREC_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "HAPTICREC_TEST_BIN not set; build with: go build -o /tmp/hapticrec . && HAPTICREC_TEST_BIN=/tmp/hapticrec go test -tags integration ./test")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

type run struct {
	logDir    string
	exportDir string
	output    string
}

func writeConfig(t *testing.T, quality string) (path, exportDir string) {
	t.Helper()
	root := t.TempDir()
	exportDir = filepath.Join(root, "exports")
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := fmt.Sprintf(`capture:
  dir: %s
  quality: %s
export:
  dirs: [%s]
  import_dir: %s
  clipboard: false
`, filepath.Join(root, "captures"), quality, exportDir, exportDir)
	path = filepath.Join(root, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, exportDir
}

func runScript(t *testing.T, quality, stdin string, args ...string) run {
	t.Helper()
	cfgPath, exportDir := writeConfig(t, quality)
	logDir := t.TempDir()
	cmdArgs := append([]string{"--logpath", logDir, "--config", cfgPath, "script"}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = os.Environ()

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("hapticrec exited with error: %v\noutput: %s", err, out)
	}
	return run{logDir: logDir, exportDir: exportDir, output: string(out)}
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func requireExport(t *testing.T, r run, ext string) encoder.Info {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(r.exportDir, "*"+ext))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one %s export in %s, got %v (output: %s)", ext, r.exportDir, files, r.output)
	}
	info, err := encoder.Probe(files[0])
	if err != nil {
		t.Fatalf("probing %s: %v", files[0], err)
	}
	if info.Frames == 0 {
		t.Errorf("%s has no frames", files[0])
	}
	return info
}

func TestRecordExportWAV(t *testing.T) {
	r := runScript(t, "pcm", cmds("PLAY", "RECORD", "SLEEP 500", "STOP", "WAIT_EXPORT", "QUIT"))
	info := requireExport(t, r, ".wav")
	if info.Channels != 2 || info.SampleRate != 44100 {
		t.Errorf("unexpected format: %+v", info)
	}
	if !strings.Contains(r.output, "exported ") {
		t.Errorf("expected exported line, got: %s", r.output)
	}
	if captures := readLog(t, r.logDir, "captures_log.txt"); !strings.Contains(captures, r.exportDir) {
		t.Errorf("captures_log.txt does not mention %s: %q", r.exportDir, captures)
	}
	diag := readLog(t, r.logDir, "diagnostics_log.txt")
	for _, want := range []string{"session_start", "capture_exported", "session_end"} {
		if !strings.Contains(diag, want) {
			t.Errorf("expected %s in diagnostics", want)
		}
	}
}

func TestRecordExportFLAC(t *testing.T) {
	r := runScript(t, "lossless", cmds("PLAY", "RECORD", "SLEEP 500", "STOP", "WAIT_EXPORT", "QUIT"))
	requireExport(t, r, ".flac")
}

func TestPauseResume(t *testing.T) {
	r := runScript(t, "pcm", cmds("PLAY", "RECORD", "SLEEP 200", "RECORD", "SLEEP 200", "RECORD", "SLEEP 200", "STOP", "WAIT_EXPORT", "QUIT"))
	requireExport(t, r, ".wav")
	if !strings.Contains(r.output, "state Paused") {
		t.Errorf("expected a pause, got: %s", r.output)
	}
}

func TestRecordWithoutPlay(t *testing.T) {
	r := runScript(t, "pcm", cmds("RECORD", "QUIT"))
	if !strings.Contains(r.output, "notice cannot record without Play active") {
		t.Errorf("expected notice, got: %s", r.output)
	}
	if strings.Contains(r.output, "state Recording") {
		t.Errorf("record must not start without play: %s", r.output)
	}
}

func TestStopWithoutAudioSkipsExport(t *testing.T) {
	r := runScript(t, "pcm", cmds("PLAY", "SLEEP 100", "STOP", "QUIT"))
	if strings.Contains(r.output, "exported ") {
		t.Errorf("nothing was recorded, got: %s", r.output)
	}
	if !strings.Contains(r.output, "flash stop") {
		t.Errorf("expected stop flash, got: %s", r.output)
	}
}

func TestSilentInputWarns(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a full silence window")
	}
	r := runScript(t, "pcm", cmds("PLAY", "RECORD", "SLEEP 9000", "STOP", "WAIT_EXPORT", "QUIT"),
		"--left", "0", "--right", "0")
	if !strings.Contains(r.output, "no-signal true") {
		t.Errorf("expected no-signal warning, got: %s", r.output)
	}
	if !strings.Contains(r.output, "no-signal false") {
		t.Errorf("expected warning cleared on stop, got: %s", r.output)
	}
}

func TestImportAfterExport(t *testing.T) {
	r := runScript(t, "pcm", cmds("PLAY", "RECORD", "SLEEP 300", "STOP", "WAIT_EXPORT", "DTAP", "WAIT_EXPORT", "QUIT"))
	if !strings.Contains(r.output, "imported ") {
		t.Errorf("expected import line, got: %s", r.output)
	}
}
