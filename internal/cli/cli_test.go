package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

// setupEnv points the file store at a temp root and silences everything
// the commands would otherwise inherit from the surrounding process.
func setupEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("MLRUN_CONFIG_FILE", "")
	t.Setenv("MLRUN_METRICS_ADDR", "")
	t.Setenv("MLRUN_LOG_LEVEL", "error")
	t.Setenv("MLRUN_LOG_FORMAT", "json")
	t.Setenv("MLRUN_FILE_ROOT", root)
	t.Setenv("MLRUN_REDIS_URL", "")
	return root
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPutGetCommands(t *testing.T) {
	setupEnv(t)

	if _, err := runCommand(t, "", "put", "/run/status", "started"); err != nil {
		t.Fatalf("put error: %v", err)
	}
	out, err := runCommand(t, "", "get", "/run/status")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if out != "started" {
		t.Errorf("get output = %q, want %q", out, "started")
	}

	out, err = runCommand(t, "", "get", "/run/status", "--offset", "1", "--size", "3")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if out != "tar" {
		t.Errorf("ranged get output = %q, want %q", out, "tar")
	}
}

func TestPutFromStdin(t *testing.T) {
	setupEnv(t)

	if _, err := runCommand(t, "piped data", "put", "/run/log"); err != nil {
		t.Fatalf("put error: %v", err)
	}
	out, err := runCommand(t, "", "get", "/run/log")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if out != "piped data" {
		t.Errorf("get output = %q, want %q", out, "piped data")
	}
}

func TestPutAppend(t *testing.T) {
	setupEnv(t)

	for _, chunk := range []string{"a", "b"} {
		if _, err := runCommand(t, "", "put", "/run/log", chunk, "--append"); err != nil {
			t.Fatalf("put --append error: %v", err)
		}
	}
	out, err := runCommand(t, "", "get", "/run/log")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if out != "ab" {
		t.Errorf("get output = %q, want %q", out, "ab")
	}
}

func TestPutDataAndFileConflict(t *testing.T) {
	setupEnv(t)

	if _, err := runCommand(t, "", "put", "/run/obj", "inline", "--file", "somefile"); err == nil {
		t.Error("put accepted both a data argument and --file")
	}
}

func TestLsCommand(t *testing.T) {
	setupEnv(t)

	for _, key := range []string{"/models/a", "/models/b", "/other/c"} {
		if _, err := runCommand(t, "", "put", key, "v"); err != nil {
			t.Fatalf("put error: %v", err)
		}
	}

	out, err := runCommand(t, "", "ls", "/models")
	if err != nil {
		t.Fatalf("ls error: %v", err)
	}
	if want := "a\nb\n"; out != want {
		t.Errorf("ls output = %q, want %q", out, want)
	}
}

func TestStatCommand(t *testing.T) {
	setupEnv(t)

	if _, err := runCommand(t, "", "put", "/run/obj", "12345"); err != nil {
		t.Fatalf("put error: %v", err)
	}
	out, err := runCommand(t, "", "stat", "/run/obj")
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if !strings.Contains(out, "size:     5") {
		t.Errorf("stat output = %q, want size line", out)
	}
}

func TestRmCommand(t *testing.T) {
	root := setupEnv(t)

	if _, err := runCommand(t, "", "put", "/run/obj", "v"); err != nil {
		t.Fatalf("put error: %v", err)
	}
	if _, err := runCommand(t, "", "rm", "/run/obj"); err != nil {
		t.Fatalf("rm error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "run", "obj")); !os.IsNotExist(err) {
		t.Error("object still on disk after rm")
	}

	// rm of something absent exits zero.
	if _, err := runCommand(t, "", "rm", "/run/obj"); err != nil {
		t.Errorf("rm of absent object error: %v", err)
	}

	_, err := runCommand(t, "", "rm", "/run", "--recursive", "--maxdepth", "2")
	if !errors.Is(err, datastore.ErrNotImplemented) {
		t.Errorf("rm --maxdepth error = %v, want ErrNotImplemented", err)
	}
}

func TestUploadDownloadCommands(t *testing.T) {
	setupEnv(t)

	src := filepath.Join(t.TempDir(), "src.bin")
	if err := os.WriteFile(src, []byte("artifact body"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if _, err := runCommand(t, "", "upload", src, "/artifacts/model"); err != nil {
		t.Fatalf("upload error: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "dst.bin")
	if _, err := runCommand(t, "", "download", "/artifacts/model", dst); err != nil {
		t.Fatalf("download error: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "artifact body" {
		t.Errorf("downloaded %q, %v; want %q", got, err, "artifact body")
	}
}

func TestGetToOutputFile(t *testing.T) {
	setupEnv(t)

	if _, err := runCommand(t, "", "put", "/run/obj", "contents"); err != nil {
		t.Fatalf("put error: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "out.bin")
	if _, err := runCommand(t, "", "get", "/run/obj", "-o", dst); err != nil {
		t.Fatalf("get -o error: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "contents" {
		t.Errorf("output file %q, %v; want %q", got, err, "contents")
	}
}

func TestUnsupportedScheme(t *testing.T) {
	setupEnv(t)

	_, err := runCommand(t, "", "get", "gopher://host/x")
	if !errors.Is(err, datastore.ErrUnsupportedScheme) {
		t.Errorf("get error = %v, want ErrUnsupportedScheme", err)
	}
}
