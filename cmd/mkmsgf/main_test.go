package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/mkmsgf/pkg/msgfile"
)

const sampleSource = "; sample\r\nOSO\r\nOSO0001E: File %1 not found.\r\nOSO0002I: Press Enter%0\r\nOSO0003W: line one\r\nline two\r\n"

// isolate keeps the user's config file and output directory out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(envConfigPath, filepath.Join(dir, "no-config.yaml"))
	t.Setenv(envOutDir, "")
	t.Setenv(envInclude, "")
	return dir
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunLegacyCompile(t *testing.T) {
	dir := isolate(t)
	src := writeSource(t, dir, "oso001.txt", sampleSource)
	out := filepath.Join(dir, "oso001.msg")

	var stdout, stderr bytes.Buffer
	args := []string{"mkmsgf", src, out, "/P", "437", "/L", "1,2", "/V"}
	if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Make Message File Utility") {
		t.Fatalf("missing banner in %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Component          OSO") {
		t.Fatalf("missing verbose report in %q", stdout.String())
	}

	mf, err := msgfile.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = mf.Close() }()

	if mf.Len() != 3 || mf.Header.First != 1 {
		t.Fatalf("unexpected header: %+v", mf.Header)
	}
	if !slices.Equal(mf.Country.Codepages, []uint16{437}) {
		t.Fatalf("codepages: got %v", mf.Country.Codepages)
	}
	if mf.Country.LangFamily != 1 || mf.Country.LangVersion != 2 {
		t.Fatalf("language: got %d,%d", mf.Country.LangFamily, mf.Country.LangVersion)
	}
	m, err := mf.Message(3)
	if err != nil {
		t.Fatalf("message 3: %v", err)
	}
	if m.Type != 'W' || string(m.Text) != "line one\r\nline two\r\n" {
		t.Fatalf("message 3: got %c %q", m.Type, m.Text)
	}
}

func TestRunCompileErrors(t *testing.T) {
	dir := isolate(t)
	bad := writeSource(t, dir, "bad.txt", "OSO\r\nOSO0001X: bad type\r\n")
	good := writeSource(t, dir, "good.txt", sampleSource)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid type", []string{"mkmsgf", "compile", bad, filepath.Join(dir, "bad.msg")}, "invalid message type"},
		{"dbcs", []string{"mkmsgf", good, "-d", "ranges.txt"}, "Sorry, DBCS not supported"},
		{"no input", []string{"mkmsgf", "compile"}, "no input file"},
		{"same file", []string{"mkmsgf", "compile", good, good}, "same file"},
		{"bad language", []string{"mkmsgf", "compile", "-l", "40", good, filepath.Join(dir, "x.msg")}, "language"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(context.Background(), tc.args, &stdout, &stderr); code != 1 {
				t.Fatalf("exit: got %d want 1", code)
			}
			if !strings.Contains(stderr.String(), tc.want) {
				t.Fatalf("stderr %q does not mention %q", stderr.String(), tc.want)
			}
			if !strings.Contains(stderr.String(), "usage: mkmsgf") {
				t.Fatalf("stderr %q lacks the usage line", stderr.String())
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "bad.msg")); !os.IsNotExist(err) {
		t.Fatalf("failed compile left an output file: %v", err)
	}
}

func TestRunAsmWithInclude(t *testing.T) {
	dir := isolate(t)
	inc := filepath.Join(dir, "inc")
	if err := os.Mkdir(inc, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeSource(t, inc, "BASEMID.INC", "MSG_NOT_FOUND EQU 1\r\n")
	src := writeSource(t, dir, "oso001.txt", sampleSource)
	out := filepath.Join(dir, "oso001.asm")

	var stdout, stderr bytes.Buffer
	args := []string{"mkmsgf", "compile", "--asm", "--include", inc, "-q", src, out}
	if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "\tPUBLIC TXT_MSG_NOT_FOUND\r\n") {
		t.Fatalf("unexpected assembler output:\n%s", data)
	}
	if stdout.Len() != 0 {
		t.Fatalf("quiet compile printed %q", stdout.String())
	}
}

func TestRunBatch(t *testing.T) {
	dir := isolate(t)
	good := writeSource(t, dir, "good.txt", sampleSource)
	bad := writeSource(t, dir, "bad.txt", "OSO\r\nOSO01\r\n")
	control := writeSource(t, dir, "control.txt", strings.Join([]string{
		good + " " + filepath.Join(dir, "good.msg") + " /P 850",
		"",
		bad + " " + filepath.Join(dir, "bad.msg"),
		"@nested.txt",
	}, "\n"))

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"mkmsgf", "@" + control}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit: got %d want 1", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.msg")); err != nil {
		t.Fatalf("good entry not compiled: %v", err)
	}
	for _, want := range []string{"control.txt:3:", "control.txt:4: nested", "2 of the control file entries failed"} {
		if !strings.Contains(stderr.String(), want) {
			t.Fatalf("stderr %q does not contain %q", stderr.String(), want)
		}
	}
}

func TestRunBatchMissingControlFile(t *testing.T) {
	dir := isolate(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"mkmsgf", "@" + filepath.Join(dir, "absent.txt")}, &stdout, &stderr)
	if code != 1 || !strings.Contains(stderr.String(), "control file") {
		t.Fatalf("exit %d stderr %q", code, stderr.String())
	}
}

func TestRunInspectJSON(t *testing.T) {
	dir := isolate(t)
	src := writeSource(t, dir, "oso001.txt", sampleSource)
	out := filepath.Join(dir, "oso001.msg")

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"mkmsgf", "compile", "-q", "-e", src, out}, &stdout, &stderr); code != 0 {
		t.Fatalf("compile exit %d: %s", code, stderr.String())
	}

	stdout.Reset()
	if code := run(context.Background(), []string{"mkmsgf", "inspect", "--json", "--messages", out}, &stdout, &stderr); code != 0 {
		t.Fatalf("inspect exit %d: %s", code, stderr.String())
	}
	var rep catalogReport
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout.String())
	}
	if rep.Identifier != "OSO" || rep.Count != 3 || rep.IndexWidth != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.ExtOffset == 0 || int(rep.ExtOffset) != rep.Size-4 {
		t.Fatalf("extension offset %d for size %d", rep.ExtOffset, rep.Size)
	}
	if len(rep.Messages) != 3 || rep.Messages[0].ID != "OSO0001" || rep.Messages[0].Text != "File %1 not found.\r\n" {
		t.Fatalf("unexpected messages: %+v", rep.Messages)
	}
	if rep.Messages[1].Text != "Press Enter" {
		t.Fatalf("prompt message: got %q", rep.Messages[1].Text)
	}
}

func TestRunLanguages(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"mkmsgf", "languages"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "ENU") || !strings.Contains(stdout.String(), "CODE") {
		t.Fatalf("unexpected table:\n%s", stdout.String())
	}
}

func TestRunNoArgsShowsHelp(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"mkmsgf"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Make Message File Utility") || !strings.Contains(stdout.String(), "compile") {
		t.Fatalf("unexpected help:\n%s", stdout.String())
	}
}
