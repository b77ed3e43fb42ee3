package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeDict(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.txt")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	return path
}

func TestCompileThenSearchEndToEnd(t *testing.T) {
	dictPath := writeDict(t, "banana 4\napple 9\ncherry 1\n")
	indexPath := filepath.Join(t.TempDir(), "out.art")

	if code := Run([]string{"compile", dictPath, indexPath}); code != 0 {
		t.Fatalf("compile exit code = %d, want 0", code)
	}

	if _, err := os.Stat(indexPath); err != nil {
		t.Fatalf("compiled index missing: %v", err)
	}

	stdin, stdout := os.Stdin, os.Stdout
	defer func() { os.Stdin, os.Stdout = stdin, stdout }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdin = r
	if _, err := w.WriteString("q 0 apple\n"); err != nil {
		t.Fatalf("write query: %v", err)
	}
	w.Close()

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = outW

	code := Run([]string{"search", indexPath})
	outW.Close()
	if code != 0 {
		t.Fatalf("search exit code = %d, want 0", code)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(outR); err != nil {
		t.Fatalf("read search output: %v", err)
	}

	var results []queryResult
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &results); err != nil {
		t.Fatalf("unmarshal search output %q: %v", buf.String(), err)
	}
	if len(results) != 1 || results[0].Word != "apple" || results[0].Freq != 9 || results[0].Distance != 0 {
		t.Fatalf("search output = %+v, want one result (apple,9,0)", results)
	}
}

func TestCompileEmitsBloomFilterAndSearchConsultsIt(t *testing.T) {
	dictPath := writeDict(t, "banana 4\napple 9\ncherry 1\n")
	indexPath := filepath.Join(t.TempDir(), "out.art")
	bloomPath := filepath.Join(t.TempDir(), "out.bloom")

	if code := Run([]string{"compile", "-bloom=" + bloomPath, dictPath, indexPath}); code != 0 {
		t.Fatalf("compile exit code = %d, want 0", code)
	}
	if _, err := os.Stat(bloomPath); err != nil {
		t.Fatalf("bloom filter file missing: %v", err)
	}

	stdin, stdout := os.Stdin, os.Stdout
	defer func() { os.Stdin, os.Stdout = stdin, stdout }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdin = r
	// "grape" is absent from the dictionary; an exact-match query (max
	// distance 0) against it should be rejected by the bloom prefilter
	// before the index is ever walked.
	if _, err := w.WriteString("q 0 grape\nq 0 apple\n"); err != nil {
		t.Fatalf("write query: %v", err)
	}
	w.Close()

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = outW

	code := Run([]string{"search", "-bitparallel=false", "-bloom=" + bloomPath, indexPath})
	outW.Close()
	if code != 0 {
		t.Fatalf("search exit code = %d, want 0", code)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(outR); err != nil {
		t.Fatalf("read search output: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("search output = %q, want 2 lines", buf.String())
	}

	var absentResults, presentResults []queryResult
	if err := json.Unmarshal(lines[0], &absentResults); err != nil {
		t.Fatalf("unmarshal first line %q: %v", lines[0], err)
	}
	if len(absentResults) != 0 {
		t.Fatalf("bloom-filtered query returned %+v, want none", absentResults)
	}
	if err := json.Unmarshal(lines[1], &presentResults); err != nil {
		t.Fatalf("unmarshal second line %q: %v", lines[1], err)
	}
	if len(presentResults) != 1 || presentResults[0].Word != "apple" {
		t.Fatalf("search output = %+v, want one result (apple,9,0)", presentResults)
	}
}

func TestCompileRejectsMalformedDictionary(t *testing.T) {
	dictPath := writeDict(t, "badline\n")
	indexPath := filepath.Join(t.TempDir(), "out.art")

	if code := Run([]string{"compile", dictPath, indexPath}); code == 0 {
		t.Fatalf("compile exit code = 0, want nonzero on malformed dictionary")
	}
}

func TestInfoReportsWordCount(t *testing.T) {
	dictPath := writeDict(t, "a 1\nb 1\nother 1\ntest 1\n")
	indexPath := filepath.Join(t.TempDir(), "out.art")
	if code := Run([]string{"compile", dictPath, indexPath}); code != 0 {
		t.Fatalf("compile exit code = %d, want 0", code)
	}

	stdout := os.Stdout
	defer func() { os.Stdout = stdout }()
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = outW

	code := Run([]string{"info", indexPath})
	outW.Close()
	if code != 0 {
		t.Fatalf("info exit code = %d, want 0", code)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(outR); err != nil {
		t.Fatalf("read info output: %v", err)
	}

	var info indexInfo
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal info output %q: %v", buf.String(), err)
	}
	if info.Words != 4 {
		t.Fatalf("info.Words = %d, want 4", info.Words)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	if code := Run([]string{"bogus"}); code == 0 {
		t.Fatalf("Run([\"bogus\"]) = 0, want nonzero")
	}
}

func TestNoArgsFails(t *testing.T) {
	if code := Run(nil); code == 0 {
		t.Fatalf("Run(nil) = 0, want nonzero")
	}
}
