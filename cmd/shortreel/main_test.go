package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLangsListsSupportedLanguages(t *testing.T) {
	output, err := executeCommand(t, "langs")
	if err != nil {
		t.Fatalf("langs returned error: %v", err)
	}
	for _, want := range []string{"en", "it", "English", "Italian"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in langs output:\n%s", want, output)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	output, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected target path in output:\n%s", output)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[providers]") {
		t.Fatalf("expected a providers section in the sample:\n%s", data)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := executeCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init returned error: %v", err)
	}
	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := executeCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite returned error: %v", err)
	}
}

func TestGenerateRequiresInputFlag(t *testing.T) {
	_, err := executeCommand(t, "generate")
	if err == nil {
		t.Fatal("expected error when --input is missing")
	}
	if !strings.Contains(err.Error(), "input") {
		t.Fatalf("expected the error to name the input flag, got %v", err)
	}
}

func TestGenerateRejectsUnknownLanguage(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := executeCommand(t, "generate", "--config", cfgPath, "--input", "article.txt", "--output", "short.mp4", "--lang", "xx", "--no-summary", "--no-sub")
	if err == nil {
		t.Fatal("expected error for an unsupported language")
	}
	if !strings.Contains(err.Error(), "unsupported language") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGenerateRejectsUnknownModel(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := executeCommand(t, "generate", "--config", cfgPath, "--input", "article.txt", "--output", "short.mp4", "--model", "gpt-4", "--no-sub")
	if err == nil {
		t.Fatal("expected error for an unsupported model")
	}
	if !strings.Contains(err.Error(), "unsupported model") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGenerateSurfacesMissingCredentials(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEEPSEEK_API_KEY", "")
	_, err := executeCommand(t, "generate", "--config", cfgPath, "--input", "article.txt", "--output", "short.mp4", "--no-sub")
	if err == nil {
		t.Fatal("expected error without a deepseek credential")
	}
	if !strings.Contains(err.Error(), "deepseek") && !strings.Contains(err.Error(), "DEEPSEEK") {
		t.Fatalf("expected the error to name the missing credential, got %v", err)
	}
}
