package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	testBinary     string
	testBinaryOnce sync.Once
	testBinaryErr  error
)

// buildTestBinary builds the covenant binary once for all tests.
func buildTestBinary() (string, error) {
	testBinaryOnce.Do(func() {
		tmpBinary := filepath.Join(os.TempDir(), "covenant-test")
		cmd := exec.Command("go", "build", "-o", tmpBinary, ".")
		if out, err := cmd.CombinedOutput(); err != nil {
			testBinaryErr = err
			testBinary = string(out)
			return
		}
		testBinary = tmpBinary
	})

	if testBinaryErr != nil {
		return "", testBinaryErr
	}
	return testBinary, nil
}

const sampleContract = `contract withdraw(account: Account, amount: Int) -> Bool
  precondition:
    amount > 0
    account.balance >= amount
  postcondition:
    account.balance == old(account.balance) - amount
  effects:
    modifies [account.balance]
    emits Withdrawn
  body:
    account.balance = account.balance - amount
    emit Withdrawn
    return true
`

func writeSampleFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "withdraw.cov")
	if err := os.WriteFile(path, []byte(sampleContract), 0644); err != nil {
		t.Fatalf("failed to write sample contract: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	cmd := exec.Command(binary, "version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("version command failed: %v\nOutput: %s", err, output)
	}

	for _, want := range []string{"covenant version:", "Git commit:", "Build date:", "Go version:"} {
		if !strings.Contains(string(output), want) {
			t.Errorf("version output missing %q, got: %s", want, output)
		}
	}
}

func TestTokenizeCommand(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	tmpDir := t.TempDir()
	path := writeSampleFile(t, tmpDir)

	cmd := exec.Command(binary, "tokenize", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("tokenize command failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(string(output), "CONTRACT") {
		t.Errorf("tokenize output missing CONTRACT token, got: %s", output)
	}
}

func TestParseCommand(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	tmpDir := t.TempDir()
	path := writeSampleFile(t, tmpDir)

	cmd := exec.Command(binary, "parse", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("parse command failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(string(output), "withdraw") {
		t.Errorf("parse output missing contract name, got: %s", output)
	}
}

func TestParseCommandSyntaxError(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "broken.cov")
	os.WriteFile(path, []byte("contract broken(x: Int)\n  body:\n    return\n"), 0644)

	cmd := exec.Command(binary, "parse", path)
	output, err := cmd.CombinedOutput()

	if err == nil {
		t.Error("parse command should fail on a missing return type arrow and bare return")
	}
	if !strings.Contains(string(output), "PARSE") {
		t.Errorf("error output should be tagged PARSE, got: %s", output)
	}
}

func TestCheckCommand(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	tmpDir := t.TempDir()
	path := writeSampleFile(t, tmpDir)

	cmd := exec.Command(binary, "check", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("check command should pass for a well-formed contract: %v\nOutput: %s", err, output)
	}
}

func TestCheckCommandJSON(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	tmpDir := t.TempDir()
	path := writeSampleFile(t, tmpDir)

	cmd := exec.Command(binary, "check", path, "--json")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("check --json should pass for a well-formed contract: %v\nOutput: %s", err, output)
	}

	if strings.TrimSpace(string(output)) != "null" {
		t.Errorf("expected an empty JSON result set, got: %s", output)
	}
}

func TestFingerprintCommand(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	tmpDir := t.TempDir()
	path := writeSampleFile(t, tmpDir)

	cmd := exec.Command(binary, "fingerprint", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("fingerprint command failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(string(output), "mutations") {
		t.Errorf("fingerprint output missing mutations field, got: %s", output)
	}
}

func TestVerifyBatchCommand(t *testing.T) {
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	tmpDir := t.TempDir()
	path1 := writeSampleFile(t, tmpDir)
	path2 := filepath.Join(tmpDir, "deposit.cov")
	os.WriteFile(path2, []byte(strings.Replace(sampleContract, "withdraw", "deposit", 1)), 0644)

	cmd := exec.Command(binary, "verify-batch", path1, path2, "--json")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("verify-batch command failed: %v\nOutput: %s", err, output)
	}

	for _, want := range []string{path1, path2} {
		if !strings.Contains(string(output), filepath.Base(want)) {
			t.Errorf("verify-batch output missing %q, got: %s", want, output)
		}
	}
}
