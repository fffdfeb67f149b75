//go:build mage

// Package main provides build targets for feedback-api using Mage.
//
// Usage:
//
//	mage build     Compile feedbackd to bin/
//	mage test      Run all tests with the race detector
//	mage cover     Run tests and write coverage.out
//	mage lint      Run go vet and golangci-lint
//	mage swagger   Regenerate docs/ from handler annotations
//	mage clean     Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binSwag    = "swag"
	binaryName = "feedbackd"
	binaryDir  = "bin"
	cmdDir     = "./cmd/feedbackd"
)

// Default runs when mage is invoked without a target.
var Default = Build

// Build compiles the feedbackd binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-s -w -X main.version=" + version
	return sh.RunV(binGo, "build", "-trimpath", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "-count=1", "./...")
}

// Cover runs all tests and writes coverage.out.
func Cover() error {
	return sh.RunV(binGo, "test", "-count=1", "-coverprofile=coverage.out", "./...")
}

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "./...")
}

// Swagger regenerates the OpenAPI docs package.
func Swagger() error {
	return sh.RunV(binSwag, "init", "-g", "cmd/feedbackd/main.go", "-o", "docs", "--parseInternal")
}

// Check runs lint and tests.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, "coverage.out"} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}
