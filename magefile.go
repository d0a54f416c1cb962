//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "file-modifier"
	mainPkg = "./cmd/file-modifier"
)

// Default target to run when none is specified
var Default = Build

// Build builds the binary
func Build() error {
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-o", binary, mainPkg)
}

// Install installs the binary
func Install() error {
	fmt.Println("Installing...")
	return sh.RunV("go", "install", mainPkg)
}

// Test runs all tests with the race detector and writes coverage.out
func Test() error {
	fmt.Println("Running tests...")
	return sh.RunV("go", "test", "-race", "-shuffle=on", "-coverprofile=coverage.out", "./...")
}

// TestForFail runs the tests once, stopping at the first failure
func TestForFail() error {
	return sh.RunV("go", "test", "-timeout=60s", "-failfast", "-race", "./...")
}

// Lint lints the codebase
func Lint() error {
	fmt.Println("Linting...")
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats the code
func Fmt() error {
	fmt.Println("Formatting code...")

	if err := sh.RunV("gofmt", "-s", "-w", "."); err != nil {
		return err
	}

	return sh.RunV("goimports", "-w", ".")
}

// CheckNils runs nilaway
func CheckNils() error {
	return sh.RunV("nilaway", "./...")
}

// Check formats, then lints and tests
func Check() {
	mg.SerialDeps(Fmt, Lint, Test, CheckNils)
}

// Coverage writes coverage.html from a fresh test run
func Coverage() error {
	mg.Deps(Test)

	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")

	for _, path := range []string{binary, "coverage.out", "coverage.html"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}
