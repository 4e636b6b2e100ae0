//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildRunTools)
	mg.Deps(BuildExtractTimestamp)
	fmt.Println("Compilation finished")
	return nil
}

// BuildRunTools needs cgo for the HDF5 bindings.
func BuildRunTools() error {
	fmt.Println("Building runtools executable...")
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", "build", "-o", "./bin/runtools", "./runtools")
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("CGO_ENABLED=1"),
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func BuildExtractTimestamp() error {
	fmt.Println("Building extracttimestamp executable...")
	cmd := exec.Command("go", "build", "-o", "./bin/extracttimestamp", "./extracttimestamp")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
