//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// run invokes the built CLI binary with the given arguments.
func run(args ...string) error {
	bin := filepath.Join(binDir, binName)
	if _, err := os.Stat(bin); err != nil {
		if err := Build(); err != nil {
			return err
		}
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Index builds the reference nutrient index from data/reference.csv.
func Index() error {
	return run("index", "--reference", "data/reference.csv", "--index-dir", "index")
}

// Benchmark derives per-meal benchmark statistics from data/survey.csv.
func Benchmark() error {
	return run("benchmark", "--survey", "data/survey.csv", "--results-dir", "results")
}

// Pipeline processes the recipe corpus and exports the clean dataset.
func Pipeline() error {
	return run("run", "--recipes", "data/recipes.csv", "--index-dir", "index", "--results-dir", "results")
}

// Test runs the full test suite.
func Test() error {
	cmd := exec.Command("go", "test", "./...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}
