// Package main tests for the exercise-link CLI application
package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout output during test execution
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestMain_VersionCommand(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"linkgraph", "version"}

	output := captureOutput(func() {
		main()
	})

	assert.True(t, strings.HasPrefix(output, "LinkGraph "))
	assert.Contains(t, output, "commit:")
	assert.Contains(t, output, "built:")
}

func TestMain_DefaultOutput(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"linkgraph"}

	output := captureOutput(func() {
		main()
	})

	assert.Contains(t, output, "LinkGraph - Exercise Link Management")
	assert.Contains(t, output, "Commands: version, demo")
}

func TestRunDemo(t *testing.T) {
	output := captureOutput(func() {
		require.NoError(t, runDemo(context.Background()))
	})

	assert.Contains(t, output, "Opened exercise: Barbell Squat")
	assert.Contains(t, output, "Linked warmup: Bodyweight Lunge")
	assert.Contains(t, output, "alternative suggestion: Leg Press")
}
