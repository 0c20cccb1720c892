package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/betagent/internal/domain"
)

func TestExitCode(t *testing.T) {
	_, invalid := domain.SolveDutchArgs(100, 2.0, 0.95)
	require.Error(t, invalid)

	assert.Equal(t, 2, exitCode(invalid))
	assert.Equal(t, 2, exitCode(fmt.Errorf("%w: batch requires -file", errUsage)))
	assert.Equal(t, 0, exitCode(flag.ErrHelp))
	assert.Equal(t, 1, exitCode(errors.New("open storage: disk full")))
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("dutch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	stake := fs.Float64("stake", 0, "")

	require.NoError(t, parseFlags(fs, []string{"-stake", "50"}))
	assert.Equal(t, 50.0, *stake)

	err := parseFlags(fs, []string{"-stake", "abc"})
	assert.ErrorIs(t, err, errUsage)

	err = parseFlags(fs, []string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}
