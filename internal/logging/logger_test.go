// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()

	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestKeyValueArgs(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, LevelDebug)
	l.Info("endpoint released", "id", 3, "slot", 7)

	assert.Contains(t, buf.String(), "endpoint released id=3 slot=7")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, LevelError)
	l.Info("dropped")
	l.SetLevel(LevelDebug)
	l.Info("kept")

	lines := strings.TrimSpace(buf.String())
	assert.NotContains(t, lines, "dropped")
	assert.Contains(t, lines, "kept")
}
