package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/TonyQJH/ADK-AgentTesting/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, &store.PipelineRun{
		SessionID:      "pipeline_session_01",
		Request:        "add two numbers",
		RefactoredCode: "def add(a: int, b: int) -> int:\n    return a + b",
	}))
	require.NoError(t, st.Close())

	var buf bytes.Buffer
	require.NoError(t, printHistory(ctx, &buf, path, 5))

	out := buf.String()
	assert.Contains(t, out, "add two numbers")
	assert.Contains(t, out, "pipeline_session_01")
	assert.Contains(t, out, "return a + b")
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "a b c", shorten("a\n  b\tc", 10))
	assert.Equal(t, "北京天…", shorten("北京天气怎么样", 4))
}
