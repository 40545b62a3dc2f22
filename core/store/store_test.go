package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/session"
)

func TestArchiveSaveRecent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "sessions.db")

	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	for _, req := range []string{"add two numbers", "reverse a string", "fizzbuzz"} {
		require.NoError(t, st.Save(ctx, &PipelineRun{
			AppName:        "code_pipeline_app",
			UserID:         "dev_user_01",
			SessionID:      "pipeline_session_01",
			Request:        req,
			GeneratedCode:  "code for " + req,
			ReviewComments: "review of " + req,
			RefactoredCode: "refactored " + req,
		}))
	}

	runs, err := st.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "fizzbuzz", runs[0].Request)
	assert.Equal(t, "reverse a string", runs[1].Request)
	assert.Equal(t, "refactored fizzbuzz", runs[0].RefactoredCode)
	assert.False(t, runs[0].CreatedAt.IsZero())

	all, err := st.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestArchiveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, &PipelineRun{Request: "hello world"}))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	runs, err := st.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "hello world", runs[0].Request)
}

func TestSessionServiceClosesWithStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")
	get := &session.GetRequest{AppName: "code_pipeline_app", UserID: "dev_user_01", SessionID: "pipeline_session_01"}

	st, err := Open(path)
	require.NoError(t, err)
	svc, err := st.SessionService()
	require.NoError(t, err)
	_, err = svc.Create(ctx, &session.CreateRequest{AppName: get.AppName, UserID: get.UserID, SessionID: get.SessionID})
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, &PipelineRun{SessionID: get.SessionID, Request: "hello world"}))

	require.NoError(t, st.Close())
	_, err = svc.Get(ctx, get)
	assert.Error(t, err, "session service must share the closed connection")
	_, err = st.Recent(ctx, 1)
	assert.Error(t, err)

	st, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	svc, err = st.SessionService()
	require.NoError(t, err)

	resp, err := svc.Get(ctx, get)
	require.NoError(t, err)
	assert.Equal(t, "pipeline_session_01", resp.Session.ID())
	runs, err := st.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "pipeline_session_01", runs[0].SessionID)
}
