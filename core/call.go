package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// EnsureSession returns the session id for user in app, creating it when it
// does not exist yet. An empty id gets a random one.
func EnsureSession(ctx context.Context, svc session.Service, app, user, id string) (session.Session, error) {
	if id == "" {
		id = uuid.NewString()
	} else if resp, err := svc.Get(ctx, &session.GetRequest{AppName: app, UserID: user, SessionID: id}); err == nil {
		return resp.Session, nil
	}

	resp, err := svc.Create(ctx, &session.CreateRequest{AppName: app, UserID: user, SessionID: id})
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}
	return resp.Session, nil
}

// CallAgent sends query as one user turn and returns the text of the last
// complete model event. The first run error stops the call.
func CallAgent(ctx context.Context, r *runner.Runner, user, sessionID, query string) (string, error) {
	msg := genai.NewContentFromText(query, genai.RoleUser)

	var final string
	for ev, err := range r.Run(ctx, user, sessionID, msg, agent.RunConfig{}) {
		if err != nil {
			return final, fmt.Errorf("run agent: %w", err)
		}
		if ev == nil || ev.Partial || ev.Author == "user" {
			continue
		}
		if text := contentText(ev.Content); text != "" {
			final = text
		}
	}
	return final, nil
}
