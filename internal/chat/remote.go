package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultRemoteTimeout bounds one remote call.
const DefaultRemoteTimeout = 60 * time.Second

// Backend is one external completion service.
type Backend interface {
	// Name is used in logs.
	Name() string
	// CredentialEnv names the environment variable holding the API key.
	CredentialEnv() string
	// Call sends prompt and returns the generated text.
	Call(ctx context.Context, prompt, apiKey string) (string, error)
}

// StatusError is returned by a backend when the service answers with a
// non-success status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// RemoteResponder delegates replies to a Backend. It never returns an error:
// every failure becomes the reply text.
type RemoteResponder struct {
	backend   Backend
	timeout   time.Duration
	lookupEnv func(string) (string, bool)
}

// NewRemoteResponder wraps backend with the given per-call timeout.
func NewRemoteResponder(backend Backend, timeout time.Duration) *RemoteResponder {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteResponder{
		backend:   backend,
		timeout:   timeout,
		lookupEnv: os.LookupEnv,
	}
}

// MissingCredentialMessage is shown instead of calling out when no key is set.
func MissingCredentialMessage(env string) string {
	return fmt.Sprintf("The remote assistant is not configured. Set %s in the environment and restart the server.", env)
}

// Respond calls the backend once. The call ignores cancellation of ctx and
// is bounded only by the responder timeout.
func (r *RemoteResponder) Respond(ctx context.Context, text string) (string, error) {
	env := r.backend.CredentialEnv()
	key, ok := r.lookupEnv(env)
	if !ok || strings.TrimSpace(key) == "" {
		return MissingCredentialMessage(env), nil
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	out, err := r.backend.Call(callCtx, text, key)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("[Remote error] status %d: %s", statusErr.Code, statusErr.Message), nil
		}
		return fmt.Sprintf("[Call failed] %v", err), nil
	}
	if strings.TrimSpace(out) == "" {
		return "[Call failed] empty response from " + r.backend.Name(), nil
	}
	return out, nil
}
