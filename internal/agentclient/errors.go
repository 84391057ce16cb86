package agentclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"shelfsync/internal/services"
)

// Error describes a failed agent call. Kind is one of the services markers
// and is matched by errors.Is.
type Error struct {
	Agent      string
	Op         string
	Kind       error
	StatusCode int
	// Message is the agent's own message for operation failures, or a body
	// snippet for protocol failures.
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("agent ")
	b.WriteString(e.Agent)
	b.WriteString(": ")
	b.WriteString(e.Op)
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// AgentMessage returns the message the agent attached to a failed mutation,
// or the empty string when err did not come from the agent.
func AgentMessage(err error) string {
	var agentErr *Error
	if errors.As(err, &agentErr) && errors.Is(agentErr.Kind, services.ErrOperation) {
		return agentErr.Message
	}
	return ""
}

// StatusCode returns the HTTP status carried by an agent error, or zero.
func StatusCode(err error) int {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.StatusCode
	}
	return 0
}

func transportKind(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.ErrTimeout
	}
	return services.ErrTransport
}

func snippet(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "…"
	}
	return text
}
