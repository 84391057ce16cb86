package manager

import (
	"context"

	"shelfsync/internal/agentclient"
	"shelfsync/internal/entity"
	"shelfsync/internal/journal"
	"shelfsync/internal/logging"
	"shelfsync/internal/services"
)

// Ignore forwards an ignore request for path to the named agent. The call is
// made once; agent failures are returned verbatim.
func (m *Manager) Ignore(ctx context.Context, agent string, path []string) (MutationView, error) {
	return m.mutate(ctx, journal.OpIgnore, agent, path)
}

// Delete forwards a delete request for path to the named agent.
func (m *Manager) Delete(ctx context.Context, agent string, path []string) (MutationView, error) {
	return m.mutate(ctx, journal.OpDelete, agent, path)
}

// History lists journaled mutations, newest first.
func (m *Manager) History(ctx context.Context, filter journal.Filter) ([]journal.Entry, error) {
	if m.journal == nil {
		return nil, ErrJournalDisabled
	}
	return m.journal.List(ctx, filter)
}

func (m *Manager) mutate(ctx context.Context, op journal.Operation, agent string, path []string) (MutationView, error) {
	client, err := m.client(agent)
	if err != nil {
		return MutationView{}, err
	}
	clean, err := cleanPath(path)
	if err != nil {
		return MutationView{}, err
	}
	ctx, requestID := m.begin(ctx, string(op))
	ctx = services.WithAgent(ctx, client.Name())
	logger := logging.WithContext(ctx, m.logger)

	var result agentclient.MutationResult
	switch op {
	case journal.OpDelete:
		result, err = client.Delete(ctx, clean)
	default:
		result, err = client.Ignore(ctx, clean)
	}

	view := MutationView{
		RequestID: requestID,
		Agent:     client.Name(),
		Path:      clean,
		Success:   err == nil && result.Success,
		Message:   result.Message,
		AgentPath: result.Path,
	}
	if err != nil && view.Message == "" {
		view.Message = err.Error()
	}
	m.record(ctx, op, view, err)

	if err != nil {
		attrs := append(logging.ErrorAttrs(err),
			logging.Path(clean),
			logging.String(logging.FieldErrorHint, "check the agent log for the rejected request"),
			logging.String(logging.FieldImpact, "no change was made on the agent"),
		)
		logging.WarnWithContext(logger, string(op)+" request failed", string(op)+"_failed", attrs...)
		return view, err
	}
	logger.Info(string(op)+" forwarded",
		logging.Path(clean),
		logging.String("agent_path", result.Path),
	)
	return view, nil
}

func (m *Manager) record(ctx context.Context, op journal.Operation, view MutationView, cause error) {
	if m.journal == nil {
		return
	}
	target, _ := entity.TargetFor(view.Path)
	entry := journal.Entry{
		RequestID:  view.RequestID,
		Agent:      view.Agent,
		Operation:  op,
		CategoryID: target.CategoryID,
		FolderPath: target.FolderPath,
		Success:    view.Success,
		Message:    view.Message,
		ErrorKind:  services.Kind(cause),
	}
	if _, err := m.journal.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions in the state directory"),
			logging.String(logging.FieldImpact, "mutation is missing from history"),
		)
	}
}
