package tui

import (
	"fmt"
	"strings"

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/internal/tui/shared"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(shared.RenderTitle("file-modifier"))
	b.WriteString("\n")

	for _, id := range m.order {
		b.WriteString(m.renderOperation(m.ops[id]))
		b.WriteString("\n")
	}

	if req, ok := m.CurrentPrompt(); ok {
		b.WriteString("\n")
		b.WriteString(m.renderPrompt(req))
		b.WriteString("\n")
	}

	if len(m.messages) > 0 {
		b.WriteString("\n")
		b.WriteString(shared.RenderMessages(m.messages, shared.MessageLimit, m.width))
	}

	b.WriteString("\n")
	b.WriteString(shared.RenderDim(m.help()))

	return b.String()
}

func (m Model) renderOperation(v *OperationView) string {
	name := v.Name
	if name == "" {
		name = fmt.Sprintf("operation %d", v.ID)
	}

	if v.Done {
		return fmt.Sprintf("%s %s  %s", resultSymbol(v.Result), name, renderResult(v.Result))
	}

	line := fmt.Sprintf("%s %s  %s", m.spinner.View(), name, shared.RenderDim(v.State.String()))

	if v.State == engine.StateExecuting && v.Percent >= 0 {
		line += "\n  " + m.bar.ViewAs(float64(v.Percent)/percentScale)

		if v.TimeLeft > 0 {
			line += " " + shared.RenderDim(shared.FormatDuration(v.TimeLeft)+" left")
		}
	}

	return line
}

func (m Model) renderPrompt(req engine.PromptRequest) string {
	var b strings.Builder

	b.WriteString(shared.RenderLabel(req.Question))
	b.WriteString("\n")

	switch req.Kind {
	case engine.PromptYesNo:
		b.WriteString(shared.RenderDim("[y] yes  [n] no  [esc] cancel"))
	case engine.PromptYesNoRemember:
		if req.Remaining > 1 {
			b.WriteString(shared.RenderDim(fmt.Sprintf("%d conflicts left", req.Remaining)))
			b.WriteString("\n")
		}

		b.WriteString(shared.RenderDim("[y] overwrite  [n] skip  [a] overwrite all  [s] skip all  [esc] cancel"))
	case engine.PromptTextOrCancel:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(shared.RenderDim("[enter] confirm  [esc] cancel"))
	}

	return shared.RenderBox(b.String())
}

func (m Model) help() string {
	switch {
	case m.Finished():
		return "q: quit"
	case m.cancelling:
		return "cancelling... ctrl+c again to quit now"
	default:
		return "ctrl+c: cancel"
	}
}

func renderResult(result engine.Result) string {
	switch result {
	case engine.ResultCompleted:
		return shared.RenderSuccess(result.String())
	case engine.ResultCompletedWithErrors, engine.ResultCancelled:
		return shared.RenderWarning(result.String())
	case engine.ResultNone, engine.ResultValidationFailed, engine.ResultFailed:
		return shared.RenderError(result.String())
	}

	return result.String()
}

func resultSymbol(result engine.Result) string {
	if result == engine.ResultCompleted {
		return shared.SuccessSymbol()
	}

	return shared.ErrorSymbol()
}

const percentScale = 100.0
