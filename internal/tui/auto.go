package tui

import "github.com/joe/file-modifier/internal/engine"

// AutoConfirm answers yes to every overwrite question and passes text
// prompts on to Next. Without Next, text prompts are cancelled.
type AutoConfirm struct {
	Next     engine.PromptPresenter
	Answerer Answerer
}

// AskYesNo implements engine.PromptPresenter.
func (a AutoConfirm) AskYesNo(req engine.PromptRequest) {
	a.Answerer.Answer(req.Token, engine.Answer{Yes: true})
}

// AskYesNoRemember implements engine.PromptPresenter.
func (a AutoConfirm) AskYesNoRemember(req engine.PromptRequest) {
	a.Answerer.Answer(req.Token, engine.Answer{Yes: true, Remember: true})
}

// AskTextOrCancel implements engine.PromptPresenter.
func (a AutoConfirm) AskTextOrCancel(req engine.PromptRequest) {
	if a.Next == nil {
		a.Answerer.Answer(req.Token, engine.CancelAnswer())
		return
	}

	a.Next.AskTextOrCancel(req)
}
