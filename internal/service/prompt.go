package service

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/diligent-ai/diligent/internal/core"
)

//go:embed prompts/*.md.tmpl
var promptFS embed.FS

// PromptRenderer renders the embedded instruction templates.
type PromptRenderer struct {
	templates *template.Template
}

// NewPromptRenderer parses the embedded templates.
func NewPromptRenderer() (*PromptRenderer, error) {
	funcs := template.FuncMap{
		"upper": strings.ToUpper,
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
	}

	tmpl, err := template.New("prompts").Funcs(funcs).ParseFS(promptFS, "prompts/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}
	return &PromptRenderer{templates: tmpl}, nil
}

// AnalysisParams feeds the analysis instruction template.
type AnalysisParams struct {
	Role string
	Text string
}

// RenderAnalysis builds the instruction for one analysis backend.
func (r *PromptRenderer) RenderAnalysis(p AnalysisParams) (string, error) {
	if p.Role == "" {
		p.Role = "general"
	}
	return r.render("analysis.md.tmpl", p)
}

// DebateTurnParams feeds the debate turn template. Transcript holds
// every turn committed before this one; the rendered instruction quotes
// each argument verbatim so the debater sees the full history.
type DebateTurnParams struct {
	Topic      string
	Side       core.DebateSide
	Round      int
	Rounds     int
	Transcript []core.DebateTurn
}

// Opponent is the side this debater argues against; the template names
// it so the debater knows whose points to rebut.
func (p DebateTurnParams) Opponent() core.DebateSide {
	return p.Side.Opponent()
}

// RenderDebateTurn builds the instruction for one debater turn.
func (r *PromptRenderer) RenderDebateTurn(p DebateTurnParams) (string, error) {
	return r.render("debate_turn.md.tmpl", p)
}

// JudgeParams feeds the judge template with the complete transcript.
type JudgeParams struct {
	Topic      string
	Rounds     int
	Transcript []core.DebateTurn
}

// RenderJudge builds the instruction for the judging backend.
func (r *PromptRenderer) RenderJudge(p JudgeParams) (string, error) {
	return r.render("debate_judge.md.tmpl", p)
}

func (r *PromptRenderer) render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return sb.String(), nil
}
