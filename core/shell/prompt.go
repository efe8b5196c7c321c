package shell

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Prompt returns the rendered interactive prompt. PS1 overrides the
// configured template.
func (s *Shell) Prompt() string {
	template := s.Env.Getenv(EnvPrompt)
	if template == "" {
		template = s.promptTemplate
	}
	return s.renderPrompt(template)
}

// renderPrompt expands the PS1-style escapes: \u user, \h host, \w
// working directory with the home prefix shortened to ~, and \$ the
// privilege glyph (# for root, $ otherwise).
func (s *Shell) renderPrompt(template string) string {
	userName := s.Env.Getenv(EnvUser)
	host := s.Env.Getenv(EnvHostname)

	pwd, _ := os.Getwd()
	if home := s.Env.Getenv(EnvHome); home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}

	glyph := "$"
	if os.Getuid() == 0 {
		glyph = "#"
	}

	if s.colorPrompt && isatty.IsTerminal(os.Stdout.Fd()) {
		userName = color.New(color.FgGreen, color.Bold).Sprint(userName)
		host = color.New(color.FgGreen, color.Bold).Sprint(host)
		pwd = color.New(color.FgBlue, color.Bold).Sprint(pwd)
	}

	prompt := template
	prompt = strings.ReplaceAll(prompt, `\u`, userName)
	prompt = strings.ReplaceAll(prompt, `\h`, host)
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)
	prompt = strings.ReplaceAll(prompt, `\$`, glyph)
	return prompt
}
