package shell

import (
	"errors"
	"fmt"
)

// Parse failures. The driver reports these to the error stream and moves
// on to the next line.
var (
	ErrUnterminatedQuote   = errors.New("unterminated quoted string")
	ErrEmptyCommand        = errors.New("empty command in pipeline")
	ErrDanglingRedirection = errors.New("missing redirection target")
)

// Parse groups an expanded word sequence into a Pipeline.
//
// Words are scanned left to right. A "|" closes the current command and
// opens the next one. A redirection operator claims exactly the
// following word as its target; a later redirection of the same stream
// wins. Operators are only recognized as standalone words, so a glued
// form like "x>y" stays an ordinary argument.
func Parse(words []string, background bool) (*Pipeline, error) {
	pipeline := &Pipeline{Background: background}
	current := &Command{}

	closeStage := func() error {
		if len(current.Argv) == 0 {
			return ErrEmptyCommand
		}
		pipeline.Commands = append(pipeline.Commands, current)
		current = &Command{}
		return nil
	}

	for i := 0; i < len(words); i++ {
		switch word := words[i]; word {
		case "|":
			if err := closeStage(); err != nil {
				return nil, err
			}

		case "<", ">", ">>", "2>", "2>>", "&>":
			if i+1 >= len(words) {
				return nil, fmt.Errorf("%w after %q", ErrDanglingRedirection, word)
			}
			i++
			target := words[i]
			switch word {
			case "<":
				current.Stdin = &Redir{Target: target}
			case ">":
				current.Stdout = &Redir{Target: target}
			case ">>":
				current.Stdout = &Redir{Target: target, Append: true}
			case "2>":
				current.Stderr = &Redir{Target: target}
			case "2>>":
				current.Stderr = &Redir{Target: target, Append: true}
			case "&>":
				current.Stdout = &Redir{Target: target}
				current.Stderr = &Redir{Target: target}
			}

		default:
			current.Argv = append(current.Argv, word)
		}
	}

	if err := closeStage(); err != nil {
		return nil, err
	}
	return pipeline, nil
}
