package shell

import (
	"os"
	"os/user"
	"sort"
	"strconv"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// AliasTable maps command names to their replacement text. It is only
// touched from the driver goroutine, never from the signal router.
type AliasTable map[string]string

// Names returns the defined alias names in sorted order.
func (t AliasTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lex splits a raw input line into expanded words and reports whether
// the pipeline should run in the background.
//
// Splitting honors POSIX-style quoting and escapes with quote removal.
// If the first word names an alias, its replacement text is split the
// same way and spliced in; the result is not checked against aliases
// again. After alias handling a trailing "&" word is stripped to mark a
// background pipeline, and every surviving word gets leading-tilde then
// $NAME/${NAME} expansion.
func (s *Shell) Lex(line string) (words []string, background bool, err error) {
	words, err = shlex.Split(line, true)
	if err != nil {
		// The splitter only fails on input cut off mid-token.
		return nil, false, ErrUnterminatedQuote
	}

	if len(words) == 0 {
		return nil, false, nil
	}

	if expansion, ok := s.Aliases[words[0]]; ok {
		head, err := shlex.Split(expansion, true)
		if err != nil {
			return nil, false, ErrUnterminatedQuote
		}
		words = append(head, words[1:]...)
	}

	if n := len(words); n > 0 && words[n-1] == "&" {
		words = words[:n-1]
		background = true
	}

	for i, word := range words {
		words[i] = s.expandWord(word)
	}
	return words, background, nil
}

// expandWord applies tilde then environment expansion to a single word.
func (s *Shell) expandWord(word string) string {
	if word == "~" || strings.HasPrefix(word, "~/") {
		if home := s.homeDir(); home != "" {
			word = home + strings.TrimPrefix(word, "~")
		}
	}
	return os.Expand(word, s.lookupVar)
}

// lookupVar resolves $NAME expansions, including the $$ and $? pseudo
// variables. Unset names expand to an empty string.
func (s *Shell) lookupVar(name string) string {
	switch name {
	case "$":
		return strconv.Itoa(os.Getpid())
	case "?":
		return strconv.Itoa(s.lastStatus)
	}
	return s.Env.Getenv(name)
}

// homeDir is the tilde expansion target: $HOME, falling back to the
// invoking user's account record when HOME is unset.
func (s *Shell) homeDir() string {
	if home, ok := s.Env.LookupEnv(EnvHome); ok && home != "" {
		return home
	}
	if u, err := user.Current(); err == nil {
		return u.HomeDir
	}
	return ""
}
