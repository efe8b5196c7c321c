package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCd(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(wd) })

	t.Run("to-directory", func(t *testing.T) {
		s := newTestShell(t)
		dir, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)

		require.Equal(t, 0, s.RunLine("cd "+dir))

		got, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, dir, got)
		assert.Equal(t, dir, s.Env.Getenv(EnvPWD))
	})

	t.Run("default-is-home", func(t *testing.T) {
		s := newTestShell(t)
		home, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		s.Env.Setenv(EnvHome, home)

		require.Equal(t, 0, s.RunLine("cd"))

		got, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, home, got)
	})

	t.Run("tilde", func(t *testing.T) {
		s := newTestShell(t)
		home, err := filepath.EvalSymlinks(t.TempDir())
		require.NoError(t, err)
		s.Env.Setenv(EnvHome, home)

		require.Equal(t, 0, s.RunLine("cd ~"))

		got, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, home, got)
	})

	t.Run("missing-target", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("cd /no/such/directory"))
		assert.Contains(t, s.Err.String(), "cd: ")
	})

	t.Run("too-many-arguments", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("cd /tmp /var"))
		assert.Contains(t, s.Err.String(), "cd: too many arguments")
	})
}

func TestPwd(t *testing.T) {
	s := newTestShell(t)

	require.Equal(t, 0, s.RunLine("pwd"))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd+"\n", s.Out.String())
}

func TestExit(t *testing.T) {
	t.Run("default-is-last-status", func(t *testing.T) {
		s := newTestShell(t)
		s.RunLine("false")

		assert.Equal(t, 1, s.RunLine("exit"))
		assert.True(t, s.Quit)
		assert.Equal(t, 1, s.ExitStatus())
	})

	t.Run("explicit-code", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 42, s.RunLine("exit 42"))
		assert.True(t, s.Quit)
		assert.Equal(t, 42, s.ExitStatus())
	})

	t.Run("wraps-to-byte", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 44, s.RunLine("exit 300"))
		assert.Equal(t, 44, s.ExitStatus())
	})

	t.Run("negative-wraps", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 255, s.RunLine("exit -1"))
		assert.Equal(t, 255, s.ExitStatus())
	})

	t.Run("non-numeric", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 2, s.RunLine("exit abc"))
		assert.False(t, s.Quit)
		assert.Contains(t, s.Err.String(), "exit: abc: numeric argument required")
	})

	t.Run("too-many-arguments", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("exit 1 2"))
		assert.False(t, s.Quit)
		assert.Contains(t, s.Err.String(), "exit: too many arguments")
	})
}

func TestExport(t *testing.T) {
	t.Run("define", func(t *testing.T) {
		s := newTestShell(t)

		require.Equal(t, 0, s.RunLine("export FOO=bar"))
		assert.Equal(t, "bar", s.Env.Getenv("FOO"))
	})

	t.Run("value-with-equals", func(t *testing.T) {
		s := newTestShell(t)

		require.Equal(t, 0, s.RunLine("export PAIR=a=b"))
		assert.Equal(t, "a=b", s.Env.Getenv("PAIR"))
	})

	t.Run("bare-name-defines-empty", func(t *testing.T) {
		s := newTestShell(t)

		require.Equal(t, 0, s.RunLine("export TOUCHED"))
		value, ok := s.Env.LookupEnv("TOUCHED")
		assert.True(t, ok)
		assert.Empty(t, value)
	})

	t.Run("bare-name-keeps-value", func(t *testing.T) {
		s := newTestShell(t)
		s.Env.Setenv("KEEP", "value")

		require.Equal(t, 0, s.RunLine("export KEEP"))
		assert.Equal(t, "value", s.Env.Getenv("KEEP"))
	})

	t.Run("invalid-identifier", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("export 1BAD=x"))
		assert.Contains(t, s.Err.String(), "not a valid identifier")
	})

	t.Run("listing-is-sorted", func(t *testing.T) {
		s := newTestShell(t)
		s.Env.Setenv("ZULU", "1")
		s.Env.Setenv("ALPHA", "2")

		require.Equal(t, 0, s.RunLine("export"))

		lines := strings.Split(strings.TrimSpace(s.Out.String()), "\n")
		assert.True(t, sort.StringsAreSorted(lines))
		assert.Contains(t, lines, "ALPHA=2")
		assert.Contains(t, lines, "ZULU=1")
	})
}

func TestUnset(t *testing.T) {
	t.Run("removes", func(t *testing.T) {
		s := newTestShell(t)
		s.Env.Setenv("DOOMED", "x")

		require.Equal(t, 0, s.RunLine("unset DOOMED"))
		_, ok := s.Env.LookupEnv("DOOMED")
		assert.False(t, ok)
	})

	t.Run("absent-is-fine", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 0, s.RunLine("unset NEVER_WAS"))
	})

	t.Run("invalid-identifier", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("unset 1BAD"))
		assert.Contains(t, s.Err.String(), "not a valid identifier")
	})
}

func TestAlias(t *testing.T) {
	t.Run("define-and-use", func(t *testing.T) {
		s := newTestShell(t)

		require.Equal(t, 0, s.RunLine("alias greet='echo hi'"))
		assert.Equal(t, "echo hi", s.Aliases["greet"])

		require.Equal(t, 0, s.RunLine("greet"))
		assert.Equal(t, "hi\n", s.Out.String())
	})

	t.Run("redefine", func(t *testing.T) {
		s := newTestShell(t)

		s.RunLine("alias g=git")
		s.RunLine("alias g=hub")
		assert.Equal(t, "hub", s.Aliases["g"])
	})

	t.Run("print-one", func(t *testing.T) {
		s := newTestShell(t)
		s.Aliases["ll"] = "ls -l"

		require.Equal(t, 0, s.RunLine("alias ll"))
		assert.Equal(t, "alias ll='ls -l'\n", s.Out.String())
	})

	t.Run("print-simple-value-unquoted", func(t *testing.T) {
		s := newTestShell(t)
		s.Aliases["g"] = "git"

		require.Equal(t, 0, s.RunLine("alias g"))
		assert.Equal(t, "alias g=git\n", s.Out.String())
	})

	t.Run("list-is-sorted", func(t *testing.T) {
		s := newTestShell(t)
		s.Aliases["zz"] = "last"
		s.Aliases["aa"] = "first"

		require.Equal(t, 0, s.RunLine("alias"))
		assert.Equal(t, "alias aa=first\nalias zz=last\n", s.Out.String())
	})

	t.Run("not-found", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("alias nosuch"))
		assert.Contains(t, s.Err.String(), "alias: nosuch: not found")
	})
}

func TestUnalias(t *testing.T) {
	t.Run("removes", func(t *testing.T) {
		s := newTestShell(t)
		s.Aliases["a"] = "1"
		s.Aliases["b"] = "2"

		require.Equal(t, 0, s.RunLine("unalias a"))
		assert.NotContains(t, s.Aliases, "a")
		assert.Contains(t, s.Aliases, "b")
	})

	t.Run("all", func(t *testing.T) {
		s := newTestShell(t)
		s.Aliases["a"] = "1"
		s.Aliases["b"] = "2"

		require.Equal(t, 0, s.RunLine("unalias -a"))
		assert.Empty(t, s.Aliases)
	})

	t.Run("not-found", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("unalias nosuch"))
		assert.Contains(t, s.Err.String(), "unalias: nosuch: not found")
	})

	t.Run("no-arguments", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 2, s.RunLine("unalias"))
		assert.Contains(t, s.Err.String(), "usage: unalias")
	})

	t.Run("bad-flag", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 2, s.RunLine("unalias -z name"))
		assert.Contains(t, s.Err.String(), "usage: unalias")
	})
}

func TestHistory(t *testing.T) {
	t.Run("prints-numbered", func(t *testing.T) {
		s := newTestShell(t)
		require.NoError(t, afero.WriteFile(s.fs, s.historyFile, []byte("echo one\necho two\n"), 0600))

		require.Equal(t, 0, s.RunLine("history"))
		assert.Equal(t, "    1  echo one\n    2  echo two\n", s.Out.String())
	})

	t.Run("no-store", func(t *testing.T) {
		s := newTestShell(t)

		require.Equal(t, 0, s.RunLine("history"))
		assert.Empty(t, s.Out.String())
	})

	t.Run("clear", func(t *testing.T) {
		s := newTestShell(t)
		require.NoError(t, afero.WriteFile(s.fs, s.historyFile, []byte("echo one\n"), 0600))

		require.Equal(t, 0, s.RunLine("history -c"))

		data, err := afero.ReadFile(s.fs, s.historyFile)
		require.NoError(t, err)
		assert.Empty(t, data)

		require.Equal(t, 0, s.RunLine("history"))
		assert.Empty(t, s.Out.String())
	})

	t.Run("help", func(t *testing.T) {
		s := newTestShell(t)

		require.Equal(t, 0, s.RunLine("history --help"))
		assert.Contains(t, s.Err.String(), "Display or manipulate the history list.")
	})

	t.Run("bad-flag", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("history -z"))
		assert.Contains(t, s.Err.String(), "Options:")
	})
}

func TestSource(t *testing.T) {
	t.Run("shares-interpreter-state", func(t *testing.T) {
		s := newTestShell(t)
		script := "export FROM_RC=yes\nalias hi='echo hello'\n"
		require.NoError(t, afero.WriteFile(s.fs, "/rc", []byte(script), 0644))

		require.Equal(t, 0, s.RunLine("source /rc"))
		assert.Equal(t, "yes", s.Env.Getenv("FROM_RC"))
		assert.Equal(t, "echo hello", s.Aliases["hi"])

		require.Equal(t, 0, s.RunLine("hi"))
		assert.Equal(t, "hello\n", s.Out.String())
	})

	t.Run("dot-spelling", func(t *testing.T) {
		s := newTestShell(t)
		require.NoError(t, afero.WriteFile(s.fs, "/rc", []byte("export DOTTED=yes\n"), 0644))

		require.Equal(t, 0, s.RunLine(". /rc"))
		assert.Equal(t, "yes", s.Env.Getenv("DOTTED"))
	})

	t.Run("nested", func(t *testing.T) {
		s := newTestShell(t)
		require.NoError(t, afero.WriteFile(s.fs, "/outer", []byte("source /inner\nexport OUTER=yes\n"), 0644))
		require.NoError(t, afero.WriteFile(s.fs, "/inner", []byte("export INNER=yes\n"), 0644))

		require.Equal(t, 0, s.RunLine("source /outer"))
		assert.Equal(t, "yes", s.Env.Getenv("INNER"))
		assert.Equal(t, "yes", s.Env.Getenv("OUTER"))
	})

	t.Run("exit-stops-caller", func(t *testing.T) {
		s := newTestShell(t)
		require.NoError(t, afero.WriteFile(s.fs, "/quit", []byte("exit 7\nexport NOPE=x\n"), 0644))

		assert.Equal(t, 7, s.RunLine("source /quit"))
		assert.True(t, s.Quit)
		_, ok := s.Env.LookupEnv("NOPE")
		assert.False(t, ok)
	})

	t.Run("missing-file", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 1, s.RunLine("source /definitely/missing"))
		assert.Contains(t, s.Err.String(), "source: /definitely/missing:")
	})

	t.Run("no-argument", func(t *testing.T) {
		s := newTestShell(t)

		assert.Equal(t, 2, s.RunLine("source"))
		assert.Contains(t, s.Err.String(), "source: filename argument required")
	})
}

func TestBuiltinRedirection(t *testing.T) {
	s := newTestShell(t)
	out := filepath.Join(t.TempDir(), "pwd.txt")

	require.Equal(t, 0, s.RunLine("pwd > "+out))

	wd, err := os.Getwd()
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, wd+"\n", string(data))
	assert.Empty(t, s.Out.String())

	// The shell's own streams come back after the call.
	require.Equal(t, 0, s.RunLine("pwd"))
	assert.Equal(t, wd+"\n", s.Out.String())
}

func TestBuiltinRedirectionError(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, 1, s.RunLine("pwd > /no/such/dir/out.txt"))
	assert.Contains(t, s.Err.String(), "mish: ")
}

func TestAllBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"cd", "pwd", "exit", "export", "unset", "alias", "unalias", "history", "source", "."} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, AllBuiltins, name)
		})
	}
}
