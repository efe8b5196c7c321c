package shell

import (
	"fmt"
	"testing"
)

func ExampleCopyEnv() {
	env := NewMapEnv()
	CopyEnv(env, []string{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleNewMapEnvFrom() {
	env := NewMapEnvFrom([]string{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleMapEnv_Unsetenv() {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv("C", "D")

	fmt.Println("Before:", env.Environ())
	env.Unsetenv("A")
	fmt.Println("After:", env.Environ())

	// Output: Before: [A=B C=D]
	// After: [C=D]
}

func ExampleMapEnv_LookupEnv() {
	env := NewMapEnv()
	env.Setenv("A", "B")

	val, ok := env.LookupEnv("A")
	fmt.Println("Existing", "val:", val, "ok:", ok)
	val, ok = env.LookupEnv("B")
	fmt.Println("Missing", "val:", val, "ok:", ok)

	// Output: Existing val: B ok: true
	// Missing val:  ok: false
}

func ExampleMapEnv_ExpandEnv() {
	env := NewMapEnvFrom([]string{"GREETING=hello"})

	fmt.Println(env.ExpandEnv("$GREETING world"))
	fmt.Println(env.ExpandEnv("${GREETING}-x and $UNSET"))

	// Output: hello world
	// hello-x and
}

func TestOSEnv(t *testing.T) {
	env := NewOSEnv()

	t.Setenv("MISH_TEST_VAR", "42")

	if got := env.Getenv("MISH_TEST_VAR"); got != "42" {
		t.Errorf("Getenv() = %q, want %q", got, "42")
	}
	if got := env.ExpandEnv("v=$MISH_TEST_VAR"); got != "v=42" {
		t.Errorf("ExpandEnv() = %q, want %q", got, "v=42")
	}

	if err := env.Setenv("MISH_TEST_VAR", "43"); err != nil {
		t.Fatal(err)
	}
	if _, ok := env.LookupEnv("MISH_TEST_VAR"); !ok {
		t.Error("LookupEnv() reported the variable missing")
	}

	if err := env.Unsetenv("MISH_TEST_VAR"); err != nil {
		t.Fatal(err)
	}
	if _, ok := env.LookupEnv("MISH_TEST_VAR"); ok {
		t.Error("LookupEnv() reported the variable present after Unsetenv")
	}
}
