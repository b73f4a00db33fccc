package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
	err   error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Status(ctx context.Context) error { f.calls = append(f.calls, "status"); return nil }
func (f *fakeExec) ForgotPassword(ctx context.Context) error {
	f.calls = append(f.calls, "forgot")
	return f.err
}
func (f *fakeExec) OpenLink(ctx context.Context, raw string) error {
	f.calls = append(f.calls, "open")
	f.args = append(f.args, raw)
	return nil
}
func (f *fakeExec) ResendVerification(ctx context.Context) error {
	f.calls = append(f.calls, "resend")
	return nil
}
func (f *fakeExec) Check(field, value string) error {
	f.calls = append(f.calls, "check")
	f.args = append(f.args, field+"="+value)
	return nil
}
func (f *fakeExec) Focus(ctx context.Context) error { f.calls = append(f.calls, "focus"); return nil }

// capturePrint replaces printlnFn for the test and returns the printed lines.
func capturePrint(t *testing.T) func() []string {
	t.Helper()
	var (
		mu    sync.Mutex
		lines []string
	)
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), lines...)
	}
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	printed := capturePrint(t)

	input := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"status",
		"whoami",
		"open https://app.example/reset-password?token=t&email=a%40b.c",
		"verify",
		"check username night.owl",
		"check email",
		"focus",
		"foobar",
		"logout",
		"exit",
		"status",
	}, "\n")))

	exec := &fakeExec{loggedIn: false}
	runREPL(context.Background(), exec, func() string { return "(home)" }, input)

	want := []string{"login", "status", "status", "open", "check", "focus", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if exec.args[0] != "https://app.example/reset-password?token=t&email=a%40b.c" {
		t.Fatalf("open arg = %q", exec.args[0])
	}
	if exec.args[1] != "username=night.owl" {
		t.Fatalf("check arg = %q", exec.args[1])
	}

	out := strings.Join(printed(), "\n")
	for _, s := range []string{helpGuest, helpUser, "Usage: verify <link>", "Usage: check", "Unknown command: foobar", "Bye!", "nv (home)> "} {
		if !strings.Contains(out, s) {
			t.Errorf("output lacks %q", s)
		}
	}
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	printed := capturePrint(t)

	exec := &fakeExec{err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("forgot\nquit\n")))

	if len(exec.calls) != 1 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if !strings.Contains(strings.Join(printed(), "\n"), "Error: boom") {
		t.Fatalf("error not printed: %v", printed())
	}
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("\n\nregister")))

	if len(exec.calls) != 1 || exec.calls[0] != "register" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestRunREPL_StopsWhenCanceled(t *testing.T) {
	capturePrint(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("register\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
