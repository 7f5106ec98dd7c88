package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	failOn   string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	if name == f.failOn {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool                 { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error   { return f.record("register") }
func (f *fakeExec) Profile(context.Context) error    { return f.record("profile") }
func (f *fakeExec) Upload(context.Context) error     { return f.record("upload") }
func (f *fakeExec) List(context.Context) error       { return f.record("list") }
func (f *fakeExec) Show(_ context.Context, id string) error     { return f.record("show " + id) }
func (f *fakeExec) Download(_ context.Context, id string) error { return f.record("download " + id) }
func (f *fakeExec) Edit(_ context.Context, id string) error     { return f.record("edit " + id) }
func (f *fakeExec) Delete(_ context.Context, id string) error   { return f.record("delete " + id) }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"list",
		"login",
		"help",
		"upload",
		"l",
		"show 123",
		"download 123",
		"edit 123",
		"delete 123",
		"profile",
		"foobar",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, strings.NewReader(input), &out)

	assert.Equal(t, []string{
		"login", "upload", "list", "show 123", "download 123", "edit 123", "delete 123", "profile", "logout",
	}, exec.calls)
	assert.Contains(t, out.String(), "Available commands: register, login, exit")
	assert.Contains(t, out.String(), "Unknown command or not logged in: list")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_UsageAndErrors(t *testing.T) {
	exec := &fakeExec{loggedIn: true, failOn: "list"}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(me)" }, strings.NewReader("show\nedit a b\nlist\nquit\n"), &out)

	assert.Equal(t, []string{"list"}, exec.calls)
	assert.Contains(t, out.String(), "Usage: show <id>")
	assert.Contains(t, out.String(), "Usage: edit <id>")
	assert.Contains(t, out.String(), "error: list failed")
	assert.Contains(t, out.String(), "mm(me)> ")
}
