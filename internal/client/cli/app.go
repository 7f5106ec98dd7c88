package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/medimate/internal/client/api"
	"github.com/dmitrijs2005/medimate/internal/client/config"
)

// apiClient is the part of *api.Client the commands use.
type apiClient interface {
	Register(ctx context.Context, name, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout()
	CurrentUser() *api.User
	Profile(ctx context.Context) (*api.User, error)
	Ping(ctx context.Context) error
	Upload(ctx context.Context, up api.Upload) (*api.Record, error)
	List(ctx context.Context) ([]api.Record, error)
	Get(ctx context.Context, id string) (*api.Record, error)
	Update(ctx context.Context, id string, upd api.RecordUpdate) (*api.Record, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (*api.Download, error)
}

type App struct {
	config *config.Config
	api    apiClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		api:    api.New(c.ServerBaseURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.CurrentUser() != nil
}

func (a *App) getStatus() string {
	if u := a.api.CurrentUser(); u != nil {
		return "(" + u.Email + ")"
	}
	return ""
}

// Run greets the user, reports whether the server answers and starts the
// REPL on the app's reader.
func (a *App) Run(ctx context.Context) {
	a.printf("Welcome to Medi Mate CLI (type 'help' for commands)\n")
	if err := a.api.Ping(ctx); err != nil {
		a.printf("warning: %s is not reachable: %v\n", a.config.ServerBaseURL, err)
	}
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
