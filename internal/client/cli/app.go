package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/mealmate/internal/client/api"
	"github.com/dmitrijs2005/mealmate/internal/client/chat"
	"github.com/dmitrijs2005/mealmate/internal/client/config"
	"github.com/dmitrijs2005/mealmate/internal/common"
)

var ErrEmptyUsername = errors.New("username must not be empty")

type App struct {
	config *config.Config
	api    *api.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	return newApp(c, os.Stdin, os.Stdout)
}

func newApp(c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	client, err := api.New(c.ServerURL, &http.Client{Timeout: c.RequestTimeout})
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: client, reader: bufio.NewReader(in), out: out}, nil
}

// Run signs in and stays in the room until input ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	user, err := a.login(ctx)
	if err != nil {
		return err
	}

	room, err := chat.Dial(ctx, a.api.ChatURL(), user.Name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s. Type a message and press Enter, Ctrl-D to leave.\n", user.Name)
	defer fmt.Fprintln(a.out, "Bye!")

	return room.Run(ctx, a.reader, a.out)
}

func (a *App) login(ctx context.Context) (*api.User, error) {
	name, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrEmptyUsername
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	session, err := a.api.Login(ctx, name, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, fmt.Errorf("login failed: invalid username or password")
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user, err := a.api.UserInfo(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return user, nil
}
