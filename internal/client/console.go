package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"locationShare/internal/mapview"
)

// Console is a line-oriented front end for App.
type Console struct {
	app     *App
	scanner *bufio.Scanner
	out     io.Writer
	stdin   *os.File // set when input is an interactive terminal
}

// NewConsole reads commands from in and writes to out. When in is a
// terminal, passwords are read without echo.
func NewConsole(app *App, in io.Reader, out io.Writer) *Console {
	c := &Console{app: app, scanner: bufio.NewScanner(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.stdin = f
	}
	return c
}

// Run starts the app and processes commands until EOF or "exit".
func (c *Console) Run(ctx context.Context) error {
	if err := c.app.Start(ctx); err != nil {
		return err
	}
	c.status()
	for {
		fmt.Fprintf(c.out, "map [%s]> ", c.prompt())
		if !c.scanner.Scan() {
			return c.scanner.Err()
		}
		fields := strings.Fields(c.scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if quit := c.dispatch(ctx, fields[0], fields[1:]); quit {
			return nil
		}
	}
}

func (c *Console) dispatch(ctx context.Context, cmd string, args []string) bool {
	var err error
	switch cmd {
	case "help":
		c.help()
	case "login":
		err = c.login(ctx)
	case "adduser":
		err = c.addUser(ctx)
	case "date":
		if len(args) != 1 || !mapview.ValidDate(args[0]) {
			fmt.Fprintln(c.out, "usage: date YYYY-MM-DD")
			return false
		}
		if err = c.app.SetDate(args[0]); err == nil {
			c.markers()
		}
	case "toggle":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: toggle NAME")
			return false
		}
		if err = c.app.Toggle(args[0]); err == nil {
			c.markers()
		}
	case "people":
		c.people()
	case "markers":
		c.markers()
	case "whoami":
		c.status()
	case "logout":
		if err = c.app.Logout(ctx); err == nil {
			c.status()
		}
	case "exit", "quit":
		fmt.Fprintln(c.out, "Bye!")
		return true
	default:
		fmt.Fprintln(c.out, "Unknown command:", cmd)
	}
	if err != nil {
		fmt.Fprintln(c.out, "error:", err)
	}
	return false
}

func (c *Console) prompt() string {
	if c.app.State() == Authenticated {
		return c.app.User().Username
	}
	return c.app.Mode().String()
}

func (c *Console) help() {
	if c.app.State() != Authenticated {
		fmt.Fprintln(c.out, "Available commands: login, exit")
		return
	}
	cmds := "date, toggle, people, markers, whoami, logout, exit"
	if c.app.User().IsAdmin() {
		cmds = "adduser, " + cmds
	}
	fmt.Fprintln(c.out, "Available commands:", cmds)
}

func (c *Console) login(ctx context.Context) error {
	if c.app.State() == Authenticated {
		return fmt.Errorf("already signed in as %s", c.app.User().Username)
	}
	fmt.Fprintln(c.out, c.app.Mode())
	if err := c.readForm(); err != nil {
		return err
	}
	if err := c.app.Submit(ctx); err != nil {
		return err
	}
	c.status()
	c.markers()
	return nil
}

func (c *Console) addUser(ctx context.Context) error {
	if !c.app.User().IsAdmin() {
		return errors.New("only an admin can create users")
	}
	if err := c.readForm(); err != nil {
		return err
	}
	id, err := c.app.CreateUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created user %d\n", id)
	return nil
}

func (c *Console) readForm() error {
	user, err := c.readLine("Username: ")
	if err != nil {
		return err
	}
	pass, err := c.readSecret("Password: ")
	if err != nil {
		return err
	}
	c.app.Form = Form{Username: user, Password: pass}
	return nil
}

func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

func (c *Console) readSecret(prompt string) (string, error) {
	if c.stdin == nil {
		return c.readLine(prompt)
	}
	fmt.Fprint(c.out, prompt)
	b, err := term.ReadPassword(int(c.stdin.Fd()))
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Console) status() {
	if c.app.State() != Authenticated {
		fmt.Fprintf(c.out, "not signed in (%s)\n", c.app.Mode())
		return
	}
	u := c.app.User()
	fmt.Fprintf(c.out, "signed in as %s (%s)\n", u.Username, u.Role)
}

func (c *Console) people() {
	sel := c.app.Selection()
	if sel == nil {
		fmt.Fprintln(c.out, "error:", ErrNotAuthenticated)
		return
	}
	for _, name := range c.app.People() {
		mark := " "
		if sel.IsActive(name) {
			mark = "x"
		}
		fmt.Fprintf(c.out, "[%s] %s\n", mark, name)
	}
}

func (c *Console) markers() {
	sel := c.app.Selection()
	if sel == nil {
		fmt.Fprintln(c.out, "error:", ErrNotAuthenticated)
		return
	}
	ms := c.app.Markers()
	v := c.app.View()
	fmt.Fprintf(c.out, "%s: %d marker(s), center %.4f,%.4f zoom %d\n", sel.Date(), len(ms), v.Center.Lat, v.Center.Lng, v.Zoom)
	for _, m := range ms {
		fmt.Fprintf(c.out, "  %s at %s (%.4f, %.4f) %.0f km from center\n",
			m.Person, m.Location.Date, m.Location.Lat, m.Location.Lng, m.DistanceKm)
	}
}
