package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// terminalNavigator keeps the "current page" for the guard and prints redirects.
type terminalNavigator struct {
	lock     sync.Mutex
	out      io.Writer
	location string
}

func (n *terminalNavigator) CurrentLocation() string {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.location
}

func (n *terminalNavigator) Redirect(location string) {
	n.lock.Lock()
	n.location = location
	n.lock.Unlock()
	fmt.Fprintf(n.out, "-> %s\n", location)
}

func (n *terminalNavigator) visit(location string) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.location = location
}

type terminalNotifier struct {
	out io.Writer
}

func (n *terminalNotifier) Warn(message string) {
	fmt.Fprintf(n.out, "! %s\n", message)
}

// prompter reads user input. liner.State satisfies it in the interactive shell.
type prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

type stdinPrompter struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

func newStdinPrompter(in *os.File, out io.Writer) *stdinPrompter {
	return &stdinPrompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *stdinPrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PasswordPrompt disables echo when stdin is a terminal and falls back to a plain
// line read when input is piped.
func (p *stdinPrompter) PasswordPrompt(prompt string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.Prompt(prompt)
	}
	fmt.Fprint(p.out, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(password), nil
}
