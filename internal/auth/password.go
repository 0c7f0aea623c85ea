package auth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var ErrNoTerminal = errors.New("password prompt requires a terminal")

type PasswordPrompter struct {
	In           *os.File
	Out          io.Writer
	IsTerminal   func(fd int) bool
	ReadPassword func(fd int) ([]byte, error)
}

func NewPasswordPrompter(in *os.File, out io.Writer) PasswordPrompter {
	return PasswordPrompter{
		In:           in,
		Out:          out,
		IsTerminal:   term.IsTerminal,
		ReadPassword: term.ReadPassword,
	}
}

// Prompt asks for the password of username without echoing the input.
func (p PasswordPrompter) Prompt(username string) (string, error) {
	if p.In == nil {
		return "", ErrNoTerminal
	}
	fd := int(p.In.Fd())
	isTerminal := p.IsTerminal
	if isTerminal == nil {
		isTerminal = term.IsTerminal
	}
	if !isTerminal(fd) {
		return "", ErrNoTerminal
	}

	readPassword := p.ReadPassword
	if readPassword == nil {
		readPassword = term.ReadPassword
	}
	if p.Out != nil {
		fmt.Fprintf(p.Out, "Password for %s: ", username)
	}
	raw, err := readPassword(fd)
	if p.Out != nil {
		fmt.Fprintln(p.Out)
	}
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(string(raw), "\r\n")
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}
