package token

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"discofetch/internal/domain"
)

// PromptStore asks the operator for the token on every run. Input is hidden
// when stdin is a real terminal, read as a plain line otherwise (pipes, tests).
type PromptStore struct {
	in  io.Reader
	out io.Writer
}

// NewPromptStore builds a prompt backend over the given streams. Nil streams
// default to stdin/stderr.
func NewPromptStore(in io.Reader, out io.Writer) *PromptStore {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &PromptStore{in: in, out: out}
}

func (s *PromptStore) Name() string { return "prompt" }

func (s *PromptStore) Load() (string, error) {
	fmt.Fprint(s.out, "Enter your Discord token (input hidden): ")

	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(s.out)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		tok := domain.NormalizeToken(string(raw))
		if tok == "" {
			return "", ErrNotFound
		}
		return tok, nil
	}

	line, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && line == "" {
		return "", ErrNotFound
	}
	tok := domain.NormalizeToken(line)
	if tok == "" {
		return "", ErrNotFound
	}
	return tok, nil
}

func (s *PromptStore) Save(string) error { return ErrReadOnly }

func (s *PromptStore) Clear() error { return ErrReadOnly }
