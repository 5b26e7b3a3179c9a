// Package repl runs the interactive shelf session. It only turns typed lines
// into calls on a types.Repository.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/shelf/internal/ui"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Prompt is printed before every command.
const Prompt = "> "

// ErrUsage is returned for a command with the wrong arguments.
var ErrUsage = errors.New("usage")

// ErrUnterminatedQuote is returned by Tokenize for an unbalanced quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Session is one interactive session.
type Session struct {
	repo   types.Repository
	schema types.Schema
	out    io.Writer
	logger *slog.Logger
}

// New returns a Session that writes to out.
func New(repo types.Repository, schema types.Schema, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{repo: repo, schema: schema, out: out, logger: logger}
}

// Run reads commands from in until "exit" or end of input. A failing
// command is reported and the session goes on.
func (s *Session) Run(in io.Reader) error {
	fmt.Fprintln(s.out, "Interactive mode. Enter 'help' for commands list or 'exit' to exit.")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, Prompt)
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		quit, err := s.Exec(sc.Text())
		if err != nil {
			s.report(err)
		}
		if quit {
			fmt.Fprintln(s.out, "Exit.")
			return nil
		}
	}
}

func (s *Session) report(err error) {
	switch {
	case errors.Is(err, ErrUsage), errors.Is(err, ErrUnterminatedQuote):
		ui.Warning(s.out, "%s", err)
	case errors.Is(err, types.ErrValidation):
		ui.Warning(s.out, "%s", err)
	default:
		s.logger.Error("command failed", "err", err)
		ui.Error(s.out, "%s", err)
	}
}

// Exec runs one command line and reports whether the session should end.
func (s *Session) Exec(line string) (bool, error) {
	args, err := Tokenize(line)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "exit", "quit":
		return true, nil
	case "help":
		s.help()
		return false, nil
	case "add":
		if len(args) != 4 {
			return false, fmt.Errorf("%w: add <title> <author> <year>", ErrUsage)
		}
		id, err := s.repo.Insert(args[1], args[2], args[3])
		if err != nil {
			return false, err
		}
		ui.Success(s.out, "Book %q added with id %s", args[1], id)
	case "delete":
		if len(args) != 2 {
			return false, fmt.Errorf("%w: delete <id>", ErrUsage)
		}
		found, err := s.repo.Delete(args[1])
		if err != nil {
			return false, err
		}
		s.found(found, args[1], "deleted")
	case "find":
		rest := args[1:]
		if len(rest)%2 != 0 {
			return false, fmt.Errorf("%w: find <key> <value> [<key> <value> ...]", ErrUsage)
		}
		filters := make(map[string]string, len(rest)/2)
		for i := 0; i < len(rest); i += 2 {
			filters[rest[i]] = rest[i+1]
		}
		books, err := s.repo.Select(filters)
		if err != nil {
			return false, err
		}
		return false, ui.Records(s.out, s.schema, books)
	case "list":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: list", ErrUsage)
		}
		books, err := s.repo.SelectAll()
		if err != nil {
			return false, err
		}
		return false, ui.Records(s.out, s.schema, books)
	case "modify":
		if len(args) < 3 {
			return false, fmt.Errorf("%w: modify <id> <status>", ErrUsage)
		}
		found, err := s.repo.Modify(args[1], strings.Join(args[2:], " "))
		if err != nil {
			return false, err
		}
		s.found(found, args[1], "modified")
	default:
		return false, fmt.Errorf("%w: undefined command %q, enter 'help' for commands list", ErrUsage, args[0])
	}
	return false, nil
}

func (s *Session) found(found bool, id, verb string) {
	if found {
		ui.Success(s.out, "Book with id %s was %s", id, verb)
		return
	}
	ui.Warning(s.out, "Book with id %s was not found", id)
}

func (s *Session) help() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  add <title> <author> <year> - add a new book")
	fmt.Fprintln(s.out, "  delete <id> - delete book by ID")
	for _, f := range s.schema.Filters {
		fmt.Fprintf(s.out, "  find %s <%s> - find book by %s\n", f, f, f)
	}
	fmt.Fprintln(s.out, "  find key1 <val1> key2 <val2> ... - find book by several filters")
	fmt.Fprintln(s.out, "  list - show all books")
	fmt.Fprintf(s.out, "  modify <id> <status> - change book status (%s)\n", strings.Join(s.schema.Statuses, ", "))
	fmt.Fprintln(s.out, "  exit - quit the session")
	fmt.Fprintln(s.out, "Wrap values containing spaces in quotes.")
}

// Tokenize splits line on whitespace. Text inside single or double quotes
// stays in one token with the quotes removed.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
