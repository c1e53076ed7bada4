// Package argv turns a raw argument vector into action.ParsedInput.
//
// Recognized forms:
//
//	--name=value   --name value   --switch
//	-s value       -svalue        -abc (switches)
//	--             everything after it is a residual argument
//
// Every other token joins the action path; action.Resolve decides which
// tokens are actions and which are positional arguments. Options are looked
// up on the action reached so far, so a switch or short alias must be given
// after the action that declares it. A token such as -5 or -0.5 is a
// positional value unless the action declares a short option for its first
// digit.
package argv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dzonerzy/go-action/action"
)

// SwitchValue is the raw value recorded for a switch given without a value
const SwitchValue = "true"

// ErrMissingValue is matched by *MissingValueError
var ErrMissingValue = errors.New("missing option value")

// MissingValueError reports a value-taking option at the end of input
type MissingValueError struct {
	Option string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("option %q requires a value", e.Option)
}

// Type implements action.TypedError
func (e *MissingValueError) Type() action.ErrorType { return action.ErrorTypeMissingValue }

// Is matches ErrMissingValue
func (e *MissingValueError) Is(target error) bool { return target == ErrMissingValue }

// Parser tokenizes arguments against a built command tree
type Parser struct {
	root *action.Config
}

// NewParser creates a parser for root
func NewParser(root *action.Config) *Parser {
	return &Parser{root: root}
}

// Parse tokenizes args against root
func Parse(root *action.Config, args []string) (action.ParsedInput, error) {
	return NewParser(root).Parse(args)
}

// Parse tokenizes args, which must not include the program name
func (p *Parser) Parse(args []string) (action.ParsedInput, error) {
	var in action.ParsedInput
	node := p.root
	walking := true

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			in.Arguments = append(in.Arguments, args[i+1:]...)
			return in, nil

		case strings.HasPrefix(arg, "--"):
			consumed, err := p.parseLong(node, arg[2:], args[i+1:], &in)
			if err != nil {
				return action.ParsedInput{}, err
			}
			i += consumed

		case len(arg) > 1 && arg[0] == '-' && !negativeNumber(node, arg):
			consumed, err := p.parseShort(node, arg[1:], args[i+1:], &in)
			if err != nil {
				return action.ParsedInput{}, err
			}
			i += consumed

		default:
			in.ActionPath = append(in.ActionPath, arg)
			if walking {
				if child, ok := node.Child(arg); ok {
					node = child
				} else {
					walking = false
				}
			}
		}
	}
	return in, nil
}

// parseLong handles the text after "--" and returns how many of the
// following tokens it consumed.
func (p *Parser) parseLong(node *action.Config, body string, rest []string, in *action.ParsedInput) (int, error) {
	if name, value, found := strings.Cut(body, "="); found {
		in.Options = append(in.Options, action.RawOption{Name: name, Value: value})
		return 0, nil
	}

	decl := node.Option(body)
	switch {
	case decl == nil:
		// Undeclared options never consume the next token.
		in.Options = append(in.Options, action.RawOption{Name: body})
		return 0, nil
	case decl.IsSwitch():
		in.Options = append(in.Options, action.RawOption{Name: body, Value: SwitchValue})
		return 0, nil
	case len(rest) == 0:
		return 0, &MissingValueError{Option: body}
	default:
		in.Options = append(in.Options, action.RawOption{Name: body, Value: rest[0]})
		return 1, nil
	}
}

// parseShort handles the text after "-": a cluster of switches, optionally
// ending in one value-taking option whose value is attached or follows.
func (p *Parser) parseShort(node *action.Config, body string, rest []string, in *action.ParsedInput) (int, error) {
	for pos, r := range body {
		decl := node.ShortOption(r)
		if decl == nil {
			in.Options = append(in.Options, action.RawOption{Name: string(r)})
			continue
		}
		if decl.IsSwitch() {
			in.Options = append(in.Options, action.RawOption{Name: decl.Name(), Value: SwitchValue})
			continue
		}

		if attached := body[pos+len(string(r)):]; attached != "" {
			in.Options = append(in.Options, action.RawOption{Name: decl.Name(), Value: strings.TrimPrefix(attached, "=")})
			return 0, nil
		}
		if len(rest) == 0 {
			return 0, &MissingValueError{Option: decl.Name()}
		}
		in.Options = append(in.Options, action.RawOption{Name: decl.Name(), Value: rest[0]})
		return 1, nil
	}
	return 0, nil
}

// negativeNumber reports whether arg reads as a negative number that no
// short option on node claims.
func negativeNumber(node *action.Config, arg string) bool {
	if arg[1] < '0' || arg[1] > '9' {
		return false
	}
	if node.ShortOption(rune(arg[1])) != nil {
		return false
	}
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}
