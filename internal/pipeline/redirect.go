// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "fmt"

// ResolveRedirects extracts <, > and >> with their filenames from a
// segment's tokens. The returned argv never contains an operator or its
// filename. When an operator repeats, the last occurrence wins; for output
// that includes the mode.
func ResolveRedirects(tokens []string) ([]string, Redirection, error) {
	var redir Redirection
	args := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		switch op := tokens[i]; op {
		case OpRedirIn, OpRedirOut, OpAppendOut:
			if i+1 >= len(tokens) {
				return nil, Redirection{}, &ParseError{Segment: -1, Msg: fmt.Sprintf("%s requires a file path", op)}
			}
			i++
			switch op {
			case OpRedirIn:
				redir.In = tokens[i]
			case OpRedirOut:
				redir.Out, redir.Mode = tokens[i], OutputTruncate
			case OpAppendOut:
				redir.Out, redir.Mode = tokens[i], OutputAppend
			}
		default:
			args = append(args, op)
		}
	}

	if len(args) == 0 {
		return nil, Redirection{}, &ParseError{Segment: -1, Msg: "missing command"}
	}
	return args, redir, nil
}
