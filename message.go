package main

import "strings"

// MaxLineLength is the classic IRC line length, including the terminating
// CRLF. Nothing in this server enforces it: extractLines buffers lines of
// any length and encodeRaw does not truncate.
const MaxLineLength = 512

// Message holds one parsed protocol message: a command token plus its
// positional arguments, with any trailing (':'-introduced) argument as the
// last element.
type Message struct {
	Command string
	Params  []string
}

// extractLines pulls every complete message out of buf and returns them
// along with the bytes remaining in buf (the trailing partial line, if
// any). A message ends at the first '\n'; a preceding '\r' is stripped.
// Empty messages (after stripping) are discarded silently. This never
// fails: malformed input just yields fewer or emptier lines.
func extractLines(buf []byte) (lines []string, rest []byte) {
	for {
		idx := indexByte(buf, '\n')
		if idx == -1 {
			break
		}

		line := buf[:idx]
		buf = buf[idx+1:]

		line = trimTrailingCR(line)

		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}

	return lines, buf
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func trimTrailingCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}

// parseMessage parses one line (no trailing newline) into a Message.
//
// Grammar: COMMAND [SP middle]* [SP ':' trailing]
//
// Parsing is total: it never fails. A blank line produces a Message with an
// empty Command and no Params; callers treat that as an unknown/ignorable
// command.
func parseMessage(line string) Message {
	// A leading ':' prefix is not part of this grammar (clients don't send
	// one per spec.md §4.2), but tolerate it by skipping to the next token
	// rather than treating it as the command.
	if strings.HasPrefix(line, ":") {
		if idx := strings.IndexByte(line, ' '); idx != -1 {
			line = line[idx+1:]
		} else {
			line = ""
		}
	}

	line = strings.TrimPrefix(line, " ")
	if line == "" {
		return Message{}
	}

	var command string
	var rest string
	if idx := strings.IndexByte(line, ' '); idx == -1 {
		command = line
		rest = ""
	} else {
		command = line[:idx]
		rest = line[idx+1:]
	}

	command = strings.ToUpper(command)

	var params []string
	for rest != "" {
		if rest[0] == ':' {
			params = append(params, rest[1:])
			break
		}

		idx := strings.IndexByte(rest, ' ')
		if idx == -1 {
			params = append(params, rest)
			break
		}

		tok := rest[:idx]
		rest = rest[idx+1:]
		if tok == "" {
			// Collapse repeated spaces rather than emitting empty middles.
			continue
		}
		params = append(params, tok)
	}

	return Message{Command: command, Params: params}
}

// encodeNumeric formats a numeric reply: ":<server> <code> <recipient>
// <params...>", CRLF-terminated.
//
// colonTrailing tells the encoder whether the last param is a free-text
// field that must be colon-marked regardless of its content (a human
// message, a reason, a names list) or a plain token that never is (the
// mode string of 324, the target nick of 341). This mirrors
// how the original server builds each reply string literal by literal
// rather than inferring punctuation from content.
func encodeNumeric(server, code, recipientNick string, colonTrailing bool, params ...string) string {
	parts := append([]string{recipientNick}, params...)
	return encodeRaw(server, code, parts, colonTrailing)
}

// encodeRelayed formats a relayed, source-prefixed message:
// ":<nick>!<user>@<host> <verb> <params...>", CRLF-terminated. See
// encodeNumeric for colonTrailing.
func encodeRelayed(sourcePrefix, verb string, colonTrailing bool, params ...string) string {
	return encodeRaw(sourcePrefix, verb, params, colonTrailing)
}

func encodeRaw(prefix, verb string, params []string, colonTrailing bool) string {
	var b strings.Builder
	b.WriteByte(':')
	b.WriteString(prefix)
	b.WriteByte(' ')
	b.WriteString(verb)

	for i, p := range params {
		b.WriteByte(' ')
		last := i == len(params)-1
		if last && colonTrailing {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}

	b.WriteString("\r\n")

	// We do not truncate: per spec.md the framer/parser enforce no size limit
	// on incoming lines, and outbound messages here are always short enough
	// in practice.
	return b.String()
}
