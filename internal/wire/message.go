// Package wire implements the minimal line-oriented HTTP/1.1 codec used
// by the handshake's upgrade dialogue. It deliberately does not use
// net/http: the handshake core must be able to emit and parse malformed
// headers for conformance and fuzz testing, which net/http's Request
// and Response types actively guard against.
package wire

import (
	"bytes"
	"errors"
	"fmt"
)

// CRLF terminates every wire line; CRLFCRLF terminates the header block.
const (
	CRLF     = "\r\n"
	CRLFCRLF = "\r\n\r\n"
)

// MaxHeaderBytes caps the size of the header block the decoder will scan
// before giving up, so a peer that never sends CRLFCRLF cannot exhaust
// memory.
const MaxHeaderBytes = 64 * 1024

// ErrInvalidData is the sentinel wrapped by every codec parsing failure.
var ErrInvalidData = errors.New("wire: invalid data")

// Header is a single name/value pair, kept in arrival/insertion order.
// XRPL peers are order-sensitive on the handshake's headers, so this
// package never uses a map.
type Header struct {
	Name  string
	Value string
}

// Message is a decoded (or to-be-encoded) HTTP/1.1 start line plus an
// ordered header block.
type Message struct {
	// StartLine is the raw request-line or status-line, without CRLF.
	StartLine string
	Headers   []Header
	// Trailing holds any bytes read past the header terminator that were
	// already sitting in the decode buffer. The caller decides whether to
	// discard them or splice them back onto the post-handshake stream.
	Trailing []byte
}

// Get returns the value of the first header matching name
// (case-sensitive, matching XRPL's canonical header casing), and whether
// it was present.
func (m *Message) Get(name string) (string, bool) {
	for _, h := range m.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// Set appends a header. Handshake messages never need to replace an
// existing header, only emit the canonical set once in order.
func (m *Message) Set(name, value string) {
	m.Headers = append(m.Headers, Header{Name: name, Value: value})
}

// AddRaw appends a single already-formatted "Name: Value" (or arbitrary)
// line verbatim, used for the fuzzing extra-header field.
func (m *Message) AddRaw(line string) {
	name, value, ok := splitHeaderLine(line)
	if !ok {
		// Fuzz lines need not be well-formed; keep them as a header whose
		// name is the entire line and whose value is empty, so Encode emits
		// it byte-for-byte.
		m.Headers = append(m.Headers, Header{Name: line})
		return
	}
	m.Headers = append(m.Headers, Header{Name: name, Value: value})
}

// Encode renders the message as wire bytes: start line, each header in
// order, then the empty-line terminator.
func (m *Message) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteString(m.StartLine)
	buf.WriteString(CRLF)
	for _, h := range m.Headers {
		if h.Value == "" && !headerHasColon(h.Name) {
			// A raw fuzz line stored with no Value; emit the Name verbatim.
			buf.WriteString(h.Name)
		} else {
			buf.WriteString(h.Name)
			buf.WriteString(": ")
			buf.WriteString(h.Value)
		}
		buf.WriteString(CRLF)
	}
	buf.WriteString(CRLF)
	return buf.Bytes()
}

func headerHasColon(s string) bool {
	return bytes.ContainsRune([]byte(s), ':')
}

func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := bytes.IndexByte([]byte(line), ':')
	if idx < 0 {
		return "", "", false
	}
	name = line[:idx]
	value = line[idx+1:]
	for len(value) > 0 && (value[0] == ' ' || value[0] == '\t') {
		value = value[1:]
	}
	return name, value, true
}

// invalidDataf builds an error wrapping ErrInvalidData with context.
func invalidDataf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidData}, args...)...)
}
