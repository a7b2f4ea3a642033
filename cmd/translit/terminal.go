package main

import (
	"fmt"
	"io"
)

const (
	clearLine = "\r\033[K"
	underline = "\033[4m"
	reset     = "\033[0m"
)

// terminalHost shows the line being typed on a terminal. The composition is
// drawn underlined after the committed text.
type terminalHost struct {
	out         io.Writer
	prompt      string
	line        []rune
	composition string
}

func newTerminalHost(out io.Writer, prompt string) *terminalHost {
	return &terminalHost{out: out, prompt: prompt}
}

func (h *terminalHost) Commit(text string) error {
	h.line = append(h.line, []rune(text)...)
	h.composition = ""
	return h.redraw()
}

func (h *terminalHost) SetComposition(text string) error {
	h.composition = text
	return h.redraw()
}

func (h *terminalHost) EndComposition() error {
	return h.Commit(h.composition)
}

// deleteLast removes the last committed character.
func (h *terminalHost) deleteLast() error {
	if len(h.line) == 0 {
		return nil
	}
	h.line = h.line[:len(h.line)-1]
	return h.redraw()
}

// newline finishes the current line and starts an empty one.
func (h *terminalHost) newline() error {
	h.line = h.line[:0]
	h.composition = ""
	if _, err := io.WriteString(h.out, "\r\n"); err != nil {
		return err
	}
	return h.redraw()
}

func (h *terminalHost) setPrompt(prompt string) error {
	h.prompt = prompt
	return h.redraw()
}

func (h *terminalHost) redraw() error {
	var err error
	if h.composition == "" {
		_, err = fmt.Fprintf(h.out, "%s%s%s", clearLine, h.prompt, string(h.line))
	} else {
		_, err = fmt.Fprintf(h.out, "%s%s%s%s%s%s", clearLine, h.prompt, string(h.line),
			underline, h.composition, reset)
	}
	return err
}
