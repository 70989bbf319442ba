package main

import (
	"fmt"
	"io"
	"strings"
)

// ask prints label and reads one line from the input.
func (e *env) ask(label string) (string, error) {
	fmt.Fprintf(e.out, "%s: ", label)
	line, err := e.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// valueOrAsk returns value, or asks for it when it is empty.
func (e *env) valueOrAsk(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return e.ask(label)
}
