// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package sse splits a Server-Sent Events byte stream into data frames.
package sse

import (
	"bytes"
	"io"
)

// DataPrefix is the field prefix a frame must start with to carry a payload.
const DataPrefix = "data: "

const readSize = 4096

var frameDelim = []byte("\n\n")

// Decoder reads data frames from a Server-Sent Events stream.
//
// Read boundaries never imply frame boundaries: bytes are kept in a carry-over
// buffer until a blank line closes the frame. Line endings are normalized to
// "\n" as they arrive. A trailing "\r" is held back until the next read so that
// a "\r\n" pair split across two reads still counts as one line ending.
type Decoder struct {
	r         io.Reader
	chunk     []byte
	buf       []byte
	pendingCR bool
	err       error
}

// NewDecoder returns a [Decoder] reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:     r,
		chunk: make([]byte, readSize),
	}
}

// Next returns the payload of the next complete frame that starts with [DataPrefix].
//
// The payload has the prefix removed and surrounding whitespace trimmed, and is
// never empty. Frames with another prefix or an empty payload are skipped.
// Next returns [io.EOF] once the stream is exhausted; the unterminated tail, if
// any, stays in [Decoder.Buffered]. Any other read error is returned as is.
func (d *Decoder) Next() ([]byte, error) {
	for {
		if i := bytes.Index(d.buf, frameDelim); i >= 0 {
			frame := d.buf[:i]
			d.buf = d.buf[i+len(frameDelim):]
			if payload, ok := framePayload(frame); ok {
				return payload, nil
			}
			continue
		}

		if d.err != nil {
			return nil, d.err
		}
		d.fill()
	}
}

// Buffered returns the bytes received after the last complete frame.
func (d *Decoder) Buffered() []byte {
	return d.buf
}

func (d *Decoder) fill() {
	n, err := d.r.Read(d.chunk)
	d.normalize(d.chunk[:n])
	if err != nil {
		if d.pendingCR {
			d.buf = append(d.buf, '\n')
			d.pendingCR = false
		}
		d.err = err
	}
}

func (d *Decoder) normalize(p []byte) {
	for _, b := range p {
		if d.pendingCR {
			d.pendingCR = false
			d.buf = append(d.buf, '\n')
			if b == '\n' {
				continue
			}
		}
		if b == '\r' {
			d.pendingCR = true
			continue
		}
		d.buf = append(d.buf, b)
	}
}

func framePayload(frame []byte) ([]byte, bool) {
	frame = bytes.TrimLeft(frame, "\n")
	rest, ok := bytes.CutPrefix(frame, []byte(DataPrefix))
	if !ok {
		return nil, false
	}
	rest = bytes.TrimSpace(rest)
	if len(rest) == 0 {
		return nil, false
	}
	return bytes.Clone(rest), true
}
