package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/scanarr/internal/tasks"
)

// StreamContentType is the media type of an import progress stream.
const StreamContentType = "text/event-stream"

// frameDelimiter terminates every frame of a progress stream.
const frameDelimiter = "\n\n"

// StreamWriter writes progress events as newline-delimited JSON frames.
//
// Each frame is {"status": string, "progress": int} followed by a blank line and is
// flushed immediately so the client sees it before the next step runs.
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

// NewStreamWriter wraps w. Nothing is written until the first [StreamWriter.Send].
func NewStreamWriter(w http.ResponseWriter) *StreamWriter {
	flusher, _ := w.(http.Flusher)
	return &StreamWriter{w: w, flusher: flusher}
}

// Send writes one frame and flushes it.
func (s *StreamWriter) Send(ev tasks.ProgressEvent) error {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", StreamContentType)
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	frame, err := EncodeFrame(ev)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write progress frame: %w", err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Drain sends every event from events until the channel closes and returns how many were written.
//
// It stops at the first write failure, which means the client went away. The producer
// owns a channel buffered for the whole run, so abandoning it never blocks the workflow.
func (s *StreamWriter) Drain(events <-chan tasks.ProgressEvent) (int, error) {
	sent := 0
	for ev := range events {
		if err := s.Send(ev); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// EncodeFrame renders ev as a single stream frame.
//
// HTML escaping is disabled so emoji and quotes in statuses travel verbatim.
func EncodeFrame(ev tasks.ProgressEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return nil, fmt.Errorf("failed to encode progress event: %w", err)
	}
	// Encode already ended the object with one newline.
	buf.WriteString(frameDelimiter[1:])
	return buf.Bytes(), nil
}

// DecodeFrames splits a complete stream body back into events.
func DecodeFrames(body []byte) ([]tasks.ProgressEvent, error) {
	var events []tasks.ProgressEvent
	for _, chunk := range bytes.Split(body, []byte(frameDelimiter)) {
		chunk = bytes.TrimSpace(chunk)
		if len(chunk) == 0 {
			continue
		}
		var ev tasks.ProgressEvent
		if err := json.Unmarshal(chunk, &ev); err != nil {
			return nil, fmt.Errorf("invalid progress frame %q: %w", chunk, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
