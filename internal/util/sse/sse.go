// [FILE] internal/util/sse/sse.go
// Writer Server-Sent Events untuk stream hasil kalkulasi panjang (sweep gas lift).

package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

// New men-set header SSE + no-cache. Flusher boleh nil (mis. recorder di test).
func New(w http.ResponseWriter) *Writer {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Nginx: disable buffering
	f, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: f}
}

// Event menulis satu event; string dikirim apa adanya, selain itu di-encode JSON.
// Setiap event diberi id berurutan mulai 1.
func (s *Writer) Event(event string, v any) error {
	var payload string
	switch data := v.(type) {
	case string:
		payload = data
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		payload = string(b)
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\n", s.seq); err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.Flush()
	return nil
}

// Comment mengirim baris komentar (keep-alive), tidak dihitung sebagai event.
func (s *Writer) Comment(text string) {
	fmt.Fprintf(s.w, ": %s\n\n", text)
	s.Flush()
}

func (s *Writer) Flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
