package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// PrettyJSONHandler writes each record as an indented JSON object.
// It is meant for reading bot logs by eye after a game, not for volume.
type PrettyJSONHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler

	attrs  []groupedAttr
	groups []string
}

// groupedAttr remembers which groups were open when WithAttrs was called.
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

func NewPrettyJSONHandler(w io.Writer, level slog.Leveler) *PrettyJSONHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &PrettyJSONHandler{w: w, mu: &sync.Mutex{}, level: level}
}

func (h *PrettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	payload := map[string]any{
		"time":  when.Format(time.RFC3339Nano),
		"level": r.Level.String(),
		"msg":   r.Message,
	}

	for _, ga := range h.attrs {
		put(nest(payload, ga.groups), ga.attr)
	}
	target := nest(payload, h.groups)
	r.Attrs(func(a slog.Attr) bool {
		put(target, a)
		return true
	})

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		b = fmt.Appendf(nil, "{%q: %q, %q: %q}", "msg", r.Message, "marshal_error", err.Error())
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(append(b, '\n'))
	return err
}

func (h *PrettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]groupedAttr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, groupedAttr{groups: h.groups, attr: a})
	}
	return &clone
}

func (h *PrettyJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func nest(root map[string]any, groups []string) map[string]any {
	dst := root
	for _, g := range groups {
		child, ok := dst[g].(map[string]any)
		if !ok {
			child = map[string]any{}
			dst[g] = child
		}
		dst = child
	}
	return dst
}

func put(dst map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	key := canonicalKey(a.Key)

	switch v.Kind() {
	case slog.KindGroup:
		target := dst
		if key != "" {
			target = nest(dst, []string{key})
		}
		for _, ga := range v.Group() {
			put(target, ga)
		}
	case slog.KindDuration:
		dst[key] = v.Duration().String()
	case slog.KindTime:
		dst[key] = v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			dst[key] = err.Error()
			return
		}
		dst[key] = v.Any()
	default:
		dst[key] = v.Any()
	}
}
