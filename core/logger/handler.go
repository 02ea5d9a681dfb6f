package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as one flat line: dotted group keys,
// durations in milliseconds, empty values dropped, keys in a fixed order.
type structuredHandler struct {
	cfg    handlerConfig
	rank   map[string]int
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = defaultKeyOrder
	}
	rank := make(map[string]int, len(cfg.keyOrder))
	for i, k := range cfg.keyOrder {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}
	return &structuredHandler{cfg: cfg, rank: rank}
}

// Enabled reports whether the handler allows processing the provided level.
func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

// Handle formats the slog.Record and writes it using the configured writer.
func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON

	f := make(fields, 16)
	ts := r.Time.UTC()
	f["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	f["level"] = normalizeLevel(r.Level.String())
	if isJSON {
		f["ts_unix_nano"] = ts.UnixNano()
	}
	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		f.add(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(prefix, a)
		return true
	})
	f.fromContext(ctx)

	if rid := f.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if isJSON {
				f.setDefault("rid_full", rid)
			}
			f["rid"] = compact
		}
	}
	if f.str("event") == "" {
		f["event"] = "unknown"
		if r.Message != "" {
			f["event"] = r.Message
		}
	}
	f.setDefault("component", "app")
	f.normalizeEnums()
	f.pruneEmpty()

	var line []byte
	if isJSON {
		var err error
		if line, err = h.jsonLine(f); err != nil {
			return err
		}
	} else {
		line = h.kvLine(f)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

// WithAttrs returns a shallow copy of the handler enriched with attrs.
func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a shallow copy of the handler with an additional group prefix.
func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// sortedKeys lists keys from the configured order first, the rest alphabetically.
func (h *structuredHandler) sortedKeys(f fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := h.rank[keys[i]]
		rj, jok := h.rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (h *structuredHandler) jsonLine(f fields) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range h.sortedKeys(f) {
		data, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (h *structuredHandler) kvLine(f fields) []byte {
	var buf bytes.Buffer
	for i, k := range h.sortedKeys(f) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(kvValue(f[k]))
	}
	return buf.Bytes()
}

func kvValue(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		s = fmt.Sprint(x)
	}
	if strings.IndexFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

// fields is the flattened record being rendered.
type fields map[string]any

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (f fields) setDefault(key string, v any) {
	if _, ok := f[key]; !ok {
		f[key] = v
	}
}

// add flattens attr under prefix, descending into groups.
func (f fields) add(prefix string, attr slog.Attr) {
	key := attr.Key
	if prefix != "" {
		key = strings.Trim(prefix+"."+key, ".")
	}
	val := attr.Value.Resolve()
	if val.Kind() == slog.KindGroup {
		for _, child := range val.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, v, ok := normalizeValue(key, val); ok {
		f[k] = v
	}
}

// durationKey names a duration field in milliseconds: duration -> duration_ms,
// startup_duration -> startup_duration_ms, timeout -> timeout_ms.
func durationKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func normalizeValue(key string, val slog.Value) (string, any, bool) {
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		if u := val.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, val.Uint64(), true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := val.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	case []string:
		return key, strings.Join(x, ","), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// fromContext copies request scope from ctx without overriding explicit attrs.
func (f fields) fromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	for _, kv := range []struct {
		key string
		val any
		set bool
	}{
		{"rid", RIDFrom(ctx), RIDFrom(ctx) != ""},
		{"transport", TransportFrom(ctx), TransportFrom(ctx) != ""},
		{"user_id", UserIDFrom(ctx), UserIDFrom(ctx) != 0},
		{"update_id", UpdateIDFrom(ctx), UpdateIDFrom(ctx) != 0},
		{"chat_id", ChatIDFrom(ctx), ChatIDFrom(ctx) != 0},
		{"handler", HandlerFrom(ctx), HandlerFrom(ctx) != ""},
		{"menu", MenuFrom(ctx), MenuFrom(ctx) != ""},
	} {
		if kv.set {
			f.setDefault(kv.key, kv.val)
		}
	}
}

func (f fields) normalizeEnums() {
	if s := f.str("status"); s != "" {
		f["status"], _ = oneOf(s, knownStatus)
	}
	if o := f.str("outcome"); o != "" {
		if v, ok := oneOf(o, knownOutcome); ok {
			f["outcome"] = v
		} else {
			delete(f, "outcome")
		}
	}
}

func (f fields) pruneEmpty() {
	for k, v := range f {
		if v == nil {
			delete(f, k)
		} else if s, ok := v.(string); ok && s == "" {
			delete(f, k)
		}
	}
}
