package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiFaint = "\033[2m"

	timeColor = "\033[38;2;148;163;184m"
	keyColor  = "\033[38;2;94;234;212m"
	valColor  = "\033[38;2;226;232;240m"
)

//nolint:gochecknoglobals // static palette shared across encoder instances
var levelPalette = map[zapcore.Level]string{
	zapcore.DebugLevel: "\033[38;2;129;140;248m",
	zapcore.InfoLevel:  "\033[38;2;16;185;129m",
	zapcore.WarnLevel:  "\033[38;2;245;158;11m",
	zapcore.ErrorLevel: "\033[38;2;248;113;113m",
	zapcore.FatalLevel: "\033[38;2;217;70;239m",
}

// prettyEncoder wraps zap's JSON encoder and re-renders each entry as a
// colorized header line followed by indented, field-order-preserving JSON.
type prettyEncoder struct {
	zapcore.Encoder
}

func (e *prettyEncoder) Clone() zapcore.Encoder {
	return &prettyEncoder{Encoder: e.Encoder.Clone()}
}

func newPrettyLogger(cfg *zap.Config) *zap.Logger {
	enc := &prettyEncoder{Encoder: zapcore.NewJSONEncoder(cfg.EncoderConfig)}
	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), cfg.Level)
	return zap.New(core, zap.ErrorOutput(zapcore.AddSync(os.Stderr)))
}

// EncodeEntry formats a log entry with pretty printing and colorization.
// On any decode failure it falls back to the raw JSON line.
func (e *prettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	jsonBuf, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}

	raw := append([]byte(nil), jsonBuf.Bytes()...)
	jsonBuf.Reset()

	payload, decodeErr := decodeOrdered(bytes.TrimSpace(raw))
	if decodeErr != nil {
		_, _ = jsonBuf.Write(raw)
		return jsonBuf, nil
	}

	_, _ = jsonBuf.WriteString(header(entry))
	if err = writeFields(jsonBuf, payload); err != nil {
		return nil, err
	}
	return jsonBuf, nil
}

func header(entry zapcore.Entry) string {
	ts := entry.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	color := levelPalette[entry.Level]
	if color == "" {
		color = levelPalette[zapcore.InfoLevel]
	}

	var b strings.Builder
	b.WriteString(ansiFaint + timeColor + "[" + ts.Format(time.DateTime) + "]" + ansiReset)
	b.WriteByte(' ')
	b.WriteString(ansiBold + color + strings.ToUpper(entry.Level.String()) + ansiReset)
	if entry.LoggerName != "" {
		b.WriteString(" " + ansiFaint + "(" + entry.LoggerName + ")" + ansiReset)
	}
	if entry.Message != "" {
		b.WriteString(" " + valColor + entry.Message + ansiReset)
	}
	b.WriteByte('\n')
	return b.String()
}

func writeFields(buf *buffer.Buffer, payload *orderedmap.OrderedMap[string, any]) error {
	meta := orderedmap.New[string, any]()
	for pair := payload.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case timeKey, levelKey, messageKey, nameKey:
			continue
		default:
			meta.Set(pair.Key, pair.Value)
		}
	}
	if meta.Len() == 0 {
		return nil
	}

	pretty, err := marshalIndented(meta, "", "  ")
	if err != nil {
		return err
	}

	for line := range bytes.Lines(pretty) {
		line = bytes.TrimRight(line, "\n")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if _, err = buf.WriteString(colorizeLine(line) + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func colorizeLine(line []byte) string {
	trimmed := bytes.TrimLeft(line, " ")
	indent := string(line[:len(line)-len(trimmed)])

	colonIdx := bytes.IndexByte(trimmed, ':')
	if colonIdx == -1 {
		return indent + ansiFaint + valColor + string(trimmed) + ansiReset
	}
	return indent + keyColor + string(trimmed[:colonIdx]) + ansiReset +
		":" + ansiFaint + valColor + string(trimmed[colonIdx+1:]) + ansiReset
}

// decodeOrdered unmarshals a JSON object preserving key order.
func decodeOrdered(data []byte) (*orderedmap.OrderedMap[string, any], error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	token, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}
	return decodeObject(dec)
}

var errNotObject = errors.New("payload is not a JSON object")

func decodeObject(dec *json.Decoder) (*orderedmap.OrderedMap[string, any], error) {
	om := orderedmap.New[string, any]()
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyToken.(string)

		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		om.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return om, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	token, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); ok {
		switch delim {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
	}
	return token, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	var arr []any
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func marshalIndented(value any, prefix, indent string) ([]byte, error) {
	switch v := value.(type) {
	case *orderedmap.OrderedMap[string, any]:
		return marshalMap(v, prefix, indent)
	case []any:
		return marshalSlice(v, prefix, indent)
	default:
		return json.Marshal(value)
	}
}

func marshalMap(om *orderedmap.OrderedMap[string, any], prefix, indent string) ([]byte, error) {
	if om.Len() == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	first := true
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteString(",\n")
		}
		first = false

		keyBytes, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, err
		}
		buf.WriteString(prefix + indent)
		buf.Write(keyBytes)
		buf.WriteString(": ")

		valueBytes, err := marshalIndented(pair.Value, prefix+indent, indent)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteString("\n" + prefix + "}")
	return buf.Bytes(), nil
}

func marshalSlice(arr []any, prefix, indent string) ([]byte, error) {
	if len(arr) == 0 {
		return []byte("[]"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, elem := range arr {
		if i > 0 {
			buf.WriteString(",\n")
		}
		elemBytes, err := marshalIndented(elem, prefix+indent, indent)
		if err != nil {
			return nil, err
		}
		buf.WriteString(prefix + indent)
		buf.Write(elemBytes)
	}
	buf.WriteString("\n" + prefix + "]")
	return buf.Bytes(), nil
}
