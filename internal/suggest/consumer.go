package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mezotv/skill-tree/internal/llm"
)

// LineKind classifies the outcome of one complete line.
type LineKind int

const (
	LineSkipped LineKind = iota
	LineParsed
	LineInvalid
)

func (k LineKind) String() string {
	switch k {
	case LineSkipped:
		return "skipped"
	case LineParsed:
		return "parsed"
	case LineInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// LineResult is the outcome of parsing one line. Envelope is set only for
// LineParsed; Reason explains skipped and invalid lines.
type LineResult struct {
	Kind     LineKind
	Line     string
	Envelope *Envelope
	Reason   string
}

// Consumer turns a chunked byte stream into suggestion envelopes.
// The zero value is usable and reports nothing.
type Consumer struct {
	// OnUpdate is called with every valid envelope, in arrival order.
	OnUpdate func(Envelope)

	// OnLine observes every line outcome.
	OnLine func(LineResult)

	// Logger receives line outcomes at debug level. May be nil.
	Logger *log.Logger
}

// Consume reads r until EOF and returns the last valid envelope (nil when
// none was seen) and the number of bytes read from r. The error is non-nil
// only when reading fails or ctx is done; malformed lines are absorbed.
func (c *Consumer) Consume(ctx context.Context, r io.Reader) (*Envelope, int64, error) {
	counter := &countingReader{r: r}
	// The UTF-8 decoder keeps runes split across reads intact and
	// replaces invalid bytes with U+FFFD.
	decoded := transform.NewReader(counter, unicode.UTF8.NewDecoder())

	var (
		lines lineBuffer
		last  *Envelope
		buf   = make([]byte, 4096)
	)
	handle := func(line string) {
		if env := c.handle(line); env != nil {
			last = env
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return last, counter.n, err
		}

		n, err := decoded.Read(buf)
		if n > 0 {
			lines.write(buf[:n])
			for line, ok := lines.next(); ok; line, ok = lines.next() {
				handle(line)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return last, counter.n, err
		}
	}

	if tail, ok := lines.flush(); ok {
		handle(tail)
	}
	return last, counter.n, nil
}

func (c *Consumer) handle(line string) *Envelope {
	res := ParseLine(line)

	if c.Logger != nil {
		switch res.Kind {
		case LineParsed:
			c.Logger.Debug("suggestion envelope", "jobs", len(res.Envelope.Jobs))
		default:
			c.Logger.Debug("suggestion line ignored", "kind", res.Kind, "reason", res.Reason)
		}
	}
	if c.OnLine != nil {
		c.OnLine(res)
	}
	if res.Kind != LineParsed {
		return nil
	}
	if c.OnUpdate != nil {
		c.OnUpdate(*res.Envelope)
	}
	return res.Envelope
}

// ParseLine classifies a single line of the suggestion stream.
func ParseLine(line string) LineResult {
	res := LineResult{Line: line}

	text := strings.TrimSpace(line)
	if text == "" {
		res.Reason = "empty line"
		return res
	}

	if rest, ok := strings.CutPrefix(text, "data:"); ok {
		text = strings.TrimSpace(rest)
		if text == "" {
			res.Reason = "empty data field"
			return res
		}
	} else if isSSEField(text) {
		res.Reason = "event-stream field"
		return res
	}

	if text == "[DONE]" {
		res.Reason = "end of stream marker"
		return res
	}

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		res.Kind = LineInvalid
		res.Reason = "malformed json"
		return res
	}
	if err := llm.ValidateValue(EnvelopeSchema, raw); err != nil {
		res.Kind = LineInvalid
		res.Reason = err.Error()
		return res
	}

	var env Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		res.Kind = LineInvalid
		res.Reason = err.Error()
		return res
	}
	if env.Jobs == nil {
		env.Jobs = []Job{}
	}

	res.Kind = LineParsed
	res.Envelope = &env
	return res
}

func isSSEField(text string) bool {
	if strings.HasPrefix(text, ":") {
		return true
	}
	for _, f := range []string{"event:", "id:", "retry:"} {
		if strings.HasPrefix(text, f) {
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
