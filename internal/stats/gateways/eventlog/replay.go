package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

const maxLineBytes = 1 << 20

// Sink receives replayed events. *classifier.Aggregator satisfies it.
type Sink interface {
	NewQuery(flags domain.Flags, name string, addr netip.Addr, typeLabel string, key int)
	NewQueryAt(at time.Time, flags domain.Flags, name string, addr netip.Addr, typeLabel string, key int)
	Forwarded(flags domain.Flags, addr netip.Addr, key int)
	Reply(flags domain.Flags, name string, addr netip.Addr, ttl uint32, key int)
	CacheAnswered(flags domain.Flags, name string, addr netip.Addr, source string, ttl uint32, key int)
	DnssecResult(code int, key int)
	Reload()
	ReadHosts(filename string, count int)
}

// Result summarizes a replay.
type Result struct {
	Applied int
	Skipped int
}

// Replay reads r line by line and dispatches each event to sink. Blank
// lines are ignored and malformed lines are logged and counted as skipped.
// It stops early when ctx is cancelled, returning ctx.Err().
func Replay(ctx context.Context, r io.Reader, sink Sink, logger log.Logger) (Result, error) {
	var res Result
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return res, err
		}
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			res.Skipped++
			logger.Warn(map[string]any{"line": line, "error": err.Error()}, "event_decode_failed")
			continue
		}
		if err := Dispatch(ev, sink); err != nil {
			res.Skipped++
			logger.Warn(map[string]any{"line": line, "event": ev.Kind, "error": err.Error()}, "event_rejected")
			continue
		}
		res.Applied++
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read event log: %w", err)
	}
	return res, nil
}

// Dispatch applies a single event to sink. Query events carrying a
// timestamp are bucketed at that time rather than on arrival.
func Dispatch(ev Event, sink Sink) error {
	addr, err := ev.address()
	if err != nil {
		return err
	}
	flags := domain.DecodeFlags(ev.Flags)
	switch ev.Kind {
	case KindQuery:
		if at := ev.observed(); !at.IsZero() {
			sink.NewQueryAt(at, flags, ev.Name, addr, ev.Type, ev.ID)
			return nil
		}
		sink.NewQuery(flags, ev.Name, addr, ev.Type, ev.ID)
	case KindForwarded:
		sink.Forwarded(flags, addr, ev.ID)
	case KindReply:
		sink.Reply(flags, ev.Name, addr, ev.TTL, ev.ID)
	case KindCache:
		sink.CacheAnswered(flags, ev.Name, addr, ev.Source, ev.TTL, ev.ID)
	case KindDNSSEC:
		sink.DnssecResult(ev.Status, ev.ID)
	case KindReload:
		sink.Reload()
	case KindReadHosts:
		sink.ReadHosts(ev.File, ev.Count)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	return nil
}
