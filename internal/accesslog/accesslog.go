/* accesslog reads nginx access logs and replays them through the threat rules */

package accesslog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pynezz/scriptshield/internal/threat"
	"github.com/pynezz/scriptshield/internal/util"
)

// TimeLayout is nginx's $time_local.
const TimeLayout = "02/Jan/2006:15:04:05 -0700"

// maxLine caps a single log line; request bodies can be long. Longer lines
// are skipped.
const maxLine = 1 << 20

/*
Entry is one line of the standard_json log format:

	log_format standard_json escape=json
	  '{'
	    '"time_local":"$time_local",'
	    '"remote_addr":"$remote_addr",'
	    '"remote_user":"$remote_user",'
	    '"request":"$request",'
	    '"status": "$status",'
	    '"body_bytes_sent":"$body_bytes_sent",'
	    '"request_time":"$request_time",'
	    '"http_referrer":"$http_referer",'
	    '"http_user_agent":"$http_user_agent",'
	    '"request_body":"$request_body"'
	  '}';
*/
type Entry struct {
	TimeLocal     string `json:"time_local"`
	RemoteAddr    string `json:"remote_addr"`
	RemoteUser    string `json:"remote_user"`
	Request       string `json:"request"`
	Status        string `json:"status"`
	BodyBytesSent string `json:"body_bytes_sent"`
	RequestTime   string `json:"request_time"`
	HttpReferer   string `json:"http_referrer"`
	HttpUserAgent string `json:"http_user_agent"`
	RequestBody   string `json:"request_body"`
}

// Parse decodes a single JSON log line.
func Parse(line string) (Entry, error) {
	var e Entry
	if err := json.NewDecoder(strings.NewReader(line)).Decode(&e); err != nil {
		return Entry{}, err
	}
	if e.Request == "" {
		return Entry{}, fmt.Errorf("missing request")
	}
	return e, nil
}

// Event converts the entry to what the rules inspect. The request line is
// split into method, path and query; a malformed line keeps the raw text as
// the path so path rules still see it.
func (e Entry) Event() threat.Event {
	ev := threat.Event{
		UserAgent: e.HttpUserAgent,
		IP:        e.RemoteAddr,
	}

	parts := strings.Fields(e.Request)
	switch {
	case len(parts) >= 2:
		ev.Method = parts[0]
		ev.Path = parts[1]
	default:
		ev.Path = e.Request
	}
	if i := strings.IndexByte(ev.Path, '?'); i >= 0 {
		ev.Path, ev.Query = ev.Path[:i], ev.Path[i+1:]
	}

	if status, err := strconv.Atoi(e.Status); err == nil {
		ev.Status = status
	}
	if t, err := time.Parse(TimeLayout, e.TimeLocal); err == nil {
		ev.At = t.UTC()
	}
	return ev
}

// Report summarises a scan.
type Report struct {
	Lines   int
	Skipped int
	Hits    int
	ByRule  map[string]int
	ByIP    map[string]int
}

// Rules returns the rule titles ordered by hit count, most first.
func (r Report) Rules() []string {
	titles := make([]string, 0, len(r.ByRule))
	for t := range r.ByRule {
		titles = append(titles, t)
	}
	sort.Slice(titles, func(i, j int) bool {
		if r.ByRule[titles[i]] != r.ByRule[titles[j]] {
			return r.ByRule[titles[i]] > r.ByRule[titles[j]]
		}
		return titles[i] < titles[j]
	})
	return titles
}

// readLine returns the next line without its newline. Lines over maxLine are
// drained and reported as too long.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return string(buf), tooLong, err
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > maxLine {
				tooLong, buf = true, nil
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// Scan reads log lines from r, inspects each one and hands hits to rec.
// Lines that do not parse or exceed maxLine are counted and skipped. rec
// may be nil for a dry run.
func Scan(ctx context.Context, r io.Reader, d *threat.Detector, rec threat.Recorder) (Report, error) {
	report := Report{ByRule: map[string]int{}, ByIP: map[string]int{}}

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		raw, tooLong, err := readLine(br)
		if err == io.EOF {
			return report, nil
		}
		if err != nil {
			return report, err
		}

		line := strings.TrimSpace(raw)
		if line == "" && !tooLong {
			continue
		}
		report.Lines++
		if tooLong {
			report.Skipped++
			util.PrintDebugf("line %d: longer than %d bytes", report.Lines, maxLine)
			continue
		}

		entry, err := Parse(line)
		if err != nil {
			report.Skipped++
			util.PrintDebugf("line %d: %v", report.Lines, err)
			continue
		}

		ev := entry.Event()
		matches, err := d.Inspect(ctx, ev)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", report.Lines, err)
		}
		for _, m := range matches {
			report.Hits++
			report.ByRule[m.Title]++
			report.ByIP[ev.IP]++
			if rec == nil {
				continue
			}
			if err := rec.RecordThreat(ctx, m, ev); err != nil {
				return report, fmt.Errorf("record line %d: %w", report.Lines, err)
			}
		}
	}
}

// ScanFile is Scan over the file at path.
func ScanFile(ctx context.Context, path string, d *threat.Detector, rec threat.Recorder) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()
	return Scan(ctx, f, d, rec)
}
