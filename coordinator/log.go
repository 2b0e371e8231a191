package coordinator

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"collagefc/configs"

	"github.com/tidwall/wal"
)

// CoordinatorLogRecord is one durable decision record, §4.2: the
// transaction it names, the decision taken, and the participantMap
// that was in force when the record was written.
type CoordinatorLogRecord struct {
	TransID  uint64
	Decision string
	FileName string
	Order    []string
	Grouped  map[string][]string
}

// CoordinatorLog is the coordinator's write-ahead log. Grounded on the
// teacher's LogManager (network/coordinator/log_manager.go), which
// also wraps tidwall/wal, but adapted to write every record
// synchronously rather than batching on a timer: the teacher's
// localBatchSyncLogger amortizes fsync cost across a LogBatchInterval
// window, which this protocol's "durable before acted upon" invariant
// (§4.2) can't tolerate. wal's own torn-tail discard on Open already
// gives the "any prefix of a crash" replay guarantee a synchronous
// single-entry writer needs.
type CoordinatorLog struct {
	mu        sync.Mutex
	dir       string
	log       *wal.Log
	lastIndex uint64
}

// OpenCoordinatorLog opens (or creates) the log directory at dir.
func OpenCoordinatorLog(dir string) *CoordinatorLog {
	l, err := wal.Open(dir, nil)
	configs.CheckError(err)
	last, err := l.LastIndex()
	configs.CheckError(err)
	return &CoordinatorLog{dir: dir, log: l, lastIndex: last}
}

func (c *CoordinatorLog) append(transID uint64, decision, fileName string, order []string, grouped map[string][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastIndex++
	line := fmt.Sprintf("%d\t%s\t%s\t%s", transID, decision, fileName, serializeParticipantMap(order, grouped))
	configs.CheckError(c.log.Write(c.lastIndex, []byte(line)))
}

func (c *CoordinatorLog) WritePrepare(transID uint64, fileName string, order []string, grouped map[string][]string) {
	c.append(transID, configs.LogPrepare, fileName, order, grouped)
}

func (c *CoordinatorLog) WriteCommit(transID uint64, fileName string, order []string, grouped map[string][]string) {
	c.append(transID, configs.LogCommit, fileName, order, grouped)
}

func (c *CoordinatorLog) WriteAbort(transID uint64, fileName string, order []string, grouped map[string][]string) {
	c.append(transID, configs.LogAbort, fileName, order, grouped)
}

func (c *CoordinatorLog) WriteFinished(transID uint64, fileName string, order []string, grouped map[string][]string) {
	c.append(transID, configs.LogFinished, fileName, order, grouped)
}

// ReplayAll returns every record currently in the log, oldest first.
// A line that fails to parse is dropped with a warning rather than
// aborting recovery: the participantMap of a malformed tail record is
// unrecoverable, but the records around it still are.
func (c *CoordinatorLog) ReplayAll() ([]CoordinatorLogRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first, err := c.log.FirstIndex()
	if err != nil {
		return nil, err
	}
	last, err := c.log.LastIndex()
	if err != nil {
		return nil, err
	}
	if first == 0 && last == 0 {
		return nil, nil
	}
	var records []CoordinatorLogRecord
	for idx := first; idx <= last; idx++ {
		data, err := c.log.Read(idx)
		if err != nil {
			return nil, err
		}
		rec, perr := parseCoordinatorLogLine(string(data))
		if perr != nil {
			configs.Warn(false, "dropping malformed coordinator log line: "+perr.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// TruncateAndReopen discards the entire log and starts a fresh one,
// done once recovery has folded every pending transaction to a
// terminal state (§4.6).
func (c *CoordinatorLog) TruncateAndReopen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	configs.CheckError(c.log.Close())
	configs.CheckError(os.RemoveAll(c.dir))
	l, err := wal.Open(c.dir, nil)
	configs.CheckError(err)
	c.log = l
	c.lastIndex = 0
}

func (c *CoordinatorLog) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	configs.CheckError(c.log.Close())
}

func parseCoordinatorLogLine(line string) (CoordinatorLogRecord, error) {
	parts := strings.SplitN(line, "\t", 4)
	if len(parts) != 4 {
		return CoordinatorLogRecord{}, fmt.Errorf("expected 4 tab-separated fields, got %d", len(parts))
	}
	var transID uint64
	if _, err := fmt.Sscanf(parts[0], "%d", &transID); err != nil {
		return CoordinatorLogRecord{}, err
	}
	order, grouped, err := deserializeParticipantMap(parts[3])
	if err != nil {
		return CoordinatorLogRecord{}, err
	}
	return CoordinatorLogRecord{
		TransID:  transID,
		Decision: parts[1],
		FileName: parts[2],
		Order:    order,
		Grouped:  grouped,
	}, nil
}

// serializeParticipantMap renders the grammar `{addr1=[f1, f2], addr2=[f3]}`,
// with `\`, `=`, `,`, `[`, `]` backslash-escaped in addresses and
// filenames.
func serializeParticipantMap(order []string, grouped map[string][]string) string {
	parts := make([]string, 0, len(order))
	for _, addr := range order {
		files := grouped[addr]
		escaped := make([]string, len(files))
		for i, f := range files {
			escaped[i] = escapeToken(f)
		}
		parts = append(parts, escapeToken(addr)+"=["+strings.Join(escaped, ", ")+"]")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func escapeToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '=', ',', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// deserializeParticipantMap is the exact inverse of serializeParticipantMap.
func deserializeParticipantMap(s string) ([]string, map[string][]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, nil, fmt.Errorf("invalid participant map %q", s)
	}
	inner := s[1 : len(s)-1]
	n := len(inner)
	i := 0

	readToken := func(stop string) string {
		var b strings.Builder
		for i < n {
			c := inner[i]
			if c == '\\' && i+1 < n {
				b.WriteByte(inner[i+1])
				i += 2
				continue
			}
			if strings.IndexByte(stop, c) >= 0 {
				break
			}
			b.WriteByte(c)
			i++
		}
		return b.String()
	}

	var order []string
	grouped := make(map[string][]string)
	for i < n {
		for i < n && inner[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		addr := readToken("=")
		if i >= n || inner[i] != '=' {
			return nil, nil, fmt.Errorf("expected '=' in %q", s)
		}
		i++
		if i >= n || inner[i] != '[' {
			return nil, nil, fmt.Errorf("expected '[' in %q", s)
		}
		i++
		var files []string
		for {
			for i < n && inner[i] == ' ' {
				i++
			}
			if i < n && inner[i] == ']' {
				i++
				break
			}
			if i >= n {
				return nil, nil, fmt.Errorf("unterminated file list in %q", s)
			}
			files = append(files, readToken(",]"))
			if i < n && inner[i] == ',' {
				i++
			}
		}
		order = append(order, addr)
		grouped[addr] = files
		for i < n && inner[i] == ' ' {
			i++
		}
		if i < n && inner[i] == ',' {
			i++
		}
	}
	return order, grouped, nil
}
