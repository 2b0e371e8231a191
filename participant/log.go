package participant

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"collagefc/configs"

	"github.com/tidwall/wal"
)

// ParticipantLogRecord is one durable decision record for a single
// fileName, §4.3.
type ParticipantLogRecord struct {
	Decision string
	FileName string
	Sources  []string
}

// ParticipantLog is a participant's write-ahead log. Grounded the same
// way as the coordinator's (collagefc/coordinator.CoordinatorLog): a
// tidwall/wal directory written synchronously per record rather than
// batched.
type ParticipantLog struct {
	mu        sync.Mutex
	dir       string
	log       *wal.Log
	lastIndex uint64
}

func OpenParticipantLog(dir string) *ParticipantLog {
	l, err := wal.Open(dir, nil)
	configs.CheckError(err)
	last, err := l.LastIndex()
	configs.CheckError(err)
	return &ParticipantLog{dir: dir, log: l, lastIndex: last}
}

func (l *ParticipantLog) append(decision, fileName string, sources []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastIndex++
	line := fmt.Sprintf("%s\t%s\t%s", decision, fileName, strings.Join(sources, ","))
	configs.CheckError(l.log.Write(l.lastIndex, []byte(line)))
}

func (l *ParticipantLog) WriteAgree(fileName string, sources []string) {
	l.append(configs.LogAgree, fileName, sources)
}

func (l *ParticipantLog) WriteReject(fileName string, sources []string) {
	l.append(configs.LogReject, fileName, sources)
}

func (l *ParticipantLog) WriteCommit(fileName string, sources []string) {
	l.append(configs.LogCommitApplied, fileName, sources)
}

func (l *ParticipantLog) WriteAbort(fileName string, sources []string) {
	l.append(configs.LogAbortApplied, fileName, sources)
}

func (l *ParticipantLog) WriteFinish(fileName string, sources []string) {
	l.append(configs.LogFinish, fileName, sources)
}

// ReplayLastPerFile returns, for every fileName ever logged, the most
// recent record — the state §4.7's recovery driver needs, since only
// the last decision for a given fileName matters.
func (l *ParticipantLog) ReplayLastPerFile() (map[string]ParticipantLogRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	first, err := l.log.FirstIndex()
	if err != nil {
		return nil, err
	}
	last, err := l.log.LastIndex()
	if err != nil {
		return nil, err
	}
	result := map[string]ParticipantLogRecord{}
	if first == 0 && last == 0 {
		return result, nil
	}
	for idx := first; idx <= last; idx++ {
		data, err := l.log.Read(idx)
		if err != nil {
			return nil, err
		}
		rec, perr := parseParticipantLogLine(string(data))
		if perr != nil {
			configs.Warn(false, "dropping malformed participant log line: "+perr.Error())
			continue
		}
		result[rec.FileName] = rec
	}
	return result, nil
}

func (l *ParticipantLog) TruncateAndReopen() {
	l.mu.Lock()
	defer l.mu.Unlock()
	configs.CheckError(l.log.Close())
	configs.CheckError(os.RemoveAll(l.dir))
	log, err := wal.Open(l.dir, nil)
	configs.CheckError(err)
	l.log = log
	l.lastIndex = 0
}

func (l *ParticipantLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	configs.CheckError(l.log.Close())
}

func parseParticipantLogLine(line string) (ParticipantLogRecord, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return ParticipantLogRecord{}, fmt.Errorf("expected 3 tab-separated fields, got %d", len(parts))
	}
	var sources []string
	if parts[2] != "" {
		sources = strings.Split(parts[2], ",")
	}
	return ParticipantLogRecord{Decision: parts[0], FileName: parts[1], Sources: sources}, nil
}
