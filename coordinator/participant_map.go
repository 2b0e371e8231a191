package coordinator

import "strings"

// GroupSources groups the submission's `address:filename` tuples by
// address, preserving first-seen order both across addresses and
// within each address's file list, per §3's participantMap contract.
// Addresses are themselves host:port strings, so the split happens on
// the last colon rather than the first.
func GroupSources(sources []string) (order []string, grouped map[string][]string) {
	grouped = make(map[string][]string)
	for _, s := range sources {
		addr, file, ok := splitAddrFile(s)
		if !ok {
			continue
		}
		if _, seen := grouped[addr]; !seen {
			order = append(order, addr)
		}
		grouped[addr] = append(grouped[addr], file)
	}
	return order, grouped
}

func splitAddrFile(s string) (addr string, file string, ok bool) {
	i := strings.LastIndex(s, ":")
	if i < 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// sourcesKey builds a stable key from an ordered source list, used to
// attribute an inbound VOTE/ACK back to the participant it came from:
// the coordinator echoes each participant's own source sub-list in
// every message it sends that participant, and the participant echoes
// it back unchanged, since the wire record carries no sender address.
func sourcesKey(sources []string) string {
	return strings.Join(sources, "\x1f")
}

func buildSourcesIndex(order []string, grouped map[string][]string) map[string]string {
	idx := make(map[string]string, len(order))
	for _, addr := range order {
		idx[sourcesKey(grouped[addr])] = addr
	}
	return idx
}
