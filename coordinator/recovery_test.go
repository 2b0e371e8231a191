package coordinator

import (
	"testing"

	"collagefc/configs"

	"github.com/stretchr/testify/assert"
)

func rec(id uint64, decision, fileName string) CoordinatorLogRecord {
	return CoordinatorLogRecord{TransID: id, Decision: decision, FileName: fileName}
}

func TestClassifyPrepareOnlyGoesToAbort(t *testing.T) {
	records := []CoordinatorLogRecord{rec(1, configs.LogPrepare, "a.jpg")}
	toCommit, toAbort := classifyLogRecords(records)
	assert.Empty(t, toCommit)
	assert.Contains(t, toAbort, uint64(1))
}

func TestClassifyCommitWins(t *testing.T) {
	records := []CoordinatorLogRecord{
		rec(1, configs.LogPrepare, "a.jpg"),
		rec(1, configs.LogCommit, "a.jpg"),
	}
	toCommit, toAbort := classifyLogRecords(records)
	assert.Contains(t, toCommit, uint64(1))
	assert.Empty(t, toAbort)
}

func TestClassifyFinishedRetiresTransaction(t *testing.T) {
	records := []CoordinatorLogRecord{
		rec(1, configs.LogPrepare, "a.jpg"),
		rec(1, configs.LogCommit, "a.jpg"),
		rec(1, configs.LogFinished, "a.jpg"),
	}
	toCommit, toAbort := classifyLogRecords(records)
	assert.Empty(t, toCommit)
	assert.Empty(t, toAbort)
}

func TestClassifyExplicitAbort(t *testing.T) {
	records := []CoordinatorLogRecord{
		rec(2, configs.LogPrepare, "b.jpg"),
		rec(2, configs.LogAbort, "b.jpg"),
	}
	toCommit, toAbort := classifyLogRecords(records)
	assert.Empty(t, toCommit)
	assert.Contains(t, toAbort, uint64(2))
}

func TestSerializeDeserializeParticipantMapRoundTrip(t *testing.T) {
	order := []string{"127.0.0.1:6001", "127.0.0.1:6002"}
	grouped := map[string][]string{
		"127.0.0.1:6001": {"a.jpg", "b.jpg"},
		"127.0.0.1:6002": {"c.jpg"},
	}
	s := serializeParticipantMap(order, grouped)
	gotOrder, gotGrouped, err := deserializeParticipantMap(s)
	assert.NoError(t, err)
	assert.Equal(t, order, gotOrder)
	assert.Equal(t, grouped, gotGrouped)
}

func TestSerializeDeserializeEscaping(t *testing.T) {
	order := []string{"host:1"}
	grouped := map[string][]string{"host:1": {"weird,name[x]=y.jpg"}}
	s := serializeParticipantMap(order, grouped)
	gotOrder, gotGrouped, err := deserializeParticipantMap(s)
	assert.NoError(t, err)
	assert.Equal(t, order, gotOrder)
	assert.Equal(t, grouped, gotGrouped)
}

func TestDeserializeEmptyMap(t *testing.T) {
	order, grouped, err := deserializeParticipantMap("{}")
	assert.NoError(t, err)
	assert.Empty(t, order)
	assert.Empty(t, grouped)
}

func TestGroupSourcesPreservesOrderAndSplitsOnLastColon(t *testing.T) {
	order, grouped := GroupSources([]string{
		"127.0.0.1:6001:a.jpg",
		"127.0.0.1:6002:c.jpg",
		"127.0.0.1:6001:b.jpg",
	})
	assert.Equal(t, []string{"127.0.0.1:6001", "127.0.0.1:6002"}, order)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, grouped["127.0.0.1:6001"])
	assert.Equal(t, []string{"c.jpg"}, grouped["127.0.0.1:6002"])
}
