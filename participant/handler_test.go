package participant

import (
	"os"
	"testing"

	"collagefc/configs"
	"collagefc/transport"
	"collagefc/wire"

	"github.com/stretchr/testify/assert"
)

func withTempDir(t *testing.T) func() {
	dir := t.TempDir()
	old, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	return func() { os.Chdir(old) }
}

func alwaysApprove(content []byte, sources []string) bool { return true }

func TestOnPrepareVotesCommitWhenFilesPresent(t *testing.T) {
	restore := withTempDir(t)
	defer restore()
	assert.NoError(t, os.WriteFile("a.jpg", []byte("x"), 0o644))

	net := transport.NewMemoryNetwork()
	coordSub := net.Bind("coord")
	p := NewParticipant("1", "p1", "coord", net.Bind("p1"), alwaysApprove)
	defer p.Close()

	p.handle(&wire.Message{Type: configs.Prepare, FileName: "out.jpg", Sources: []string{"a.jpg"}})

	_, payload, ok := coordSub.Receive()
	assert.True(t, ok)
	reply, err := wire.Decode(payload)
	assert.NoError(t, err)
	assert.Equal(t, configs.VoteCommit, reply.Type)
	assert.True(t, p.locks.AnyLocked([]string{"a.jpg"}))
}

func TestOnPrepareVotesAbortWhenFileMissing(t *testing.T) {
	restore := withTempDir(t)
	defer restore()

	net := transport.NewMemoryNetwork()
	coordSub := net.Bind("coord")
	p := NewParticipant("1", "p1", "coord", net.Bind("p1"), alwaysApprove)
	defer p.Close()

	p.handle(&wire.Message{Type: configs.Prepare, FileName: "out.jpg", Sources: []string{"missing.jpg"}})

	_, payload, ok := coordSub.Receive()
	assert.True(t, ok)
	reply, err := wire.Decode(payload)
	assert.NoError(t, err)
	assert.Equal(t, configs.VoteAbort, reply.Type)
	assert.False(t, p.locks.AnyLocked([]string{"missing.jpg"}))
}

func TestOnPrepareVotesAbortWhenAlreadyLocked(t *testing.T) {
	restore := withTempDir(t)
	defer restore()
	assert.NoError(t, os.WriteFile("a.jpg", []byte("x"), 0o644))

	net := transport.NewMemoryNetwork()
	coordSub := net.Bind("coord")
	p := NewParticipant("1", "p1", "coord", net.Bind("p1"), alwaysApprove)
	defer p.Close()
	p.locks.Lock([]string{"a.jpg"})

	p.handle(&wire.Message{Type: configs.Prepare, FileName: "out.jpg", Sources: []string{"a.jpg"}})

	_, payload, _ := coordSub.Receive()
	reply, _ := wire.Decode(payload)
	assert.Equal(t, configs.VoteAbort, reply.Type)
}

func TestOnPrepareVotesAbortWhenOracleDeclines(t *testing.T) {
	restore := withTempDir(t)
	defer restore()
	assert.NoError(t, os.WriteFile("a.jpg", []byte("x"), 0o644))

	net := transport.NewMemoryNetwork()
	coordSub := net.Bind("coord")
	p := NewParticipant("1", "p1", "coord", net.Bind("p1"), func(content []byte, sources []string) bool { return false })
	defer p.Close()

	p.handle(&wire.Message{Type: configs.Prepare, FileName: "out.jpg", Sources: []string{"a.jpg"}})

	_, payload, _ := coordSub.Receive()
	reply, _ := wire.Decode(payload)
	assert.Equal(t, configs.VoteAbort, reply.Type)
	assert.False(t, p.locks.AnyLocked([]string{"a.jpg"}))
}

func TestOnDecisionCommitDeletesSourcesAndAcks(t *testing.T) {
	restore := withTempDir(t)
	defer restore()
	assert.NoError(t, os.WriteFile("a.jpg", []byte("x"), 0o644))

	net := transport.NewMemoryNetwork()
	coordSub := net.Bind("coord")
	p := NewParticipant("1", "p1", "coord", net.Bind("p1"), alwaysApprove)
	defer p.Close()
	p.locks.Lock([]string{"a.jpg"})

	p.handle(&wire.Message{Type: configs.CommitSuc, FileName: "out.jpg", Sources: []string{"a.jpg"}})

	_, payload, ok := coordSub.Receive()
	assert.True(t, ok)
	reply, err := wire.Decode(payload)
	assert.NoError(t, err)
	assert.Equal(t, configs.Ack, reply.Type)
	_, statErr := os.Stat("a.jpg")
	assert.True(t, os.IsNotExist(statErr))
	assert.False(t, p.locks.AnyLocked([]string{"a.jpg"}))
}

func TestOnDecisionIsIdempotent(t *testing.T) {
	restore := withTempDir(t)
	defer restore()
	assert.NoError(t, os.WriteFile("a.jpg", []byte("x"), 0o644))

	net := transport.NewMemoryNetwork()
	coordSub := net.Bind("coord")
	p := NewParticipant("1", "p1", "coord", net.Bind("p1"), alwaysApprove)
	defer p.Close()
	p.locks.Lock([]string{"a.jpg"})

	msg := &wire.Message{Type: configs.CommitSuc, FileName: "out.jpg", Sources: []string{"a.jpg"}}
	p.handle(msg)
	p.handle(msg) // duplicate decision delivery: must not panic or error

	for i := 0; i < 2; i++ {
		_, payload, ok := coordSub.Receive()
		assert.True(t, ok)
		reply, err := wire.Decode(payload)
		assert.NoError(t, err)
		assert.Equal(t, configs.Ack, reply.Type)
	}
}

func TestOnDecisionAbortReleasesLockWithoutDeleting(t *testing.T) {
	restore := withTempDir(t)
	defer restore()
	assert.NoError(t, os.WriteFile("a.jpg", []byte("x"), 0o644))

	net := transport.NewMemoryNetwork()
	coordSub := net.Bind("coord")
	p := NewParticipant("1", "p1", "coord", net.Bind("p1"), alwaysApprove)
	defer p.Close()
	p.locks.Lock([]string{"a.jpg"})

	p.handle(&wire.Message{Type: configs.CommitFail, FileName: "out.jpg", Sources: []string{"a.jpg"}})

	_, payload, ok := coordSub.Receive()
	assert.True(t, ok)
	reply, _ := wire.Decode(payload)
	assert.Equal(t, configs.Ack, reply.Type)
	_, statErr := os.Stat("a.jpg")
	assert.NoError(t, statErr)
	assert.False(t, p.locks.AnyLocked([]string{"a.jpg"}))
}
