// Package integration exercises the coordinator and a participant over
// real TCP loopback connections rather than the in-process memory
// substrate the unit tests use, so the transport.TCP accept/dial path
// itself is covered end to end.
package integration

import (
	"os"
	"testing"
	"time"

	"collagefc/configs"
	"collagefc/coordinator"
	"collagefc/participant"
	"collagefc/transport"

	"github.com/stretchr/testify/assert"
)

func TestEndToEndHappyPathOverTCP(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	defer os.Chdir(old)

	configs.VotingWindow = 500 * time.Millisecond
	configs.RetransmissionWindow = 200 * time.Millisecond

	coordAddr := "127.0.0.1:18801"
	partAddr := "127.0.0.1:18802"

	assert.NoError(t, os.WriteFile("a1.jpg", []byte("one"), 0o644))
	assert.NoError(t, os.WriteFile("b1.jpg", []byte("two"), 0o644))

	coordSub := transport.NewTCP(coordAddr)
	c := coordinator.NewCoordinator(coordAddr, coordSub)
	defer c.Close()
	go c.Dispatch()

	partSub := transport.NewTCP(partAddr)
	p := participant.NewParticipant("1", partAddr, coordAddr, partSub, func([]byte, []string) bool { return true })
	defer p.Close()
	go p.Run()

	time.Sleep(50 * time.Millisecond) // let both listeners come up

	err = c.StartCommit("out.jpg", []byte("collage-bytes"), []string{
		partAddr + ":a1.jpg",
		partAddr + ":b1.jpg",
	})
	assert.NoError(t, err)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, statErr := os.Stat("out.jpg"); statErr == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	content, err := os.ReadFile("out.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "collage-bytes", string(content))

	_, err = os.Stat("a1.jpg")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat("b1.jpg")
	assert.True(t, os.IsNotExist(err))
}
