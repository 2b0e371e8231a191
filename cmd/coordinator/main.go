// Command coordinator runs the 2PC coordinator node described in §4.4.
// It takes its listening port as its sole argument; transactions are
// started through the coordinator package's StartCommit API by an
// embedding process, not through this CLI.
package main

import (
	"fmt"
	"os"

	"collagefc/coordinator"
	"collagefc/transport"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: coordinator <port>")
		os.Exit(1)
	}
	addr := "127.0.0.1:" + os.Args[1]

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "fatal:", r)
			os.Exit(1)
		}
	}()

	sub := transport.NewTCP(addr)
	c := coordinator.NewCoordinator(addr, sub)
	defer c.Close()

	// Dispatch runs while Recover blocks: the transactions Recover
	// resumes only see their ACKs through it.
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		c.Dispatch()
	}()
	c.Recover()
	<-dispatched
}
