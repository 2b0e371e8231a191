// Command participant runs a single 2PC participant node, §4.7. It
// takes its listening port and a node id used to name its durable log
// file. The coordinator's address is read from the JSON address book
// at configs.AddressBookLocation.
package main

import (
	"fmt"
	"os"

	"collagefc/configs"
	"collagefc/participant"
	"collagefc/transport"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: participant <port> <id>")
		os.Exit(1)
	}
	port, id := os.Args[1], os.Args[2]
	addr := "127.0.0.1:" + port

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "fatal:", r)
			os.Exit(1)
		}
	}()

	book, err := configs.LoadAddressBook(configs.AddressBookLocation)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal: loading address book:", err)
		os.Exit(1)
	}

	sub := transport.NewTCP(addr)
	// The default oracle approves every PREPARE; a deployment that
	// needs a human or policy decision replaces it with its own
	// transport.Oracle before calling NewParticipant.
	oracle := func(content []byte, sources []string) bool { return true }
	p := participant.NewParticipant(id, addr, book.Coordinator, sub, oracle)
	defer p.Close()

	p.Recover()
	p.Run()
}
