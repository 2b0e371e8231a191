// Command logcat dumps a coordinator durable log as pretty-printed
// JSON, one record after another, optionally filtered by a gjson path
// expression. It is a read-only diagnostic: it never truncates or
// otherwise mutates the log it opens.
package main

import (
	"fmt"
	"os"

	"collagefc/coordinator"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: logcat <log-dir> [gjson-filter]")
		os.Exit(1)
	}
	dir := os.Args[1]

	log := coordinator.OpenCoordinatorLog(dir)
	defer log.Close()

	records, err := log.ReplayAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		out := raw
		if len(os.Args) > 2 {
			out = []byte(gjson.GetBytes(raw, os.Args[2]).Raw)
		}
		fmt.Println(string(pretty.Pretty(out)))
	}
}
