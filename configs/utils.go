package configs

import (
	"fmt"
	"github.com/goccy/go-json"
	"log"
	"time"
)

func logOrPrint(format string, a ...interface{}) {
	msg := time.Now().Format("15:04:05.00") + " <---> " + format + "\n"
	if LogToFile {
		log.Printf(msg, a...)
	} else {
		fmt.Printf(msg, a...)
	}
}

func DPrintf(format string, a ...interface{}) {
	if ShowDebugInfo {
		logOrPrint(format, a...)
	}
}

func TPrintf(format string, a ...interface{}) {
	if ShowTestInfo {
		logOrPrint(format, a...)
	}
}

// TxnPrintf prefixes a debug line with the transaction's fingerprint.
func TxnPrintf(fileName string, format string, a ...interface{}) {
	TPrintf(fileName+": "+format, a...)
}

func JToString(v interface{}) string {
	byt, _ := json.Marshal(v)
	return string(byt)
}

func JPrint(v interface{}) {
	byt, _ := json.Marshal(v)
	fmt.Println(string(byt))
}

// Assert panics when cond is false; used for invariants that should
// never be violated by a correct caller.
func Assert(cond bool, msg string) bool {
	if !cond {
		panic("[ERROR] assertion failed: " + msg)
	}
	return cond
}

// Warn logs msg when cond is false but does not panic, for tolerated
// faults (e.g. a best-effort file delete that failed).
func Warn(cond bool, msg string) bool {
	if ShowWarnings && !cond {
		logOrPrint("[WARNING] %s", msg)
	}
	return cond
}

// CheckError is fatal to the process: a durable-log write failure has
// no recovery path except a restart-driven replay.
func CheckError(err error) {
	if err != nil {
		panic(err.Error())
	}
}
