package configs

import "time"

// Debugging parameters.
var (
	ShowDebugInfo = false
	ShowWarnings  = ShowDebugInfo
	ShowTestInfo  = ShowDebugInfo
	LogToFile     = false
)

// Message type codes, the single on-wire record's `type` field.
const (
	Prepare    = "PREPARE"
	VoteCommit = "VOTECOMMIT"
	VoteAbort  = "VOTEABORT"
	CommitSuc  = "COMMIT_SUC"
	CommitFail = "COMMIT_FAIL"
	Ack        = "ACK"
)

// Coordinator log decision records, §4.2.
const (
	LogPrepare  = "prepare"
	LogCommit   = "commit"
	LogAbort    = "abort"
	LogFinished = "finished"
)

// Participant log decision records, §4.3.
const (
	LogAgree  = "Agree"
	LogReject = "Reject"
	LogCommitApplied = "COMMIT"
	LogAbortApplied  = "ABORT"
	LogFinish        = "Finish"
)

// Coordinator transaction phases, §3.
const (
	PhaseVoting uint8 = iota
	PhaseCommitted
	PhaseAborted
	PhaseFinished
)

// Timeouts, §5. Both are implementation-tunable and default to a few
// seconds, per spec.
var (
	VotingWindow         = 3 * time.Second
	RetransmissionWindow = 2 * time.Second
)

// Network/IO tunables.
const (
	MaxConnectionHandler = 16
	DialTimeout          = 2 * time.Second
	WriteDeadline        = 1 * time.Second
)

// Persisted-state filenames, §6.
const (
	CoordinatorLogName = "log"
	ParticipantLogFmt  = "log_%s.txt"
)

// AddressBookLocation is the default path a participant reads on
// startup to learn the coordinator's address.
const AddressBookLocation = "./addresses.json"
