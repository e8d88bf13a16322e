package helpers

import (
	"bufio"
	"io"
	"regexp"
)

// RecordKind distinguishes the report lines a test cares about.
type RecordKind string

const (
	RecordSent     RecordKind = "sent"
	RecordReceived RecordKind = "received"
	RecordResult   RecordKind = "result"
)

// Record represents a single trace or result line from a harness report.
type Record struct {
	Kind    RecordKind
	Line    string // Full original line
	Phase   string // encryption/decryption (sent) or encrypted/decrypted (received)
	Index   string // unit index
	Value   string // unit value as printed, without the character column
	Status  string // result status (result line)
	SimTime string // end time (result line)
}

var (
	sentRe     = regexp.MustCompile(`^Sending unit (\d+) for (\w+): (0x[0-9a-f]+)`)
	receivedRe = regexp.MustCompile(`^Received (\w+) unit (\d+): (0x[0-9a-f]+)`)
	resultRe   = regexp.MustCompile(`^RESULT: (\w+) \(SimTime=(\d+)\)$`)
)

// LoadReportRecords returns the unit trace and result lines in report order.
func LoadReportRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}

		if m := sentRe.FindStringSubmatch(line); len(m) == 4 {
			records = append(records, Record{Kind: RecordSent, Line: line, Index: m[1], Phase: m[2], Value: m[3]})
			continue
		}
		if m := receivedRe.FindStringSubmatch(line); len(m) == 4 {
			records = append(records, Record{Kind: RecordReceived, Line: line, Phase: m[1], Index: m[2], Value: m[3]})
			continue
		}
		if m := resultRe.FindStringSubmatch(line); len(m) == 3 {
			records = append(records, Record{Kind: RecordResult, Line: line, Status: m[1], SimTime: m[2]})
		}
	}

	return records, scanner.Err()
}

// Count returns the number of records of kind in phase. An empty phase
// matches every record of that kind.
func Count(records []Record, kind RecordKind, phase string) int {
	n := 0
	for _, r := range records {
		if r.Kind == kind && (phase == "" || r.Phase == phase) {
			n++
		}
	}
	return n
}
