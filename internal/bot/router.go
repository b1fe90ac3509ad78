// Package bot routes inbound message texts to commands and turns ledger
// state into reply payloads.
package bot

import "strings"

// Command is the resolved intent of a message text.
type Command int

const (
	// CmdRecord is the fallthrough: extract an amount and record an entry.
	CmdRecord Command = iota
	CmdSummarize
	CmdListRecent
	CmdUndo
	CmdHelp
)

// Fixed synonym sets, matched exactly against the normalized text.
var (
	summarizeWords  = []string{"สรุป", "summary", "ยอด", "balance", "ดูยอด"}
	listRecentWords = []string{"รายการ", "list", "ล่าสุด", "ดูรายการ"}
	undoWords       = []string{"ลบ", "undo", "ยกเลิก", "ลบล่าสุด"}
	helpWords       = []string{"ช่วยเหลือ", "help", "วิธีใช้", "เมนู", "?"}
)

// Route classifies a raw message text. The router is state-free; matching
// is exact after trimming and lower-casing.
func Route(text string) Command {
	normalized := strings.ToLower(strings.TrimSpace(text))
	switch {
	case contains(summarizeWords, normalized):
		return CmdSummarize
	case contains(listRecentWords, normalized):
		return CmdListRecent
	case contains(undoWords, normalized):
		return CmdUndo
	case contains(helpWords, normalized):
		return CmdHelp
	default:
		return CmdRecord
	}
}

func contains(words []string, s string) bool {
	for _, w := range words {
		if w == s {
			return true
		}
	}
	return false
}
