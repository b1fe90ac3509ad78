package bot

import "testing"

func TestRoute(t *testing.T) {
	tests := []struct {
		text string
		want Command
	}{
		{"สรุป", CmdSummarize},
		{"summary", CmdSummarize},
		{"SUMMARY", CmdSummarize},
		{"  ยอด  ", CmdSummarize},
		{"balance", CmdSummarize},
		{"รายการ", CmdListRecent},
		{"list", CmdListRecent},
		{"ล่าสุด", CmdListRecent},
		{"ลบ", CmdUndo},
		{"undo", CmdUndo},
		{"ยกเลิก", CmdUndo},
		{"ช่วยเหลือ", CmdHelp},
		{"help", CmdHelp},
		{"?", CmdHelp},
		{"เมนู", CmdHelp},
		// Anything else is a record attempt.
		{"ข้าว 50", CmdRecord},
		{"เงินเดือน 20000", CmdRecord},
		{"summary of my month", CmdRecord},
		{"", CmdRecord},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Route(tt.text); got != tt.want {
				t.Errorf("Route(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
