package bot

import (
	"fmt"
	"strings"

	"donnote/internal/core"
)

// Reply is the outbound payload for one processed event: a message text
// plus the fixed quick-action suggestions.
type Reply struct {
	Text         string
	QuickActions []string
}

// quickActions is the fixed suggestion set attached to every reply.
var quickActions = []string{"สรุป", "รายการ", "ลบ", "ช่วยเหลือ"}

func reply(text string) Reply {
	return Reply{Text: text, QuickActions: quickActions}
}

func formatRecorded(e core.Entry, balance core.Money) Reply {
	sign, emoji := "-", "❤️"
	if e.Kind == core.Income {
		sign, emoji = "+", "💚"
	}
	return reply(fmt.Sprintf(
		"%s บันทึกแล้ว!\n\n%s %s\n%s %s บาท\n\n💰 คงเหลือเดือนนี้: %s บาท",
		emoji, e.CategoryIcon, e.CategoryName, sign, e.Amount.Format(), balance.Format()))
}

func formatSummary(s core.MonthlySummary) Reply {
	if s.Count == 0 {
		return reply("ยังไม่มีข้อมูลเดือนนี้ 🐼\n\nลองพิมพ์ว่า\n\"ข้าว 50\" หรือ \"เงินเดือน 20000\"")
	}
	return reply(fmt.Sprintf(
		"📊 สรุปเดือนนี้\n\n💚 รายรับ    %s บาท\n❤️ รายจ่าย  %s บาท\n──────────────\n💰 คงเหลือ  %s บาท\n📝 %d รายการ",
		s.Income.Format(), s.Expense.Format(), s.Balance.Format(), s.Count))
}

func formatRecent(entries []core.Entry) Reply {
	if len(entries) == 0 {
		return reply("ยังไม่มีรายการ 🐼")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		sign := "-"
		if e.Kind == core.Income {
			sign = "+"
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s%s",
			e.CategoryIcon, noteOrCategory(e), sign, e.Amount.Format()))
	}
	return reply("📋 รายการล่าสุด\n\n" + strings.Join(lines, "\n"))
}

func formatUndone(e core.Entry) Reply {
	return reply(fmt.Sprintf("🗑️ ลบแล้ว!\n\n%s %s\n%s บาท",
		e.CategoryIcon, noteOrCategory(e), e.Amount.Format()))
}

func formatUndoEmpty() Reply {
	return reply("ไม่มีรายการให้ลบ 🐼")
}

func formatHelp() Reply {
	return reply("🐼 돈노트 Don Note Bot\n\n" +
		"📝 บันทึกรายการ:\n" +
		"• \"ข้าวมันไก่ 50\"\n" +
		"• \"แท็กซี่ 120\"\n" +
		"• \"เงินเดือน 20000\"\n" +
		"• \"โบนัส 5000\"\n\n" +
		"📊 คำสั่ง:\n" +
		"• สรุป → ยอดเดือนนี้\n" +
		"• รายการ → 5 รายการล่าสุด\n" +
		"• ลบ → ลบรายการล่าสุด\n" +
		"• ช่วยเหลือ → เมนูนี้")
}

// FormatFailure is the fallback reply when processing fails outright,
// for example when the store is unavailable.
func FormatFailure() Reply {
	return reply("ขออภัย ระบบขัดข้องชั่วคราว 🙏\nลองใหม่อีกครั้งนะ")
}

func formatUnrecognized() Reply {
	return reply("ไม่เข้าใจ 🐼 ลองพิมพ์เช่น\n\"ข้าว 50\"\n\"เงินเดือน 20000\"\n\nหรือพิมพ์ \"ช่วยเหลือ\"")
}

func noteOrCategory(e core.Entry) string {
	if strings.TrimSpace(e.Note) != "" {
		return e.Note
	}
	return e.CategoryName
}
