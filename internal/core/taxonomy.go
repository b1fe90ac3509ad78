package core

import "strings"

type (
	// Category is one classification target with its trigger keywords.
	// Keywords match as case-insensitive substrings of the message text.
	Category struct {
		ID    string
		Name  string
		Icon  string
		Words []string
	}

	// Taxonomy is the static, ordered category configuration. It is built
	// once at process start and never mutated afterwards; declaration
	// order is significant, since classification is first-match-wins.
	Taxonomy struct {
		IncomeTriggers []string
		Income         []Category
		Expense        []Category
		OtherIncome    Category
		OtherExpense   Category
	}

	// Classification is the outcome of classifying a message text.
	Classification struct {
		Kind     Kind
		Category Category
	}
)

// DefaultTaxonomy returns the built-in Thai taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		IncomeTriggers: []string{"รับ", "ได้รับ", "โอนเข้า", "income", "รายรับ"},
		Income: []Category{
			{ID: "inc_salary", Name: "เงินเดือน", Icon: "💼", Words: []string{"เงินเดือน", "salary", "เดือน"}},
			{ID: "inc_freelance", Name: "ฟรีแลนซ์", Icon: "💻", Words: []string{"ฟรีแลนซ์", "freelance", "ค่าจ้าง", "ค่างาน"}},
			{ID: "inc_bonus", Name: "โบนัส", Icon: "🎁", Words: []string{"โบนัส", "bonus", "รางวัล"}},
			{ID: "inc_invest", Name: "ลงทุน", Icon: "📈", Words: []string{"ลงทุน", "ปันผล", "dividend", "กำไร", "invest"}},
		},
		Expense: []Category{
			{
				ID: "exp_food", Name: "อาหาร/เครื่องดื่ม", Icon: "🍜",
				Words: []string{
					"ข้าว", "กาแฟ", "น้ำ", "อาหาร", "ก๋วยเตี๋ยว", "ส้มตำ", "หมู", "ไก่", "กุ้ง", "ปลา", "ผัด", "ต้ม", "แกง",
					"pizza", "พิซซ่า", "burger", "ชา", "ชาไข่มุก", "บิงซู", "ขนม", "ลูกชิ้น", "ซูชิ", "ราเมน", "สุกี้",
					"หมูกระทะ", "ข้าวมันไก่", "ข้าวหมูแดง", "ร้านอาหาร", "เบียร์", "ไวน์", "ค็อกเทล", "กินข้าว", "ข้าวต้ม",
				},
			},
			{
				ID: "exp_transport", Name: "เดินทาง", Icon: "🚌",
				Words: []string{
					"แท็กซี่", "taxi", "รถ", "บัส", "bus", "mrt", "bts", "รถไฟ", "grab", "bolt", "รถเมล์", "ค่ารถ",
					"น้ำมัน", "โบท์", "เรือ", "ทางด่วน", "parking", "จอดรถ", "uber", "วิน", "มอเตอร์ไซค์", "skytrain",
				},
			},
			{
				ID: "exp_shop", Name: "ช้อปปิ้ง", Icon: "🛍️",
				Words: []string{
					"เสื้อ", "กางเกง", "รองเท้า", "กระเป๋า", "ช้อป", "shop", "lazada", "shopee", "ซื้อ", "ของ",
					"ห้าง", "mall", "central", "สยาม", "ไอคอน", "terminal", "amazon", "tiktok shop",
				},
			},
			{
				ID: "exp_beauty", Name: "ความสวยงาม", Icon: "💄",
				Words: []string{
					"ตัดผม", "ทำผม", "เล็บ", "เสริมสวย", "spa", "สปา", "นวด", "ครีม", "เครื่องสำอาง",
					"lipstick", "ลิป", "แป้ง", "foundation", "บิวตี้", "skincare",
				},
			},
			{
				ID: "exp_health", Name: "สุขภาพ", Icon: "💊",
				Words: []string{
					"หมอ", "โรงพยาบาล", "ยา", "คลินิก", "พยาบาล", "ทันตแพทย์", "ฟัน", "hospital", "clinic",
					"gym", "ออกกำลัง", "วิตามิน", "fitness", "supplement",
				},
			},
			{
				ID: "exp_entertain", Name: "บันเทิง", Icon: "🎬",
				Words: []string{
					"หนัง", "ดูหนัง", "cinema", "netflix", "youtube", "spotify", "คอนเสิร์ต", "เที่ยว",
					"เกม", "game", "bowling", "ร้องเพลง", "karaoke", "คาราโอเกะ",
				},
			},
			{
				ID: "exp_house", Name: "ที่พัก/บ้าน", Icon: "🏠",
				Words: []string{
					"ค่าเช่า", "เช่า", "ค่าน้ำ", "ค่าไฟ", "internet", "ค่าอินเตอร์", "ค่าบ้าน", "คอนโด", "อพาร์ท", "rent",
				},
			},
		},
		OtherIncome:  Category{ID: "inc_other", Name: "รายรับอื่น", Icon: "💰"},
		OtherExpense: Category{ID: "exp_other", Name: "อื่นๆ", Icon: "📦"},
	}
}

// Classify resolves the transaction kind and category for a message text.
// Income trigger words and the income taxonomy take precedence
// unconditionally over expense classification; within each taxonomy the
// first declared category with a keyword match wins.
func (t *Taxonomy) Classify(text string) Classification {
	lower := strings.ToLower(text)

	triggered := containsAny(lower, t.IncomeTriggers)
	if cat, ok := firstMatch(lower, t.Income); ok {
		return Classification{Kind: Income, Category: cat}
	}
	if triggered {
		return Classification{Kind: Income, Category: t.OtherIncome}
	}

	if cat, ok := firstMatch(lower, t.Expense); ok {
		return Classification{Kind: Expense, Category: cat}
	}
	return Classification{Kind: Expense, Category: t.OtherExpense}
}

func firstMatch(lower string, cats []Category) (Category, bool) {
	for _, c := range cats {
		if containsAny(lower, c.Words) {
			return c, true
		}
	}
	return Category{}, false
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
