package formatting

// PluralizeSessions возвращает правильное склонение слова "занятие"
func PluralizeSessions(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "занятие"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "занятия"
	}
	return "занятий"
}
