package common

import (
	"bytes"
	"image/color"
	"strconv"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Freeeeeet/tutoring_admin/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = "" // Regular
	FontStyleMedium  FontStyle = "medium"
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth         = 1400
	imageHeight        = 900
	headerHeight       = 100
	leftLabelsWidth    = 80
	legendWidth        = 140
	dayPaddingX        = 8
	minSessionHeight   = 8.0
	sessionRadius      = 6.0
	shadowOffset       = 3.0
	totalDaysInWeek    = 7
	hourPaddingTop     = 1
	hourPaddingBot     = 1
	defaultMinHour     = 8
	defaultMaxHour     = 20
	maxSubjectLabelLen = 18
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 18.0
	sessionFontSize    = 16.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	sessionConfirmedColor = color.RGBA{133, 193, 85, 220}
	sessionTentativeColor = color.RGBA{200, 200, 200, 220}
	sessionTextColor      = color.RGBA{20, 24, 28, 230}
	sessionShadowColor    = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// weekBounds содержит границы недели
type weekBounds struct {
	start time.Time
	end   time.Time
}

// hourRange содержит диапазон часов для отображения
type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

func fontData(style FontStyle) []byte {
	switch style {
	case FontStyleBold:
		return gobold.TTF
	case FontStyleMedium:
		return gomedium.TTF
	default:
		return goregular.TTF
	}
}

// loadFont устанавливает шрифт указанного стиля или basicfont, если шрифт не разобрался
func loadFont(dc *gg.Context, size float64, style FontStyle) {
	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		var err error
		parsed, err = opentype.Parse(fontData(style))
		if err != nil {
			fontsMu.Unlock()
			dc.SetFontFace(basicfont.Face7x13)
			return
		}
		cachedFonts[style] = parsed
	}
	fontsMu.Unlock()

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// GenerateWeekImage рисует неделю, содержащую day, с занятиями sessions.
// Занятия переводятся в часовой пояс day; now подсвечивает текущий день и время
func GenerateWeekImage(day time.Time, sessions []*model.Session, now time.Time) ([]byte, error) {
	loc := day.Location()
	week := normalizeToWeekBounds(day)
	now = now.In(loc)
	today := normalizeToDay(now)
	shouldHighlightToday := isTodayInWeek(today, week)

	local := sessionsInWeek(sessions, week, loc)
	sessionsByDay := groupSessionsByDay(local)
	hours := calculateHourRange(local)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, week)
	drawHourLabels(dc, hours, cellHeight)

	currentDate := week.start
	for dayIndex := 0; dayIndex < totalDaysInWeek; dayIndex++ {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIndex, shouldHighlightToday && isSameDay(currentDate, today))
		drawDayHeader(dc, currentDate, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, s := range sessionsByDay[currentDate.Format("2006-01-02")] {
			drawSession(dc, s, x, y, dayWidth, hours, cellHeight)
		}

		currentDate = currentDate.AddDate(0, 0, 1)
	}

	if shouldHighlightToday {
		drawCurrentTimeLine(dc, now, hours, cellHeight, dayWidth)
	}
	drawLegend(dc, dayWidth)

	return encodeImage(dc)
}

// localSession занятие во времени часового пояса недели
type localSession struct {
	start   time.Time
	end     time.Time
	subject string
	isFinal bool
}

func sessionsInWeek(sessions []*model.Session, week weekBounds, loc *time.Location) []localSession {
	weekEnd := week.end.AddDate(0, 0, 1)

	var out []localSession
	for _, s := range sessions {
		start := s.StartTime.In(loc)
		if start.Before(week.start) || !start.Before(weekEnd) {
			continue
		}
		subject := ""
		if s.Course != nil {
			subject = s.Course.Subject
		}
		out = append(out, localSession{
			start:   start,
			end:     s.EndTime.In(loc),
			subject: subject,
			isFinal: s.IsConfirmed,
		})
	}
	return out
}

// WeekStart возвращает понедельник недели, в которую попадает day
func WeekStart(day time.Time) time.Time {
	return normalizeToWeekBounds(day).start
}

// normalizeToWeekBounds нормализует дату к границам недели (Пн-Вс)
func normalizeToWeekBounds(date time.Time) weekBounds {
	normalized := normalizeToDay(date)

	daysSinceMonday := int(normalized.Weekday()) - 1
	if normalized.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}

	start := normalized.AddDate(0, 0, -daysSinceMonday)
	end := start.AddDate(0, 0, 6)

	return weekBounds{start: start, end: end}
}

// normalizeToDay нормализует время к началу дня
func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isTodayInWeek(today time.Time, week weekBounds) bool {
	return !today.Before(week.start) && !today.After(week.end)
}

func isSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

func groupSessionsByDay(sessions []localSession) map[string][]localSession {
	byDay := make(map[string][]localSession)
	for _, s := range sessions {
		key := s.start.Format("2006-01-02")
		byDay[key] = append(byDay[key], s)
	}
	return byDay
}

// calculateHourRange определяет диапазон часов для отображения
func calculateHourRange(sessions []localSession) hourRange {
	minHour := 24
	maxHour := 0

	for _, s := range sessions {
		startH := s.start.Hour()
		endH := s.end.Hour()
		if s.end.Minute() > 0 {
			endH++
		}
		if !isSameDay(s.start, s.end) {
			endH = 24
		}
		minHour = min(minHour, startH)
		maxHour = max(maxHour, endH)
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	startHour := max(minHour-hourPaddingTop, 0)
	endHour := min(maxHour+hourPaddingBot, 23)

	return hourRange{
		start: startHour,
		end:   endHour,
		total: endHour - startHour + 1,
	}
}

func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, week weekBounds) {
	startMonth := week.start.Month()
	endMonth := week.end.Month()

	title := formatting.GetMonthName(startMonth)
	if startMonth != endMonth {
		title += " - " + formatting.GetMonthName(endMonth)
	}
	title += " " + strconv.Itoa(week.end.Year())

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2+10, float64(headerHeight)/8+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleMedium)
	dc.SetColor(hourLabelColor)

	for hIdx := 0; hIdx < hours.total; hIdx++ {
		y := float64(headerHeight) + float64(hIdx)*cellHeight
		dc.DrawStringAnchored(formatHourLabel(hours.start+hIdx), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует день недели и дату
func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(formatting.GetWeekdayShortName(date.Weekday()), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for hIdx := 0; hIdx <= hours.total; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawSession рисует одно занятие: время начала и предмет
func drawSession(dc *gg.Context, s localSession, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	startHour := float64(s.start.Hour()) + float64(s.start.Minute())/60.0
	endHour := float64(s.end.Hour()) + float64(s.end.Minute())/60.0
	if !isSameDay(s.start, s.end) {
		endHour = float64(hours.end + 1)
	}

	sessionY := y + (startHour-float64(hours.start))*cellHeight
	height := max((endHour-startHour)*cellHeight, minSessionHeight)
	width := float64(dayWidth) - float64(dayPaddingX*2)

	fill := sessionConfirmedColor
	if !s.isFinal {
		fill = sessionTentativeColor
	}

	dc.SetColor(sessionShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, sessionY+2+shadowOffset, width, height-4, sessionRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, sessionY+2, width, height-4, sessionRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, sessionY+2, width, height-4, sessionRadius)
	dc.Stroke()

	loadFont(dc, sessionFontSize, FontStyleMedium)
	dc.SetColor(sessionTextColor)
	txtX := x + dayPaddingX + 8
	txtY := sessionY + 18
	dc.DrawStringAnchored(s.start.Format("15:04"), txtX, txtY, 0, 0)

	if s.subject != "" && height > 25 {
		loadFont(dc, sessionFontSize-2, FontStyleDefault)
		dc.DrawStringAnchored(truncate(s.subject, maxSubjectLabelLen), txtX, txtY+16, 0, 0)
	}
}

// truncate обрезает строку до n символов (не байт)
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	currentHour := float64(now.Hour()) + float64(now.Minute())/60.0
	if currentHour < float64(hours.start) || currentHour > float64(hours.end) {
		return
	}

	y := float64(headerHeight) + (currentHour-float64(hours.start))*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(float64(leftLabelsWidth), y, float64(leftLabelsWidth+totalDaysInWeek*dayWidth), y)
	dc.Stroke()
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, dayWidth int) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"Подтверждено", sessionConfirmedColor},
		{"Предварительно", sessionTentativeColor},
	}

	const boxW, boxH = 20.0, 14.0
	x := float64(leftLabelsWidth + totalDaysInWeek*dayWidth + 10)
	y := float64(imageHeight) - 78.0

	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize, FontStyleDefault)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 14
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatHourLabel(h int) string {
	if h < 10 {
		return "0" + strconv.Itoa(h) + ":00"
	}
	return strconv.Itoa(h) + ":00"
}
