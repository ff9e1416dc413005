package report

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

type fontStyle int

const (
	fontRegular fontStyle = iota
	fontBold
)

// Размеры и отступы
const (
	imageWidth      = 1400
	pagePadding     = 24
	headerHeight    = 120
	columnHeaderH   = 48
	dateColumnWidth = 180
	lineHeight      = 26.0
	cellPadding     = 14.0
	minRowHeight    = 64.0
	footerHeight    = 48
	cornerRadius    = 6.0
)

// Размеры шрифтов
const (
	titleFontSize    = 30.0
	subtitleFontSize = 18.0
	headerFontSize   = 19.0
	itemFontSize     = 17.0
	footerFontSize   = 13.0
)

// Цвета
var (
	bgColor         = color.RGBA{245, 246, 248, 255}
	textColor       = color.RGBA{40, 44, 48, 255}
	mutedTextColor  = color.RGBA{110, 115, 120, 220}
	headerRowColor  = color.RGBA{76, 120, 168, 255}
	headerTextColor = color.RGBA{255, 255, 255, 255}
	evenRowColor    = color.NRGBA{255, 255, 255, 255}
	oddRowColor     = color.NRGBA{236, 238, 241, 255}
	gridColor       = color.NRGBA{200, 203, 208, 255}
	finalBadgeColor = color.RGBA{133, 193, 85, 230}
	draftBadgeColor = color.RGBA{240, 180, 80, 230}
)

var (
	fontMu     sync.Mutex
	fontCache  = make(map[fontStyle]*opentype.Font)
	fontSource = map[fontStyle][]byte{
		fontRegular: goregular.TTF,
		fontBold:    gobold.TTF,
	}
)

// loadFont ставит шрифт нужного стиля, при ошибке парсинга откатывается на basicfont
func loadFont(dc *gg.Context, size float64, style fontStyle) {
	fontMu.Lock()
	parsed, ok := fontCache[style]
	if !ok {
		f, err := opentype.Parse(fontSource[style])
		if err == nil {
			fontCache[style] = f
			parsed = f
		}
	}
	fontMu.Unlock()

	if parsed != nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// Render рисует меню таблицей: строки дни, столбцы приёмы пищи
func Render(m *Menu) ([]byte, error) {
	rows := rowHeights(m)

	height := pagePadding + headerHeight + columnHeaderH + footerHeight + pagePadding
	for _, h := range rows {
		height += int(h)
	}

	dc := gg.NewContext(imageWidth, height)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, m)
	y := float64(pagePadding + headerHeight)
	drawColumnHeaders(dc, y)
	y += columnHeaderH

	if len(m.Days) == 0 {
		drawEmpty(dc, y, rows[0])
		y += rows[0]
	}
	for i, day := range m.Days {
		drawDayRow(dc, day, i, y, rows[i])
		y += rows[i]
	}

	drawFooter(dc, m, y)

	return encodeImage(dc)
}

func mealColumnWidth() float64 {
	return float64(imageWidth-2*pagePadding-dateColumnWidth) / float64(len(model.MealTypes))
}

func rowHeights(m *Menu) []float64 {
	if len(m.Days) == 0 {
		return []float64{minRowHeight}
	}
	heights := make([]float64, len(m.Days))
	for i, d := range m.Days {
		maxItems := 1
		for _, meal := range d.Meals {
			if len(meal.Items) > maxItems {
				maxItems = len(meal.Items)
			}
		}
		h := float64(maxItems)*lineHeight + 2*cellPadding
		if h < minRowHeight {
			h = minRowHeight
		}
		heights[i] = h
	}
	return heights
}

func drawHeader(dc *gg.Context, m *Menu) {
	loadFont(dc, titleFontSize, fontBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(m.Title, pagePadding, pagePadding+titleFontSize, 0, 0)

	loadFont(dc, subtitleFontSize, fontRegular)
	dc.SetColor(mutedTextColor)
	subtitle := fmt.Sprintf("Mess: %s   |   %s to %s",
		messLabel(m.MessType),
		m.StartDate.Format("02 Jan 2006"),
		m.EndDate.Format("02 Jan 2006"),
	)
	dc.DrawStringAnchored(subtitle, pagePadding, pagePadding+titleFontSize+36, 0, 0)

	badge, badgeColor := "ALL PROPOSED ITEMS", draftBadgeColor
	if m.Final {
		badge, badgeColor = "FINAL MENU", finalBadgeColor
	}
	loadFont(dc, headerFontSize, fontBold)
	w, _ := dc.MeasureString(badge)
	bx := float64(imageWidth-pagePadding) - w - 24
	dc.SetColor(badgeColor)
	dc.DrawRoundedRectangle(bx, pagePadding+8, w+24, 36, cornerRadius)
	dc.Fill()
	dc.SetColor(headerTextColor)
	dc.DrawStringAnchored(badge, bx+12, pagePadding+26, 0, 0.35)
}

func drawColumnHeaders(dc *gg.Context, y float64) {
	dc.SetColor(headerRowColor)
	dc.DrawRoundedRectangle(pagePadding, y, imageWidth-2*pagePadding, columnHeaderH, cornerRadius)
	dc.Fill()

	loadFont(dc, headerFontSize, fontBold)
	dc.SetColor(headerTextColor)
	dc.DrawStringAnchored("Date", pagePadding+cellPadding, y+columnHeaderH/2, 0, 0.35)

	colW := mealColumnWidth()
	for i, mt := range model.MealTypes {
		x := float64(pagePadding+dateColumnWidth) + float64(i)*colW
		dc.DrawStringAnchored(mealLabel(mt), x+cellPadding, y+columnHeaderH/2, 0, 0.35)
	}
}

func drawDayRow(dc *gg.Context, day Day, index int, y, height float64) {
	if index%2 == 0 {
		dc.SetColor(evenRowColor)
	} else {
		dc.SetColor(oddRowColor)
	}
	dc.DrawRectangle(pagePadding, y, imageWidth-2*pagePadding, height)
	dc.Fill()

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	dc.DrawLine(pagePadding, y+height, imageWidth-pagePadding, y+height)
	dc.Stroke()

	loadFont(dc, itemFontSize, fontBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(day.Date.Format("Mon 02 Jan"), pagePadding+cellPadding, y+cellPadding+lineHeight/2, 0, 0.35)

	colW := mealColumnWidth()
	loadFont(dc, itemFontSize, fontRegular)
	for i, meal := range day.Meals {
		x := float64(pagePadding+dateColumnWidth) + float64(i)*colW
		if len(meal.Items) == 0 {
			dc.SetColor(mutedTextColor)
			dc.DrawStringAnchored("-", x+cellPadding, y+cellPadding+lineHeight/2, 0, 0.35)
			continue
		}
		dc.SetColor(textColor)
		for j, it := range meal.Items {
			text := fitText(dc, itemLabel(it), colW-2*cellPadding)
			ty := y + cellPadding + float64(j)*lineHeight + lineHeight/2
			dc.DrawStringAnchored(text, x+cellPadding, ty, 0, 0.35)
		}
	}
}

func drawEmpty(dc *gg.Context, y, height float64) {
	dc.SetColor(evenRowColor)
	dc.DrawRectangle(pagePadding, y, imageWidth-2*pagePadding, height)
	dc.Fill()

	loadFont(dc, itemFontSize, fontRegular)
	dc.SetColor(mutedTextColor)
	dc.DrawStringAnchored("No menu items", imageWidth/2, y+height/2, 0.5, 0.35)
}

func drawFooter(dc *gg.Context, m *Menu, y float64) {
	loadFont(dc, footerFontSize, fontRegular)
	dc.SetColor(mutedTextColor)
	text := fmt.Sprintf("%d items   |   generated %s", m.ItemCount(), m.GeneratedAt.Format("2006-01-02 15:04 MST"))
	dc.DrawStringAnchored(text, pagePadding, y+float64(footerHeight)/2, 0, 0.35)
}

// fitText обрезает строку с многоточием, чтобы она влезла в ширину
func fitText(dc *gg.Context, s string, maxWidth float64) string {
	if w, _ := dc.MeasureString(s); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "..."
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			return candidate
		}
	}
	return "..."
}

func itemLabel(it model.MenuItem) string {
	return fmt.Sprintf("%s (%d)", it.Name, it.VoteCount)
}

func mealLabel(m model.MealType) string {
	switch m {
	case model.MealBreakfast:
		return "Breakfast"
	case model.MealLunch:
		return "Lunch"
	case model.MealSnacks:
		return "Snacks"
	case model.MealDinner:
		return "Dinner"
	}
	return string(m)
}

func messLabel(m model.MessType) string {
	switch m {
	case model.MessVeg:
		return "Veg"
	case model.MessNonVeg:
		return "Non-veg"
	case model.MessSpecial:
		return "Special"
	case model.MessFoodPark:
		return "Food park"
	}
	return string(m)
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
