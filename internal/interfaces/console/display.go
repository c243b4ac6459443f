package console

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"
)

// One terminal cell stands for cellW x cellH screen pixels.
const (
	cellW = 6
	cellH = 14
	cols  = 240 / cellW
	rows  = 135/cellH + 1
)

type tone uint8

const (
	toneNone tone = iota
	toneName
	toneLabel
	tonePrice
	toneTime
	toneUp
	toneDown
	toneStatus
	toneError
	toneIcon
)

var (
	frameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12"))
	tones      = map[tone]lipgloss.Style{
		toneName:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		toneLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		tonePrice:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		toneTime:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		toneUp:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		toneDown:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		toneStatus: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		toneError:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		toneIcon:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

type cell struct {
	r rune
	t tone
}

// Display renders draw calls into a character grid and repaints the
// terminal on Flush.
type Display struct {
	mu    sync.Mutex
	out   io.Writer
	grid  [rows][cols]cell
	frame bool
	dirty bool
}

func New(out io.Writer) *Display {
	d := &Display{out: out}
	d.clear()
	return d
}

// TextWidth counts one cell per rune so layout centres in grid units.
func (d *Display) TextWidth(text string, _ port.TextStyle) int {
	return len([]rune(text)) * cellW
}

func (d *Display) FillScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clear()
	d.frame = false
}

func (d *Display) ClearRect(r port.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r0, r1 := r.Y/cellH, (r.Y+r.H-1)/cellH
	c0, c1 := r.X/cellW, (r.X+r.W-1)/cellW
	for y := max(r0, 0); y <= min(r1, rows-1); y++ {
		for x := max(c0, 0); x <= min(c1, cols-1); x++ {
			d.grid[y][x] = cell{r: ' '}
		}
	}
	d.dirty = true
}

func (d *Display) DrawIcon(symbol string, x, y int) {
	d.put(domain.LookupInstrument(symbol).Glyph, x, y, toneIcon)
}

func (d *Display) DrawText(text string, x, y int, style port.TextStyle) {
	d.put(text, x, y, styleTone(style))
}

func (d *Display) DrawCenteredText(text string, centerX, y int, style port.TextStyle) {
	d.put(text, centerX-d.TextWidth(text, style)/2, y, styleTone(style))
}

func (d *Display) DrawArrow(up bool, x, y int) {
	if up {
		d.put("▲", x, y, toneUp)
		return
	}
	d.put("▼", x, y, toneDown)
}

func (d *Display) DrawFrame() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.frame {
		d.frame = true
		d.dirty = true
	}
}

func (d *Display) ShowMessage(kind port.MessageKind, title, text string) {
	t := toneStatus
	if kind == port.MessageError {
		t = toneError
	}
	d.FillScreen()
	d.put(title, 120-d.TextWidth(title, port.StyleName)/2, 40, t)
	d.put(text, 120-d.TextWidth(text, port.StyleLabel)/2, 70, toneLabel)
}

// Flush writes the grid when anything changed since the last flush.
func (d *Display) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return nil
	}
	d.dirty = false

	body := d.render()
	if d.frame {
		body = frameStyle.Render(body)
	}
	_, err := io.WriteString(d.out, "\033[H\033[2J"+body+"\n")
	return err
}

// String returns the plain grid without styling.
func (d *Display) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := make([]string, rows)
	for y := range d.grid {
		var sb strings.Builder
		for _, c := range d.grid[y] {
			sb.WriteRune(c.r)
		}
		lines[y] = strings.TrimRight(sb.String(), " ")
	}
	return strings.Join(lines, "\n")
}

func (d *Display) render() string {
	lines := make([]string, rows)
	for y := range d.grid {
		var sb strings.Builder
		row := d.grid[y][:]
		for start := 0; start < len(row); {
			end := start
			for end < len(row) && row[end].t == row[start].t {
				end++
			}
			run := make([]rune, 0, end-start)
			for _, c := range row[start:end] {
				run = append(run, c.r)
			}
			if st, ok := tones[row[start].t]; ok {
				sb.WriteString(st.Render(string(run)))
			} else {
				sb.WriteString(string(run))
			}
			start = end
		}
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func (d *Display) put(text string, x, y int, t tone) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row := y / cellH
	if row < 0 || row >= rows {
		return
	}
	col := x / cellW
	for _, r := range text {
		if col >= 0 && col < cols {
			d.grid[row][col] = cell{r: r, t: t}
		}
		col++
	}
	d.dirty = true
}

func (d *Display) clear() {
	for y := range d.grid {
		for x := range d.grid[y] {
			d.grid[y][x] = cell{r: ' '}
		}
	}
	d.dirty = true
}

func styleTone(s port.TextStyle) tone {
	switch s {
	case port.StyleName:
		return toneName
	case port.StyleLabel:
		return toneLabel
	case port.StylePrice:
		return tonePrice
	case port.StyleTimestamp:
		return toneTime
	default:
		return toneNone
	}
}

var _ port.Display = (*Display)(nil)
