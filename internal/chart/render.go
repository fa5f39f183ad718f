package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
)

const (
	canvasWidth  = 1200
	canvasHeight = 750
)

// tab10
var palette = []color.RGBA{
	{31, 119, 180, 255}, {255, 127, 14, 255}, {44, 160, 44, 255}, {214, 39, 40, 255},
	{148, 103, 189, 255}, {140, 86, 75, 255}, {227, 119, 194, 255}, {127, 127, 127, 255},
	{188, 189, 34, 255}, {23, 190, 207, 255},
}

var ErrNoNumericColumns = errors.New("Não há colunas numéricas suficientes para heatmap")

// Renderer draws plans into PNG images.
type Renderer struct {
	// FontPath is an optional TrueType font. The built-in bitmap face is used
	// when empty or unreadable.
	FontPath string
}

type canvas struct {
	dc                       *gg.Context
	left, right, top, bottom float64
}

func (c *canvas) width() float64  { return c.right - c.left }
func (c *canvas) height() float64 { return c.bottom - c.top }

func (r Renderer) Render(p Plan, f Frame) ([]byte, error) {
	dc := gg.NewContext(canvasWidth, canvasHeight)
	if r.FontPath != "" {
		_ = dc.LoadFontFace(r.FontPath, 14)
	}
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	c := &canvas{dc: dc, left: 90, right: canvasWidth - 40, top: 70, bottom: canvasHeight - 110}
	if p.Hue != "" && f.Has(p.Hue) {
		c.right -= 160
	}

	var err error
	switch p.ChartType {
	case TypeBar:
		err = c.bars(f, p, false)
	case TypeStackedBar:
		err = c.bars(f, p, true)
	case TypeLine:
		err = c.line(f, p)
	case TypeScatter:
		err = c.scatter(f, p)
	case TypeHistogram:
		err = c.histogram(f, p)
	case TypeBoxplot:
		err = c.boxplot(f, p)
	case TypeHeatmap:
		err = c.heatmap(f)
	case TypePie:
		err = c.pie(f, p)
	default:
		err = fmt.Errorf("Tipo de gráfico não suportado: %s", p.ChartType)
	}
	if err != nil {
		return nil, err
	}

	if p.Title != "" {
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(p.Title, canvasWidth/2, 35, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// grouped holds mean values per category and series.
type grouped struct {
	categories []string
	series     []string
	values     map[string]map[string]float64
}

func group(f Frame, x, y, hue string, sortX bool) grouped {
	g := grouped{values: map[string]map[string]float64{}}
	counts := map[string]map[string]int{}
	seenCat, seenSer := map[string]bool{}, map[string]bool{}
	for _, row := range f.Rows {
		v, ok := toFloat(row[y])
		if !ok {
			continue
		}
		cat := label(row[x])
		ser := ""
		if hue != "" {
			ser = label(row[hue])
		}
		if !seenCat[cat] {
			seenCat[cat] = true
			g.categories = append(g.categories, cat)
		}
		if !seenSer[ser] {
			seenSer[ser] = true
			g.series = append(g.series, ser)
			g.values[ser] = map[string]float64{}
			counts[ser] = map[string]int{}
		}
		g.values[ser][cat] += v
		counts[ser][cat]++
	}
	for ser, cats := range g.values {
		for cat := range cats {
			cats[cat] /= float64(counts[ser][cat])
		}
	}
	if sortX {
		sortCategories(f, x, g.categories)
	}
	return g
}

func sortCategories(f Frame, col string, cats []string) {
	switch {
	case f.IsNumeric(col):
		sort.Slice(cats, func(i, j int) bool {
			a, _ := toFloat(cats[i])
			b, _ := toFloat(cats[j])
			return a < b
		})
	case f.IsDatetime(col):
		sort.Strings(cats)
	}
}

func (c *canvas) bars(f Frame, p Plan, stacked bool) error {
	g := group(f, p.X, p.Y, p.Hue, false)
	if len(g.categories) == 0 {
		return errors.New("sem valores numéricos para o eixo y")
	}

	lo, hi := 0.0, 0.0
	for _, cat := range g.categories {
		total := 0.0
		for _, ser := range g.series {
			v := g.values[ser][cat]
			if stacked {
				total += v
				hi = math.Max(hi, total)
			} else {
				hi = math.Max(hi, v)
				lo = math.Min(lo, v)
			}
		}
	}
	scale := c.yAxis(lo, hi, p.Y)

	slot := c.width() / float64(len(g.categories))
	barW := slot * 0.8
	if !stacked && len(g.series) > 1 {
		barW /= float64(len(g.series))
	}
	for i, cat := range g.categories {
		x0 := c.left + float64(i)*slot + slot*0.1
		base := 0.0
		for s, ser := range g.series {
			v, ok := g.values[ser][cat]
			if !ok {
				continue
			}
			c.dc.SetColor(palette[s%len(palette)])
			bx := x0
			if !stacked {
				bx = x0 + float64(s)*barW
			}
			y1, y2 := scale(base+v), scale(base)
			if stacked {
				base += v
			}
			c.dc.DrawRectangle(bx, math.Min(y1, y2), barW, math.Abs(y2-y1))
			c.dc.Fill()
			c.dc.SetRGB(0.2, 0.2, 0.2)
			c.dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), bx+barW/2, math.Min(y1, y2)-8, 0.5, 0)
		}
		c.xTick(x0+slot*0.4, cat)
	}
	c.xLabel(p.X)
	c.legend(p.Hue, g.series)
	return nil
}

func (c *canvas) line(f Frame, p Plan) error {
	g := group(f, p.X, p.Y, p.Hue, true)
	if len(g.categories) == 0 {
		return errors.New("sem valores numéricos para o eixo y")
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ser := range g.series {
		for _, v := range g.values[ser] {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	scale := c.yAxis(math.Min(lo, 0), hi, p.Y)
	step := c.width() / float64(max(len(g.categories), 1))

	for s, ser := range g.series {
		c.dc.SetColor(palette[s%len(palette)])
		c.dc.SetLineWidth(2.5)
		first := true
		for i, cat := range g.categories {
			v, ok := g.values[ser][cat]
			if !ok {
				continue
			}
			px, py := c.left+step*(float64(i)+0.5), scale(v)
			if first {
				c.dc.MoveTo(px, py)
				first = false
			} else {
				c.dc.LineTo(px, py)
			}
		}
		c.dc.Stroke()
		for i, cat := range g.categories {
			v, ok := g.values[ser][cat]
			if !ok {
				continue
			}
			px, py := c.left+step*(float64(i)+0.5), scale(v)
			c.dc.SetColor(palette[s%len(palette)])
			c.dc.DrawCircle(px, py, 5)
			c.dc.Fill()
			c.dc.SetRGB(0.2, 0.2, 0.2)
			c.dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), px, py-12, 0.5, 0)
		}
	}
	for i, cat := range g.categories {
		c.xTick(c.left+step*(float64(i)+0.5), cat)
	}
	c.xLabel(p.X)
	c.legend(p.Hue, g.series)
	return nil
}

func (c *canvas) scatter(f Frame, p Plan) error {
	xs, ys := f.Floats(p.X), f.Floats(p.Y)
	if len(xs) == 0 || len(ys) == 0 {
		return errors.New("sem pontos numéricos para dispersão")
	}
	xlo, xhi := minMax(xs)
	ylo, yhi := minMax(ys)
	yScale := c.yAxis(ylo, yhi, p.Y)
	xScale := c.xAxis(xlo, xhi)

	series := map[string]int{}
	var names []string
	for _, row := range f.Rows {
		x, okx := toFloat(row[p.X])
		y, oky := toFloat(row[p.Y])
		if !okx || !oky {
			continue
		}
		ser := ""
		if p.Hue != "" {
			ser = label(row[p.Hue])
		}
		idx, ok := series[ser]
		if !ok {
			idx = len(names)
			series[ser] = idx
			names = append(names, ser)
		}
		c.dc.SetColor(palette[idx%len(palette)])
		c.dc.DrawCircle(xScale(x), yScale(y), 5)
		c.dc.Fill()
	}
	c.xLabel(p.X)
	c.legend(p.Hue, names)
	return nil
}

func (c *canvas) histogram(f Frame, p Plan) error {
	values := f.Floats(p.X)
	if len(values) == 0 {
		return errors.New("sem valores numéricos para histograma")
	}
	lo, hi := minMax(values)
	bins := int(math.Ceil(math.Log2(float64(len(values))))) + 1
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)
	counts := make([]float64, bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	_, top := minMax(counts)
	yScale := c.yAxis(0, top, "contagem")
	xScale := c.xAxis(lo, hi)

	c.dc.SetColor(palette[0])
	for i, n := range counts {
		x0, x1 := xScale(lo+float64(i)*width), xScale(lo+float64(i+1)*width)
		c.dc.DrawRectangle(x0, yScale(n), x1-x0-1, yScale(0)-yScale(n))
		c.dc.Fill()
	}
	c.xLabel(p.X)
	return nil
}

func (c *canvas) boxplot(f Frame, p Plan) error {
	byCat := map[string][]float64{}
	var cats []string
	for _, row := range f.Rows {
		v, ok := toFloat(row[p.Y])
		if !ok {
			continue
		}
		cat := label(row[p.X])
		if _, seen := byCat[cat]; !seen {
			cats = append(cats, cat)
		}
		byCat[cat] = append(byCat[cat], v)
	}
	if len(cats) == 0 {
		return errors.New("sem valores numéricos para boxplot")
	}
	all := f.Floats(p.Y)
	lo, hi := minMax(all)
	scale := c.yAxis(lo, hi, p.Y)
	slot := c.width() / float64(len(cats))

	for i, cat := range cats {
		vals := byCat[cat]
		sort.Float64s(vals)
		q1, med, q3 := quantile(vals, 0.25), quantile(vals, 0.5), quantile(vals, 0.75)
		iqr := q3 - q1
		wlo, whi := q1, q3
		for _, v := range vals {
			if v >= q1-1.5*iqr && v < wlo {
				wlo = v
			}
			if v <= q3+1.5*iqr && v > whi {
				whi = v
			}
		}
		cx := c.left + slot*(float64(i)+0.5)
		bw := slot * 0.5

		c.dc.SetColor(palette[i%len(palette)])
		c.dc.DrawRectangle(cx-bw/2, scale(q3), bw, scale(q1)-scale(q3))
		c.dc.Fill()
		c.dc.SetRGB(0.2, 0.2, 0.2)
		c.dc.SetLineWidth(2)
		c.dc.DrawLine(cx-bw/2, scale(med), cx+bw/2, scale(med))
		c.dc.DrawLine(cx, scale(q3), cx, scale(whi))
		c.dc.DrawLine(cx, scale(q1), cx, scale(wlo))
		c.dc.DrawLine(cx-bw/4, scale(whi), cx+bw/4, scale(whi))
		c.dc.DrawLine(cx-bw/4, scale(wlo), cx+bw/4, scale(wlo))
		c.dc.Stroke()
		for _, v := range vals {
			if v < wlo || v > whi {
				c.dc.DrawCircle(cx, scale(v), 4)
				c.dc.Stroke()
			}
		}
		c.xTick(cx, cat)
	}
	c.xLabel(p.X)
	return nil
}

func (c *canvas) heatmap(f Frame) error {
	cols := f.Types().Numeric
	if len(cols) < 2 {
		return ErrNoNumericColumns
	}
	n := len(cols)
	cell := math.Min(c.width(), c.height()) / float64(n)
	x0 := c.left + (c.width()-cell*float64(n))/2

	for i, a := range cols {
		for j, b := range cols {
			r := correlation(f, a, b)
			c.dc.SetColor(coolwarm(r))
			c.dc.DrawRectangle(x0+float64(j)*cell, c.top+float64(i)*cell, cell, cell)
			c.dc.Fill()
			c.dc.SetRGB(0.1, 0.1, 0.1)
			c.dc.DrawStringAnchored(fmt.Sprintf("%.2f", r), x0+(float64(j)+0.5)*cell, c.top+(float64(i)+0.5)*cell, 0.5, 0.5)
		}
		c.dc.DrawStringAnchored(a, x0-8, c.top+(float64(i)+0.5)*cell, 1, 0.5)
		c.dc.DrawStringAnchored(a, x0+(float64(i)+0.5)*cell, c.top+float64(n)*cell+16, 0.5, 0.5)
	}
	return nil
}

func (c *canvas) pie(f Frame, p Plan) error {
	var labels []string
	sums := map[string]float64{}
	add := func(k string, v float64) {
		if _, ok := sums[k]; !ok {
			labels = append(labels, k)
		}
		sums[k] += v
	}

	if f.Has(p.X) && f.IsNumeric(p.Y) {
		for _, row := range f.Rows {
			if v, ok := toFloat(row[p.Y]); ok {
				add(label(row[p.X]), v)
			}
		}
	} else {
		target := p.X
		if !f.Has(target) && len(f.Columns) > 0 {
			target = f.Columns[0]
		}
		for _, row := range f.Rows {
			add(label(row[target]), 1)
		}
	}

	total := 0.0
	for _, v := range sums {
		total += v
	}
	if total <= 0 {
		return errors.New("sem valores positivos para o gráfico de pizza")
	}

	cx, cy := (c.left+c.right)/2, (c.top+c.bottom)/2
	radius := math.Min(c.width(), c.height()) / 2.3
	angle := gg.Radians(-140)
	for i, l := range labels {
		share := sums[l] / total
		end := angle + share*2*math.Pi
		c.dc.SetColor(palette[i%len(palette)])
		c.dc.MoveTo(cx, cy)
		c.dc.DrawArc(cx, cy, radius, angle, end)
		c.dc.ClosePath()
		c.dc.Fill()

		mid := (angle + end) / 2
		c.dc.SetRGB(0.1, 0.1, 0.1)
		c.dc.DrawStringAnchored(l, cx+math.Cos(mid)*radius*1.15, cy+math.Sin(mid)*radius*1.15, 0.5, 0.5)
		c.dc.SetRGB(1, 1, 1)
		c.dc.DrawStringAnchored(fmt.Sprintf("%.1f%%", share*100), cx+math.Cos(mid)*radius*0.6, cy+math.Sin(mid)*radius*0.6, 0.5, 0.5)
		angle = end
	}
	return nil
}

// yAxis draws horizontal grid lines and returns the value-to-pixel mapping.
func (c *canvas) yAxis(lo, hi float64, name string) func(float64) float64 {
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.08
	if lo < 0 {
		lo -= pad
	}
	hi += pad
	scale := func(v float64) float64 {
		return c.bottom - (v-lo)/(hi-lo)*c.height()
	}
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := lo + (hi-lo)*float64(i)/ticks
		y := scale(v)
		c.dc.SetRGB(0.9, 0.9, 0.9)
		c.dc.SetLineWidth(1)
		c.dc.DrawLine(c.left, y, c.right, y)
		c.dc.Stroke()
		c.dc.SetRGB(0.3, 0.3, 0.3)
		c.dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), c.left-10, y, 1, 0.5)
	}
	c.dc.Push()
	c.dc.RotateAbout(gg.Radians(-90), 25, (c.top+c.bottom)/2)
	c.dc.DrawStringAnchored(name, 25, (c.top+c.bottom)/2, 0.5, 0.5)
	c.dc.Pop()
	return scale
}

func (c *canvas) xAxis(lo, hi float64) func(float64) float64 {
	if hi == lo {
		hi = lo + 1
	}
	scale := func(v float64) float64 {
		return c.left + (v-lo)/(hi-lo)*c.width()
	}
	const ticks = 5
	c.dc.SetRGB(0.3, 0.3, 0.3)
	for i := 0; i <= ticks; i++ {
		v := lo + (hi-lo)*float64(i)/ticks
		c.dc.DrawStringAnchored(fmt.Sprintf("%.1f", v), scale(v), c.bottom+18, 0.5, 0.5)
	}
	return scale
}

func (c *canvas) xTick(x float64, text string) {
	if len([]rune(text)) > 14 {
		text = string([]rune(text)[:13]) + "…"
	}
	c.dc.SetRGB(0.3, 0.3, 0.3)
	c.dc.Push()
	c.dc.RotateAbout(gg.Radians(-30), x, c.bottom+14)
	c.dc.DrawStringAnchored(text, x, c.bottom+14, 1, 0.5)
	c.dc.Pop()
}

func (c *canvas) xLabel(name string) {
	if name == "" {
		return
	}
	c.dc.SetRGB(0.1, 0.1, 0.1)
	c.dc.DrawStringAnchored(name, (c.left+c.right)/2, canvasHeight-25, 0.5, 0.5)
}

func (c *canvas) legend(title string, series []string) {
	if title == "" || len(series) < 2 {
		return
	}
	x := c.right + 20
	c.dc.SetRGB(0.1, 0.1, 0.1)
	c.dc.DrawString(title, x, c.top)
	for i, s := range series {
		y := c.top + 22*float64(i+1)
		c.dc.SetColor(palette[i%len(palette)])
		c.dc.DrawRectangle(x, y-10, 12, 12)
		c.dc.Fill()
		c.dc.SetRGB(0.2, 0.2, 0.2)
		c.dc.DrawString(s, x+18, y)
	}
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return lo, hi
}

// quantile uses linear interpolation over sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	i := int(pos)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// correlation is the Pearson coefficient over rows where both values exist.
func correlation(f Frame, a, b string) float64 {
	var xs, ys []float64
	for _, row := range f.Rows {
		x, okx := toFloat(row[a])
		y, oky := toFloat(row[b])
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/n, sy/n
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

func coolwarm(r float64) color.Color {
	r = math.Max(-1, math.Min(1, r))
	lerp := func(a, b uint8, t float64) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t) }
	cold := color.RGBA{59, 76, 192, 255}
	mid := color.RGBA{221, 221, 221, 255}
	warm := color.RGBA{180, 4, 38, 255}
	if r < 0 {
		t := r + 1
		return color.RGBA{lerp(cold.R, mid.R, t), lerp(cold.G, mid.G, t), lerp(cold.B, mid.B, t), 255}
	}
	return color.RGBA{lerp(mid.R, warm.R, r), lerp(mid.G, warm.G, r), lerp(mid.B, warm.B, r), 255}
}
