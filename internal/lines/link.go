package lines

import "math"

// Contour is an ordered chain of ridge points whose source pixels are
// 8-connected.
type Contour struct {
	Points []RidgePoint `json:"points"`
}

// Length returns the sum of Euclidean distances between consecutive
// points.
func (c Contour) Length() float64 {
	var length float64
	for i := 1; i < len(c.Points); i++ {
		length += math.Hypot(c.Points[i].Row-c.Points[i-1].Row, c.Points[i].Col-c.Points[i-1].Col)
	}
	return length
}

// neighbors8 is the fixed visiting order used to break exact ties.
var neighbors8 = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// linker walks surviving ridge points into contours.
type linker struct {
	resp     *Response
	survive  *Raster
	visited  []bool
	maxAngle float64
}

// LinkContours chains the ridge points that survived suppression.
//
// Seeds are taken in row-major order. From a seed the walk extends first
// along the seed's tangent and then against it. At each step it moves to
// the unvisited surviving 8-neighbor that lies ahead of the current
// position and whose tangent turns least from the current direction; ties
// go to the neighbor closest to straight ahead, then to neighbors8 order.
// A walk stops when no neighbor qualifies or the smallest turn exceeds
// maxAngle, so contours end at junctions instead of crossing them.
// Neighbors the walk steps past on the same line are consumed with it.
//
// The walk is iterative and single-threaded; output order depends only on
// the input.
func LinkContours(resp *Response, survive *Raster, maxAngle float64) []Contour {
	l := &linker{
		resp:     resp,
		survive:  survive,
		visited:  make([]bool, resp.Rows*resp.Cols),
		maxAngle: maxAngle,
	}

	var contours []Contour
	for _, seed := range resp.Points {
		i := seed.PixelRow*resp.Cols + seed.PixelCol
		if l.visited[i] || !(survive.Data[i] > 0) {
			continue
		}
		l.visited[i] = true

		tr, tc := seed.tangent()
		forward := l.walk(seed, tr, tc)
		backward := l.walk(seed, -tr, -tc)

		pts := make([]RidgePoint, 0, len(forward)+len(backward)+1)
		for j := len(backward) - 1; j >= 0; j-- {
			pts = append(pts, backward[j])
		}
		pts = append(pts, seed)
		pts = append(pts, forward...)
		contours = append(contours, Contour{Points: pts})
	}
	return contours
}

// walk follows the ridge from start in direction (dirRow, dirCol) and
// returns the points it adds, excluding start.
func (l *linker) walk(start RidgePoint, dirRow, dirCol float64) []RidgePoint {
	var path []RidgePoint
	cur := start
	for {
		next, nr, nc, ok := l.bestNeighbor(cur, dirRow, dirCol)
		if !ok {
			return path
		}
		l.visited[next.PixelRow*l.resp.Cols+next.PixelCol] = true
		l.markBetween(cur, next, dirRow, dirCol)
		path = append(path, next)
		cur, dirRow, dirCol = next, nr, nc
	}
}

// markBetween marks as visited the surviving neighbors of cur that sit on
// the ridge between cur and next. Suppression keeps a 4-connected
// staircase on diagonal lines; the walk steps along one lane of it, and
// the pixels of the other lane must not seed a second copy of the line.
func (l *linker) markBetween(cur, next RidgePoint, dirRow, dirCol float64) {
	rows, cols := l.resp.Rows, l.resp.Cols
	reach := (next.Row-cur.Row)*dirRow + (next.Col-cur.Col)*dirCol
	for _, off := range neighbors8 {
		r, c := cur.PixelRow+off[0], cur.PixelCol+off[1]
		if r < 0 || r >= rows || c < 0 || c >= cols {
			continue
		}
		i := r*cols + c
		if l.visited[i] || !(l.survive.Data[i] > 0) {
			continue
		}
		p, ok := l.resp.PointAt(r, c)
		if !ok {
			continue
		}
		dr, dc := p.Row-cur.Row, p.Col-cur.Col
		along := dr*dirRow + dc*dirCol
		across := math.Abs(dr*dirCol - dc*dirRow)
		if along > 0 && along < reach && across <= maxLaneOffset {
			l.visited[i] = true
		}
	}
}

// maxLaneOffset is how far, across the walk direction, a skipped point may
// sit from the current one and still count as the same line.
const maxLaneOffset = 0.5

// bestNeighbor picks the continuation of cur. It returns the chosen
// point and its tangent oriented along the walk.
func (l *linker) bestNeighbor(cur RidgePoint, dirRow, dirCol float64) (RidgePoint, float64, float64, bool) {
	rows, cols := l.resp.Rows, l.resp.Cols

	var best RidgePoint
	var bestRow, bestCol float64
	bestTurn, bestDeviation := math.Inf(1), math.Inf(1)
	found := false
	for _, off := range neighbors8 {
		r, c := cur.PixelRow+off[0], cur.PixelCol+off[1]
		if r < 0 || r >= rows || c < 0 || c >= cols {
			continue
		}
		i := r*cols + c
		if l.visited[i] || !(l.survive.Data[i] > 0) {
			continue
		}
		cand, ok := l.resp.PointAt(r, c)
		if !ok {
			continue
		}

		stepRow, stepCol := cand.Row-cur.Row, cand.Col-cur.Col
		stepLen := math.Hypot(stepRow, stepCol)
		ahead := stepRow*dirRow + stepCol*dirCol
		if stepLen == 0 || !(ahead > 0) {
			continue
		}

		tr, tc := cand.tangent()
		if tr*dirRow+tc*dirCol < 0 {
			tr, tc = -tr, -tc
		}
		turn := angleBetween(tr, tc, dirRow, dirCol)
		deviation := math.Acos(clampUnit(ahead / stepLen))

		if turn < bestTurn || (turn == bestTurn && deviation < bestDeviation) {
			best, bestRow, bestCol = cand, tr, tc
			bestTurn, bestDeviation = turn, deviation
			found = true
		}
	}

	if !found || bestTurn > l.maxAngle {
		return RidgePoint{}, 0, 0, false
	}
	return best, bestRow, bestCol, true
}

// angleBetween returns the angle in [0, pi] between two unit vectors.
func angleBetween(ar, ac, br, bc float64) float64 {
	return math.Acos(clampUnit(ar*br + ac*bc))
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// FilterContours keeps contours whose chain length lies in
// [minLength, maxLength]. The input order is preserved.
func FilterContours(contours []Contour, minLength, maxLength float64) []Contour {
	var kept []Contour
	for _, c := range contours {
		length := c.Length()
		if length >= minLength && length <= maxLength {
			kept = append(kept, c)
		}
	}
	return kept
}
