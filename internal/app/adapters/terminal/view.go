package terminal

// View is a scrollable window over the rendered chat. It follows the newest
// line until the user scrolls up, and again once they return to the bottom.
type View struct {
	lines  []string
	height int
	offset int
	follow bool
}

func NewView(height int) *View {
	return &View{height: max(height, 1), follow: true}
}

func (v *View) SetLines(lines []string) {
	v.lines = lines
	v.clamp()
}

func (v *View) SetHeight(height int) {
	v.height = max(height, 1)
	v.clamp()
}

func (v *View) Height() int { return v.height }

func (v *View) Offset() int { return v.offset }

func (v *View) ScrollUp()   { v.scrollTo(v.offset - 1) }
func (v *View) ScrollDown() { v.scrollTo(v.offset + 1) }
func (v *View) PageUp()     { v.scrollTo(v.offset - v.height) }
func (v *View) PageDown()   { v.scrollTo(v.offset + v.height) }
func (v *View) Top()        { v.scrollTo(0) }
func (v *View) Bottom()     { v.scrollTo(v.maxOffset()) }

// Visible returns the lines inside the window, oldest first.
func (v *View) Visible() []string {
	end := min(v.offset+v.height, len(v.lines))
	return v.lines[v.offset:end]
}

func (v *View) scrollTo(offset int) {
	v.offset = min(max(offset, 0), v.maxOffset())
	v.follow = v.offset == v.maxOffset()
}

func (v *View) clamp() {
	if v.follow {
		v.offset = v.maxOffset()
		return
	}
	v.offset = min(v.offset, v.maxOffset())
}

func (v *View) maxOffset() int {
	return max(len(v.lines)-v.height, 0)
}
