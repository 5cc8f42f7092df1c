package graphics

// Clip opens a clipping region shaped by Path. Regions nest; each one is
// closed by an Unclip.
type Clip struct {
	Path *Path
}

// Draw implements Grob.
func (c *Clip) Draw(r Renderer) error {
	return r.BeginClip(c.Path)
}

// Unclip closes the innermost clipping region.
type Unclip struct{}

// Draw implements Grob.
func (Unclip) Draw(r Renderer) error {
	return r.EndClip()
}

// OpenClips returns how many clipping regions grobs leaves open.
func OpenClips(grobs []Grob) int {
	n := 0
	for _, g := range grobs {
		switch g.(type) {
		case *Clip:
			n++
		case Unclip, *Unclip:
			if n > 0 {
				n--
			}
		}
	}
	return n
}
