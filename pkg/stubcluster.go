package tools

import "fmt"

// StubCluster groups adjacent hit MRD paddles of one layer into a
// single track stub candidate.
type StubCluster struct {
	layer       int
	orientation int
	side        int
	origin      Position
	extents     Extents

	// all we need to know to check if we can merge a new paddle
	// is the in-layer paddle numbers of our current end paddles
	paddleNumberMin int
	paddleNumberMax int

	// keep the paddles, just in case.
	paddles []*Paddle
}

// NewStubCluster constructs a cluster from its first paddle.
func NewStubCluster(paddle *Paddle) *StubCluster {
	number := paddle.InLayerNumber()
	return &StubCluster{
		layer:           paddle.Layer,
		orientation:     paddle.Orientation,
		side:            paddle.Half,
		origin:          paddle.Origin,
		extents:         paddle.MeasuringExtents(),
		paddleNumberMin: number,
		paddleNumberMax: number,
		paddles:         []*Paddle{paddle},
	}
}

func (c *StubCluster) Layer() int       { return c.layer }
func (c *StubCluster) Orientation() int { return c.orientation }
func (c *StubCluster) Origin() Position { return c.origin }
func (c *StubCluster) Extents() Extents { return c.extents }
func (c *StubCluster) NumPaddles() int  { return len(c.paddles) }

// Merge checks if the paddle is adjacent to the cluster and merges it
// if so. It reports whether the paddle was added; a layer mismatch or
// a paddle spanning more than the whole cluster is an error.
func (c *StubCluster) Merge(paddle *Paddle) (bool, error) {
	// should always be true, but check we're in the same layer
	if paddle.Layer != c.layer {
		return false, fmt.Errorf("tried to merge paddles in different z layers (%d and %d)", paddle.Layer, c.layer)
	}

	// see if the in-layer number of this paddle is off-by-one from
	// either of our end paddle numbers; the flattened numbering also
	// allows the two MRD halves to share the same X or Y
	inLayerNumber := paddle.InLayerNumber()
	sameSideAdjacent := (inLayerNumber == c.paddleNumberMax+1 || inLayerNumber == c.paddleNumberMin-1) &&
		paddle.Half == c.side
	oppositeSideOverlap := inLayerNumber < c.paddleNumberMax+1 && inLayerNumber >= c.paddleNumberMin-1 &&
		paddle.Half != c.side
	if !sameSideAdjacent && !oppositeSideOverlap {
		// not adjacent to our current span
		return false, nil
	}

	// update the paddle numbers of our extremities, but only for a
	// paddle on the same side
	if paddle.Half == c.side {
		if inLayerNumber == c.paddleNumberMax+1 {
			c.paddleNumberMax = inLayerNumber
		} else {
			c.paddleNumberMin = inLayerNumber
		}
	}

	// update our physical span
	theExtents := paddle.MeasuringExtents()
	lowerExtend := theExtents.Min < c.extents.Min
	upperExtend := theExtents.Max > c.extents.Max
	if lowerExtend && upperExtend {
		return false, fmt.Errorf("merge with paddle that has a greater span than the cluster")
	}
	if lowerExtend {
		c.extents.Min = theExtents.Min
	} else if upperExtend {
		c.extents.Max = theExtents.Max
	}

	// update our origin
	center := c.extents.Min + (c.extents.Max-c.extents.Min)/2.
	if c.orientation == OrientationVertical {
		c.origin.X = center
	} else {
		c.origin.Y = center
	}

	c.paddles = append(c.paddles, paddle)
	return true, nil
}
