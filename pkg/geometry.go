package tools

// Position is a point in detector coordinates, in meters.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Direction is a unit-ish vector in detector coordinates.
type Direction struct {
	X float64
	Y float64
	Z float64
}

type DetectorStatus uint8

const (
	DetectorOff DetectorStatus = iota
	DetectorOn
)

type ChannelStatus uint8

const (
	ChannelOff ChannelStatus = iota
	ChannelOn
)

type GeometryStatus uint8

const (
	GeometryUnknown GeometryStatus = iota
	GeometryFullyOperational
	GeometryPartial
)

// Channel describes the cabling of one readout channel: which rack,
// TDC slot/channel and HV crate/slot/channel it is served by.
type Channel struct {
	Num        int
	Rack       int
	TDCSlot    int
	TDCChannel int
	HVCrate    int
	HVSlot     int
	HVChannel  int
	Status     ChannelStatus
}

// Detector is one physical detector element (a PMT, a paddle) with its
// readout channels.
type Detector struct {
	Num      int
	System   string
	Type     string
	Pos      Position
	Dir      Direction
	Status   DetectorStatus
	Channels map[int]Channel
}

func NewDetector(num int, system, dtype string, pos Position, dir Direction, status DetectorStatus) *Detector {
	return &Detector{
		Num:      num,
		System:   system,
		Type:     dtype,
		Pos:      pos,
		Dir:      dir,
		Status:   status,
		Channels: make(map[int]Channel),
	}
}

func (d *Detector) AddChannel(ch Channel) {
	d.Channels[ch.Num] = ch
}

// GeometrySummary holds the scalars from the detector summary file.
// All lengths in meters.
type GeometrySummary struct {
	Version               int
	TankCenter            Position
	TankRadius            float64
	TankHalfHeight        float64
	PMTEnclosedRadius     float64
	PMTEnclosedHalfHeight float64
	MRDWidth              float64
	MRDHeight             float64
	MRDDepth              float64
	MRDStart              float64
}

// Geometry is the in-memory detector description consumed by the
// reconstruction tools.
type Geometry struct {
	GeometrySummary
	Status    GeometryStatus
	detectors map[int]*Detector
}

func NewGeometry(summary GeometrySummary, status GeometryStatus) *Geometry {
	return &Geometry{
		GeometrySummary: summary,
		Status:          status,
		detectors:       make(map[int]*Detector),
	}
}

func (g *Geometry) AddDetector(d *Detector) {
	g.detectors[d.Num] = d
}

func (g *Geometry) Detector(num int) (*Detector, bool) {
	d, ok := g.detectors[num]
	return d, ok
}

func (g *Geometry) NumDetectors() int {
	return len(g.detectors)
}

func (g *Geometry) NumChannels() int {
	n := 0
	for _, d := range g.detectors {
		n += len(d.Channels)
	}
	return n
}

// Extents is a closed physical span along one axis, in meters.
type Extents struct {
	Min float64
	Max float64
}

// Paddle orientation inside an MRD layer.
const (
	OrientationHorizontal = 0
	OrientationVertical   = 1
)

// Paddle is one MRD scintillator paddle. PaddleX/PaddleY are the
// in-layer paddle numbers with the two halves of the MRD flattened.
type Paddle struct {
	Layer       int
	Orientation int
	Half        int
	PaddleX     int
	PaddleY     int
	Origin      Position
	ExtentsX    Extents
	ExtentsY    Extents
}

// InLayerNumber flattens the two MRD halves to a single per-layer
// paddle index along the measuring axis.
func (p *Paddle) InLayerNumber() int {
	if p.Orientation == OrientationVertical {
		return p.PaddleX
	}
	return p.PaddleY
}

// MeasuringExtents returns the physical span along the axis the paddle
// measures.
func (p *Paddle) MeasuringExtents() Extents {
	if p.Orientation == OrientationVertical {
		return p.ExtentsX
	}
	return p.ExtentsY
}
